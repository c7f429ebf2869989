package create_booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ParkingService/internal/conflict"
	"github.com/m04kA/SMC-ParkingService/internal/domain"
	listingClient "github.com/m04kA/SMC-ParkingService/internal/integrations/listingservice"
	"github.com/m04kA/SMC-ParkingService/internal/pricing"
)

var now = time.Date(2025, 10, 15, 9, 0, 0, 0, time.UTC)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixedTime struct{}

func (fixedTime) Now() time.Time { return now }

type passthroughTx struct{}

func (passthroughTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// memBookings хранит созданные бронирования и отдает их детектору пересечений
type memBookings struct {
	bookings  []*domain.Booking
	createErr error
}

func (m *memBookings) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	b.ID = int64(len(m.bookings) + 1)
	b.Version = 1
	b.MarkCommitted()
	m.bookings = append(m.bookings, b.Clone())
	return b, nil
}

func (m *memBookings) GetActiveByVehicle(_ context.Context, vehicleID int64, start, end time.Time) ([]*domain.Booking, error) {
	out := make([]*domain.Booking, 0)
	for _, b := range m.bookings {
		if b.VehicleID == vehicleID && conflict.Overlaps(b.StartTime, b.EndTime, start, end) {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeListings struct {
	policies map[int64]*domain.ListingPolicy
	err      error
}

func (f *fakeListings) GetPolicy(_ context.Context, id int64) (*domain.ListingPolicy, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.policies[id]
	if !ok {
		return nil, listingClient.ErrListingNotFound
	}
	return p, nil
}

type fakeCommissions struct{ created []*domain.Commission }

func (f *fakeCommissions) OnConfirmed(_ context.Context, b *domain.Booking) (*domain.Commission, error) {
	commission, net := domain.SplitCommission(b.TotalPriceCents, domain.DefaultCommissionRateBps)
	c := &domain.Commission{BookingID: b.ID, OwnerID: b.OwnerID, TotalCents: b.TotalPriceCents, CommissionCents: commission, NetCents: net}
	f.created = append(f.created, c)
	return c, nil
}

type fakeMetrics struct{ transitions []string }

func (f *fakeMetrics) RecordTransition(from, to string) {
	f.transitions = append(f.transitions, from+"->"+to)
}

type env struct {
	uc          *UseCase
	bookings    *memBookings
	listings    *fakeListings
	commissions *fakeCommissions
	metrics     *fakeMetrics
}

func newEnv() *env {
	table := pricing.Table{"hour1": 15.0, "hour2": 12.0, "hour3": 10.0}
	e := &env{
		bookings: &memBookings{},
		listings: &fakeListings{policies: map[int64]*domain.ListingPolicy{
			1: {ListingID: 1, OwnerID: 2, ApprovalMode: domain.ApprovalAuto, TieredPricing: table, HourlyRate: 10},
			5: {ListingID: 5, OwnerID: 2, ApprovalMode: domain.ApprovalManual, HourlyRate: 8},
		}},
		commissions: &fakeCommissions{},
		metrics:     &fakeMetrics{},
	}
	e.uc = NewUseCase(e.bookings, e.listings, conflict.NewDetector(e.bookings), pricing.NewCalculator(pricing.Config{}),
		e.commissions, passthroughTx{}, e.metrics, pricing.ModeProportional, nopLogger{})
	e.uc.timeProvider = fixedTime{}
	return e
}

func request(listingID int64, start time.Time, d time.Duration) *Request {
	return &Request{RenterID: 3, VehicleID: 4, ListingID: listingID, StartTime: start, EndTime: start.Add(d)}
}

func TestExecute_AutoApprovedGetsCommission(t *testing.T) {
	e := newEnv()

	resp, err := e.uc.Execute(context.Background(), request(1, now.Add(time.Hour), 90*time.Minute))

	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusApproved), resp.Status)
	assert.Equal(t, int64(2100), resp.TotalPriceCents)
	assert.Equal(t, "21.00", resp.TotalPrice)
	assert.Equal(t, pricing.MethodProportional, resp.PricingMethod)
	assert.Equal(t, int64(2), resp.OwnerID)
	require.NotNil(t, resp.CommissionCents)
	assert.Equal(t, int64(315), *resp.CommissionCents)
	assert.Equal(t, []string{"new->approved"}, e.metrics.transitions)

	stored := e.bookings.bookings[0]
	require.Len(t, stored.Events, 1)
	assert.Equal(t, domain.EventStatusChange, stored.Events[0].Type)
}

func TestExecute_ManualListingIsPending(t *testing.T) {
	e := newEnv()

	resp, err := e.uc.Execute(context.Background(), request(5, now.Add(time.Hour), 90*time.Minute))

	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusPending), resp.Status)
	assert.Equal(t, int64(1600), resp.TotalPriceCents, "legacy rounds 1.5h up to 2h")
	assert.Equal(t, pricing.MethodLegacy, resp.PricingMethod)
	assert.Nil(t, resp.CommissionCents)
	assert.Empty(t, e.commissions.created)
}

func TestExecute_OverlapReturnsConflict(t *testing.T) {
	e := newEnv()
	first, err := e.uc.Execute(context.Background(), request(1, now.Add(time.Hour), 2*time.Hour))
	require.NoError(t, err)

	_, err = e.uc.Execute(context.Background(), request(5, now.Add(2*time.Hour), 2*time.Hour))

	var conflictErr *domain.ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.ErrorIs(t, err, domain.ErrConflict)
	require.Len(t, conflictErr.Conflicts, 1)
	assert.Equal(t, first.ID, conflictErr.Conflicts[0].ID)
	assert.Len(t, e.bookings.bookings, 1)
}

func TestExecute_AdjacentWindowsDoNotConflict(t *testing.T) {
	e := newEnv()
	_, err := e.uc.Execute(context.Background(), request(1, now.Add(time.Hour), time.Hour))
	require.NoError(t, err)

	_, err = e.uc.Execute(context.Background(), request(1, now.Add(2*time.Hour), time.Hour))

	assert.NoError(t, err)
}

func TestExecute_OtherVehicleDoesNotConflict(t *testing.T) {
	e := newEnv()
	_, err := e.uc.Execute(context.Background(), request(1, now.Add(time.Hour), time.Hour))
	require.NoError(t, err)

	req := request(1, now.Add(time.Hour), time.Hour)
	req.VehicleID = 9
	_, err = e.uc.Execute(context.Background(), req)

	assert.NoError(t, err)
}

func TestExecute_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     *Request
		wantErr error
	}{
		{"no renter", &Request{VehicleID: 4, ListingID: 1, StartTime: now.Add(time.Hour), EndTime: now.Add(2 * time.Hour)}, ErrInvalidInput},
		{"no vehicle", &Request{RenterID: 3, ListingID: 1, StartTime: now.Add(time.Hour), EndTime: now.Add(2 * time.Hour)}, ErrInvalidInput},
		{"no times", &Request{RenterID: 3, VehicleID: 4, ListingID: 1}, ErrInvalidInput},
		{"end before start", request(1, now.Add(time.Hour), -time.Minute), domain.ErrInvalidTimeRange},
		{"empty window", request(1, now.Add(time.Hour), 0), domain.ErrInvalidTimeRange},
		{"too long", request(1, now.Add(time.Hour), 31*24*time.Hour), ErrInvalidInput},
		{"already over", request(1, now.Add(-3*time.Hour), time.Hour), ErrBookingInPast},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv()
			_, err := e.uc.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, e.bookings.bookings)
		})
	}
}

func TestExecute_ListingErrors(t *testing.T) {
	e := newEnv()

	_, err := e.uc.Execute(context.Background(), request(99, now.Add(time.Hour), time.Hour))
	assert.ErrorIs(t, err, ErrListingNotFound)

	e.listings.err = errors.New("timeout")
	_, err = e.uc.Execute(context.Background(), request(1, now.Add(time.Hour), time.Hour))
	assert.ErrorIs(t, err, ErrInternal)
}

func TestExecute_OwnListing(t *testing.T) {
	e := newEnv()
	req := request(1, now.Add(time.Hour), time.Hour)
	req.RenterID = 2

	_, err := e.uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrOwnListing)
}

func TestExecute_RepositoryError(t *testing.T) {
	e := newEnv()
	e.bookings.createErr = errors.New("db down")

	_, err := e.uc.Execute(context.Background(), request(1, now.Add(time.Hour), time.Hour))

	assert.ErrorIs(t, err, ErrInternal)
	assert.Empty(t, e.commissions.created)
	assert.Empty(t, e.metrics.transitions)
}
