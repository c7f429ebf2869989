package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ParkingService/internal/conflict"
	"github.com/m04kA/SMC-ParkingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-ParkingService/internal/pricing"
	"github.com/m04kA/SMC-ParkingService/internal/service/bookings/models"
)

const (
	ownerID  = int64(2)
	renterID = int64(3)
)

var start = time.Date(2025, 10, 15, 10, 0, 0, 0, time.UTC)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixedTime struct{ now time.Time }

func (f *fixedTime) Now() time.Time { return f.now }

type fakeTx struct{ calls, serializable int }

func (f *fakeTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

func (f *fakeTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	f.serializable++
	return fn(ctx)
}

type fakeRepo struct {
	bookings  map[int64]*domain.Booking
	updateErr error
	updates   int
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return b.Clone(), nil
}

func (f *fakeRepo) Update(_ context.Context, b *domain.Booking) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates++
	b.Version++
	b.MarkCommitted()
	f.bookings[b.ID] = b.Clone()
	return nil
}

func (f *fakeRepo) List(_ context.Context, filter bookingRepo.ListFilter) ([]*domain.Booking, error) {
	out := make([]*domain.Booking, 0)
	for _, b := range f.bookings {
		if filter.RenterID != nil && b.RenterID != *filter.RenterID {
			continue
		}
		if filter.OwnerID != nil && b.OwnerID != *filter.OwnerID {
			continue
		}
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		out = append(out, b.Clone())
	}
	return out, nil
}

type fakeDetector struct {
	conflicts []*domain.Booking
	excluded  int64
}

func (f *fakeDetector) CheckExcluding(_ context.Context, excludeID, vehicleID int64, _, _ time.Time) (*conflict.Result, error) {
	f.excluded = excludeID
	return &conflict.Result{VehicleID: vehicleID, Conflicts: f.conflicts}, nil
}

type fakeCommissions struct {
	consolidated bool
	confirmed    []int64
	totals       []int64
	canceled     []int64
}

func (f *fakeCommissions) OnConfirmed(_ context.Context, b *domain.Booking) (*domain.Commission, error) {
	if f.consolidated {
		return &domain.Commission{BookingID: b.ID, Processed: true}, nil
	}
	f.confirmed = append(f.confirmed, b.ID)
	f.totals = append(f.totals, b.TotalPriceCents)
	return &domain.Commission{BookingID: b.ID}, nil
}

func (f *fakeCommissions) OnCanceled(_ context.Context, bookingID int64) error {
	if f.consolidated {
		return domain.ErrAlreadyConsolidated
	}
	f.canceled = append(f.canceled, bookingID)
	return nil
}

func (f *fakeCommissions) IsConsolidated(_ context.Context, _ int64) (bool, error) {
	return f.consolidated, nil
}

type fakeMetrics struct{ transitions []string }

func (f *fakeMetrics) RecordTransition(from, to string) {
	f.transitions = append(f.transitions, from+"->"+to)
}

type env struct {
	svc         *Service
	repo        *fakeRepo
	tx          *fakeTx
	detector    *fakeDetector
	commissions *fakeCommissions
	metrics     *fakeMetrics
	clock       *fixedTime
}

func newEnv(t *testing.T, status domain.BookingStatus) *env {
	t.Helper()
	b, err := domain.NewBooking(domain.NewBookingParams{
		ListingID:     1,
		OwnerID:       ownerID,
		RenterID:      renterID,
		VehicleID:     4,
		StartTime:     start,
		EndTime:       start.Add(90 * time.Minute),
		HourlyRate:    10,
		TieredPricing: pricing.Table{"hour1": 15.0, "hour2": 12.0, "hour3": 10.0},
		Status:        status,
		Price:         domain.Price{TotalCents: 2100, Method: pricing.MethodProportional},
	}, start.Add(-2*time.Hour))
	require.NoError(t, err)
	b.ID = 10
	b.Version = 1
	b.MarkCommitted()

	e := &env{
		repo:        &fakeRepo{bookings: map[int64]*domain.Booking{10: b}},
		tx:          &fakeTx{},
		detector:    &fakeDetector{},
		commissions: &fakeCommissions{},
		metrics:     &fakeMetrics{},
		clock:       &fixedTime{now: start.Add(-time.Hour)},
	}
	e.svc = NewService(e.repo, e.detector, pricing.NewCalculator(pricing.Config{}), e.commissions,
		e.tx, e.metrics, pricing.ModeProportional, nopLogger{})
	e.svc.timeProvider = e.clock
	return e
}

func (e *env) stored() *domain.Booking {
	return e.repo.bookings[10]
}

func TestApprove(t *testing.T) {
	e := newEnv(t, domain.StatusPending)

	resp, err := e.svc.Approve(context.Background(), 10, ownerID)

	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusApproved), resp.Status)
	assert.Equal(t, 2, resp.Version)
	assert.Equal(t, []int64{10}, e.commissions.confirmed)
	assert.Equal(t, []string{"pending->approved"}, e.metrics.transitions)
	assert.Len(t, e.stored().Events, 2)
}

func TestApprove_RenterIsDenied(t *testing.T) {
	e := newEnv(t, domain.StatusPending)

	_, err := e.svc.Approve(context.Background(), 10, renterID)

	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Equal(t, domain.StatusPending, e.stored().Status)
}

func TestApprove_InvalidTransition(t *testing.T) {
	e := newEnv(t, domain.StatusApproved)

	_, err := e.svc.Approve(context.Background(), 10, ownerID)

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Zero(t, e.repo.updates)
	assert.Empty(t, e.metrics.transitions)
}

func TestApprove_NotFound(t *testing.T) {
	e := newEnv(t, domain.StatusPending)

	_, err := e.svc.Approve(context.Background(), 99, ownerID)

	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestReject(t *testing.T) {
	e := newEnv(t, domain.StatusPending)

	resp, err := e.svc.Reject(context.Background(), 10, &models.RejectBookingRequest{UserID: ownerID, Reason: "место занято"})

	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusRejected), resp.Status)
	assert.Equal(t, "место занято", resp.Events[1].Reason)
	assert.Empty(t, e.commissions.confirmed)
}

func TestCancel_VoidsCommission(t *testing.T) {
	e := newEnv(t, domain.StatusApproved)

	resp, err := e.svc.Cancel(context.Background(), 10, &models.CancelBookingRequest{UserID: renterID})

	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCanceled), resp.Status)
	assert.Equal(t, []int64{10}, e.commissions.canceled)
}

func TestCancel_ConsolidatedCommissionBlocks(t *testing.T) {
	e := newEnv(t, domain.StatusApproved)
	e.commissions.consolidated = true

	_, err := e.svc.Cancel(context.Background(), 10, &models.CancelBookingRequest{UserID: renterID})

	assert.ErrorIs(t, err, domain.ErrAlreadyConsolidated)
	assert.Equal(t, domain.StatusApproved, e.stored().Status)
	assert.Zero(t, e.repo.updates)
}

func TestCancel_ActiveIsInvalid(t *testing.T) {
	e := newEnv(t, domain.StatusApproved)
	e.clock.now = start
	require.NoError(t, e.repo.bookings[10].Activate(start))

	_, err := e.svc.Cancel(context.Background(), 10, &models.CancelBookingRequest{UserID: renterID})

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCancel_ReasonTooLong(t *testing.T) {
	e := newEnv(t, domain.StatusApproved)
	reason := make([]byte, domain.MaxCancellationReasonLength+1)

	_, err := e.svc.Cancel(context.Background(), 10, &models.CancelBookingRequest{UserID: renterID, CancellationReason: string(reason)})

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExtend_RepricesWholeWindow(t *testing.T) {
	e := newEnv(t, domain.StatusApproved)
	newEnd := start.Add(2*time.Hour + 15*time.Minute)

	resp, err := e.svc.Extend(context.Background(), 10, &models.ExtendBookingRequest{UserID: renterID, NewEnd: newEnd})

	require.NoError(t, err)
	assert.Equal(t, newEnd, resp.EndTime)
	assert.Equal(t, int64(2950), resp.TotalPriceCents)
	assert.Equal(t, "29.50", resp.TotalPrice)
	assert.Equal(t, string(domain.EventExtend), resp.Events[len(resp.Events)-1].Type)
	assert.Equal(t, []int64{2950}, e.commissions.totals)
	assert.Equal(t, int64(10), e.detector.excluded)
	assert.Equal(t, 1, e.tx.serializable)
}

func TestExtend_ConflictLeavesBookingUnchanged(t *testing.T) {
	e := newEnv(t, domain.StatusApproved)
	e.detector.conflicts = []*domain.Booking{{ID: 11, VehicleID: 4, Status: domain.StatusApproved}}

	_, err := e.svc.Extend(context.Background(), 10, &models.ExtendBookingRequest{UserID: renterID, NewEnd: start.Add(3 * time.Hour)})

	var conflictErr *domain.ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, int64(11), conflictErr.Conflicts[0].ID)
	assert.Equal(t, start.Add(90*time.Minute), e.stored().EndTime)
	assert.Zero(t, e.repo.updates)
}

func TestExtend_ConsolidatedIsRejected(t *testing.T) {
	e := newEnv(t, domain.StatusApproved)
	e.commissions.consolidated = true

	_, err := e.svc.Extend(context.Background(), 10, &models.ExtendBookingRequest{UserID: renterID, NewEnd: start.Add(3 * time.Hour)})

	assert.ErrorIs(t, err, domain.ErrAlreadyConsolidated)
}

func TestExtend_NotLater(t *testing.T) {
	e := newEnv(t, domain.StatusApproved)

	_, err := e.svc.Extend(context.Background(), 10, &models.ExtendBookingRequest{UserID: renterID, NewEnd: start.Add(time.Hour)})

	assert.ErrorIs(t, err, domain.ErrInvalidTimeRange)
}

func TestExtend_PendingHasNoCommission(t *testing.T) {
	e := newEnv(t, domain.StatusPending)

	_, err := e.svc.Extend(context.Background(), 10, &models.ExtendBookingRequest{UserID: renterID, NewEnd: start.Add(3 * time.Hour)})

	require.NoError(t, err)
	assert.Empty(t, e.commissions.confirmed)
}

func TestFinishNow_RepricesToNow(t *testing.T) {
	e := newEnv(t, domain.StatusApproved)
	require.NoError(t, e.repo.bookings[10].Activate(start))
	e.repo.bookings[10].MarkCommitted()
	e.clock.now = start.Add(30 * time.Minute)

	resp, err := e.svc.FinishNow(context.Background(), 10, renterID)

	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), resp.Status)
	assert.Equal(t, start.Add(30*time.Minute), resp.EndTime)
	assert.Equal(t, int64(1500), resp.TotalPriceCents, "minimum billable hour")
	assert.Equal(t, []int64{1500}, e.commissions.totals)
	assert.Equal(t, []string{"active->completed"}, e.metrics.transitions)
}

func TestFinishNow_AfterBookedEndDoesNotGrow(t *testing.T) {
	e := newEnv(t, domain.StatusApproved)
	require.NoError(t, e.repo.bookings[10].Activate(start))
	e.repo.bookings[10].MarkCommitted()
	e.clock.now = start.Add(5 * time.Hour)

	resp, err := e.svc.FinishNow(context.Background(), 10, renterID)

	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), resp.Status)
	assert.Equal(t, start.Add(90*time.Minute), resp.EndTime)
	assert.Equal(t, int64(2100), resp.TotalPriceCents)
	assert.Equal(t, []int64{2100}, e.commissions.totals)
	assert.Zero(t, e.detector.excluded)
}

func TestFinishNow_ConsolidatedLocksPrice(t *testing.T) {
	e := newEnv(t, domain.StatusApproved)
	require.NoError(t, e.repo.bookings[10].Activate(start))
	e.commissions.consolidated = true
	e.clock.now = start.Add(30 * time.Minute)

	resp, err := e.svc.FinishNow(context.Background(), 10, renterID)

	require.NoError(t, err)
	assert.Equal(t, int64(2100), resp.TotalPriceCents)
	assert.True(t, resp.Events[len(resp.Events)-1].PriceLocked)
}

func TestFinishNow_RequiresActive(t *testing.T) {
	e := newEnv(t, domain.StatusApproved)

	_, err := e.svc.FinishNow(context.Background(), 10, renterID)

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestMutate_VersionConflict(t *testing.T) {
	e := newEnv(t, domain.StatusPending)
	e.repo.updateErr = bookingRepo.ErrVersionConflict

	_, err := e.svc.Approve(context.Background(), 10, ownerID)

	assert.ErrorIs(t, err, ErrConcurrentModification)
	assert.Empty(t, e.metrics.transitions)
}

func TestGetByID(t *testing.T) {
	e := newEnv(t, domain.StatusPending)

	resp, err := e.svc.GetByID(context.Background(), 10, renterID)
	require.NoError(t, err)
	assert.Equal(t, "21.00", resp.TotalPrice)
	assert.Len(t, resp.Events, 1)

	_, err = e.svc.GetByID(context.Background(), 10, 777)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestListForRenterAndOwner(t *testing.T) {
	e := newEnv(t, domain.StatusApproved)

	resp, err := e.svc.ListForRenter(context.Background(), &models.ListBookingsRequest{UserID: renterID, SubjectID: renterID})
	require.NoError(t, err)
	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, int64(10), resp.Bookings[0].ID)

	resp, err = e.svc.ListForOwner(context.Background(), &models.ListBookingsRequest{UserID: ownerID, SubjectID: ownerID})
	require.NoError(t, err)
	assert.Len(t, resp.Bookings, 1)

	resp, err = e.svc.ListForOwner(context.Background(), &models.ListBookingsRequest{UserID: renterID, SubjectID: renterID})
	require.NoError(t, err)
	assert.Empty(t, resp.Bookings, "renter owns no listings")
}

func TestList_StatusFilterAndAccess(t *testing.T) {
	e := newEnv(t, domain.StatusApproved)
	canceled, unknown := "canceled", "paid"

	resp, err := e.svc.ListForRenter(context.Background(),
		&models.ListBookingsRequest{UserID: renterID, SubjectID: renterID, Status: &canceled})
	require.NoError(t, err)
	assert.Empty(t, resp.Bookings)

	_, err = e.svc.ListForRenter(context.Background(),
		&models.ListBookingsRequest{UserID: renterID, SubjectID: renterID, Status: &unknown})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.svc.ListForOwner(context.Background(), &models.ListBookingsRequest{UserID: renterID, SubjectID: ownerID})
	assert.ErrorIs(t, err, ErrAccessDenied)
}
