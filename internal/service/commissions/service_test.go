package commissions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	commissionRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/commission"
)

var now = time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixedTime struct{}

func (fixedTime) Now() time.Time { return now }

type fakeRepo struct {
	byBooking map[int64]*domain.Commission
	nextID    int64
	getErr    error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byBooking: make(map[int64]*domain.Commission)}
}

func (f *fakeRepo) GetByBookingID(_ context.Context, bookingID int64) (*domain.Commission, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	c, ok := f.byBooking[bookingID]
	if !ok {
		return nil, commissionRepo.ErrCommissionNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeRepo) Create(_ context.Context, c *domain.Commission) (*domain.Commission, error) {
	f.nextID++
	c.ID = f.nextID
	cp := *c
	f.byBooking[c.BookingID] = &cp
	return c, nil
}

func (f *fakeRepo) UpdateAmounts(_ context.Context, c *domain.Commission) error {
	stored := f.byBooking[c.BookingID]
	if stored == nil || stored.Processed {
		return commissionRepo.ErrAlreadyProcessed
	}
	stored.TotalCents, stored.CommissionCents, stored.NetCents = c.TotalCents, c.CommissionCents, c.NetCents
	return nil
}

func (f *fakeRepo) DeleteUnprocessed(_ context.Context, bookingID int64) error {
	stored := f.byBooking[bookingID]
	if stored == nil || stored.Processed {
		return commissionRepo.ErrCommissionNotFound
	}
	delete(f.byBooking, bookingID)
	return nil
}

func newTestService(t *testing.T, repo *fakeRepo) *Service {
	t.Helper()
	s, err := NewService(repo, 1500, nopLogger{})
	require.NoError(t, err)
	s.timeProvider = fixedTime{}
	return s
}

func confirmed(id, total int64) *domain.Booking {
	return &domain.Booking{ID: id, OwnerID: 2, TotalPriceCents: total, Status: domain.StatusApproved}
}

func TestNewService_InvalidRate(t *testing.T) {
	_, err := NewService(newFakeRepo(), 10001, nopLogger{})
	assert.ErrorIs(t, err, ErrInvalidRate)

	_, err = NewService(newFakeRepo(), -1, nopLogger{})
	assert.ErrorIs(t, err, ErrInvalidRate)
}

func TestOnConfirmed_CreatesCommission(t *testing.T) {
	repo := newFakeRepo()
	s := newTestService(t, repo)

	c, err := s.OnConfirmed(context.Background(), confirmed(10, 2100))

	require.NoError(t, err)
	assert.Equal(t, int64(315), c.CommissionCents)
	assert.Equal(t, int64(1785), c.NetCents)
	assert.Equal(t, int64(2), c.OwnerID)
	assert.Equal(t, now, c.CreatedAt)
	assert.False(t, c.Processed)
	assert.Len(t, repo.byBooking, 1)
}

func TestOnConfirmed_Idempotent(t *testing.T) {
	repo := newFakeRepo()
	s := newTestService(t, repo)

	first, err := s.OnConfirmed(context.Background(), confirmed(10, 2100))
	require.NoError(t, err)
	second, err := s.OnConfirmed(context.Background(), confirmed(10, 2100))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.byBooking, 1)
}

func TestOnConfirmed_RepricingUpdatesUnprocessed(t *testing.T) {
	repo := newFakeRepo()
	s := newTestService(t, repo)
	_, err := s.OnConfirmed(context.Background(), confirmed(10, 2100))
	require.NoError(t, err)

	c, err := s.OnConfirmed(context.Background(), confirmed(10, 2950))

	require.NoError(t, err)
	assert.Equal(t, int64(443), c.CommissionCents)
	assert.Equal(t, int64(2507), repo.byBooking[10].NetCents)
}

func TestOnConfirmed_ProcessedIsUntouched(t *testing.T) {
	repo := newFakeRepo()
	repo.byBooking[10] = &domain.Commission{ID: 1, BookingID: 10, TotalCents: 2100, CommissionCents: 315, NetCents: 1785, Processed: true}
	s := newTestService(t, repo)

	c, err := s.OnConfirmed(context.Background(), confirmed(10, 5000))

	require.NoError(t, err)
	assert.Equal(t, int64(2100), c.TotalCents)
	assert.Equal(t, int64(2100), repo.byBooking[10].TotalCents)
}

func TestOnConfirmed_ZeroTotalHasNoRecord(t *testing.T) {
	repo := newFakeRepo()
	s := newTestService(t, repo)

	c, err := s.OnConfirmed(context.Background(), confirmed(10, 0))

	require.NoError(t, err)
	assert.Nil(t, c)
	assert.Empty(t, repo.byBooking)
}

func TestOnConfirmed_RepositoryError(t *testing.T) {
	repo := newFakeRepo()
	repo.getErr = errors.New("db down")
	s := newTestService(t, repo)

	_, err := s.OnConfirmed(context.Background(), confirmed(10, 2100))

	assert.ErrorIs(t, err, ErrInternal)
}

func TestOnCanceled(t *testing.T) {
	repo := newFakeRepo()
	s := newTestService(t, repo)

	require.NoError(t, s.OnCanceled(context.Background(), 10), "no commission is a no-op")

	_, err := s.OnConfirmed(context.Background(), confirmed(10, 2100))
	require.NoError(t, err)
	require.NoError(t, s.OnCanceled(context.Background(), 10))
	assert.Empty(t, repo.byBooking)
}

func TestOnCanceled_ProcessedFails(t *testing.T) {
	repo := newFakeRepo()
	repo.byBooking[10] = &domain.Commission{ID: 1, BookingID: 10, Processed: true}
	s := newTestService(t, repo)

	err := s.OnCanceled(context.Background(), 10)

	assert.ErrorIs(t, err, domain.ErrAlreadyConsolidated)
	assert.Len(t, repo.byBooking, 1)
}

func TestIsConsolidated(t *testing.T) {
	repo := newFakeRepo()
	repo.byBooking[10] = &domain.Commission{ID: 1, BookingID: 10, Processed: true}
	repo.byBooking[11] = &domain.Commission{ID: 2, BookingID: 11}
	s := newTestService(t, repo)

	for id, want := range map[int64]bool{10: true, 11: false, 12: false} {
		got, err := s.IsConsolidated(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, want, got, "booking %d", id)
	}
}
