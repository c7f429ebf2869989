package quote_price

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	listingClient "github.com/m04kA/SMC-ParkingService/internal/integrations/listingservice"
	"github.com/m04kA/SMC-ParkingService/internal/pricing"
	"github.com/m04kA/SMC-ParkingService/pkg/ptr"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeListings map[int64]*domain.ListingPolicy

func (f fakeListings) GetPolicy(_ context.Context, id int64) (*domain.ListingPolicy, error) {
	p, ok := f[id]
	if !ok {
		return nil, listingClient.ErrListingNotFound
	}
	return p, nil
}

func newUseCase(mode pricing.Mode) *UseCase {
	listings := fakeListings{
		1: {ListingID: 1, OwnerID: 2, TieredPricing: pricing.Table{"hour1": 15.0, "hour2": 12.0, "hour3": 10.0}, HourlyRate: 10},
	}
	return NewUseCase(listings, pricing.NewCalculator(pricing.Config{}), mode, nopLogger{})
}

func TestExecute_InlineTable(t *testing.T) {
	uc := newUseCase(pricing.ModeProportional)

	resp, err := uc.Execute(context.Background(), &Request{
		Duration:      90 * time.Minute,
		TieredPricing: pricing.Table{"hour1": 15.0, "hour2": 12.0, "hour3": 10.0},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(2100), resp.TotalCents)
	assert.Equal(t, "21.00", resp.Total)
	require.Len(t, resp.Breakdown, 2)
	assert.Equal(t, "15.00", resp.Breakdown[0].Price)
	assert.Equal(t, "6.00", resp.Breakdown[1].Price)
	assert.True(t, resp.Breakdown[1].IsFractional)
	assert.InDelta(t, 0.5, resp.Breakdown[1].Fraction, 1e-9)
	assert.Empty(t, resp.Warnings)
}

func TestExecute_FromListing(t *testing.T) {
	uc := newUseCase(pricing.ModeProportional)

	resp, err := uc.Execute(context.Background(), &Request{Duration: 135 * time.Minute, ListingID: ptr.Ptr(int64(1))})

	require.NoError(t, err)
	assert.Equal(t, int64(2950), resp.TotalCents)
}

func TestExecute_LegacyMode(t *testing.T) {
	uc := newUseCase(pricing.ModeLegacy)

	resp, err := uc.Execute(context.Background(), &Request{Duration: 90 * time.Minute, ListingID: ptr.Ptr(int64(1))})

	require.NoError(t, err)
	assert.Equal(t, pricing.MethodLegacy, resp.Method)
	assert.Equal(t, int64(2000), resp.TotalCents)
}

func TestExecute_InvalidTableIsAWarning(t *testing.T) {
	uc := newUseCase(pricing.ModeProportional)

	resp, err := uc.Execute(context.Background(), &Request{
		Duration:      2 * time.Hour,
		TieredPricing: pricing.Table{"hour1": "abc"},
		HourlyRate:    7,
	})

	require.NoError(t, err)
	assert.Equal(t, pricing.MethodLegacy, resp.Method)
	assert.Equal(t, int64(1400), resp.TotalCents)
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "hour1")
}

func TestExecute_Errors(t *testing.T) {
	uc := newUseCase(pricing.ModeProportional)

	_, err := uc.Execute(context.Background(), &Request{Duration: (domain.MaxBookingDurationHours + 1) * time.Hour})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{Duration: time.Hour, ListingID: ptr.Ptr(int64(42))})
	assert.ErrorIs(t, err, ErrListingNotFound)
}

func TestExecute_NonPositiveDurationBillsMinimum(t *testing.T) {
	uc := newUseCase(pricing.ModeProportional)
	table := pricing.Table{"hour1": 15.0}

	hour, err := uc.Execute(context.Background(), &Request{Duration: time.Hour, TieredPricing: table})
	require.NoError(t, err)

	for _, d := range []time.Duration{0, -time.Millisecond, -time.Hour} {
		resp, err := uc.Execute(context.Background(), &Request{Duration: d, TieredPricing: table})
		require.NoError(t, err, "duration %s", d)
		assert.Equal(t, hour.TotalCents, resp.TotalCents, "duration %s", d)
		assert.Equal(t, int64(1500), resp.TotalCents)
		assert.Equal(t, hour.BilledHours, resp.BilledHours)
	}
}
