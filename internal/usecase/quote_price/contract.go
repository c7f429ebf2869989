package quote_price

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/pricing"
)

// ListingClient интерфейс клиента для ListingService
type ListingClient interface {
	GetPolicy(ctx context.Context, listingID int64) (*domain.ListingPolicy, error)
}

// PriceCalculator интерфейс калькулятора стоимости
type PriceCalculator interface {
	Calculate(duration time.Duration, table pricing.Table, legacyRate float64, mode pricing.Mode) *pricing.Result
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
