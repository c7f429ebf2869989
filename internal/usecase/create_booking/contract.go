package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/conflict"
	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/pricing"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
}

// ListingClient интерфейс клиента для ListingService
type ListingClient interface {
	GetPolicy(ctx context.Context, listingID int64) (*domain.ListingPolicy, error)
}

// ConflictDetector интерфейс проверки пересечений по транспортному средству
type ConflictDetector interface {
	Check(ctx context.Context, vehicleID int64, start, end time.Time) (*conflict.Result, error)
}

// PriceCalculator интерфейс калькулятора стоимости
type PriceCalculator interface {
	Calculate(duration time.Duration, table pricing.Table, legacyRate float64, mode pricing.Mode) *pricing.Result
}

// CommissionAccountant интерфейс учета комиссий
type CommissionAccountant interface {
	OnConfirmed(ctx context.Context, booking *domain.Booking) (*domain.Commission, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// MetricsRecorder интерфейс метрик переходов
type MetricsRecorder interface {
	RecordTransition(from, to string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
