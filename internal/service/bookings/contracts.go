package bookings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/conflict"
	"github.com/m04kA/SMC-ParkingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-ParkingService/internal/pricing"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	Update(ctx context.Context, booking *domain.Booking) error
	List(ctx context.Context, filter bookingRepo.ListFilter) ([]*domain.Booking, error)
}

// ConflictDetector проверка пересечений по транспортному средству
type ConflictDetector interface {
	CheckExcluding(ctx context.Context, excludeID, vehicleID int64, start, end time.Time) (*conflict.Result, error)
}

// PriceCalculator расчет стоимости бронирования
type PriceCalculator interface {
	Calculate(duration time.Duration, table pricing.Table, legacyRate float64, mode pricing.Mode) *pricing.Result
}

// CommissionAccountant учет комиссии платформы
type CommissionAccountant interface {
	OnConfirmed(ctx context.Context, booking *domain.Booking) (*domain.Commission, error)
	OnCanceled(ctx context.Context, bookingID int64) error
	IsConsolidated(ctx context.Context, bookingID int64) (bool, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// MetricsRecorder счетчики переходов между статусами
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
