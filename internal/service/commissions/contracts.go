package commissions

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// CommissionRepository интерфейс репозитория комиссий
type CommissionRepository interface {
	GetByBookingID(ctx context.Context, bookingID int64) (*domain.Commission, error)
	Create(ctx context.Context, c *domain.Commission) (*domain.Commission, error)
	UpdateAmounts(ctx context.Context, c *domain.Commission) error
	DeleteUnprocessed(ctx context.Context, bookingID int64) error
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
