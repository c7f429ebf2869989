package sweep_bookings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	ListDue(ctx context.Context, now time.Time, limit int, skipIDs []int64) ([]*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	Update(ctx context.Context, booking *domain.Booking) error
}

// CommissionAccountant интерфейс учета комиссий
type CommissionAccountant interface {
	OnConfirmed(ctx context.Context, booking *domain.Booking) (*domain.Commission, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// MetricsRecorder интерфейс метрик sweeper'а
type MetricsRecorder interface {
	RecordTransition(from, to string)
	RecordSweep(transitions, failures int)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
