package run_payouts

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// CommissionRepository интерфейс репозитория комиссий
type CommissionRepository interface {
	ListOwnersWithUnprocessed(ctx context.Context) ([]int64, error)
	ListUnprocessedByOwner(ctx context.Context, ownerID int64) ([]*domain.Commission, error)
	MarkProcessed(ctx context.Context, ids []int64, payoutID int64, at time.Time) error
}

// PayoutRepository интерфейс репозитория выплат
type PayoutRepository interface {
	Create(ctx context.Context, payout *domain.Payout) (*domain.Payout, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// MetricsRecorder интерфейс метрик выплат
type MetricsRecorder interface {
	RecordPayout(netCents int64)
	RecordPayoutFailure()
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
