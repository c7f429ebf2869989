package payouts

import (
	"context"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// PayoutRepository интерфейс репозитория выплат
type PayoutRepository interface {
	ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Payout, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
