package get_owner_payouts

import (
	"context"

	"github.com/m04kA/SMC-ParkingService/internal/service/payouts/models"
)

type PayoutService interface {
	ListByOwner(ctx context.Context, ownerID, userID int64) ([]models.PayoutResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
