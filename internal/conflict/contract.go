package conflict

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// BookingReader источник бронирований для проверки пересечений.
// Внутри транзакции реализация блокирует найденные строки (FOR UPDATE).
type BookingReader interface {
	GetActiveByVehicle(ctx context.Context, vehicleID int64, start, end time.Time) ([]*domain.Booking, error)
}
