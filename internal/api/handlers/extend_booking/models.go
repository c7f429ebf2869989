package extend_booking

import (
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/service/bookings/models"
)

// ExtendBookingRequest HTTP request model
type ExtendBookingRequest struct {
	NewEnd time.Time `json:"newEnd"` // RFC 3339
}

func (r *ExtendBookingRequest) ToServiceRequest(userID int64) *models.ExtendBookingRequest {
	return &models.ExtendBookingRequest{
		UserID: userID,
		NewEnd: r.NewEnd,
	}
}
