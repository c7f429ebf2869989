package reject_booking

import "github.com/m04kA/SMC-ParkingService/internal/service/bookings/models"

// RejectBookingRequest HTTP request model, тело необязательно
type RejectBookingRequest struct {
	Reason string `json:"reason"`
}

func (r *RejectBookingRequest) ToServiceRequest(userID int64) *models.RejectBookingRequest {
	return &models.RejectBookingRequest{
		UserID: userID,
		Reason: r.Reason,
	}
}
