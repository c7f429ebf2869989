package create_booking

import (
	"time"

	createBooking "github.com/m04kA/SMC-ParkingService/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ListingID int64     `json:"listingId"`
	VehicleID int64     `json:"vehicleId"`
	StartTime time.Time `json:"startTime"` // RFC 3339
	EndTime   time.Time `json:"endTime"`
}

// ToUseCaseRequest конвертирует HTTP request в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(renterID int64) *createBooking.Request {
	return &createBooking.Request{
		RenterID:  renterID,
		VehicleID: r.VehicleID,
		ListingID: r.ListingID,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
	}
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID              int64     `json:"id"`
	ListingID       int64     `json:"listingId"`
	OwnerID         int64     `json:"ownerId"`
	RenterID        int64     `json:"renterId"`
	VehicleID       int64     `json:"vehicleId"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	Status          string    `json:"status"`
	TotalPriceCents int64     `json:"totalPriceCents"`
	TotalPrice      string    `json:"totalPrice"`
	PricingMethod   string    `json:"pricingMethod"`
	CommissionCents *int64    `json:"commissionCents,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP модель
func FromUseCaseResponse(r *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:              r.ID,
		ListingID:       r.ListingID,
		OwnerID:         r.OwnerID,
		RenterID:        r.RenterID,
		VehicleID:       r.VehicleID,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		Status:          r.Status,
		TotalPriceCents: r.TotalPriceCents,
		TotalPrice:      r.TotalPrice,
		PricingMethod:   r.PricingMethod,
		CommissionCents: r.CommissionCents,
		CreatedAt:       r.CreatedAt,
	}
}
