package domain

import "github.com/m04kA/SMC-ParkingService/internal/pricing"

// ApprovalMode how a listing accepts new bookings.
// Resolved once at the listing service boundary.
type ApprovalMode string

const (
	ApprovalAuto   ApprovalMode = "auto"
	ApprovalManual ApprovalMode = "manual"
)

// InitialStatus returns the entry status for a new booking
func (m ApprovalMode) InitialStatus() BookingStatus {
	if m == ApprovalAuto {
		return StatusApproved
	}
	return StatusPending
}

// ListingPolicy booking-relevant part of a parking listing
type ListingPolicy struct {
	ListingID     int64
	OwnerID       int64
	ApprovalMode  ApprovalMode
	TieredPricing pricing.Table // nil, если у объявления только почасовой тариф
	HourlyRate    float64
}
