package domain

import "time"

const basisPointsDenominator = 10000

// Commission platform share of a confirmed booking.
// CommissionCents + NetCents == TotalCents always holds.
type Commission struct {
	ID              int64
	BookingID       int64
	OwnerID         int64
	TotalCents      int64
	CommissionCents int64
	NetCents        int64
	Processed       bool
	PayoutID        *int64
	CreatedAt       time.Time
	ProcessedAt     *time.Time
}

// SplitCommission splits total into platform commission and owner net.
// Commission is rounded half-up to the nearest cent, net is the remainder.
func SplitCommission(totalCents, rateBps int64) (commission, net int64) {
	commission = (totalCents*rateBps + basisPointsDenominator/2) / basisPointsDenominator
	return commission, totalCents - commission
}
