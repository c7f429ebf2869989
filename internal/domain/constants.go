package domain

// Default configuration values
const (
	DefaultCommissionRateBps = 1500 // 15%
	DefaultSweepIntervalSec  = 60
)

// Business validation constants
const (
	MaxBookingDurationHours     = 24 * 30
	MaxCancellationReasonLength = 500
)

// NonTerminalStatuses statuses considered by conflict detection and the sweeper
var NonTerminalStatuses = []BookingStatus{
	StatusPending,
	StatusApproved,
	StatusActive,
}
