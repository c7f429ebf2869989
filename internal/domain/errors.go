package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConflict vehicle already holds an overlapping non-terminal booking
	ErrConflict = errors.New("domain: booking conflict")

	// ErrInvalidTransition transition not allowed by the state table
	ErrInvalidTransition = errors.New("domain: invalid transition")

	// ErrAlreadyConsolidated commission of the booking is already paid out
	ErrAlreadyConsolidated = errors.New("domain: commission already consolidated into a payout")

	// ErrInvalidTimeRange end is not after start
	ErrInvalidTimeRange = errors.New("domain: invalid time range")

	// ErrNotDue time-triggered transition requested too early
	ErrNotDue = errors.New("domain: transition is not due yet")
)

// ConflictError carries the bookings that overlap the requested window
type ConflictError struct {
	VehicleID int64
	Conflicts []*Booking
}

func (e *ConflictError) Error() string {
	ids := make([]int64, 0, len(e.Conflicts))
	for _, b := range e.Conflicts {
		ids = append(ids, b.ID)
	}
	return fmt.Sprintf("%s: vehicle %d overlaps bookings %v", ErrConflict.Error(), e.VehicleID, ids)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// InvalidTransitionError transition not permitted from the current status
type InvalidTransitionError struct {
	From   BookingStatus
	To     BookingStatus
	Action string // операция, если это не обычная смена статуса (extend, finish, create)
}

func (e *InvalidTransitionError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s: cannot %s booking in status %q", ErrInvalidTransition.Error(), e.Action, e.From)
	}
	return fmt.Sprintf("%s: %q -> %q", ErrInvalidTransition.Error(), e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
