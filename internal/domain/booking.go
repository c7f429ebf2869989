package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/pricing"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusApproved  BookingStatus = "approved"
	StatusActive    BookingStatus = "active"
	StatusCompleted BookingStatus = "completed"
	StatusRejected  BookingStatus = "rejected"
	StatusCanceled  BookingStatus = "canceled"
)

// IsValid returns true if the status is one of the known statuses
func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusActive, StatusCompleted, StatusRejected, StatusCanceled:
		return true
	}
	return false
}

// IsTerminal returns true for completed, rejected and canceled bookings
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected || s == StatusCanceled
}

// IsConfirmed returns true once the booking has been approved and not voided.
// Confirmed bookings carry a commission record.
func (s BookingStatus) IsConfirmed() bool {
	return s == StatusApproved || s == StatusActive || s == StatusCompleted
}

// Price snapshot of a pricing calculation stored on the booking
type Price struct {
	TotalCents int64
	Method     string
}

// Booking represents a parking spot booking.
// Status, EndTime, TotalPriceCents and UpdatedAt are a projection of Events:
// every mutation appends exactly one event and applies it.
type Booking struct {
	ID        int64
	ListingID int64
	OwnerID   int64 // владелец парковочного места, копируется из объявления при создании
	RenterID  int64
	VehicleID int64 // идентичность для проверки пересечений

	StartTime time.Time
	EndTime   time.Time

	// Снимок тарифов на момент создания
	HourlyRate    float64
	TieredPricing pricing.Table

	PricingMethod   string
	TotalPriceCents int64
	Status          BookingStatus

	Version   int // оптимистичная блокировка
	Events    []Event
	CreatedAt time.Time
	UpdatedAt time.Time

	committed int // количество событий, уже сохраненных в хранилище
}

// NewBookingParams параметры создания бронирования
type NewBookingParams struct {
	ListingID     int64
	OwnerID       int64
	RenterID      int64
	VehicleID     int64
	StartTime     time.Time
	EndTime       time.Time
	HourlyRate    float64
	TieredPricing pricing.Table
	Status        BookingStatus
	Price         Price
}

// NewBooking creates a booking in an entry state (pending or approved)
// and stamps the initial status_change event
func NewBooking(params NewBookingParams, now time.Time) (*Booking, error) {
	if !params.EndTime.After(params.StartTime) {
		return nil, ErrInvalidTimeRange
	}
	if params.Status != StatusPending && params.Status != StatusApproved {
		return nil, &InvalidTransitionError{To: params.Status, Action: "create"}
	}

	b := &Booking{
		ListingID:     params.ListingID,
		OwnerID:       params.OwnerID,
		RenterID:      params.RenterID,
		VehicleID:     params.VehicleID,
		StartTime:     params.StartTime,
		HourlyRate:    params.HourlyRate,
		TieredPricing: params.TieredPricing,
		CreatedAt:     now,
	}

	start, end := params.StartTime, params.EndTime
	total := params.Price.TotalCents
	b.record(EventStatusChange, EventPayload{
		To:              params.Status,
		Trigger:         TriggerRequest,
		StartTime:       &start,
		EndTime:         &end,
		TotalPriceCents: &total,
		PricingMethod:   params.Price.Method,
	}, now)

	return b, nil
}

// Approve manual approval of a pending booking
func (b *Booking) Approve(now time.Time) error {
	return b.transition(StatusApproved, TriggerManual, "", now)
}

// Reject manual rejection of a pending booking
func (b *Booking) Reject(reason string, now time.Time) error {
	return b.transition(StatusRejected, TriggerManual, reason, now)
}

// Cancel explicit cancellation before the booking becomes active
func (b *Booking) Cancel(reason string, now time.Time) error {
	return b.transition(StatusCanceled, TriggerManual, reason, now)
}

// Activate moves an approved booking to active once its start has passed
func (b *Booking) Activate(now time.Time) error {
	if now.Before(b.StartTime) {
		return fmt.Errorf("%w: booking %d starts at %s", ErrNotDue, b.ID, b.StartTime.Format(time.RFC3339))
	}
	return b.transition(StatusActive, TriggerSweep, "", now)
}

// Complete moves an active booking to completed once its end has passed
func (b *Booking) Complete(now time.Time) error {
	if now.Before(b.EndTime) {
		return fmt.Errorf("%w: booking %d ends at %s", ErrNotDue, b.ID, b.EndTime.Format(time.RFC3339))
	}
	return b.transition(StatusCompleted, TriggerSweep, "", now)
}

// Extend moves the end of a non-terminal booking later and stores the re-computed price
func (b *Booking) Extend(newEnd time.Time, price Price, now time.Time) error {
	if b.Status.IsTerminal() {
		return &InvalidTransitionError{From: b.Status, To: b.Status, Action: "extend"}
	}
	if !newEnd.After(b.EndTime) {
		return fmt.Errorf("%w: new end %s is not after current end %s",
			ErrInvalidTimeRange, newEnd.Format(time.RFC3339), b.EndTime.Format(time.RFC3339))
	}

	prevEnd := b.EndTime
	total := price.TotalCents
	b.record(EventExtend, EventPayload{
		From:            b.Status,
		To:              b.Status,
		Trigger:         TriggerManual,
		PreviousEnd:     &prevEnd,
		EndTime:         &newEnd,
		TotalPriceCents: &total,
		PricingMethod:   price.Method,
	}, now)

	return nil
}

// FinishEnd returns the end a finish-now at now would set: now, but never past the booked end
func (b *Booking) FinishEnd(now time.Time) time.Time {
	if now.After(b.EndTime) {
		return b.EndTime
	}
	return now
}

// FinishNow completes an active booking at now.
// A nil price keeps the stored total (used when the commission is already paid out).
func (b *Booking) FinishNow(price *Price, now time.Time) error {
	if !CanTransition(b.Status, StatusCompleted) {
		return &InvalidTransitionError{From: b.Status, To: StatusCompleted, Action: "finish"}
	}
	if !now.After(b.StartTime) {
		return fmt.Errorf("%w: cannot finish before start %s", ErrInvalidTimeRange, b.StartTime.Format(time.RFC3339))
	}

	prevEnd := b.EndTime
	end := b.FinishEnd(now)
	payload := EventPayload{
		From:        b.Status,
		To:          StatusCompleted,
		Trigger:     TriggerManual,
		PreviousEnd: &prevEnd,
		EndTime:     &end,
	}
	if price != nil {
		total := price.TotalCents
		payload.TotalPriceCents = &total
		payload.PricingMethod = price.Method
	} else {
		payload.PriceLocked = true
	}

	b.record(EventFinishNow, payload, now)
	return nil
}

// UncommittedEvents returns events appended since the last save
func (b *Booking) UncommittedEvents() []Event {
	return b.Events[b.committed:]
}

// MarkCommitted marks all events as persisted
func (b *Booking) MarkCommitted() {
	b.committed = len(b.Events)
}

// Clone returns a deep copy of the booking
func (b *Booking) Clone() *Booking {
	c := *b
	c.Events = make([]Event, len(b.Events))
	copy(c.Events, b.Events)
	if b.TieredPricing != nil {
		c.TieredPricing = make(pricing.Table, len(b.TieredPricing))
		for k, v := range b.TieredPricing {
			c.TieredPricing[k] = v
		}
	}
	return &c
}

func (b *Booking) transition(to BookingStatus, trigger, reason string, now time.Time) error {
	if !CanTransition(b.Status, to) {
		return &InvalidTransitionError{From: b.Status, To: to}
	}

	b.record(EventStatusChange, EventPayload{
		From:    b.Status,
		To:      to,
		Trigger: trigger,
		Reason:  reason,
	}, now)

	return nil
}

// record appends a new event and applies it to the projection
func (b *Booking) record(eventType EventType, payload EventPayload, now time.Time) {
	e := Event{
		BookingID: b.ID,
		Seq:       len(b.Events) + 1,
		Type:      eventType,
		Payload:   payload,
		CreatedAt: now,
	}
	b.Events = append(b.Events, e)
	b.apply(e)
}

// apply updates the projection from a single event
func (b *Booking) apply(e Event) {
	p := e.Payload
	if p.To != "" {
		b.Status = p.To
	}
	if p.StartTime != nil {
		b.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		b.EndTime = *p.EndTime
	}
	if p.TotalPriceCents != nil {
		b.TotalPriceCents = *p.TotalPriceCents
	}
	if p.PricingMethod != "" {
		b.PricingMethod = p.PricingMethod
	}
	b.UpdatedAt = e.CreatedAt
}

// Replay rebuilds the booking projection from its event log
func Replay(base Booking, events []Event) *Booking {
	b := base
	b.Status = ""
	b.Events = nil
	b.TotalPriceCents = 0
	b.PricingMethod = ""

	for _, e := range events {
		b.Events = append(b.Events, e)
		b.apply(e)
	}
	b.committed = len(b.Events)

	return &b
}
