package domain

import "time"

// EventType type of a lifecycle event
type EventType string

const (
	EventStatusChange EventType = "status_change"
	EventExtend       EventType = "extend"
	EventFinishNow    EventType = "finish_now"
)

// Источники изменений
const (
	TriggerRequest = "request"
	TriggerManual  = "manual"
	TriggerSweep   = "sweep"
)

// Event immutable entry of the booking audit trail.
// Events are only appended, never rewritten or pruned.
type Event struct {
	ID        int64
	BookingID int64
	Seq       int // порядковый номер внутри бронирования, с 1
	Type      EventType
	Payload   EventPayload
	CreatedAt time.Time
}

// EventPayload data carried by an event; nil/empty fields did not change
type EventPayload struct {
	From            BookingStatus `json:"from,omitempty"`
	To              BookingStatus `json:"to,omitempty"`
	Trigger         string        `json:"trigger,omitempty"`
	Reason          string        `json:"reason,omitempty"`
	StartTime       *time.Time    `json:"startTime,omitempty"`
	PreviousEnd     *time.Time    `json:"previousEnd,omitempty"`
	EndTime         *time.Time    `json:"endTime,omitempty"`
	TotalPriceCents *int64        `json:"totalPriceCents,omitempty"`
	PricingMethod   string        `json:"pricingMethod,omitempty"`
	PriceLocked     bool          `json:"priceLocked,omitempty"`
}
