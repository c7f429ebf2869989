package models

import (
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/pricing"
)

// Request модели

// RejectBookingRequest запрос на отклонение бронирования владельцем
type RejectBookingRequest struct {
	UserID int64  `json:"userId"`
	Reason string `json:"reason"`
}

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	UserID             int64  `json:"userId"`
	CancellationReason string `json:"cancellationReason"`
}

// ExtendBookingRequest запрос на продление бронирования
type ExtendBookingRequest struct {
	UserID int64     `json:"userId"`
	NewEnd time.Time `json:"newEnd"`
}

// ListBookingsRequest запрос списка бронирований арендатора или владельца
type ListBookingsRequest struct {
	UserID    int64
	SubjectID int64   // renter_id или owner_id из URL
	Status    *string // опциональный фильтр
}

// Response модели

// EventResponse запись журнала бронирования
type EventResponse struct {
	Seq             int        `json:"seq"`
	Type            string     `json:"type"`
	From            string     `json:"from,omitempty"`
	To              string     `json:"to,omitempty"`
	Trigger         string     `json:"trigger,omitempty"`
	Reason          string     `json:"reason,omitempty"`
	EndTime         *time.Time `json:"endTime,omitempty"`
	TotalPriceCents *int64     `json:"totalPriceCents,omitempty"`
	PriceLocked     bool       `json:"priceLocked,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// BookingResponse ответ с данными бронирования
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
	TotalPrice      string    `json:"totalPrice"` // "21.00"
	PricingMethod   string    `json:"pricingMethod"`
	Version         int       `json:"version"`

	Events []EventResponse `json:"events,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse список бронирований без журналов событий
type BookingListResponse struct {
	Bookings []*BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:              b.ID,
		ListingID:       b.ListingID,
		OwnerID:         b.OwnerID,
		RenterID:        b.RenterID,
		VehicleID:       b.VehicleID,
		StartTime:       b.StartTime,
		EndTime:         b.EndTime,
		Status:          string(b.Status),
		TotalPriceCents: b.TotalPriceCents,
		TotalPrice:      pricing.FormatCents(b.TotalPriceCents),
		PricingMethod:   b.PricingMethod,
		Version:         b.Version,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}

	if len(b.Events) > 0 {
		resp.Events = make([]EventResponse, len(b.Events))
		for i, e := range b.Events {
			resp.Events[i] = EventResponse{
				Seq:             e.Seq,
				Type:            string(e.Type),
				From:            string(e.Payload.From),
				To:              string(e.Payload.To),
				Trigger:         e.Payload.Trigger,
				Reason:          e.Payload.Reason,
				EndTime:         e.Payload.EndTime,
				TotalPriceCents: e.Payload.TotalPriceCents,
				PriceLocked:     e.Payload.PriceLocked,
				CreatedAt:       e.CreatedAt,
			}
		}
	}

	return resp
}
