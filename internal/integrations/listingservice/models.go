package listingservice

import (
	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/pricing"
)

// Listing модель объявления из ListingService.
// Сервис отдает режим подтверждения в двух формах: approvalMode ("auto"/"manual")
// и устаревший флаг requiresApproval.
type Listing struct {
	ID               int64         `json:"id"`
	OwnerID          int64         `json:"ownerId"`
	Title            string        `json:"title"`
	HourlyRate       float64       `json:"hourlyRate"`
	TieredPricing    pricing.Table `json:"tieredPricing,omitempty"`
	ApprovalMode     *string       `json:"approvalMode,omitempty"`
	RequiresApproval *bool         `json:"requiresApproval,omitempty"`
}

// Policy приводит объявление к доменной политике бронирования
func (l *Listing) Policy() *domain.ListingPolicy {
	var table pricing.Table
	if len(l.TieredPricing) > 0 {
		table = l.TieredPricing
	}

	return &domain.ListingPolicy{
		ListingID:     l.ID,
		OwnerID:       l.OwnerID,
		ApprovalMode:  normalizeApprovalMode(l.ApprovalMode, l.RequiresApproval),
		TieredPricing: table,
		HourlyRate:    l.HourlyRate,
	}
}

// normalizeApprovalMode явный approvalMode важнее устаревшего флага.
// Если не задано ничего, бронирования подтверждаются вручную.
func normalizeApprovalMode(mode *string, requiresApproval *bool) domain.ApprovalMode {
	if mode != nil {
		switch domain.ApprovalMode(*mode) {
		case domain.ApprovalAuto:
			return domain.ApprovalAuto
		case domain.ApprovalManual:
			return domain.ApprovalManual
		}
	}
	if requiresApproval != nil && !*requiresApproval {
		return domain.ApprovalAuto
	}
	return domain.ApprovalManual
}

// ErrorResponse модель ошибки от ListingService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
