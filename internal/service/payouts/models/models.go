package models

import (
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/pricing"
)

// PayoutResponse выплата владельцу
type PayoutResponse struct {
	ID            int64     `json:"id"`
	RunID         string    `json:"runId"`
	OwnerID       int64     `json:"ownerId"`
	TotalNetCents int64     `json:"totalNetCents"`
	TotalNet      string    `json:"totalNet"`
	CommissionIDs []int64   `json:"commissionIds"`
	CreatedAt     time.Time `json:"createdAt"`
}

// FromDomainPayout конвертирует domain модель в DTO
func FromDomainPayout(p *domain.Payout) PayoutResponse {
	return PayoutResponse{
		ID:            p.ID,
		RunID:         p.RunID.String(),
		OwnerID:       p.OwnerID,
		TotalNetCents: p.TotalNetCents,
		TotalNet:      pricing.FormatCents(p.TotalNetCents),
		CommissionIDs: p.CommissionIDs,
		CreatedAt:     p.CreatedAt,
	}
}
