package run_payouts

import (
	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// OwnerFailure владелец, чьи комиссии не удалось обработать; они остаются до следующего запуска
type OwnerFailure struct {
	OwnerID int64
	Error   string
}

// Result итог запуска
type Result struct {
	RunID         uuid.UUID
	Payouts       []*domain.Payout
	Failed        []OwnerFailure
	TotalNetCents int64
}
