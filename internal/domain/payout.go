package domain

import (
	"time"

	"github.com/google/uuid"
)

// Payout consolidated owner payout for one aggregation run
type Payout struct {
	ID            int64
	RunID         uuid.UUID
	OwnerID       int64
	TotalNetCents int64
	CommissionIDs []int64
	CreatedAt     time.Time
}
