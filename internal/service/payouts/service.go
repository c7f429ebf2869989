package payouts

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-ParkingService/internal/service/payouts/models"
)

// Service сервис чтения выплат
type Service struct {
	payoutRepo PayoutRepository
	logger     Logger
}

// NewService создает новый экземпляр сервиса выплат
func NewService(payoutRepo PayoutRepository, logger Logger) *Service {
	return &Service{
		payoutRepo: payoutRepo,
		logger:     logger,
	}
}

// ListByOwner возвращает выплаты владельца. Владелец видит только свои выплаты.
func (s *Service) ListByOwner(ctx context.Context, ownerID, userID int64) ([]models.PayoutResponse, error) {
	if ownerID != userID {
		s.logger.Warn("ListByOwner: user=%d requested payouts of owner=%d", userID, ownerID)
		return nil, ErrAccessDenied
	}

	payouts, err := s.payoutRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("ListByOwner: repository error for owner=%d: %v", ownerID, err)
		return nil, fmt.Errorf("%w: ListByOwner - repository error: %v", ErrInternal, err)
	}

	resp := make([]models.PayoutResponse, 0, len(payouts))
	for _, p := range payouts {
		resp = append(resp, models.FromDomainPayout(p))
	}

	s.logger.Info("ListByOwner: owner=%d payouts=%d", ownerID, len(resp))
	return resp, nil
}
