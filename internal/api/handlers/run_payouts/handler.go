package run_payouts

import (
	"net/http"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
	"github.com/m04kA/SMC-ParkingService/internal/pricing"
	"github.com/m04kA/SMC-ParkingService/internal/service/payouts/models"
)

type Handler struct {
	scheduler PayoutScheduler
	logger    Logger
}

func NewHandler(scheduler PayoutScheduler, logger Logger) *Handler {
	return &Handler{
		scheduler: scheduler,
		logger:    logger,
	}
}

// FailureResponse владелец, которому выплата не прошла
type FailureResponse struct {
	OwnerID int64  `json:"ownerId"`
	Error   string `json:"error"`
}

// RunResponse итог запуска выплат
type RunResponse struct {
	RunID         string                  `json:"runId"`
	Payouts       []models.PayoutResponse `json:"payouts"`
	Failed        []FailureResponse       `json:"failed"`
	TotalNetCents int64                   `json:"totalNetCents"`
	TotalNet      string                  `json:"totalNet"`
}

// Handle POST /internal/payouts/run (служебный listener)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	res, err := h.scheduler.RunNow(r.Context())
	if err != nil {
		h.logger.Error("POST /internal/payouts/run - Payout run failed: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	resp := RunResponse{
		RunID:         res.RunID.String(),
		Payouts:       make([]models.PayoutResponse, 0, len(res.Payouts)),
		Failed:        make([]FailureResponse, 0, len(res.Failed)),
		TotalNetCents: res.TotalNetCents,
		TotalNet:      pricing.FormatCents(res.TotalNetCents),
	}
	for _, p := range res.Payouts {
		resp.Payouts = append(resp.Payouts, models.FromDomainPayout(p))
	}
	for _, f := range res.Failed {
		resp.Failed = append(resp.Failed, FailureResponse{OwnerID: f.OwnerID, Error: f.Error})
	}

	h.logger.Info("POST /internal/payouts/run - run_id=%s, payouts=%d, failed=%d",
		resp.RunID, len(resp.Payouts), len(resp.Failed))
	handlers.RespondJSON(w, http.StatusOK, resp)
}
