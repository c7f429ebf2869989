package run_sweep

import (
	"net/http"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
)

type Handler struct {
	sweeper Sweeper
	logger  Logger
}

func NewHandler(sweeper Sweeper, logger Logger) *Handler {
	return &Handler{
		sweeper: sweeper,
		logger:  logger,
	}
}

// SweepResponse итог прохода
type SweepResponse struct {
	Now       time.Time `json:"now"`
	Scanned   int       `json:"scanned"`
	Activated int       `json:"activated"`
	Completed int       `json:"completed"`
	Failed    int       `json:"failed"`
	Deferred  int       `json:"deferred"`
}

// Handle POST /internal/sweep (служебный listener)
// Параллельный вызов во время идущего прохода получает его результат.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	res, err := h.sweeper.Sweep(r.Context())
	if err != nil {
		h.logger.Error("POST /internal/sweep - Sweep failed: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, SweepResponse{
		Now:       res.Now,
		Scanned:   res.Scanned,
		Activated: res.Activated,
		Completed: res.Completed,
		Failed:    res.Failed,
		Deferred:  res.Deferred,
	})
}
