package get_owner_payouts

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
	"github.com/m04kA/SMC-ParkingService/internal/api/middleware"
	"github.com/m04kA/SMC-ParkingService/internal/service/payouts"
)

const (
	msgInvalidOwnerID = "некорректный ID владельца"
	msgMissingUserID  = "отсутствует ID пользователя"
	msgForbidden      = "доступ запрещен"
)

type Handler struct {
	service PayoutService
	logger  Logger
}

func NewHandler(service PayoutService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/owners/{ownerId}/payouts
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	ownerID, err := strconv.ParseInt(mux.Vars(r)["ownerId"], 10, 64)
	if err != nil || ownerID <= 0 {
		h.logger.Warn("GET /owners/{id}/payouts - Invalid owner ID: %s", mux.Vars(r)["ownerId"])
		handlers.RespondBadRequest(w, msgInvalidOwnerID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /owners/{id}/payouts - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	list, err := h.service.ListByOwner(r.Context(), ownerID, userID)
	if err != nil {
		switch {
		case errors.Is(err, payouts.ErrAccessDenied):
			h.logger.Warn("GET /owners/{id}/payouts - Access denied: owner_id=%d, user_id=%d", ownerID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /owners/{id}/payouts - Failed to list payouts: owner_id=%d, error=%v", ownerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /owners/{id}/payouts - Found %d payouts for owner_id=%d", len(list), ownerID)
	handlers.RespondJSON(w, http.StatusOK, list)
}
