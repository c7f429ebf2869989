package approve_booking

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
	"github.com/m04kA/SMC-ParkingService/internal/api/middleware"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgMissingUserID    = "отсутствует ID пользователя"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/bookings/{bookingId}/approve
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(mux.Vars(r)["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/approve - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PATCH /bookings/{id}/approve - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Подтвердить может только владелец места
	booking, err := h.service.Approve(r.Context(), bookingID, userID)
	if err != nil {
		status := handlers.RespondBookingError(w, err)
		if status == http.StatusInternalServerError {
			h.logger.Error("PATCH /bookings/{id}/approve - Failed to approve booking: booking_id=%d, error=%v", bookingID, err)
		} else {
			h.logger.Warn("PATCH /bookings/{id}/approve - booking_id=%d, user_id=%d, status=%d: %v", bookingID, userID, status, err)
		}
		return
	}

	h.logger.Info("PATCH /bookings/{id}/approve - Booking approved: booking_id=%d, owner_id=%d", bookingID, userID)
	handlers.RespondJSON(w, http.StatusOK, booking)
}
