package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
	"github.com/m04kA/SMC-ParkingService/internal/api/middleware"
	"github.com/m04kA/SMC-ParkingService/internal/domain"
	createBooking "github.com/m04kA/SMC-ParkingService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidInput       = "некорректные параметры бронирования"
	msgInvalidTimeRange   = "время окончания должно быть позже времени начала"
	msgBookingInPast      = "окно бронирования уже прошло"
	msgListingNotFound    = "объявление не найдено"
	msgOwnListing         = "нельзя забронировать собственное место"
	msgConflict           = "у транспортного средства уже есть бронирование на это время"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(userID))
	if err != nil {
		if handlers.RespondBookingConflict(w, msgConflict, err) {
			h.logger.Warn("POST /bookings - Conflict: user_id=%d, vehicle_id=%d", userID, req.VehicleID)
			return
		}

		switch {
		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, domain.ErrInvalidTimeRange):
			h.logger.Warn("POST /bookings - Invalid time range: %v", err)
			handlers.RespondBadRequest(w, msgInvalidTimeRange)

		case errors.Is(err, createBooking.ErrBookingInPast):
			h.logger.Warn("POST /bookings - Booking in past: %v", err)
			handlers.RespondBadRequest(w, msgBookingInPast)

		case errors.Is(err, createBooking.ErrListingNotFound):
			h.logger.Warn("POST /bookings - Listing not found: listing_id=%d", req.ListingID)
			handlers.RespondNotFound(w, msgListingNotFound)

		case errors.Is(err, createBooking.ErrOwnListing):
			h.logger.Warn("POST /bookings - Own listing: user_id=%d, listing_id=%d", userID, req.ListingID)
			handlers.RespondForbidden(w, msgOwnListing)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: user_id=%d, listing_id=%d, error=%v",
				userID, req.ListingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, user_id=%d, status=%s",
		result.ID, userID, result.Status)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
