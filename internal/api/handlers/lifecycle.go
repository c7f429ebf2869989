package handlers

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/service/bookings"
)

const (
	msgBookingNotFound     = "бронирование не найдено"
	msgForbidden           = "доступ запрещен"
	msgInvalidInput        = "некорректные параметры запроса"
	msgInvalidTimeRange    = "новое время окончания должно быть позже текущего"
	msgVehicleConflict     = "у транспортного средства уже есть бронирование на это время"
	msgInvalidTransition   = "недопустимая смена статуса бронирования"
	msgAlreadyConsolidated = "комиссия по бронированию уже выплачена"
	msgConcurrentModified  = "бронирование было изменено параллельно, повторите запрос"
)

// RespondBookingError переводит ошибку сервиса бронирований в HTTP ответ
// и возвращает записанный статус
func RespondBookingError(w http.ResponseWriter, err error) int {
	if RespondBookingConflict(w, msgVehicleConflict, err) {
		return http.StatusConflict
	}

	switch {
	case errors.Is(err, bookings.ErrBookingNotFound):
		RespondNotFound(w, msgBookingNotFound)
		return http.StatusNotFound

	case errors.Is(err, bookings.ErrAccessDenied):
		RespondForbidden(w, msgForbidden)
		return http.StatusForbidden

	case errors.Is(err, bookings.ErrInvalidInput):
		RespondBadRequest(w, msgInvalidInput)
		return http.StatusBadRequest

	case errors.Is(err, domain.ErrInvalidTimeRange):
		RespondBadRequest(w, msgInvalidTimeRange)
		return http.StatusBadRequest

	case errors.Is(err, domain.ErrInvalidTransition):
		RespondConflict(w, msgInvalidTransition)
		return http.StatusConflict

	case errors.Is(err, domain.ErrAlreadyConsolidated):
		RespondConflict(w, msgAlreadyConsolidated)
		return http.StatusConflict

	case errors.Is(err, bookings.ErrConcurrentModification):
		RespondConflict(w, msgConcurrentModified)
		return http.StatusConflict

	default:
		RespondInternalError(w)
		return http.StatusInternalServerError
	}
}
