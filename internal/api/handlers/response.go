package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

const msgInternalError = "внутренняя ошибка сервера"

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
}

// ConflictBooking пересекающееся бронирование в ответе 409
type ConflictBooking struct {
	ID        int64     `json:"id"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Status    string    `json:"status"`
}

// ConflictResponse тело ответа при пересечении бронирований
type ConflictResponse struct {
	Error     string            `json:"error"`
	VehicleID int64             `json:"vehicleId"`
	Conflicts []ConflictBooking `json:"conflicts"`
}

// RespondJSON пишет JSON ответ с указанным статусом
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// RespondError пишет ответ с ошибкой
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Error: message})
}

func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, message)
}

func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusUnauthorized, message)
}

func RespondForbidden(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusForbidden, message)
}

func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, message)
}

// RespondConflict 409 без деталей: недопустимый переход, выплаченная комиссия, гонка версий
func RespondConflict(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusConflict, message)
}

func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, msgInternalError)
}

// RespondBookingConflict 409 со списком пересекающихся бронирований.
// Возвращает false, если err не ConflictError.
func RespondBookingConflict(w http.ResponseWriter, message string, err error) bool {
	var conflictErr *domain.ConflictError
	if !errors.As(err, &conflictErr) {
		return false
	}

	resp := ConflictResponse{
		Error:     message,
		VehicleID: conflictErr.VehicleID,
		Conflicts: make([]ConflictBooking, 0, len(conflictErr.Conflicts)),
	}
	for _, b := range conflictErr.Conflicts {
		resp.Conflicts = append(resp.Conflicts, ConflictBooking{
			ID:        b.ID,
			StartTime: b.StartTime,
			EndTime:   b.EndTime,
			Status:    string(b.Status),
		})
	}

	RespondJSON(w, http.StatusConflict, resp)
	return true
}

// DecodeJSON декодирует тело запроса; неизвестные поля запрещены
func DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

// DecodeOptionalJSON как DecodeJSON, но пустое тело не считается ошибкой
func DecodeOptionalJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}
