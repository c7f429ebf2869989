package cancel_booking

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ParkingService/internal/api/middleware"
	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/service/bookings/models"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeService struct {
	id  int64
	got *models.CancelBookingRequest
	err error
}

func (f *fakeService) Cancel(_ context.Context, bookingID int64, req *models.CancelBookingRequest) (*models.BookingResponse, error) {
	f.id = bookingID
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.BookingResponse{ID: bookingID, Status: string(domain.StatusCanceled)}, nil
}

func serve(svc *fakeService, path, payload string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/bookings/{bookingId}/cancel", NewHandler(svc, nopLogger{}).Handle).Methods(http.MethodPatch)

	var req *http.Request
	if payload == "" {
		req = httptest.NewRequest(http.MethodPatch, path, nil)
	} else {
		req = httptest.NewRequest(http.MethodPatch, path, strings.NewReader(payload))
	}
	req = req.WithContext(middleware.WithUserID(req.Context(), 3))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandle_WithoutBody(t *testing.T) {
	svc := &fakeService{}

	rec := serve(svc, "/bookings/12/cancel", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(12), svc.id)
	require.NotNil(t, svc.got)
	assert.Equal(t, int64(3), svc.got.UserID)
	assert.Empty(t, svc.got.CancellationReason)
}

func TestHandle_WithReason(t *testing.T) {
	svc := &fakeService{}

	rec := serve(svc, "/bookings/12/cancel", `{"cancellationReason":"plans changed"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "plans changed", svc.got.CancellationReason)
}

func TestHandle_Errors(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, serve(&fakeService{}, "/bookings/abc/cancel", "").Code)
	assert.Equal(t, http.StatusConflict, serve(&fakeService{err: domain.ErrAlreadyConsolidated}, "/bookings/12/cancel", "").Code)
	assert.Equal(t, http.StatusConflict,
		serve(&fakeService{err: &domain.InvalidTransitionError{From: domain.StatusActive, To: domain.StatusCanceled}}, "/bookings/12/cancel", "").Code)
}
