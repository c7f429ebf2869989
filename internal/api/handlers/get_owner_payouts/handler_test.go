package get_owner_payouts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ParkingService/internal/api/middleware"
	"github.com/m04kA/SMC-ParkingService/internal/service/payouts"
	"github.com/m04kA/SMC-ParkingService/internal/service/payouts/models"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeService struct{}

func (fakeService) ListByOwner(_ context.Context, ownerID, userID int64) ([]models.PayoutResponse, error) {
	if ownerID != userID {
		return nil, payouts.ErrAccessDenied
	}
	return []models.PayoutResponse{{ID: 1, OwnerID: ownerID, TotalNetCents: 1785, TotalNet: "17.85"}}, nil
}

func serve(path string, userID int64) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/owners/{ownerId}/payouts", NewHandler(fakeService{}, nopLogger{}).Handle)
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandle(t *testing.T) {
	rec := serve("/owners/2/payouts", 2)

	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.PayoutResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "17.85", list[0].TotalNet)
}

func TestHandle_Errors(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, serve("/owners/2/payouts", 3).Code)
	assert.Equal(t, http.StatusBadRequest, serve("/owners/x/payouts", 3).Code)
	assert.Equal(t, http.StatusBadRequest, serve("/owners/0/payouts", 3).Code)
}
