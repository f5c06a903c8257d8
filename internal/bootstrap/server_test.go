package bootstrap

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Domenick1991/travelbook/api"
	"github.com/Domenick1991/travelbook/config"
	"github.com/Domenick1991/travelbook/internal/cache"
	"github.com/Domenick1991/travelbook/internal/domain"
	"github.com/Domenick1991/travelbook/internal/service/bookings"
	"github.com/Domenick1991/travelbook/internal/service/cancellation"
	"github.com/Domenick1991/travelbook/internal/service/reservation"
	"github.com/Domenick1991/travelbook/internal/travelapi"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const callerToken = "caller-token"

// fakeTravelAPI answers the refund endpoints for booking 7 and only accepts
// the caller's token.
func fakeTravelAPI(t *testing.T, submitted *int32, lastBody *domain.RefundRequest) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /refunds/calculate/7", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+callerToken, r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(domain.RefundCalculation{
			BookingID:           7,
			OriginalAmount:      500,
			RefundPercentage:    80,
			CancellationFee:     14.29,
			RefundAmount:        385.71,
			HoursUntilDeparture: 30,
			PolicyApplied:       "24-72 hours before departure",
			CanCancel:           true,
		})
	})
	mux.HandleFunc("POST /refunds/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+callerToken, r.Header.Get("Authorization"))
		atomic.AddInt32(submitted, 1)
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, lastBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"refund_id": 99, "booking_id": 7, "refund_amount": "385.71", "status": "pending"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestRouter(baseURL string) *gin.Engine {
	logger := zap.NewNop()
	client := travelapi.New(baseURL, "service-token", 5*time.Second)

	cfg := &config.Config{Env: "test"}
	return NewRouter(cfg, logger, Handlers{
		Bookings:        api.NewBookingHandler(bookings.NewBookingsService(client, cache.NewViewCache(time.Minute), 2, logger)),
		Cancellations:   api.NewCancellationHandler(cancellation.NewCancellationService(client, cache.NewMemoryStore(time.Hour), time.Minute, logger)),
		Refunds:         api.NewRefundHandler(client),
		ServiceBookings: api.NewServiceBookingHandler(reservation.NewReservationService(client, 2, logger)),
	})
}

func do(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return doAs(t, router, callerToken, method, path, body)
}

func doAs(t *testing.T, router http.Handler, token, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_CancellationFlow(t *testing.T) {
	var submitted int32
	var lastBody domain.RefundRequest
	router := newTestRouter(fakeTravelAPI(t, &submitted, &lastBody).URL)

	w := do(t, router, http.MethodPost, "/api/v1/cancellations", map[string]interface{}{
		"booking_id":        7,
		"booking_reference": "BK-2025-001",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var dialog struct {
		ID        string `json:"id"`
		Step      string `json:"step"`
		Breakdown *struct {
			TimeUntilDeparture string `json:"time_until_departure"`
			RefundAmount       string `json:"refund_amount"`
		} `json:"breakdown"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dialog))
	assert.Equal(t, "calculate", dialog.Step)

	w = do(t, router, http.MethodPost, "/api/v1/cancellations/"+dialog.ID+"/calculate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dialog))
	assert.Equal(t, "confirm", dialog.Step)
	require.NotNil(t, dialog.Breakdown)
	assert.Equal(t, "1 day 6h", dialog.Breakdown.TimeUntilDeparture)
	assert.Equal(t, "$385.71", dialog.Breakdown.RefundAmount)

	w = do(t, router, http.MethodPost, "/api/v1/cancellations/"+dialog.ID+"/confirm", nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, int32(1), atomic.LoadInt32(&submitted))
	assert.Equal(t, domain.RefundRequest{
		BookingID:    7,
		RefundReason: "Customer requested cancellation",
		Notes:        "Booking reference: BK-2025-001",
	}, lastBody)

	// The dialog was reset, so confirming again is refused without a call.
	w = do(t, router, http.MethodPost, "/api/v1/cancellations/"+dialog.ID+"/confirm", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&submitted))

	w = do(t, router, http.MethodDelete, "/api/v1/cancellations/"+dialog.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRouter_AnonymousCallsRejected(t *testing.T) {
	var submitted int32
	var lastBody domain.RefundRequest
	router := newTestRouter(fakeTravelAPI(t, &submitted, &lastBody).URL)

	w := do(t, router, http.MethodPost, "/api/v1/cancellations", map[string]interface{}{
		"booking_id":        7,
		"booking_reference": "BK-2025-001",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var dialog struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dialog))
	w = do(t, router, http.MethodPost, "/api/v1/cancellations/"+dialog.ID+"/calculate", nil)
	require.Equal(t, http.StatusOK, w.Code)

	testCases := []struct {
		method string
		path   string
	}{
		{method: http.MethodPost, path: "/api/v1/cancellations/" + dialog.ID + "/confirm"},
		{method: http.MethodPost, path: "/api/v1/cancellations/" + dialog.ID + "/calculate"},
		{method: http.MethodGet, path: "/api/v1/bookings/user/u1"},
		{method: http.MethodGet, path: "/api/v1/refunds/user/u1"},
	}
	for _, tc := range testCases {
		w := doAs(t, router, "", tc.method, tc.path, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.path)
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&submitted))
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter("http://127.0.0.1:1")

	w := doAs(t, router, "", http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodGet, "/api/v1/cancellations/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
