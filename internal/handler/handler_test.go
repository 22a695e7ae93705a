package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/urbandrives/storefront/internal/application"
	"github.com/urbandrives/storefront/internal/backend"
	"github.com/urbandrives/storefront/internal/domain/rental"
	"github.com/urbandrives/storefront/internal/domain/session"
	"github.com/urbandrives/storefront/internal/platform/apperror"
	"github.com/urbandrives/storefront/internal/platform/kafka"
	"github.com/urbandrives/storefront/internal/platform/middleware"
	"github.com/urbandrives/storefront/internal/platform/response"
)

type staticTokens struct{}

func (staticTokens) Token(ctx context.Context) (string, error) { return "backend-token", nil }

type nopPublisher struct{}

func (nopPublisher) PublishEvent(ctx context.Context, topic, key string, event kafka.CloudEvent) error {
	return nil
}

// tokenResolver maps fixed session tokens to identities.
type tokenResolver map[string]*session.Current

func (r tokenResolver) Resolve(ctx context.Context, token string) (*session.Current, error) {
	if cur, ok := r[token]; ok {
		return cur, nil
	}
	return nil, apperror.NewUnauthorizedError("session expired")
}

var (
	customer = &session.Current{
		SessionID: uuid.New(),
		UserID:    uuid.New(),
		Name:      "John Doe",
		Email:     "john@example.com",
		Role:      session.RoleCustomer,
	}
	admin = &session.Current{
		SessionID: uuid.New(),
		UserID:    uuid.New(),
		Name:      "Ops",
		Email:     "ops@example.com",
		Role:      session.RoleAdmin,
	}
)

type testServer struct {
	router *gin.Engine
	hits   *atomic.Int32
}

func newTestServer(t *testing.T, backendHandler http.HandlerFunc) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hits := &atomic.Int32{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		backendHandler(w, r)
	}))
	t.Cleanup(srv.Close)

	log := zap.NewNop()
	gateway := backend.NewClient(srv.URL, 5*time.Second, staticTokens{}, log)
	pricing := rental.NewDailyRatePricing()

	bookings := application.NewBookingService(gateway, pricing, nopPublisher{}, log)
	vehicles := application.NewVehicleService(gateway, pricing, log)
	reports := application.NewReportService(gateway, log)
	payments := application.NewPaymentService(nil, gateway, nil, nopPublisher{}, "", log)

	router := gin.New()
	router.Use(middleware.SessionMiddleware(tokenResolver{"customer": customer, "admin": admin}))
	api := router.Group("")
	NewVehicleHandler(vehicles).RegisterRoutes(api)
	NewBookingHandler(bookings, nil).RegisterRoutes(api)
	NewAdminHandler(bookings, reports, payments).RegisterRoutes(api)
	NewPaymentHandler(payments, "whsec_test", log).RegisterRoutes(api)

	return &testServer{router: router, hits: hits}
}

func (s *testServer) do(method, path, token, body string) (*httptest.ResponseRecorder, response.Envelope) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env response.Envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestVehicleHandler_UnknownCarRedirectsToListing(t *testing.T) {
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/cars/404", r.URL.Path)
		writeJSON(w, http.StatusNotFound, `{"error":"Car not found"}`)
	})

	w, env := ts.do(http.MethodGet, "/api/cars/404", "customer", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "not_found", env.Error.Code)
	assert.Equal(t, "/cars", env.Error.Redirect)
}

func TestVehicleHandler_MalformedIDNeverReachesBackend(t *testing.T) {
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected backend call %s", r.URL.Path)
	})

	w, env := ts.do(http.MethodGet, "/api/cars/abc", "customer", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "/cars", env.Error.Redirect)
	assert.Zero(t, ts.hits.Load())
}

func TestVehicleHandler_RequiresSession(t *testing.T) {
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	w, _ := ts.do(http.MethodGet, "/api/cars/available", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = ts.do(http.MethodGet, "/api/cars/available", "stale", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, ts.hits.Load())
}

func TestBookingHandler_InvalidFormSendsNothing(t *testing.T) {
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected backend call %s", r.URL.Path)
	})

	body := `{"carId":1,"customerName":"","customerEmail":"john@example.com","startDate":"2030-06-01","endDate":"2030-06-03"}`
	w, env := ts.do(http.MethodPost, "/api/bookings", "customer", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Please fill in all required fields", env.Error.Message)
	assert.Zero(t, ts.hits.Load())
}

func TestBookingHandler_CancelRefetchesBooking(t *testing.T) {
	var deleted atomic.Bool
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/bookings/99":
			status := "CONFIRMED"
			if deleted.Load() {
				status = "CANCELLED"
			}
			writeJSON(w, http.StatusOK, `{"id":99,"customerName":"John Doe","customerEmail":"john@example.com",`+
				`"startDate":"2030-06-01","endDate":"2030-06-03","totalAmount":100.00,"status":"`+status+`"}`)
		case r.Method == http.MethodDelete && r.URL.Path == "/api/bookings/99":
			deleted.Store(true)
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected backend call %s %s", r.Method, r.URL.Path)
		}
	})

	w, env := ts.do(http.MethodDelete, "/api/bookings/99", "customer", "")

	require.Equal(t, http.StatusOK, w.Code)
	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "CANCELLED", data["status"])
	assert.Equal(t, false, data["canCancel"])
	assert.Equal(t, int32(3), ts.hits.Load())
}

func TestBookingHandler_OtherCustomersBookingIsHidden(t *testing.T) {
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":7,"customerName":"Jane","customerEmail":"jane@example.com",`+
			`"startDate":"2030-06-01","endDate":"2030-06-03","totalAmount":100.00,"status":"PENDING"}`)
	})

	w, env := ts.do(http.MethodGet, "/api/bookings/7", "customer", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "/booking", env.Error.Redirect)
}

func TestAdminHandler_CustomerIsForbidden(t *testing.T) {
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected backend call %s", r.URL.Path)
	})

	w, env := ts.do(http.MethodGet, "/api/admin/bookings", "customer", "")

	assert.Equal(t, http.StatusForbidden, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "forbidden", env.Error.Code)
}

func TestAdminHandler_ListsAllBookings(t *testing.T) {
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/bookings", r.URL.Path)
		writeJSON(w, http.StatusOK, `[{"id":1,"customerEmail":"a@example.com","startDate":"2030-06-01","endDate":"2030-06-02","totalAmount":50,"status":"PENDING"},`+
			`{"id":2,"customerEmail":"b@example.com","startDate":"2030-06-01","endDate":"2030-06-04","totalAmount":150,"status":"ACTIVE"}]`)
	})

	w, env := ts.do(http.MethodGet, "/api/admin/bookings", "admin", "")

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 2, env.Meta.Total)
}

func TestPaymentHandler_WebhookRejectsBadSignature(t *testing.T) {
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", strings.NewReader(`{"type":"checkout.session.completed"}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
