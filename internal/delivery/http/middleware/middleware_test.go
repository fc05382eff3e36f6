package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clinic-front-desk/config"
	"clinic-front-desk/internal/domain/entity"
	"clinic-front-desk/pkg/actor"
	"clinic-front-desk/pkg/jwt"
	"clinic-front-desk/pkg/metrics"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func newJWT() *jwt.JWTService {
	return jwt.NewJWTService(config.JWTConfig{Secret: "middleware-secret", AccessExpiry: time.Hour})
}

func TestAuthenticate(t *testing.T) {
	svc := newJWT()
	m := NewAuthMiddleware(svc)
	userID := uuid.New()

	var seen actor.Actor
	protected := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = actor.FromContext(r.Context())
		id, ok := GetUserIDFromContext(r.Context())
		assert.True(t, ok)
		assert.Equal(t, userID, id)
		w.WriteHeader(http.StatusNoContent)
	}))

	token, err := svc.GenerateAccessToken(userID, "alice", string(entity.RoleFrontDesk))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-token", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	assert.Equal(t, "alice", seen.Username)
	assert.Equal(t, string(entity.RoleFrontDesk), seen.Role)
}

func TestRequireRole(t *testing.T) {
	handler := RequireAdmin(okHandler())

	serve := func(role string, withActor bool) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if withActor {
			req = req.WithContext(actor.WithActor(req.Context(), actor.Actor{UserID: uuid.New(), Role: role}))
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, serve("admin", true))
	assert.Equal(t, http.StatusForbidden, serve("front_desk", true))
	assert.Equal(t, http.StatusUnauthorized, serve("", false))
}

func TestCORS(t *testing.T) {
	restricted := NewCORSMiddleware([]string{"https://desk.example.com"}).Handle(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://desk.example.com")
	rec := httptest.NewRecorder()
	restricted.ServeHTTP(rec, req)
	assert.Equal(t, "https://desk.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	restricted.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	open := NewCORSMiddleware([]string{"*"}).Handle(okHandler())
	req = httptest.NewRequest(http.MethodOptions, "/", nil)
	rec = httptest.NewRecorder()
	open.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDAndLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	handler := RequestID(Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/doctors", nil)
	req.Header.Set(HeaderXRequestID, "req-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get(HeaderXRequestID))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-123", entry["request_id"])
	assert.Equal(t, "warning", entry["level"])
	assert.EqualValues(t, 404, entry["status"])

	// generated when absent
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(rec.Header().Get(HeaderXRequestID))
	assert.NoError(t, err)
}

func TestRecovery(t *testing.T) {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})

	handler := Recovery(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(RateLimiterConfig{Rate: 0.001, Burst: 2})
	handler := limiter.Limit(okHandler())

	serve := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = ip + ":4000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, serve("10.0.0.1"))
	assert.Equal(t, http.StatusOK, serve("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, serve("10.0.0.1"))
	// other clients have their own bucket
	assert.Equal(t, http.StatusOK, serve("10.0.0.2"))
}

func TestRateLimiterIgnoresSpoofedForwardedFor(t *testing.T) {
	limiter := NewRateLimiter(RateLimiterConfig{Rate: 0.001, Burst: 1})
	handler := limiter.Limit(okHandler())

	allowed := 0
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "203.0.113.7:5000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code == http.StatusOK {
			allowed++
		}
	}

	assert.Equal(t, 1, allowed)
}

func TestRateLimiterTrustedProxy(t *testing.T) {
	limiter := NewRateLimiter(RateLimiterConfig{
		Rate:           0.001,
		Burst:          1,
		TrustedProxies: []string{"10.0.0.0/8", "127.0.0.1", "not-an-ip"},
	})
	handler := limiter.Limit(okHandler())

	serve := func(remote, forwarded string) int {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = remote
		if forwarded != "" {
			req.Header.Set("X-Forwarded-For", forwarded)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	// behind the proxy, clients are told apart by the forwarded address
	assert.Equal(t, http.StatusOK, serve("10.1.2.3:80", "198.51.100.1"))
	assert.Equal(t, http.StatusOK, serve("10.1.2.3:80", "198.51.100.2"))
	assert.Equal(t, http.StatusTooManyRequests, serve("127.0.0.1:80", "198.51.100.1"))

	// a client prepending hops still lands on the address the proxy saw
	assert.Equal(t, http.StatusTooManyRequests, serve("10.1.2.3:80", "192.0.2.99, 198.51.100.2"))

	// trusted hops on the right are skipped
	assert.Equal(t, http.StatusOK, serve("10.1.2.3:80", "198.51.100.3, 10.9.9.9"))
	assert.Equal(t, http.StatusTooManyRequests, serve("10.1.2.3:80", "198.51.100.3"))
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	m := metrics.NewMetrics("mw_test")
	router := mux.NewRouter()
	router.Use(Metrics(m))
	router.Handle("/doctors/{id}", okHandler()).Methods(http.MethodGet)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/doctors/"+uuid.NewString(), nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, float64(3), testutil.ToFloat64(m.HTTPRequests.WithLabelValues(http.MethodGet, "/doctors/{id}", "200")))
}
