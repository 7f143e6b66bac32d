package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"marketplace-booking/config"
	"marketplace-booking/internal/delivery/http/handler"
	"marketplace-booking/internal/delivery/http/middleware"
	"marketplace-booking/internal/domain/entity"
	"marketplace-booking/pkg/jwt"
	"marketplace-booking/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func testRouter(t *testing.T) (http.Handler, *jwt.JWTService) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	v := validator.NewValidator()
	jwtSvc := jwt.NewJWTService(config.JWTConfig{Secret: "secret", AccessExpiry: time.Minute})

	r := NewRouter(
		log,
		handler.NewHealthHandler(nil),
		handler.NewAvailabilityHandler(nil, v, log),
		handler.NewBlockedSlotHandler(nil, v, log),
		handler.NewBookingHandler(nil, v, log),
		handler.NewContractorBookingHandler(nil, v, log),
		handler.NewAuditLogHandler(nil, log),
		middleware.NewAuthMiddleware(jwtSvc, nil, log),
		middleware.NewCORSMiddleware(),
		nil,
	)
	return r.Setup(), jwtSvc
}

func bearer(t *testing.T, jwtSvc *jwt.JWTService, role string) string {
	t.Helper()
	token, _, err := jwtSvc.GenerateAccessToken(uuid.New(), role+"@example.com", role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return "Bearer " + token
}

func TestRouterAccessControl(t *testing.T) {
	router, jwtSvc := testRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		role   string
		want   int
	}{
		{"health is public", http.MethodGet, "/api/v1/health", "", http.StatusOK},
		{"contractor routes need a token", http.MethodGet, "/api/v1/contractor/bookings", "", http.StatusUnauthorized},
		{"clients cannot reach contractor routes", http.MethodGet, "/api/v1/contractor/bookings", entity.RoleClient, http.StatusForbidden},
		{"admins cannot book", http.MethodGet, "/api/v1/me/bookings", entity.RoleAdmin, http.StatusForbidden},
		{"booking under the public services prefix", http.MethodPost, "/api/v1/services/5/bookings", "", http.StatusUnauthorized},
		{"quick create is not an id", http.MethodPost, "/api/v1/contractor/bookings/quick-create", "", http.StatusUnauthorized},
		{"non numeric booking id", http.MethodPatch, "/api/v1/contractor/bookings/abc/status", "", http.StatusNotFound},
		{"unknown path", http.MethodGet, "/api/v1/doctors", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.role != "" {
				req.Header.Set("Authorization", bearer(t, jwtSvc, tt.role))
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("%s %s: expected %d, got %d", tt.method, tt.path, tt.want, rec.Code)
			}
		})
	}
}

func TestRouterSetsRequestID(t *testing.T) {
	router, _ := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestRouterAnswersPreflight(t *testing.T) {
	router, _ := testRouter(t)

	for _, path := range []string{"/api/v1/contractor/bookings/1/status", "/api/v1/services/1/bookings"} {
		req := httptest.NewRequest(http.MethodOptions, path, nil)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
		if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Errorf("%s: missing allow-origin", path)
		}
		if !strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch) {
			t.Errorf("%s: allow-methods = %q", path, rec.Header().Get("Access-Control-Allow-Methods"))
		}
	}
}

func TestRouterSetsCORSHeadersOnErrors(t *testing.T) {
	router, _ := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/contractor/bookings", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Expose-Headers") != "X-Request-Id" {
		t.Errorf("expose headers = %q", rec.Header().Get("Access-Control-Expose-Headers"))
	}
}
