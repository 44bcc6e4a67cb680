package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/identity-hub/identity-service/internal/core/domain"
)

func TestHTTPErrorHandler_StatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", domain.NewValidationError(domain.CodeInvalidEmail, "bad"), http.StatusBadRequest},
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"invalid token", fmt.Errorf("%w: expired", domain.ErrInvalidToken), http.StatusUnauthorized},
		{"revoked", domain.ErrTokenRevoked, http.StatusUnauthorized},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"not found", domain.ErrUserNotFound, http.StatusNotFound},
		{"duplicate email", domain.ErrDuplicateEmail, http.StatusConflict},
		{"duplicate username", domain.ErrDuplicateUsername, http.StatusConflict},
		{"exhausted", domain.ErrUsernameExhausted, http.StatusConflict},
		{"echo error", echo.NewHTTPError(http.StatusTooManyRequests, "slow down"), http.StatusTooManyRequests},
		{"signing key", domain.ErrSigningKeyMissing, http.StatusInternalServerError},
		{"role not found", fmt.Errorf("assign role: %w", domain.ErrRoleNotFound), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			NewHTTPErrorHandler(zerolog.Nop())(tt.err, c)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestHTTPErrorHandler_ValidationBody(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	verr := &domain.ValidationError{}
	verr.Add(domain.CodeInvalidEmail, "email is invalid")
	verr.Add(domain.CodePasswordTooShort, "password too short")
	NewHTTPErrorHandler(zerolog.Nop())(fmt.Errorf("register: %w", verr), c)

	var body struct {
		Errors []domain.FieldError `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(body.Errors) != 2 || body.Errors[1].Code != domain.CodePasswordTooShort {
		t.Fatalf("unexpected errors: %+v", body.Errors)
	}
}

func TestHTTPErrorHandler_HidesInternalDetails(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("mongo: connection refused 10.0.0.5"), c)

	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["error"] != "internal server error" {
		t.Fatalf("expected generic message, got %v", body["error"])
	}
}
