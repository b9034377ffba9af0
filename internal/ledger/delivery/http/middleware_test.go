package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/retail-ledger/internal/ledger/domain"
	"github.com/tair/retail-ledger/pkg/auth"
)

func echoActor(t *testing.T, want domain.Actor) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		assert.True(t, ok)
		assert.Equal(t, want, actor)
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestActorMiddleware(t *testing.T) {
	verifier := auth.NewVerifier("test-secret")
	token, err := verifier.IssueToken(auth.Claims{UID: "u-7", DisplayName: "Zawadi", Location: "kisumu", Role: "user"}, time.Minute)
	require.NoError(t, err)

	want := domain.Actor{UID: "u-7", DisplayName: "Zawadi", Location: "kisumu", Role: domain.RoleClerk}
	h := ActorMiddleware(verifier)(echoActor(t, want))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid token", "Bearer " + token, http.StatusNoContent},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"tampered token", "Bearer " + token + "x", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/stock", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestActorMiddleware_RejectsUnknownRole(t *testing.T) {
	verifier := auth.NewVerifier("test-secret")
	token, err := verifier.IssueToken(auth.Claims{UID: "u-7", Role: "admin"}, time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/stock", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	ActorMiddleware(verifier)(echoActor(t, domain.Actor{})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }
	h := RequireRole(domain.RoleManager)(ok)

	tests := []struct {
		name   string
		actor  *domain.Actor
		status int
	}{
		{"manager", &domain.Actor{UID: "m", Role: domain.RoleManager}, http.StatusNoContent},
		{"clerk", &domain.Actor{UID: "c", Role: domain.RoleClerk}, http.StatusForbidden},
		{"anonymous", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/consistency/scan", nil)
			if tt.actor != nil {
				req = req.WithContext(WithActor(req.Context(), *tt.actor))
			}
			rec := httptest.NewRecorder()
			h(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(domain.KindValidation))
	assert.Equal(t, http.StatusNotFound, statusFor(domain.KindNotFound))
	assert.Equal(t, http.StatusConflict, statusFor(domain.KindConflict))
	assert.Equal(t, http.StatusInternalServerError, statusFor(domain.KindIntegrity))
	assert.Equal(t, http.StatusInternalServerError, statusFor(domain.KindInternal))
}
