package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dom/heritage-gallery/internal/api/middleware"
	"github.com/dom/heritage-gallery/internal/platform/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubAuthenticator map[string]uuid.UUID

func (s stubAuthenticator) Authenticate(ctx context.Context, bearer string) (uuid.UUID, error) {
	if id, ok := s[bearer]; ok {
		return id, nil
	}
	return uuid.Nil, errors.New("unknown token")
}

func TestAuth(t *testing.T) {
	userID := uuid.New()
	authn := stubAuthenticator{"good-token": userID}

	var seen uuid.UUID
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := middleware.GetUserID(r.Context())
		assert.True(t, ok)
		seen = id
		w.WriteHeader(http.StatusNoContent)
	})
	handler := middleware.Auth(authn, logger.NewNop())(next)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"valid bearer", "Bearer good-token", http.StatusNoContent, ""},
		{"lowercase scheme", "bearer good-token", http.StatusNoContent, ""},
		{"missing header", "", http.StatusUnauthorized, `{"message":"Authorization header required"}`},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, `{"message":"Invalid authorization header"}`},
		{"empty token", "Bearer  ", http.StatusUnauthorized, `{"message":"Invalid authorization header"}`},
		{"rejected token", "Bearer bad-token", http.StatusUnauthorized, `{"message":"Invalid or expired token"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = uuid.Nil
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
				assert.Equal(t, uuid.Nil, seen)
			} else {
				assert.Equal(t, userID, seen)
			}
		})
	}
}

func TestWithUserID(t *testing.T) {
	id := uuid.New()
	got, ok := middleware.GetUserID(middleware.WithUserID(context.Background(), id))
	assert.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = middleware.GetUserID(context.Background())
	assert.False(t, ok)
}
