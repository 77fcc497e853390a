package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pvgrid/helioserve/internal/api/shared"
	"github.com/pvgrid/helioserve/internal/mocks"
	"github.com/pvgrid/helioserve/internal/service/auth"
)

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	tests := []struct {
		name       string
		authHeader string
		claims     *auth.Claims
		validate   error
		wantStatus int
		wantUserID bool
	}{
		{
			name:       "valid bearer token",
			authHeader: "Bearer good-token",
			claims:     &auth.Claims{UserID: userID, TokenType: "access"},
			wantStatus: http.StatusOK,
			wantUserID: true,
		},
		{
			name:       "lowercase bearer scheme",
			authHeader: "bearer good-token",
			claims:     &auth.Claims{UserID: userID, TokenType: "access"},
			wantStatus: http.StatusOK,
			wantUserID: true,
		},
		{
			name:       "missing header",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			authHeader: "Basic dXNlcjpwYXNz",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "bare token without scheme",
			authHeader: "good-token",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired token",
			authHeader: "Bearer stale-token",
			validate:   auth.ErrExpiredToken,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "refresh token rejected",
			authHeader: "Bearer refresh-token",
			validate:   auth.ErrWrongTokenType,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			authHeader: "Bearer garbage",
			validate:   auth.ErrInvalidToken,
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jwtService := &mocks.MockJWTService{
				Claims:      tt.claims,
				ValidateErr: tt.validate,
			}
			middleware := NewAuthMiddleware(jwtService)

			var gotUserID uuid.UUID
			var handlerCalled bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				gotUserID, _ = r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
			})

			req := httptest.NewRequest("GET", "/sites", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			recorder := httptest.NewRecorder()

			middleware.Authenticate(next).ServeHTTP(recorder, req)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			if tt.wantUserID {
				require.True(t, handlerCalled)
				assert.Equal(t, userID, gotUserID)
			} else {
				assert.False(t, handlerCalled)
			}
		})
	}
}
