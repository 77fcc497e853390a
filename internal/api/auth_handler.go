package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pvgrid/helioserve/internal/api/shared"
	"github.com/pvgrid/helioserve/internal/config"
	"github.com/pvgrid/helioserve/internal/service"
	"github.com/pvgrid/helioserve/internal/service/auth"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	userService service.UserService
	jwtService  auth.JWTService
	authConfig  *config.AuthConfig
	timeFunc    func() time.Time
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	userService service.UserService,
	jwtService auth.JWTService,
	authConfig *config.AuthConfig,
) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtService:  jwtService,
		authConfig:  authConfig,
		timeFunc:    time.Now,
	}
}

// tokenPair generates an access and refresh token for the user along
// with the access token expiry.
func (h *AuthHandler) tokenPair(
	ctx context.Context,
	userID uuid.UUID,
) (access, refresh, expiresAt string, err error) {
	access, err = h.jwtService.GenerateToken(ctx, userID)
	if err != nil {
		return "", "", "", err
	}
	refresh, err = h.jwtService.GenerateRefreshToken(ctx, userID)
	if err != nil {
		return "", "", "", err
	}
	expiry := h.timeFunc().
		Add(time.Duration(h.authConfig.TokenLifetimeMinutes) * time.Minute)
	return access, refresh, expiry.UTC().Format(time.RFC3339), nil
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	user, err := h.userService.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	access, refresh, expiresAt, err := h.tokenPair(r.Context(), user.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(r.Context(), w, r,
			http.StatusInternalServerError, "Failed to generate authentication token", err)
		return
	}

	shared.RespondWithJSON(w, http.StatusCreated, AuthResponse{
		UserID:       user.ID,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	user, err := h.userService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	access, refresh, expiresAt, err := h.tokenPair(r.Context(), user.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(r.Context(), w, r,
			http.StatusInternalServerError, "Failed to generate authentication token", err)
		return
	}

	shared.RespondWithJSON(w, http.StatusOK, AuthResponse{
		UserID:       user.ID,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
	})
}

// RefreshToken handles POST /auth/refresh. A valid refresh token is
// exchanged for a fresh token pair.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	// Reject tokens for accounts that no longer exist
	if _, err := h.userService.GetUser(r.Context(), claims.UserID); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	access, refresh, expiresAt, err := h.tokenPair(r.Context(), claims.UserID)
	if err != nil {
		shared.RespondWithErrorAndLog(r.Context(), w, r,
			http.StatusInternalServerError, "Failed to generate authentication token", err)
		return
	}

	shared.RespondWithJSON(w, http.StatusOK, RefreshTokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
	})
}
