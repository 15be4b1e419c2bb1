package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/phrazzld/tasker-api/internal/config"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/service"
	"github.com/phrazzld/tasker-api/internal/service/auth"
)

// tokenType is the scheme clients use in the Authorization header.
const tokenType = "Bearer"

// AuthHandler handles registration, login and email lookups.
type AuthHandler struct {
	authService   service.AuthService
	jwtService    auth.JWTService
	tokenLifetime time.Duration
	timeFunc      func() time.Time
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	authService service.AuthService,
	jwtService auth.JWTService,
	authConfig config.AuthConfig,
) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		jwtService:    jwtService,
		tokenLifetime: time.Duration(authConfig.TokenLifetimeMinutes) * time.Minute,
		timeFunc:      time.Now,
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.authService.Register(r.Context(), service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.respondWithToken(w, r, http.StatusCreated, user)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.authService.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.respondWithToken(w, r, http.StatusOK, user)
}

// EmailExists handles GET /api/auth/exists?email=.
func (h *AuthHandler) EmailExists(w http.ResponseWriter, r *http.Request) {
	email, ok := optionalQuery(r, "email")
	if !ok {
		HandleAPIError(w, r, domain.NewValidationError("email", "must not be blank"), "")
		return
	}

	exists, err := h.authService.EmailExists(r.Context(), email)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, EmailExistsResponse{Exists: exists})
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, user *domain.User) {
	issuedAt := h.timeFunc()
	token, err := h.jwtService.GenerateToken(r.Context(), user.ID)
	if err != nil {
		logger.FromContext(r.Context()).Error("failed to generate token",
			slog.String("error", err.Error()),
			slog.Int64("user_id", user.ID))
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", err)
		return
	}

	resp := AuthResponse{
		Token:     token,
		TokenType: tokenType,
		User:      toUserResponse(user),
	}
	if h.tokenLifetime > 0 {
		expiresAt := issuedAt.Add(h.tokenLifetime).UTC()
		resp.ExpiresAt = &expiresAt
	}

	shared.RespondWithJSON(w, r, status, resp)
}
