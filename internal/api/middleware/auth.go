package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/redact"
	"github.com/phrazzld/tasker-api/internal/service/auth"
)

// UserIDParam is the query parameter naming the acting user.
const UserIDParam = "userId"

// ErrIdentityMismatch is returned when a request names a user other than
// the one its access token was issued to.
var ErrIdentityMismatch = errors.New("user id does not match authenticated identity")

// IdentityBinder binds the user id of a valid bearer token to the request.
//
// Without a token the request passes through unchanged unless tokens are
// required. With a token, a userId query parameter naming a different user
// is rejected with 403 and a missing one is filled in from the token.
type IdentityBinder struct {
	jwtService   auth.JWTService
	requireToken bool
}

// NewIdentityBinder creates an IdentityBinder.
func NewIdentityBinder(jwtService auth.JWTService, requireToken bool) *IdentityBinder {
	return &IdentityBinder{
		jwtService:   jwtService,
		requireToken: requireToken,
	}
}

// Bind is the middleware handler.
func (m *IdentityBinder) Bind(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			if m.requireToken {
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), parts[1])
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Token has expired")
			case errors.Is(err, auth.ErrInvalidToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token",
					shared.WithElevatedLogLevel())
			default:
				log.Error("failed to validate token", redact.ErrorAttr(err))
				shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			}
			return
		}

		query := r.URL.Query()
		if raw := query.Get(UserIDParam); raw != "" {
			requested, err := strconv.ParseInt(raw, 10, 64)
			if err == nil && requested != claims.UserID {
				log.Warn("request names a different user than its token",
					slog.Int64("token_user_id", claims.UserID),
					slog.Int64("requested_user_id", requested))
				shared.RespondWithErrorAndLog(w, r, http.StatusForbidden,
					"User does not match the authenticated account", ErrIdentityMismatch,
					shared.WithElevatedLogLevel())
				return
			}
		} else {
			query.Set(UserIDParam, strconv.FormatInt(claims.UserID, 10))
			r.URL.RawQuery = query.Encode()
		}

		ctx := shared.WithUserID(r.Context(), claims.UserID)
		ctx = logger.WithLogger(ctx, log.With(slog.Int64("user_id", claims.UserID)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
