package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/tasker-api/internal/api/middleware"
	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/service"
)

// UserHandler serves the user directory under /api/users.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetUser handles GET /api/users/{id}.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetUser(r.Context(), id)
	respondUser(w, r, http.StatusOK, user, err)
}

// GetUserByEmail handles GET /api/users/email/{email}.
func (h *UserHandler) GetUserByEmail(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if email == "" {
		HandleAPIError(w, r, domain.NewValidationError("email", "must not be blank"), "")
		return
	}

	user, err := h.userService.GetUserByEmail(r.Context(), email)
	respondUser(w, r, http.StatusOK, user, err)
}

// CreateUser handles POST /api/users.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.CreateUser(r.Context(), req.Email, req.Password, req.DisplayName)
	respondUser(w, r, http.StatusCreated, user, err)
}

// UpdateUser handles PUT /api/users/{id}, which changes the display name.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.selfID(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.UpdateDisplayName(r.Context(), id, req.DisplayName)
	respondUser(w, r, http.StatusOK, user, err)
}

// UpdatePassword handles PUT /api/users/{id}/password.
func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := h.selfID(w, r)
	if !ok {
		return
	}

	var req UpdatePasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.userService.UpdatePassword(r.Context(), id, req.NewPassword); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	user, err := h.userService.GetUser(r.Context(), id)
	respondUser(w, r, http.StatusOK, user, err)
}

// DeleteUser handles DELETE /api/users/{id}. The user's tasks go with them.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.selfID(w, r)
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CountUsers handles GET /api/users/count.
func (h *UserHandler) CountUsers(w http.ResponseWriter, r *http.Request) {
	n, err := h.userService.CountUsers(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, CountResponse{Count: n})
}

// selfID reads the {id} path parameter. When a token is bound to the
// request, it must name the same user.
func (h *UserHandler) selfID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return 0, false
	}
	if bound, ok := shared.UserIDFromContext(r.Context()); ok && bound != id {
		HandleAPIError(w, r, middleware.ErrIdentityMismatch, "")
		return 0, false
	}
	return id, true
}

func respondUser(w http.ResponseWriter, r *http.Request, status int, user *domain.User, err error) {
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, status, toUserResponse(user))
}
