package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/phrazzld/tasker-api/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserHandler_CreateAndGet(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/users", CreateUserRequest{
		Email: "Hana@Example.com", Password: "password123", DisplayName: "Hana",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created UserResponse
	decode(t, w, &created)
	assert.Equal(t, "hana@example.com", created.Email)
	assert.NotContains(t, w.Body.String(), "password")

	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var byID UserResponse
	decode(t, w, &byID)
	assert.Equal(t, created, byID)

	w = env.do(t, http.MethodGet, "/api/users/email/HANA@example.com", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var byEmail UserResponse
	decode(t, w, &byEmail)
	assert.Equal(t, created.ID, byEmail.ID)

	w = env.do(t, http.MethodPost, "/api/users", CreateUserRequest{
		Email: "hana@example.com", Password: "password123", DisplayName: "Again",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPost, "/api/users", CreateUserRequest{
		Email: longEmail, Password: "password123", DisplayName: "Long",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	require.Len(t, body.Details, 1)
	assert.Equal(t, "email", body.Details[0].Field)
	assert.Equal(t, "must be at most 255 characters", body.Details[0].Message)
}

func TestUserHandler_NotFound(t *testing.T) {
	env := newTestEnv(t)

	for _, target := range []string{"/api/users/99", "/api/users/email/ghost@example.com"} {
		w := env.do(t, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, target)
		assert.Equal(t, "User not found", decodeError(t, w).Error)
	}

	w := env.do(t, http.MethodPut, "/api/users/99", UpdateUserRequest{DisplayName: "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodDelete, "/api/users/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserHandler_UpdateDisplayNameAndPassword(t *testing.T) {
	env := newTestEnv(t)
	id := env.register(t, "ivan@example.com", "Ivan")

	w := env.do(t, http.MethodPut, fmt.Sprintf("/api/users/%d", id), UpdateUserRequest{DisplayName: "Ivan K"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated UserResponse
	decode(t, w, &updated)
	assert.Equal(t, "Ivan K", updated.DisplayName)

	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/users/%d", id), UpdateUserRequest{DisplayName: ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/users/%d/password", id),
		UpdatePasswordRequest{NewPassword: "new-password-1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/auth/login", LoginRequest{Email: "ivan@example.com", Password: "password123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code, "old password no longer works")

	w = env.do(t, http.MethodPost, "/api/auth/login", LoginRequest{Email: "ivan@example.com", Password: "new-password-1"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/users/%d/password", id), UpdatePasswordRequest{NewPassword: "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserHandler_DeleteCascadesToTasks(t *testing.T) {
	env := newTestEnv(t)
	id := env.register(t, "jun@example.com", "Jun")
	env.createTask(t, id, TaskRequest{Title: "One"})
	env.createTask(t, id, TaskRequest{Title: "Two"})

	w := env.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", id), nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, 0, env.tasks.Len())
	assert.Equal(t, events.TypeUserDeleted, env.emitter.Last().Type)

	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserHandler_Count(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@example.com", "A")
	env.register(t, "b@example.com", "B")

	w := env.do(t, http.MethodGet, "/api/users/count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp CountResponse
	decode(t, w, &resp)
	assert.Equal(t, int64(2), resp.Count)
}

func TestUserHandler_TokenMustMatchPathForChanges(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")
	aliceToken := fmt.Sprintf("Bearer token-for-%d", alice)

	w := env.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", bob), nil, "Authorization", aliceToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d", bob), nil, "Authorization", aliceToken)
	assert.Equal(t, http.StatusOK, w.Code, "reads stay open")

	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/users/%d", alice),
		UpdateUserRequest{DisplayName: "Alice B"}, "Authorization", aliceToken)
	assert.Equal(t, http.StatusOK, w.Code)
}
