package api

import (
	"errors"
	"time"

	"cloud.google.com/go/civil"
	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/service"
)

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,max=255,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DisplayName string `json:"display_name" validate:"required,max=50"`
}

// Validate implements request validation.
func (r *RegisterRequest) Validate() error {
	return shared.TranslateValidation(shared.Struct(r))
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,max=255,email"`
	Password string `json:"password" validate:"required"`
}

// Validate implements request validation.
func (r *LoginRequest) Validate() error {
	return shared.TranslateValidation(shared.Struct(r))
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
	User      UserResponse `json:"user"`
}

// UserResponse is the public projection of a user. It never carries the
// password hash.
type UserResponse struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// CreateUserRequest is the body of POST /api/users.
type CreateUserRequest struct {
	Email       string `json:"email" validate:"required,max=255,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DisplayName string `json:"display_name" validate:"required,max=50"`
}

// Validate implements request validation.
func (r *CreateUserRequest) Validate() error {
	return shared.TranslateValidation(shared.Struct(r))
}

// UpdateUserRequest is the body of PUT /api/users/{id}.
type UpdateUserRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=50"`
}

// Validate implements request validation.
func (r *UpdateUserRequest) Validate() error {
	return shared.TranslateValidation(shared.Struct(r))
}

// UpdatePasswordRequest is the body of PUT /api/users/{id}/password.
type UpdatePasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// Validate implements request validation.
func (r *UpdatePasswordRequest) Validate() error {
	return shared.TranslateValidation(shared.Struct(r))
}

// TaskRequest is the body of task create and update. Status and priority
// are matched case-insensitively; when omitted they default to TODO and MEDIUM.
type TaskRequest struct {
	Title       string      `json:"title" validate:"required,max=200"`
	Description string      `json:"description" validate:"max=5000"`
	DueDate     *civil.Date `json:"due_date"`
	Status      string      `json:"status"`
	Priority    string      `json:"priority"`

	input service.TaskInput
}

// Validate checks the tags and the enum values, and prepares ToInput.
func (r *TaskRequest) Validate() error {
	verr := &domain.ValidationError{}
	if err := shared.TranslateValidation(shared.Struct(r)); err != nil {
		var fields *domain.ValidationError
		if !errors.As(err, &fields) {
			return err
		}
		verr.Fields = append(verr.Fields, fields.Fields...)
	}

	r.input = service.TaskInput{
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate,
	}
	if r.Status != "" {
		status, err := domain.ParseTaskStatus(r.Status)
		if err != nil {
			verr.Add("status", "must be one of TODO, IN_PROGRESS, DONE")
		}
		r.input.Status = status
	}
	if r.Priority != "" {
		priority, err := domain.ParseTaskPriority(r.Priority)
		if err != nil {
			verr.Add("priority", "must be one of LOW, MEDIUM, HIGH")
		}
		r.input.Priority = priority
	}

	return verr.OrNil()
}

// ToInput returns the service input. Call it after a successful Validate.
func (r *TaskRequest) ToInput() service.TaskInput {
	return r.input
}

// StatusUpdateRequest is the optional JSON body of a status change.
type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}

// TaskResponse is the public projection of a task with its owner's name.
type TaskResponse struct {
	ID          int64               `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	DueDate     *civil.Date         `json:"due_date"`
	Status      domain.TaskStatus   `json:"status"`
	Priority    domain.TaskPriority `json:"priority"`
	UserID      int64               `json:"user_id"`
	DisplayName string              `json:"display_name"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func toTaskResponse(t *domain.Task, displayName string) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Status:      t.Status,
		Priority:    t.Priority,
		UserID:      t.UserID,
		DisplayName: displayName,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toTaskResponses(tasks []*domain.Task, displayName string) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t, displayName))
	}
	return out
}

// EmailExistsResponse answers GET /api/auth/exists.
type EmailExistsResponse struct {
	Exists bool `json:"exists"`
}

// CountResponse carries a single count.
type CountResponse struct {
	Count int64 `json:"count"`
}

// HealthResponse answers GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}
