package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"cloud.google.com/go/civil"
)

// TaskStatus is the workflow state of a task. Any status may move to any other.
type TaskStatus string

// Valid task statuses.
const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

// TaskStatuses lists every valid status.
var TaskStatuses = []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusDone}

// IsValid reports whether s is a known status.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// ParseTaskStatus converts a case-insensitive string into a TaskStatus.
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTaskStatus, s)
	}
	return status, nil
}

// TaskPriority is the urgency of a task.
type TaskPriority string

// Valid task priorities.
const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
)

// TaskPriorities lists every valid priority from least to most severe.
var TaskPriorities = []TaskPriority{TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh}

// IsValid reports whether p is a known priority.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// Rank orders priorities by severity: HIGH > MEDIUM > LOW.
// Unknown values rank below LOW.
func (p TaskPriority) Rank() int {
	switch p {
	case TaskPriorityHigh:
		return 2
	case TaskPriorityMedium:
		return 1
	case TaskPriorityLow:
		return 0
	}
	return -1
}

// ParseTaskPriority converts a case-insensitive string into a TaskPriority.
func ParseTaskPriority(s string) (TaskPriority, error) {
	priority := TaskPriority(strings.ToUpper(strings.TrimSpace(s)))
	if !priority.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTaskPriority, s)
	}
	return priority, nil
}

const (
	// MaxTitleLength is the longest accepted title, in characters.
	MaxTitleLength = 200

	// MaxDescriptionLength is the longest accepted description, in characters.
	MaxDescriptionLength = 5000
)

// Task is a unit of work owned by a single user.
type Task struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	DueDate     *civil.Date  `json:"due_date,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	UserID      int64        `json:"user_id"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// TaskDetails carries the caller-editable fields of a task.
// Empty Status or Priority fall back to TODO and MEDIUM.
type TaskDetails struct {
	Title       string
	Description string
	DueDate     *civil.Date
	Status      TaskStatus
	Priority    TaskPriority
}

func (d TaskDetails) withDefaults() TaskDetails {
	if d.Status == "" {
		d.Status = TaskStatusTodo
	}
	if d.Priority == "" {
		d.Priority = TaskPriorityMedium
	}
	return d
}

// NewTask builds a not-yet-persisted task owned by userID with defaults
// applied and both timestamps set to now.
func NewTask(userID int64, details TaskDetails, now time.Time) (*Task, error) {
	details = details.withDefaults()
	task := &Task{
		Title:       details.Title,
		Description: details.Description,
		DueDate:     details.DueDate,
		Status:      details.Status,
		Priority:    details.Priority,
		UserID:      userID,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks the task's fields and reports every failure at once.
func (t *Task) Validate() error {
	verr := &ValidationError{}

	if strings.TrimSpace(t.Title) == "" {
		verr.Add("title", "must not be blank")
	} else if utf8.RuneCountInString(t.Title) > MaxTitleLength {
		verr.Add("title", "must be at most 200 characters")
	}

	if utf8.RuneCountInString(t.Description) > MaxDescriptionLength {
		verr.Add("description", "must be at most 5000 characters")
	}

	if t.DueDate != nil && !t.DueDate.IsValid() {
		verr.Add("due_date", "must be a valid calendar date")
	}

	if !t.Status.IsValid() {
		verr.Add("status", "must be one of TODO, IN_PROGRESS, DONE")
	}

	if !t.Priority.IsValid() {
		verr.Add("priority", "must be one of LOW, MEDIUM, HIGH")
	}

	if t.UserID <= 0 {
		verr.Add("user_id", "must reference a user")
	}

	return verr.OrNil()
}

// Update replaces every editable field and refreshes UpdatedAt.
// The task is left untouched when the new details are invalid.
func (t *Task) Update(details TaskDetails, now time.Time) error {
	details = details.withDefaults()
	updated := *t
	updated.Title = details.Title
	updated.Description = details.Description
	updated.DueDate = details.DueDate
	updated.Status = details.Status
	updated.Priority = details.Priority
	updated.UpdatedAt = now.UTC()

	if err := updated.Validate(); err != nil {
		return err
	}

	*t = updated
	return nil
}

// SetStatus changes only the status and refreshes UpdatedAt.
func (t *Task) SetStatus(status TaskStatus, now time.Time) error {
	if !status.IsValid() {
		return NewValidationError("status", "must be one of TODO, IN_PROGRESS, DONE")
	}
	t.Status = status
	t.UpdatedAt = now.UTC()
	return nil
}

// IsOwnedBy reports whether userID owns the task.
func (t *Task) IsOwnedBy(userID int64) bool {
	return t.UserID == userID
}

// IsOverdue reports whether the task has a due date strictly before today.
func (t *Task) IsOverdue(today civil.Date) bool {
	return t.DueDate != nil && t.DueDate.Before(today)
}

// IsFuture reports whether the task has a due date strictly after today.
func (t *Task) IsFuture(today civil.Date) bool {
	return t.DueDate != nil && t.DueDate.After(today)
}

// MatchesKeyword reports whether keyword occurs, ignoring case, in the title
// or the description. An empty keyword matches every task.
func (t *Task) MatchesKeyword(keyword string) bool {
	k := strings.ToLower(keyword)
	return strings.Contains(strings.ToLower(t.Title), k) ||
		strings.Contains(strings.ToLower(t.Description), k)
}
