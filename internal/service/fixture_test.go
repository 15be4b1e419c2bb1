package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/mocks"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

type fixture struct {
	users      *mocks.MockUserStore
	tasks      *mocks.MockTaskStore
	transactor *mocks.MockTransactor
	hasher     *mocks.MockPasswordHasher
	throttle   *mocks.MockLoginThrottle
	emitter    *mocks.RecordingEmitter
	clock      *time.Time

	userSvc *UserServiceImpl
	taskSvc *TaskServiceImpl
	authSvc *AuthServiceImpl
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		users:      mocks.NewMockUserStore(),
		transactor: &mocks.MockTransactor{},
		hasher:     &mocks.MockPasswordHasher{},
		throttle:   mocks.NewMockLoginThrottle(3),
		emitter:    &mocks.RecordingEmitter{},
	}
	f.tasks = mocks.NewMockTaskStore(f.users)

	now := fixedNow
	f.clock = &now
	clock := func() time.Time { return *f.clock }

	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.userSvc = NewUserService(f.users, f.tasks, f.transactor, f.hasher, f.emitter, discard)
	f.userSvc.now = clock
	f.taskSvc = NewTaskService(f.tasks, f.users, f.transactor, f.emitter, time.UTC, discard)
	f.taskSvc.now = clock
	f.authSvc = NewAuthService(f.userSvc, f.users, f.hasher, f.throttle, discard)

	return f
}

// advance moves the fixture clock forward.
func (f *fixture) advance(d time.Duration) {
	*f.clock = f.clock.Add(d)
}

func (f *fixture) register(t *testing.T, email, name string) *domain.User {
	t.Helper()
	user, err := f.authSvc.Register(context.Background(), RegisterInput{
		Email: email, Password: "pw12345678", DisplayName: name,
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) createTask(t *testing.T, userID int64, in TaskInput) *domain.Task {
	t.Helper()
	task, err := f.taskSvc.CreateTask(context.Background(), in, userID)
	require.NoError(t, err)
	f.advance(time.Second)
	return task
}

func titles(tasks []*domain.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.Title
	}
	return out
}
