package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/tasker-api/internal/api/middleware"
	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/phrazzld/tasker-api/internal/config"
	"github.com/phrazzld/tasker-api/internal/mocks"
	"github.com/phrazzld/tasker-api/internal/service"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router   http.Handler
	users    *mocks.MockUserStore
	tasks    *mocks.MockTaskStore
	throttle *mocks.MockLoginThrottle
	emitter  *mocks.RecordingEmitter
}

type envOption func(*envConfig)

type envConfig struct {
	requireToken bool
	jwtService   *mocks.MockJWTService
}

func withRequiredToken() envOption {
	return func(c *envConfig) { c.requireToken = true }
}

func withJWTService(j *mocks.MockJWTService) envOption {
	return func(c *envConfig) { c.jwtService = j }
}

// newTestEnv wires the real services over in-memory stores behind the
// same routes and middleware the server mounts.
func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	cfg := envConfig{jwtService: &mocks.MockJWTService{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	env := &testEnv{
		users:    mocks.NewMockUserStore(),
		throttle: mocks.NewMockLoginThrottle(3),
		emitter:  &mocks.RecordingEmitter{},
	}
	env.tasks = mocks.NewMockTaskStore(env.users)

	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	transactor := &mocks.MockTransactor{}
	hasher := &mocks.MockPasswordHasher{}
	jwtService := cfg.jwtService

	userSvc := service.NewUserService(env.users, env.tasks, transactor, hasher, env.emitter, discard)
	authSvc := service.NewAuthService(userSvc, env.users, hasher, env.throttle, discard)
	taskSvc := service.NewTaskService(env.tasks, env.users, transactor, env.emitter, time.UTC, discard)

	authHandler := NewAuthHandler(authSvc, jwtService, config.AuthConfig{TokenLifetimeMinutes: 60})
	taskHandler := NewTaskHandler(taskSvc, userSvc)
	userHandler := NewUserHandler(userSvc)
	identity := middleware.NewIdentityBinder(jwtService, cfg.requireToken)

	r := chi.NewRouter()
	r.Use(middleware.NewTraceMiddleware(discard))
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", authHandler.Routes)
		r.Group(func(r chi.Router) {
			r.Use(identity.Bind)
			r.Route("/tasks", taskHandler.Routes)
			r.Route("/users", userHandler.Routes)
		})
	})
	env.router = r

	return env
}

func (e *testEnv) do(t *testing.T, method, target string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// register creates a user through the API and returns its id.
func (e *testEnv) register(t *testing.T, email, name string) int64 {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/auth/register", RegisterRequest{
		Email: email, Password: "password123", DisplayName: name,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp AuthResponse
	decode(t, w, &resp)
	return resp.User.ID
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var body shared.ErrorResponse
	decode(t, w, &body)
	return body
}
