package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/phrazzld/tasker-api/internal/mocks"
	"github.com/phrazzld/tasker-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	called   bool
	userID   int64
	bound    bool
	rawQuery string
}

func captureHandler(c *captured) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.called = true
		c.userID, c.bound = shared.UserIDFromContext(r.Context())
		c.rawQuery = r.URL.Query().Get(UserIDParam)
		w.WriteHeader(http.StatusOK)
	})
}

func TestIdentityBinder_Bind(t *testing.T) {
	tests := []struct {
		name         string
		requireToken bool
		header       string
		target       string
		wantStatus   int
		wantCalled   bool
		wantBound    int64
		wantQuery    string
	}{
		{
			name:       "no token passes through",
			target:     "/api/tasks?userId=5",
			wantStatus: http.StatusOK,
			wantCalled: true,
			wantQuery:  "5",
		},
		{
			name:         "no token rejected when required",
			requireToken: true,
			target:       "/api/tasks?userId=5",
			wantStatus:   http.StatusUnauthorized,
		},
		{
			name:       "malformed header",
			header:     "Token abc",
			target:     "/api/tasks?userId=5",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid token",
			header:     "Bearer garbage",
			target:     "/api/tasks?userId=5",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "matching user id",
			header:     "Bearer token-for-5",
			target:     "/api/tasks?userId=5",
			wantStatus: http.StatusOK,
			wantCalled: true,
			wantBound:  5,
			wantQuery:  "5",
		},
		{
			name:       "mismatched user id",
			header:     "Bearer token-for-5",
			target:     "/api/tasks?userId=6",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "missing user id filled from token",
			header:     "bearer token-for-9",
			target:     "/api/tasks",
			wantStatus: http.StatusOK,
			wantCalled: true,
			wantBound:  9,
			wantQuery:  "9",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			binder := NewIdentityBinder(&mocks.MockJWTService{}, tc.requireToken)
			var c captured
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()

			binder.Bind(captureHandler(&c)).ServeHTTP(w, req)

			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Equal(t, tc.wantCalled, c.called)
			if !tc.wantCalled {
				var body shared.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tc.wantStatus, body.Status)
				return
			}
			assert.Equal(t, tc.wantQuery, c.rawQuery)
			if tc.wantBound != 0 {
				assert.True(t, c.bound)
				assert.Equal(t, tc.wantBound, c.userID)
			} else {
				assert.False(t, c.bound)
			}
		})
	}
}

func TestIdentityBinder_ExpiredAndUnexpectedErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{name: "expired", err: auth.ErrExpiredToken, wantStatus: http.StatusUnauthorized, wantMsg: "Token has expired"},
		{name: "unexpected", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantMsg: "Authentication error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			jwtSvc := &mocks.MockJWTService{
				ValidateTokenFn: func(context.Context, string) (*auth.Claims, error) { return nil, tc.err },
			}
			var c captured
			req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
			req.Header.Set("Authorization", "Bearer whatever")
			w := httptest.NewRecorder()

			NewIdentityBinder(jwtSvc, false).Bind(captureHandler(&c)).ServeHTTP(w, req)

			assert.False(t, c.called)
			assert.Equal(t, tc.wantStatus, w.Code)
			var body shared.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.wantMsg, body.Error)
		})
	}
}
