package shared

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"display_name" validate:"max=5"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
		isEmpty bool
	}{
		{name: "valid", body: `{"email":"a@example.com","display_name":"x"}`},
		{name: "malformed", body: `{"email":`, wantErr: true},
		{name: "unknown field", body: `{"email":"a@example.com","admin":true}`, wantErr: true},
		{name: "empty body", body: "", wantErr: true, isEmpty: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var dst sampleRequest
			err := DecodeJSON(req, &dst)
			if !tc.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "a@example.com", dst.Email)
				return
			}
			require.Error(t, err)
			if tc.isEmpty {
				assert.ErrorIs(t, err, ErrEmptyBody)
			} else {
				assert.ErrorIs(t, err, ErrInvalidBody)
			}
		})
	}
}

func TestValidateRequest_TranslatesToFieldErrors(t *testing.T) {
	err := ValidateRequest(&sampleRequest{Email: "nope", DisplayName: "too long"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []domain.FieldError{
		{Field: "email", Message: "must be a well-formed email address"},
		{Field: "display_name", Message: "must be at most 5 characters"},
	}, verr.Fields)

	assert.NoError(t, ValidateRequest(&sampleRequest{Email: "a@example.com"}))
}

type selfValidating struct{ called bool }

func (s *selfValidating) Validate() error {
	s.called = true
	return nil
}

func TestValidateRequest_PrefersValidateMethod(t *testing.T) {
	v := &selfValidating{}
	require.NoError(t, ValidateRequest(v))
	assert.True(t, v.called)
}

func TestPositiveInt64(t *testing.T) {
	id, err := PositiveInt64("userId", " 12 ")
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	for _, raw := range []string{"", "0", "-3", "abc", "1.5"} {
		_, err := PositiveInt64("userId", raw)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr, raw)
		assert.Equal(t, "userId", verr.Fields[0].Field)
	}
}
