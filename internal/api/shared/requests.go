package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/tasker-api/internal/domain"
)

// maxBodyBytes caps request bodies read by DecodeJSON.
const maxBodyBytes = 1 << 20

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var (
	// ErrEmptyBody is returned by DecodeJSON when the request has no body.
	ErrEmptyBody = errors.New("request body is empty")

	// ErrInvalidBody wraps JSON syntax, type and unknown-field errors.
	ErrInvalidBody = errors.New("invalid request body")
)

// DecodeJSON decodes the request body into v, rejecting unknown fields.
func DecodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return nil
}

// ValidateRequest validates v with its own Validate method when it has one,
// otherwise with its validator struct tags.
func ValidateRequest(v interface{}) error {
	if validatable, ok := v.(interface{ Validate() error }); ok {
		return validatable.Validate()
	}
	return TranslateValidation(validate.Struct(v))
}

// Struct runs the shared validator over v's struct tags.
func Struct(v interface{}) error {
	return validate.Struct(v)
}

// TranslateValidation converts validator.ValidationErrors into a
// *domain.ValidationError keyed by JSON field names. Other errors pass through.
func TranslateValidation(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &domain.ValidationError{}
	for _, fe := range verrs {
		out.Add(fe.Field(), fieldMessage(fe))
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be blank"
	case "email":
		return "must be a well-formed email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return "must be one of " + fe.Param()
	}
	return "is invalid"
}

// PositiveInt64 parses raw as an id. The field name is used in the
// validation error returned for malformed or non-positive values.
func PositiveInt64(field, raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(field, "must be a positive integer")
	}
	return id, nil
}
