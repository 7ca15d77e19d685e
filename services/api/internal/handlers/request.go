package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/example/video-platform/internal/platform/api"
	"github.com/example/video-platform/internal/platform/httpserver"
	"github.com/example/video-platform/internal/platform/paging"
)

const maxRequestBodyBytes = 1 << 20 // 1 MiB

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON reads up to maxRequestBodyBytes from r.Body, decodes it into
// dst and validates it. On failure it writes a 400 response and returns false.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request, dst *T) bool {
	rid := httpserver.RequestIDFromContext(r.Context())
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(dst); err != nil {
		api.BadRequest(w, "INVALID_JSON", "invalid JSON", rid, nil)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			api.BadRequest(w, "INVALID_REQUEST", err.Error(), rid, nil)
			return false
		}
		details := make(map[string]any, len(fieldErrs))
		for _, fe := range fieldErrs {
			details[fe.Field()] = fieldMessage(fe)
		}
		api.BadRequest(w, "VALIDATION_FAILED", "request validation failed", rid, details)
		return false
	}
	return true
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters long", fe.Param())
	case "max":
		return fmt.Sprintf("must be no longer than %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "uuid":
		return "must be a UUID"
	default:
		return "is invalid: " + fe.Tag()
	}
}

// pathID returns the named URL parameter when it is a UUID. Keys are
// canonicalised so they compare equal to stored ids.
func pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := uuid.Parse(raw)
	if err != nil {
		api.BadRequest(w, "INVALID_ID", name+" must be a UUID", httpserver.RequestIDFromContext(r.Context()), nil)
		return "", false
	}
	return id.String(), true
}

// queryID is pathID for optional query parameters; empty is allowed.
func queryID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return "", true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		api.BadRequest(w, "INVALID_ID", name+" must be a UUID", httpserver.RequestIDFromContext(r.Context()), nil)
		return "", false
	}
	return id.String(), true
}

// pageRequest parses ?limit and ?cursor.
func (d *Deps) pageRequest(w http.ResponseWriter, r *http.Request) (paging.Request, bool) {
	q := r.URL.Query()
	req, err := paging.ParseRequest(q.Get("limit"), q.Get("cursor"))
	if err != nil {
		d.writeError(w, r, err)
		return paging.Request{}, false
	}
	return req, true
}
