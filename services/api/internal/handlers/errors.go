package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/example/video-platform/internal/platform/api"
	"github.com/example/video-platform/internal/platform/httpserver"
	"github.com/example/video-platform/internal/platform/paging"
	"github.com/example/video-platform/services/api/internal/store"
)

// writeError maps store and paging errors to the JSON error envelope.
// Anything unrecognised is logged and reported as 500.
func (d *Deps) writeError(w http.ResponseWriter, r *http.Request, err error) {
	rid := httpserver.RequestIDFromContext(r.Context())
	var ve *paging.ValidationError
	switch {
	case errors.Is(err, paging.ErrInvalidLimit):
		api.BadRequest(w, "INVALID_LIMIT", err.Error(), rid, nil)
	case errors.As(err, &ve):
		api.BadRequest(w, "INVALID_REQUEST", err.Error(), rid, map[string]any{ve.Field: ve.Reason})
	case errors.Is(err, paging.ErrInvalidCursor):
		api.BadRequest(w, "INVALID_CURSOR", "cursor is malformed", rid, nil)
	case errors.Is(err, store.ErrNotFound):
		api.NotFound(w, "NOT_FOUND", err.Error(), rid)
	case errors.Is(err, store.ErrForbidden):
		api.Forbidden(w, "FORBIDDEN", err.Error(), rid)
	case errors.Is(err, store.ErrConflict):
		api.Conflict(w, "CONFLICT", err.Error(), rid, nil)
	case errors.Is(err, store.ErrInvalidParent):
		api.BadRequest(w, "INVALID_PARENT", err.Error(), rid, nil)
	case errors.Is(err, store.ErrSelfSubscription):
		api.BadRequest(w, "SELF_SUBSCRIPTION", err.Error(), rid, nil)
	default:
		d.logger().Error("request failed",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", rid),
		)
		api.Internal(w, rid)
	}
}

// upstreamError reports a failed call to an external service.
func (d *Deps) upstreamError(w http.ResponseWriter, r *http.Request, service string, err error) {
	rid := httpserver.RequestIDFromContext(r.Context())
	d.logger().Error("upstream call failed",
		zap.String("service", service),
		zap.Error(err),
		zap.String("request_id", rid),
	)
	api.BadGateway(w, "UPSTREAM_ERROR", service+" request failed", rid)
}

func unavailable(w http.ResponseWriter, r *http.Request, service string) {
	api.Unavailable(w, "SERVICE_UNAVAILABLE", service+" is not configured", httpserver.RequestIDFromContext(r.Context()))
}
