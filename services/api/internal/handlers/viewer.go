package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/example/video-platform/internal/platform/api"
	"github.com/example/video-platform/internal/platform/auth"
	"github.com/example/video-platform/internal/platform/httpserver"
	"github.com/example/video-platform/services/api/internal/store"
)

type ctxKeyViewer struct{}

// ViewerFromContext returns the local user behind the request, if any.
func ViewerFromContext(ctx context.Context) (store.User, bool) {
	u, ok := ctx.Value(ctxKeyViewer{}).(store.User)
	return u, ok
}

// WithViewer injects a resolved viewer into context. Useful for testing.
func WithViewer(ctx context.Context, u store.User) context.Context {
	return context.WithValue(ctx, ctxKeyViewer{}, u)
}

func viewerID(r *http.Request) string {
	u, _ := ViewerFromContext(r.Context())
	return u.ID
}

// LoadViewer resolves the verified token subject to a local user once per
// request. Requests without a subject, or whose subject has no local user
// yet, continue anonymously.
func (d *Deps) LoadViewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sub, ok := auth.SubjectFromContext(r.Context())
		if !ok || sub == "" {
			next.ServeHTTP(w, r)
			return
		}
		u, err := d.Store.GetUserByAuthID(r.Context(), sub)
		switch {
		case errors.Is(err, store.ErrNotFound):
			next.ServeHTTP(w, r)
		case err != nil:
			d.writeError(w, r, err)
		default:
			next.ServeHTTP(w, r.WithContext(WithViewer(r.Context(), u)))
		}
	})
}

// RequireViewer rejects requests LoadViewer could not resolve.
func RequireViewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ViewerFromContext(r.Context()); !ok {
			api.Unauthorized(w, "UNAUTHORIZED", "authentication required", httpserver.RequestIDFromContext(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}
