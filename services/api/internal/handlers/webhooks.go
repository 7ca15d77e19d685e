package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/example/video-platform/internal/platform/api"
	"github.com/example/video-platform/internal/platform/httpserver"
	"github.com/example/video-platform/services/api/internal/idempotency"
	"github.com/example/video-platform/services/api/internal/media"
	"github.com/example/video-platform/services/api/internal/store"
	"github.com/example/video-platform/services/api/internal/videoplatform"
)

const (
	mediaSignatureHeader = "Mux-Signature"

	userIDHeader        = "Svix-Id"
	userTimestampHeader = "Svix-Timestamp"
	userSignatureHeader = "Svix-Signature"

	sourceVideoPlatform = "video-platform"
	sourceAuth          = "auth"
)

type webhookResponse struct {
	Status string `json:"status"`
}

// readBody reads a bounded webhook body; signatures cover the raw bytes.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	if err != nil {
		api.BadRequest(w, "INVALID_BODY", "could not read body", httpserver.RequestIDFromContext(r.Context()), nil)
		return nil, false
	}
	return body, true
}

// seen marks an event as processed and reports whether it already was.
// Without an idempotency store every delivery is processed.
func (d *Deps) seen(ctx context.Context, key string) (bool, error) {
	if d.Seen == nil {
		return false, nil
	}
	return d.Seen.Check(ctx, key)
}

func (d *Deps) forget(ctx context.Context, key string) {
	if d.Seen == nil {
		return
	}
	if err := d.Seen.Forget(ctx, key); err != nil {
		d.logger().Warn("idempotency forget failed", zap.String("key", key), zap.Error(err))
	}
}

// VideoPlatformWebhook handles POST /v1/webhooks/video-platform
func VideoPlatformWebhook(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		body, ok := readBody(w, r)
		if !ok {
			return
		}
		if err := d.MediaVerifier.Verify(body, r.Header.Get(mediaSignatureHeader)); err != nil {
			api.Unauthorized(w, "INVALID_SIGNATURE", "invalid webhook signature", rid)
			return
		}
		var ev videoplatform.Event
		if err := json.Unmarshal(body, &ev); err != nil || ev.ID == "" || ev.Type == "" {
			api.BadRequest(w, "INVALID_EVENT", "event id and type are required", rid, nil)
			return
		}

		key := idempotency.Key(sourceVideoPlatform, ev.ID)
		dup, err := d.seen(r.Context(), key)
		if err != nil {
			d.writeError(w, r, err)
			return
		}
		if dup {
			api.WriteJSON(w, http.StatusOK, webhookResponse{Status: "duplicate"})
			return
		}

		log := d.logger().With(zap.String("event_id", ev.ID), zap.String("event_type", ev.Type))
		if err := d.Media.Dispatch(r.Context(), ev); err != nil {
			if errors.Is(err, media.ErrMalformedEvent) {
				log.Warn("media event dropped", zap.Error(err))
				api.WriteJSON(w, http.StatusOK, webhookResponse{Status: "ignored"})
				return
			}
			d.forget(r.Context(), key)
			d.writeError(w, r, err)
			return
		}
		d.invalidateVideos(r.Context())
		log.Info("media event accepted")
		api.WriteJSON(w, http.StatusOK, webhookResponse{Status: "ok"})
	}
}

const (
	userCreated = "user.created"
	userUpdated = "user.updated"
	userDeleted = "user.deleted"
)

type userEvent struct {
	Type string `json:"type"`
	Data struct {
		ID        string `json:"id"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		ImageURL  string `json:"image_url"`
	} `json:"data"`
}

func (e userEvent) name() string {
	name := strings.TrimSpace(e.Data.FirstName + " " + e.Data.LastName)
	if name == "" {
		return "Anonymous"
	}
	return name
}

// AuthWebhook handles POST /v1/webhooks/auth. It mirrors identity-provider
// users into the local users table.
func AuthWebhook(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		body, ok := readBody(w, r)
		if !ok {
			return
		}
		msgID := r.Header.Get(userIDHeader)
		if err := d.UserVerifier.Verify(body, msgID, r.Header.Get(userTimestampHeader), r.Header.Get(userSignatureHeader)); err != nil {
			api.Unauthorized(w, "INVALID_SIGNATURE", "invalid webhook signature", rid)
			return
		}
		var ev userEvent
		if err := json.Unmarshal(body, &ev); err != nil || ev.Data.ID == "" {
			api.BadRequest(w, "INVALID_EVENT", "event data.id is required", rid, nil)
			return
		}

		key := idempotency.Key(sourceAuth, msgID)
		dup, err := d.seen(r.Context(), key)
		if err != nil {
			d.writeError(w, r, err)
			return
		}
		if dup {
			api.WriteJSON(w, http.StatusOK, webhookResponse{Status: "duplicate"})
			return
		}

		switch ev.Type {
		case userCreated, userUpdated:
			_, err = d.Store.UpsertUser(r.Context(), store.User{
				AuthID:   ev.Data.ID,
				Name:     ev.name(),
				ImageURL: ev.Data.ImageURL,
			})
		case userDeleted:
			err = d.Store.DeleteUserByAuthID(r.Context(), ev.Data.ID)
			if errors.Is(err, store.ErrNotFound) {
				err = nil
			}
			if err == nil {
				d.invalidateVideos(r.Context())
			}
		default:
			api.WriteJSON(w, http.StatusOK, webhookResponse{Status: "ignored"})
			return
		}
		if err != nil {
			d.forget(r.Context(), key)
			d.writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, webhookResponse{Status: "ok"})
	}
}
