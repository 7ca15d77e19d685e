// Package handlers is the HTTP/JSON surface of the API service. Every list
// endpoint is a keyset-paginated read taking ?limit and ?cursor and returning
// {"items", "next_cursor"}.
package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/video-platform/internal/platform/analytics"
	"github.com/example/video-platform/internal/platform/signing"
	"github.com/example/video-platform/services/api/internal/cache"
	"github.com/example/video-platform/services/api/internal/fileupload"
	"github.com/example/video-platform/services/api/internal/idempotency"
	"github.com/example/video-platform/services/api/internal/media"
	"github.com/example/video-platform/services/api/internal/store"
	"github.com/example/video-platform/services/api/internal/videoplatform"
)

// VideoPlatform is the part of the hosted video pipeline the handlers call.
type VideoPlatform interface {
	CreateUpload(ctx context.Context, passthrough string) (videoplatform.Upload, error)
	GetUpload(ctx context.Context, id string) (videoplatform.Upload, error)
	GetAsset(ctx context.Context, id string) (videoplatform.Asset, error)
}

// FileService stores thumbnails outside the video pipeline.
type FileService interface {
	UploadFromURL(ctx context.Context, src string) (fileupload.File, error)
	DeleteFiles(ctx context.Context, keys ...string) (int, error)
}

// Workflows starts background jobs that call back into the app.
type Workflows interface {
	Trigger(ctx context.Context, target string, body any) (string, error)
}

// Deps is shared by every handler. Store and Log are required; a nil
// external client makes the endpoints that need it answer 503.
type Deps struct {
	Store     store.Store
	Cache     cache.Cache
	Analytics *analytics.Publisher
	Log       *zap.Logger

	Videos    VideoPlatform
	Files     FileService
	Workflows Workflows
	// AppURL is the public base URL workflows call back to.
	AppURL string

	Media         media.Dispatcher
	Seen          idempotency.Store
	MediaVerifier signing.Verifier
	UserVerifier  signing.MessageVerifier
}

func (d *Deps) logger() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}

// invalidateVideos drops cached video pages after a write. Failures only
// cost staleness up to the cache TTL.
func (d *Deps) invalidateVideos(ctx context.Context) {
	if d.Cache == nil {
		return
	}
	if err := d.Cache.InvalidatePrefix(ctx, cache.PrefixVideos); err != nil {
		d.logger().Warn("cache invalidation failed", zap.Error(err))
	}
}
