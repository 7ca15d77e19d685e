// Package media applies hosted video pipeline events to stored videos,
// either inline from the webhook or through a JetStream work queue.
package media

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/video-platform/services/api/internal/fileupload"
	"github.com/example/video-platform/services/api/internal/store"
	"github.com/example/video-platform/services/api/internal/videoplatform"
)

// ErrMalformedEvent marks events that can never be applied. They are
// acknowledged and dropped rather than retried.
var ErrMalformedEvent = errors.New("media: malformed event")

// Store is the part of the video store the processor writes to.
type Store interface {
	FindVideoByUploadID(ctx context.Context, uploadID string) (store.Video, error)
	FindVideoByAssetID(ctx context.Context, assetID string) (store.Video, error)
	UpdateVideoMedia(ctx context.Context, id string, m store.MediaUpdate) (store.Video, error)
	PurgeVideo(ctx context.Context, id string) error
}

// Files copies generated images into the file service. Optional.
type Files interface {
	UploadFromURL(ctx context.Context, src string) (fileupload.File, error)
}

type Processor struct {
	store Store
	files Files
	log   *zap.Logger
}

// NewProcessor builds a processor. files may be nil, in which case videos
// link to the pipeline's image URLs directly.
func NewProcessor(s Store, files Files, log *zap.Logger) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{store: s, files: files, log: log}
}

// Apply updates the video an event refers to. Events for videos that no
// longer exist are skipped.
func (p *Processor) Apply(ctx context.Context, ev videoplatform.Event) error {
	var err error
	switch ev.Type {
	case videoplatform.EventAssetCreated:
		err = p.assetCreated(ctx, ev)
	case videoplatform.EventAssetReady:
		err = p.assetReady(ctx, ev)
	case videoplatform.EventAssetErrored:
		err = p.assetErrored(ctx, ev)
	case videoplatform.EventAssetDeleted:
		err = p.assetDeleted(ctx, ev)
	case videoplatform.EventAssetTrackReady:
		err = p.trackReady(ctx, ev)
	case videoplatform.EventAssetTrackDeleted:
		err = p.trackDeleted(ctx, ev)
	default:
		p.log.Debug("media: unhandled event type", zap.String("type", ev.Type))
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		p.log.Info("media: no video for event", zap.String("type", ev.Type), zap.String("event_id", ev.ID))
		return nil
	}
	return err
}

func (p *Processor) uploadedVideo(ctx context.Context, ev videoplatform.Event) (videoplatform.Asset, store.Video, error) {
	asset, err := ev.Asset()
	if err != nil {
		return asset, store.Video{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if asset.UploadID == "" {
		return asset, store.Video{}, fmt.Errorf("%w: missing upload id", ErrMalformedEvent)
	}
	v, err := p.store.FindVideoByUploadID(ctx, asset.UploadID)
	return asset, v, err
}

func (p *Processor) assetCreated(ctx context.Context, ev videoplatform.Event) error {
	asset, v, err := p.uploadedVideo(ctx, ev)
	if err != nil {
		return err
	}
	_, err = p.store.UpdateVideoMedia(ctx, v.ID, store.MediaUpdate{
		MuxAssetID: &asset.ID,
		MuxStatus:  &asset.Status,
	})
	return err
}

func (p *Processor) assetReady(ctx context.Context, ev videoplatform.Event) error {
	asset, v, err := p.uploadedVideo(ctx, ev)
	if err != nil {
		return err
	}
	playbackID := asset.PlaybackID()
	if playbackID == "" {
		return fmt.Errorf("%w: ready asset without playback id", ErrMalformedEvent)
	}

	thumbURL, thumbKey := p.copyImage(ctx, videoplatform.ThumbnailURL(playbackID))
	previewURL, previewKey := p.copyImage(ctx, videoplatform.PreviewURL(playbackID))
	duration := asset.DurationMs()
	update := store.MediaUpdate{
		MuxStatus:     &asset.Status,
		MuxAssetID:    &asset.ID,
		MuxPlaybackID: &playbackID,
		PreviewURL:    &previewURL,
		PreviewKey:    &previewKey,
		DurationMs:    &duration,
	}
	// A custom thumbnail chosen before processing finished wins.
	if v.ThumbnailURL == "" {
		update.ThumbnailURL = &thumbURL
		update.ThumbnailKey = &thumbKey
	}
	_, err = p.store.UpdateVideoMedia(ctx, v.ID, update)
	return err
}

// copyImage stores src in the file service when one is configured. On
// failure it falls back to linking src.
func (p *Processor) copyImage(ctx context.Context, src string) (url, key string) {
	if p.files == nil {
		return src, ""
	}
	f, err := p.files.UploadFromURL(ctx, src)
	if err != nil {
		p.log.Warn("media: copy image failed", zap.String("src", src), zap.Error(err))
		return src, ""
	}
	return f.URL, f.Key
}

func (p *Processor) assetErrored(ctx context.Context, ev videoplatform.Event) error {
	asset, v, err := p.uploadedVideo(ctx, ev)
	if err != nil {
		return err
	}
	_, err = p.store.UpdateVideoMedia(ctx, v.ID, store.MediaUpdate{MuxStatus: &asset.Status})
	return err
}

func (p *Processor) assetDeleted(ctx context.Context, ev videoplatform.Event) error {
	_, v, err := p.uploadedVideo(ctx, ev)
	if err != nil {
		return err
	}
	return p.store.PurgeVideo(ctx, v.ID)
}

func (p *Processor) trackVideo(ctx context.Context, ev videoplatform.Event) (videoplatform.Track, store.Video, error) {
	track, err := ev.Track()
	if err != nil {
		return track, store.Video{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if track.AssetID == "" {
		return track, store.Video{}, fmt.Errorf("%w: missing asset id", ErrMalformedEvent)
	}
	v, err := p.store.FindVideoByAssetID(ctx, track.AssetID)
	return track, v, err
}

func (p *Processor) trackReady(ctx context.Context, ev videoplatform.Event) error {
	track, v, err := p.trackVideo(ctx, ev)
	if err != nil {
		return err
	}
	_, err = p.store.UpdateVideoMedia(ctx, v.ID, store.MediaUpdate{
		MuxTrackID:     &track.ID,
		MuxTrackStatus: &track.Status,
	})
	return err
}

func (p *Processor) trackDeleted(ctx context.Context, ev videoplatform.Event) error {
	_, v, err := p.trackVideo(ctx, ev)
	if err != nil {
		return err
	}
	none := ""
	_, err = p.store.UpdateVideoMedia(ctx, v.ID, store.MediaUpdate{
		MuxTrackID:     &none,
		MuxTrackStatus: &none,
	})
	return err
}
