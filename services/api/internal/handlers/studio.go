package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/video-platform/internal/platform/analytics"
	"github.com/example/video-platform/internal/platform/api"
	"github.com/example/video-platform/internal/platform/httpserver"
	"github.com/example/video-platform/services/api/internal/store"
	"github.com/example/video-platform/services/api/internal/videoplatform"
)

const (
	defaultVideoTitle = "Untitled"
	uploadWaiting     = "waiting"

	titleWorkflowPath       = "/api/videos/workflows/title"
	descriptionWorkflowPath = "/api/videos/workflows/description"
)

type createVideoResponse struct {
	Video     store.Video `json:"video"`
	UploadURL string      `json:"upload_url"`
}

// CreateVideo handles POST /v1/videos. It opens a direct upload on the video
// pipeline and stores a private placeholder video that the pipeline's
// webhooks fill in.
func CreateVideo(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Videos == nil {
			unavailable(w, r, "video platform")
			return
		}
		viewer := viewerID(r)
		upload, err := d.Videos.CreateUpload(r.Context(), viewer)
		if err != nil {
			d.upstreamError(w, r, "video platform", err)
			return
		}
		status := upload.Status
		if status == "" {
			status = uploadWaiting
		}
		v, err := d.Store.CreateVideo(r.Context(), store.Video{
			UserID:      viewer,
			Title:       defaultVideoTitle,
			Visibility:  store.VisibilityPrivate,
			MuxStatus:   status,
			MuxUploadID: upload.ID,
		})
		if err != nil {
			d.writeError(w, r, err)
			return
		}
		d.Analytics.Publish(analytics.SubjectVideoUploaded, "video_uploaded", viewer, map[string]any{
			"video_id":  v.ID,
			"upload_id": upload.ID,
		})
		api.WriteJSON(w, http.StatusCreated, createVideoResponse{Video: v, UploadURL: upload.URL})
	}
}

type updateVideoRequest struct {
	Title       *string `json:"title" validate:"omitnil,min=1,max=100"`
	Description *string `json:"description" validate:"omitnil,max=5000"`
	// CategoryID is a UUID, or "" to clear the category.
	CategoryID *string `json:"category_id"`
	Visibility *string `json:"visibility" validate:"omitnil,oneof=public private"`
}

// UpdateVideo handles PATCH /v1/videos/{video_id}
func UpdateVideo(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "video_id")
		if !ok {
			return
		}
		var req updateVideoRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		var p store.VideoPatch
		if req.Title != nil {
			title := strings.TrimSpace(*req.Title)
			if title == "" {
				api.BadRequest(w, "VALIDATION_FAILED", "request validation failed",
					httpserver.RequestIDFromContext(r.Context()), map[string]any{"title": "is required"})
				return
			}
			p.Title = &title
		}
		p.Description = req.Description
		if req.CategoryID != nil {
			cat := strings.TrimSpace(*req.CategoryID)
			if cat != "" {
				parsed, err := uuid.Parse(cat)
				if err != nil {
					api.BadRequest(w, "VALIDATION_FAILED", "request validation failed",
						httpserver.RequestIDFromContext(r.Context()), map[string]any{"category_id": "must be a UUID"})
					return
				}
				cat = parsed.String()
			}
			p.CategoryID = &cat
		}
		if req.Visibility != nil {
			vis := store.Visibility(*req.Visibility)
			p.Visibility = &vis
		}

		v, err := d.Store.UpdateVideo(r.Context(), id, viewerID(r), p)
		if err != nil {
			d.writeError(w, r, err)
			return
		}
		d.invalidateVideos(r.Context())
		api.WriteJSON(w, http.StatusOK, v)
	}
}

// DeleteVideo handles DELETE /v1/videos/{video_id}. Stored images are
// removed from the file service on a best-effort basis.
func DeleteVideo(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "video_id")
		if !ok {
			return
		}
		v, err := d.Store.DeleteVideo(r.Context(), id, viewerID(r))
		if err != nil {
			d.writeError(w, r, err)
			return
		}
		d.invalidateVideos(r.Context())
		if d.Files != nil {
			var keys []string
			for _, k := range []string{v.ThumbnailKey, v.PreviewKey} {
				if k != "" {
					keys = append(keys, k)
				}
			}
			if _, err := d.Files.DeleteFiles(r.Context(), keys...); err != nil {
				d.logger().Warn("delete video files", zap.String("video_id", v.ID), zap.Error(err))
			}
		}
		api.WriteJSON(w, http.StatusOK, v)
	}
}

// RevalidateVideo handles POST /v1/videos/{video_id}/revalidate. It pulls
// the upload's current asset state from the pipeline for videos whose
// webhooks were missed.
func RevalidateVideo(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Videos == nil {
			unavailable(w, r, "video platform")
			return
		}
		id, ok := pathID(w, r, "video_id")
		if !ok {
			return
		}
		rid := httpserver.RequestIDFromContext(r.Context())
		v, err := d.Store.GetOwnedVideo(r.Context(), id, viewerID(r))
		if err != nil {
			d.writeError(w, r, err)
			return
		}
		if v.MuxUploadID == "" {
			api.BadRequest(w, "NO_UPLOAD", "video has no upload", rid, nil)
			return
		}
		upload, err := d.Videos.GetUpload(r.Context(), v.MuxUploadID)
		if err != nil {
			d.upstreamError(w, r, "video platform", err)
			return
		}
		if upload.AssetID == "" {
			api.BadRequest(w, "NO_ASSET", "upload has no asset yet", rid, nil)
			return
		}
		asset, err := d.Videos.GetAsset(r.Context(), upload.AssetID)
		if err != nil {
			d.upstreamError(w, r, "video platform", err)
			return
		}
		playbackID := asset.PlaybackID()
		duration := asset.DurationMs()
		updated, err := d.Store.UpdateVideoMedia(r.Context(), v.ID, store.MediaUpdate{
			MuxStatus:     &asset.Status,
			MuxAssetID:    &asset.ID,
			MuxPlaybackID: &playbackID,
			DurationMs:    &duration,
		})
		if err != nil {
			d.writeError(w, r, err)
			return
		}
		d.invalidateVideos(r.Context())
		api.WriteJSON(w, http.StatusOK, updated)
	}
}

// RestoreThumbnail handles POST /v1/videos/{video_id}/thumbnail/restore. It
// replaces a custom thumbnail with the pipeline-generated one.
func RestoreThumbnail(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "video_id")
		if !ok {
			return
		}
		v, err := d.Store.GetOwnedVideo(r.Context(), id, viewerID(r))
		if err != nil {
			d.writeError(w, r, err)
			return
		}
		if v.MuxPlaybackID == "" {
			api.BadRequest(w, "NOT_READY", "video has no playback id yet", httpserver.RequestIDFromContext(r.Context()), nil)
			return
		}
		if v.ThumbnailKey != "" && d.Files != nil {
			if _, err := d.Files.DeleteFiles(r.Context(), v.ThumbnailKey); err != nil {
				d.upstreamError(w, r, "file service", err)
				return
			}
		}

		url := videoplatform.ThumbnailURL(v.MuxPlaybackID)
		key := ""
		if d.Files != nil {
			f, err := d.Files.UploadFromURL(r.Context(), url)
			if err != nil {
				d.upstreamError(w, r, "file service", err)
				return
			}
			url, key = f.URL, f.Key
		}
		updated, err := d.Store.UpdateVideoMedia(r.Context(), v.ID, store.MediaUpdate{
			ThumbnailURL: &url,
			ThumbnailKey: &key,
		})
		if err != nil {
			d.writeError(w, r, err)
			return
		}
		d.invalidateVideos(r.Context())
		api.WriteJSON(w, http.StatusOK, updated)
	}
}

type workflowResponse struct {
	WorkflowRunID string `json:"workflow_run_id"`
}

type workflowPayload struct {
	UserID  string `json:"userId"`
	VideoID string `json:"videoId"`
}

// GenerateTitle handles POST /v1/videos/{video_id}/title/generate
func GenerateTitle(d *Deps) http.HandlerFunc {
	return triggerWorkflow(d, titleWorkflowPath)
}

// GenerateDescription handles POST /v1/videos/{video_id}/description/generate
func GenerateDescription(d *Deps) http.HandlerFunc {
	return triggerWorkflow(d, descriptionWorkflowPath)
}

func triggerWorkflow(d *Deps, path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Workflows == nil || d.AppURL == "" {
			unavailable(w, r, "workflow service")
			return
		}
		id, ok := pathID(w, r, "video_id")
		if !ok {
			return
		}
		viewer := viewerID(r)
		v, err := d.Store.GetOwnedVideo(r.Context(), id, viewer)
		if err != nil {
			d.writeError(w, r, err)
			return
		}
		runID, err := d.Workflows.Trigger(r.Context(), d.AppURL+path, workflowPayload{UserID: viewer, VideoID: v.ID})
		if err != nil {
			d.upstreamError(w, r, "workflow service", err)
			return
		}
		api.WriteJSON(w, http.StatusAccepted, workflowResponse{WorkflowRunID: runID})
	}
}

// ListStudioVideos handles GET /v1/studio/videos. It lists the viewer's own
// videos, private ones included.
func ListStudioVideos(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := d.pageRequest(w, r)
		if !ok {
			return
		}
		page, err := d.Store.ListVideos(r.Context(), store.VideoFilter{OwnerID: viewerID(r), IncludePrivate: true}, req)
		if err != nil {
			d.writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, page)
	}
}

// GetStudioVideo handles GET /v1/studio/videos/{video_id}
func GetStudioVideo(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "video_id")
		if !ok {
			return
		}
		v, err := d.Store.GetOwnedVideo(r.Context(), id, viewerID(r))
		if err != nil {
			d.writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, v)
	}
}
