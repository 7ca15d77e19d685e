package handlers

import (
	"net/http"
	"strings"

	"github.com/example/video-platform/internal/platform/analytics"
	"github.com/example/video-platform/internal/platform/api"
	"github.com/example/video-platform/internal/platform/httpserver"
	"github.com/example/video-platform/services/api/internal/store"
)

// RecordView handles POST /v1/videos/{video_id}/views
func RecordView(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "video_id")
		if !ok {
			return
		}
		viewer := viewerID(r)
		view, err := d.Store.RecordView(r.Context(), viewer, id)
		if err != nil {
			d.writeError(w, r, err)
			return
		}
		d.Analytics.Publish(analytics.SubjectVideoViewed, "video_viewed", viewer, map[string]any{"video_id": id})
		api.WriteJSON(w, http.StatusCreated, view)
	}
}

type reactionRequest struct {
	Type string `json:"type" validate:"required,oneof=like dislike"`
}

type reactionResponse struct {
	Reaction *store.ReactionType `json:"reaction"`
}

// ReactToVideo handles POST /v1/videos/{video_id}/reactions. Sending the
// reaction the viewer already has removes it.
func ReactToVideo(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "video_id")
		if !ok {
			return
		}
		var req reactionRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		viewer := viewerID(r)
		got, err := d.Store.ToggleVideoReaction(r.Context(), viewer, id, store.ReactionType(req.Type))
		if err != nil {
			d.writeError(w, r, err)
			return
		}
		d.Analytics.Publish(analytics.SubjectVideoReacted, "video_reacted", viewer, map[string]any{
			"video_id": id,
			"type":     req.Type,
			"removed":  got == nil,
		})
		api.WriteJSON(w, http.StatusOK, reactionResponse{Reaction: got})
	}
}

// ReactToComment handles POST /v1/comments/{comment_id}/reactions
func ReactToComment(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "comment_id")
		if !ok {
			return
		}
		var req reactionRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		got, err := d.Store.ToggleCommentReaction(r.Context(), viewerID(r), id, store.ReactionType(req.Type))
		if err != nil {
			d.writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, reactionResponse{Reaction: got})
	}
}

// ListComments handles GET /v1/videos/{video_id}/comments?parent_id=. It
// returns top-level comments, or the replies to parent_id, with a total.
func ListComments(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videoID, ok := pathID(w, r, "video_id")
		if !ok {
			return
		}
		parentID, ok := queryID(w, r, "parent_id")
		if !ok {
			return
		}
		req, ok := d.pageRequest(w, r)
		if !ok {
			return
		}
		page, err := d.Store.ListComments(r.Context(), store.CommentFilter{VideoID: videoID, ParentID: parentID}, viewerID(r), req)
		if err != nil {
			d.writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, page)
	}
}

type createCommentRequest struct {
	Value    string  `json:"value" validate:"required,max=2000"`
	ParentID *string `json:"parent_id" validate:"omitnil,uuid"`
}

// CreateComment handles POST /v1/videos/{video_id}/comments
func CreateComment(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videoID, ok := pathID(w, r, "video_id")
		if !ok {
			return
		}
		var req createCommentRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		value := strings.TrimSpace(req.Value)
		if value == "" {
			api.BadRequest(w, "EMPTY_BODY", "value must not be empty", httpserver.RequestIDFromContext(r.Context()), nil)
			return
		}
		if req.ParentID != nil {
			parent := strings.ToLower(*req.ParentID)
			req.ParentID = &parent
		}
		viewer := viewerID(r)
		c, err := d.Store.CreateComment(r.Context(), store.Comment{
			VideoID:  videoID,
			UserID:   viewer,
			ParentID: req.ParentID,
			Value:    value,
		})
		if err != nil {
			d.writeError(w, r, err)
			return
		}
		d.Analytics.Publish(analytics.SubjectCommentPosted, "comment_posted", viewer, map[string]any{
			"video_id":   videoID,
			"comment_id": c.ID,
			"reply":      c.ParentID != nil,
		})
		api.WriteJSON(w, http.StatusCreated, c)
	}
}

// DeleteComment handles DELETE /v1/comments/{comment_id}
func DeleteComment(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "comment_id")
		if !ok {
			return
		}
		c, err := d.Store.DeleteComment(r.Context(), id, viewerID(r))
		if err != nil {
			d.writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, c)
	}
}

// Subscribe handles POST /v1/users/{user_id}/subscription
func Subscribe(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		creatorID, ok := pathID(w, r, "user_id")
		if !ok {
			return
		}
		viewer := viewerID(r)
		s, err := d.Store.Subscribe(r.Context(), viewer, creatorID)
		if err != nil {
			d.writeError(w, r, err)
			return
		}
		d.Analytics.Publish(analytics.SubjectCreatorSubscribed, "creator_subscribed", viewer, map[string]any{"creator_id": creatorID})
		api.WriteJSON(w, http.StatusCreated, s)
	}
}

// Unsubscribe handles DELETE /v1/users/{user_id}/subscription
func Unsubscribe(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		creatorID, ok := pathID(w, r, "user_id")
		if !ok {
			return
		}
		if err := d.Store.Unsubscribe(r.Context(), viewerID(r), creatorID); err != nil {
			d.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ListSubscriptions handles GET /v1/me/subscriptions
func ListSubscriptions(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := d.pageRequest(w, r)
		if !ok {
			return
		}
		page, err := d.Store.ListSubscriptions(r.Context(), viewerID(r), req)
		if err != nil {
			d.writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, page)
	}
}

// ListHistory handles GET /v1/me/history
func ListHistory(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := d.pageRequest(w, r)
		if !ok {
			return
		}
		page, err := d.Store.ListHistory(r.Context(), viewerID(r), req)
		if err != nil {
			d.writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, page)
	}
}

// ListLiked handles GET /v1/me/liked
func ListLiked(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := d.pageRequest(w, r)
		if !ok {
			return
		}
		page, err := d.Store.ListLikedVideos(r.Context(), viewerID(r), req)
		if err != nil {
			d.writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, page)
	}
}
