package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/example/video-platform/internal/platform/analytics"
	"github.com/example/video-platform/internal/platform/api"
	"github.com/example/video-platform/internal/platform/paging"
	"github.com/example/video-platform/services/api/internal/cache"
	"github.com/example/video-platform/services/api/internal/store"
)

const maxSearchLength = 200

// ListCategories handles GET /v1/categories
func ListCategories(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cats, err := cache.GetOrLoad(r.Context(), d.Cache, cache.PrefixCategories, d.Store.ListCategories)
		if err != nil {
			d.writeError(w, r, err)
			return
		}
		if cats == nil {
			cats = []store.Category{}
		}
		api.WriteJSON(w, http.StatusOK, map[string]any{"items": cats})
	}
}

// ListVideos handles GET /v1/videos?category_id=&user_id=&q=
func ListVideos(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, ok := queryID(w, r, "category_id")
		if !ok {
			return
		}
		userID, ok := queryID(w, r, "user_id")
		if !ok {
			return
		}
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if utf8.RuneCountInString(query) > maxSearchLength {
			query = string([]rune(query)[:maxSearchLength])
		}
		req, ok := d.pageRequest(w, r)
		if !ok {
			return
		}

		f := store.VideoFilter{CategoryID: categoryID, OwnerID: userID, Query: query}
		load := func(ctx context.Context) (paging.Page[store.VideoCard], error) {
			return d.Store.ListVideos(ctx, f, req)
		}
		var page paging.Page[store.VideoCard]
		var err error
		// First pages without a search are identical for every caller.
		if req.Cursor == nil && query == "" {
			key := cache.PrefixVideos + "list:" + categoryID + ":" + userID + ":" + strconv.Itoa(req.Limit)
			page, err = cache.GetOrLoad(r.Context(), d.Cache, key, load)
		} else {
			page, err = load(r.Context())
		}
		if err != nil {
			d.writeError(w, r, err)
			return
		}
		if query != "" {
			d.Analytics.Publish(analytics.SubjectSearchPerformed, "search_performed", viewerID(r), map[string]any{
				"query":       query,
				"category_id": categoryID,
				"results":     len(page.Items),
			})
		}
		api.WriteJSON(w, http.StatusOK, page)
	}
}

// GetVideo handles GET /v1/videos/{video_id}
func GetVideo(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "video_id")
		if !ok {
			return
		}
		detail, err := d.Store.GetVideoDetail(r.Context(), id, viewerID(r))
		if err != nil {
			d.writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, detail)
	}
}

// ListSuggestions handles GET /v1/videos/{video_id}/suggestions
func ListSuggestions(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "video_id")
		if !ok {
			return
		}
		req, ok := d.pageRequest(w, r)
		if !ok {
			return
		}
		// Private videos of other users stay hidden here as on the watch page.
		v, err := d.Store.GetVideoDetail(r.Context(), id, viewerID(r))
		if err != nil {
			d.writeError(w, r, err)
			return
		}
		page, err := d.Store.ListVideos(r.Context(), store.VideoFilter{CategoryID: v.CategoryID, ExcludeID: v.ID}, req)
		if err != nil {
			d.writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, page)
	}
}

// GetUserProfile handles GET /v1/users/{user_id}
func GetUserProfile(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "user_id")
		if !ok {
			return
		}
		p, err := d.Store.GetUserProfile(r.Context(), id, viewerID(r))
		if err != nil {
			d.writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, p)
	}
}

// ListSubscribedVideos handles GET /v1/feed/subscriptions
func ListSubscribedVideos(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := d.pageRequest(w, r)
		if !ok {
			return
		}
		page, err := d.Store.ListVideos(r.Context(), store.VideoFilter{SubscribedBy: viewerID(r)}, req)
		if err != nil {
			d.writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, page)
	}
}

type createCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// CreateCategory handles POST /v1/admin/categories
func CreateCategory(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createCategoryRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		c, err := d.Store.CreateCategory(r.Context(), store.Category{
			Name:        strings.TrimSpace(req.Name),
			Description: strings.TrimSpace(req.Description),
		})
		if err != nil {
			d.writeError(w, r, err)
			return
		}
		if d.Cache != nil {
			_ = d.Cache.InvalidatePrefix(r.Context(), cache.PrefixCategories)
		}
		api.WriteJSON(w, http.StatusCreated, c)
	}
}
