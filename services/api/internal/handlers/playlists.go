package handlers

import (
	"net/http"
	"strings"

	"github.com/example/video-platform/internal/platform/api"
	"github.com/example/video-platform/services/api/internal/store"
)

type createPlaylistRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=5000"`
}

// CreatePlaylist handles POST /v1/playlists
func CreatePlaylist(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPlaylistRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		p, err := d.Store.CreatePlaylist(r.Context(), store.Playlist{
			UserID:      viewerID(r),
			Name:        strings.TrimSpace(req.Name),
			Description: strings.TrimSpace(req.Description),
		})
		if err != nil {
			d.writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusCreated, p)
	}
}

// ListPlaylists handles GET /v1/playlists?video_id=. With video_id each row
// reports whether that video is already in the playlist.
func ListPlaylists(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videoID, ok := queryID(w, r, "video_id")
		if !ok {
			return
		}
		req, ok := d.pageRequest(w, r)
		if !ok {
			return
		}
		page, err := d.Store.ListPlaylists(r.Context(), viewerID(r), videoID, req)
		if err != nil {
			d.writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, page)
	}
}

// GetPlaylist handles GET /v1/playlists/{playlist_id}
func GetPlaylist(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "playlist_id")
		if !ok {
			return
		}
		p, err := d.Store.GetPlaylist(r.Context(), id, viewerID(r))
		if err != nil {
			d.writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, p)
	}
}

// DeletePlaylist handles DELETE /v1/playlists/{playlist_id}
func DeletePlaylist(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "playlist_id")
		if !ok {
			return
		}
		p, err := d.Store.DeletePlaylist(r.Context(), id, viewerID(r))
		if err != nil {
			d.writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, p)
	}
}

// ListPlaylistVideos handles GET /v1/playlists/{playlist_id}/videos. Only
// the owner may list a playlist.
func ListPlaylistVideos(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "playlist_id")
		if !ok {
			return
		}
		req, ok := d.pageRequest(w, r)
		if !ok {
			return
		}
		if _, err := d.Store.GetPlaylist(r.Context(), id, viewerID(r)); err != nil {
			d.writeError(w, r, err)
			return
		}
		page, err := d.Store.ListVideos(r.Context(), store.VideoFilter{PlaylistID: id}, req)
		if err != nil {
			d.writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, page)
	}
}

// AddPlaylistVideo handles PUT /v1/playlists/{playlist_id}/videos/{video_id}
func AddPlaylistVideo(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playlistID, ok := pathID(w, r, "playlist_id")
		if !ok {
			return
		}
		videoID, ok := pathID(w, r, "video_id")
		if !ok {
			return
		}
		pv, err := d.Store.AddPlaylistVideo(r.Context(), playlistID, videoID, viewerID(r))
		if err != nil {
			d.writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusCreated, pv)
	}
}

// RemovePlaylistVideo handles DELETE /v1/playlists/{playlist_id}/videos/{video_id}
func RemovePlaylistVideo(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playlistID, ok := pathID(w, r, "playlist_id")
		if !ok {
			return
		}
		videoID, ok := pathID(w, r, "video_id")
		if !ok {
			return
		}
		pv, err := d.Store.RemovePlaylistVideo(r.Context(), playlistID, videoID, viewerID(r))
		if err != nil {
			d.writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, pv)
	}
}
