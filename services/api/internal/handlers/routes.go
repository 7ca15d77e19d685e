package handlers

import (
	"github.com/go-chi/chi/v5"

	"github.com/example/video-platform/internal/platform/auth"
)

// Register mounts every API route on r. httpserver.SetupRouter must already
// have been applied to r.
func Register(r chi.Router, d *Deps, verifier auth.JWTVerifier) {
	// Public reads: a token is optional but must be valid when present.
	r.Group(func(r chi.Router) {
		r.Use(auth.OptionalUser(verifier))
		r.Use(d.LoadViewer)
		r.Get("/v1/categories", ListCategories(d))
		r.Get("/v1/videos", ListVideos(d))
		r.Get("/v1/videos/{video_id}", GetVideo(d))
		r.Get("/v1/videos/{video_id}/suggestions", ListSuggestions(d))
		r.Get("/v1/videos/{video_id}/comments", ListComments(d))
		r.Get("/v1/users/{user_id}", GetUserProfile(d))
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser(verifier))
		r.Use(d.LoadViewer)
		r.Use(RequireViewer)

		r.Get("/v1/feed/subscriptions", ListSubscribedVideos(d))

		r.Post("/v1/videos", CreateVideo(d))
		r.Patch("/v1/videos/{video_id}", UpdateVideo(d))
		r.Delete("/v1/videos/{video_id}", DeleteVideo(d))
		r.Post("/v1/videos/{video_id}/revalidate", RevalidateVideo(d))
		r.Post("/v1/videos/{video_id}/thumbnail/restore", RestoreThumbnail(d))
		r.Post("/v1/videos/{video_id}/title/generate", GenerateTitle(d))
		r.Post("/v1/videos/{video_id}/description/generate", GenerateDescription(d))
		r.Post("/v1/videos/{video_id}/views", RecordView(d))
		r.Post("/v1/videos/{video_id}/reactions", ReactToVideo(d))
		r.Post("/v1/videos/{video_id}/comments", CreateComment(d))

		r.Post("/v1/comments/{comment_id}/reactions", ReactToComment(d))
		r.Delete("/v1/comments/{comment_id}", DeleteComment(d))

		r.Get("/v1/studio/videos", ListStudioVideos(d))
		r.Get("/v1/studio/videos/{video_id}", GetStudioVideo(d))

		r.Get("/v1/playlists", ListPlaylists(d))
		r.Post("/v1/playlists", CreatePlaylist(d))
		r.Get("/v1/playlists/{playlist_id}", GetPlaylist(d))
		r.Delete("/v1/playlists/{playlist_id}", DeletePlaylist(d))
		r.Get("/v1/playlists/{playlist_id}/videos", ListPlaylistVideos(d))
		r.Put("/v1/playlists/{playlist_id}/videos/{video_id}", AddPlaylistVideo(d))
		r.Delete("/v1/playlists/{playlist_id}/videos/{video_id}", RemovePlaylistVideo(d))

		r.Get("/v1/me/history", ListHistory(d))
		r.Get("/v1/me/liked", ListLiked(d))
		r.Get("/v1/me/subscriptions", ListSubscriptions(d))
		r.Post("/v1/users/{user_id}/subscription", Subscribe(d))
		r.Delete("/v1/users/{user_id}/subscription", Unsubscribe(d))
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser(verifier))
		r.Use(auth.RequireAdmin)
		r.Post("/v1/admin/categories", CreateCategory(d))
	})

	// Webhooks authenticate by signature, not by token.
	if d.Media != nil {
		r.Post("/v1/webhooks/video-platform", VideoPlatformWebhook(d))
	}
	r.Post("/v1/webhooks/auth", AuthWebhook(d))
}
