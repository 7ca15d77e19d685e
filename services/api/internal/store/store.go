package store

import (
	"context"
	"errors"
	"time"

	"github.com/example/video-platform/internal/platform/paging"
)

var (
	// ErrNotFound is returned when a row does not exist or is not visible to
	// the caller.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the caller may see a row but not change it.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict is returned on unique-key violations.
	ErrConflict = errors.New("conflict")
	// ErrInvalidParent is returned when replying to a reply or to a comment
	// on another video.
	ErrInvalidParent = errors.New("invalid parent comment")
	// ErrSelfSubscription is returned when a user subscribes to themselves.
	ErrSelfSubscription = errors.New("cannot subscribe to yourself")
)

type UserStore interface {
	// UpsertUser inserts or updates the user keyed by AuthID.
	UpsertUser(ctx context.Context, u User) (User, error)
	DeleteUserByAuthID(ctx context.Context, authID string) error
	GetUserByAuthID(ctx context.Context, authID string) (User, error)
	GetUserProfile(ctx context.Context, userID, viewerID string) (UserProfile, error)
}

type CategoryStore interface {
	ListCategories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, c Category) (Category, error)
}

type VideoStore interface {
	CreateVideo(ctx context.Context, v Video) (Video, error)
	GetVideo(ctx context.Context, id string) (Video, error)
	// GetOwnedVideo returns ErrNotFound unless ownerID owns the video.
	GetOwnedVideo(ctx context.Context, id, ownerID string) (Video, error)
	FindVideoByUploadID(ctx context.Context, uploadID string) (Video, error)
	FindVideoByAssetID(ctx context.Context, assetID string) (Video, error)
	// GetVideoDetail hides private videos from everyone but their owner.
	GetVideoDetail(ctx context.Context, id, viewerID string) (VideoDetail, error)
	UpdateVideo(ctx context.Context, id, ownerID string, p VideoPatch) (Video, error)
	UpdateVideoMedia(ctx context.Context, id string, m MediaUpdate) (Video, error)
	DeleteVideo(ctx context.Context, id, ownerID string) (Video, error)
	// PurgeVideo deletes a video regardless of owner.
	PurgeVideo(ctx context.Context, id string) error
	ListVideos(ctx context.Context, f VideoFilter, req paging.Request) (paging.Page[VideoCard], error)
}

type CommentStore interface {
	CreateComment(ctx context.Context, c Comment) (Comment, error)
	DeleteComment(ctx context.Context, id, userID string) (Comment, error)
	ListComments(ctx context.Context, f CommentFilter, viewerID string, req paging.Request) (paging.Page[CommentView], error)
}

type ReactionStore interface {
	// ToggleVideoReaction removes the viewer's reaction when it already has
	// type t and sets it to t otherwise. It returns the resulting reaction.
	ToggleVideoReaction(ctx context.Context, userID, videoID string, t ReactionType) (*ReactionType, error)
	ToggleCommentReaction(ctx context.Context, userID, commentID string, t ReactionType) (*ReactionType, error)
	ListLikedVideos(ctx context.Context, userID string, req paging.Request) (paging.Page[LikedVideo], error)
}

type PlaylistStore interface {
	CreatePlaylist(ctx context.Context, p Playlist) (Playlist, error)
	// GetPlaylist returns ErrNotFound unless ownerID owns the playlist.
	GetPlaylist(ctx context.Context, id, ownerID string) (Playlist, error)
	DeletePlaylist(ctx context.Context, id, ownerID string) (Playlist, error)
	// ListPlaylists lists ownerID's playlists. A non-empty containsVideoID
	// fills PlaylistCard.ContainsVideo.
	ListPlaylists(ctx context.Context, ownerID, containsVideoID string, req paging.Request) (paging.Page[PlaylistCard], error)
	AddPlaylistVideo(ctx context.Context, playlistID, videoID, userID string) (PlaylistVideo, error)
	RemovePlaylistVideo(ctx context.Context, playlistID, videoID, userID string) (PlaylistVideo, error)
}

type SubscriptionStore interface {
	Subscribe(ctx context.Context, viewerID, creatorID string) (Subscription, error)
	Unsubscribe(ctx context.Context, viewerID, creatorID string) error
	ListSubscriptions(ctx context.Context, viewerID string, req paging.Request) (paging.Page[SubscriptionView], error)
}

type ViewStore interface {
	// RecordView upserts the viewer's view; a repeat view moves it to the
	// top of the history.
	RecordView(ctx context.Context, userID, videoID string) (VideoView, error)
	ListHistory(ctx context.Context, userID string, req paging.Request) (paging.Page[HistoryEntry], error)
}

// Store is everything the API needs from persistence.
type Store interface {
	UserStore
	CategoryStore
	VideoStore
	CommentStore
	ReactionStore
	PlaylistStore
	SubscriptionStore
	ViewStore
}

// Key accessors of every paginated collection.
var (
	VideoKeys = paging.Keys[VideoCard]{
		Primary: func(v VideoCard) time.Time { return v.UpdatedAt },
		Tie:     func(v VideoCard) string { return v.ID },
	}
	CommentKeys = paging.Keys[CommentView]{
		Primary: func(c CommentView) time.Time { return c.UpdatedAt },
		Tie:     func(c CommentView) string { return c.ID },
	}
	PlaylistKeys = paging.Keys[PlaylistCard]{
		Primary: func(p PlaylistCard) time.Time { return p.UpdatedAt },
		Tie:     func(p PlaylistCard) string { return p.ID },
	}
	HistoryKeys = paging.Keys[HistoryEntry]{
		Primary: func(h HistoryEntry) time.Time { return h.ViewedAt },
		Tie:     func(h HistoryEntry) string { return h.ID },
	}
	LikedKeys = paging.Keys[LikedVideo]{
		Primary: func(l LikedVideo) time.Time { return l.LikedAt },
		Tie:     func(l LikedVideo) string { return l.ID },
	}
	SubscriptionKeys = paging.Keys[SubscriptionView]{
		Primary: func(s SubscriptionView) time.Time { return s.UpdatedAt },
		Tie:     func(s SubscriptionView) string { return s.CreatorID },
	}
)
