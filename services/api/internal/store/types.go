package store

import "time"

// User is a local account mirrored from the identity provider.
type User struct {
	ID        string    `json:"id"`
	AuthID    string    `json:"-"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserSummary is the author block embedded in list rows.
type UserSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, ImageURL: u.ImageURL}
}

// UserProfile is the public channel page of a user.
type UserProfile struct {
	User
	SubscriberCount  int64 `json:"subscriber_count"`
	VideoCount       int64 `json:"video_count"`
	ViewerSubscribed bool  `json:"viewer_subscribed"`
}

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// Video is a video row. Media fields are filled in by the hosted video
// pipeline as the upload progresses.
type Video struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	CategoryID     string     `json:"category_id,omitempty"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Visibility     Visibility `json:"visibility"`
	MuxStatus      string     `json:"mux_status,omitempty"`
	MuxUploadID    string     `json:"mux_upload_id,omitempty"`
	MuxAssetID     string     `json:"mux_asset_id,omitempty"`
	MuxPlaybackID  string     `json:"mux_playback_id,omitempty"`
	MuxTrackID     string     `json:"mux_track_id,omitempty"`
	MuxTrackStatus string     `json:"mux_track_status,omitempty"`
	ThumbnailURL   string     `json:"thumbnail_url,omitempty"`
	ThumbnailKey   string     `json:"-"`
	PreviewURL     string     `json:"preview_url,omitempty"`
	PreviewKey     string     `json:"-"`
	DurationMs     int64      `json:"duration_ms"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// VideoCard is a video list row with its author and counters.
type VideoCard struct {
	Video
	User         UserSummary `json:"user"`
	ViewCount    int64       `json:"view_count"`
	LikeCount    int64       `json:"like_count"`
	DislikeCount int64       `json:"dislike_count"`
}

// VideoDetail is the watch page of a video as seen by one viewer.
type VideoDetail struct {
	VideoCard
	SubscriberCount  int64         `json:"subscriber_count"`
	ViewerReaction   *ReactionType `json:"viewer_reaction"`
	ViewerSubscribed bool          `json:"viewer_subscribed"`
}

// VideoPatch holds owner-editable fields; nil leaves a field unchanged.
// An empty CategoryID clears the category.
type VideoPatch struct {
	Title       *string
	Description *string
	CategoryID  *string
	Visibility  *Visibility
}

// MediaUpdate holds pipeline-owned fields; nil leaves a field unchanged.
type MediaUpdate struct {
	MuxStatus      *string
	MuxAssetID     *string
	MuxPlaybackID  *string
	MuxTrackID     *string
	MuxTrackStatus *string
	ThumbnailURL   *string
	ThumbnailKey   *string
	PreviewURL     *string
	PreviewKey     *string
	DurationMs     *int64
}

// VideoFilter selects videos for ListVideos. Every set field adds one AND-ed
// clause; the zero value lists all public videos.
type VideoFilter struct {
	CategoryID string
	OwnerID    string
	// Query matches titles case-insensitively.
	Query     string
	ExcludeID string
	// SubscribedBy keeps videos whose author the given user subscribes to.
	SubscribedBy string
	PlaylistID   string
	// IncludePrivate lifts the public-only restriction. Only owner views set it.
	IncludePrivate bool
}

type ReactionType string

const (
	ReactionLike    ReactionType = "like"
	ReactionDislike ReactionType = "dislike"
)

func (r ReactionType) Valid() bool {
	return r == ReactionLike || r == ReactionDislike
}

type Comment struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"video_id"`
	UserID    string    `json:"user_id"`
	ParentID  *string   `json:"parent_id,omitempty"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommentView is a comment list row as seen by one viewer.
type CommentView struct {
	Comment
	User           UserSummary   `json:"user"`
	ReplyCount     int64         `json:"reply_count"`
	LikeCount      int64         `json:"like_count"`
	DislikeCount   int64         `json:"dislike_count"`
	ViewerReaction *ReactionType `json:"viewer_reaction"`
}

// CommentFilter selects the top-level comments of a video, or the replies
// to ParentID when it is set.
type CommentFilter struct {
	VideoID  string
	ParentID string
}

type Playlist struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PlaylistCard is a playlist list row. ThumbnailURL comes from the most
// recently added video. ContainsVideo is set only when the list was asked
// about a specific video.
type PlaylistCard struct {
	Playlist
	User          UserSummary `json:"user"`
	VideoCount    int64       `json:"video_count"`
	ThumbnailURL  string      `json:"thumbnail_url,omitempty"`
	ContainsVideo *bool       `json:"contains_video,omitempty"`
}

type PlaylistVideo struct {
	PlaylistID string    `json:"playlist_id"`
	VideoID    string    `json:"video_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Subscription struct {
	ViewerID  string    `json:"viewer_id"`
	CreatorID string    `json:"creator_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubscriptionView is a row of the viewer's subscriptions list.
type SubscriptionView struct {
	Subscription
	Creator         UserSummary `json:"creator"`
	SubscriberCount int64       `json:"subscriber_count"`
}

type VideoView struct {
	UserID    string    `json:"user_id"`
	VideoID   string    `json:"video_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HistoryEntry is a watch-history row; ViewedAt is the latest view.
type HistoryEntry struct {
	VideoCard
	ViewedAt time.Time `json:"viewed_at"`
}

// LikedVideo is a liked-videos row; LikedAt is when the like was set.
type LikedVideo struct {
	VideoCard
	LikedAt time.Time `json:"liked_at"`
}
