package store

import (
	"context"
	"strconv"
	"strings"

	"github.com/example/video-platform/internal/platform/paging"
	"github.com/jackc/pgx/v5"
)

const videoColumns = `v.id, v.user_id, COALESCE(v.category_id::text, ''), v.title, COALESCE(v.description, ''),
	v.visibility, COALESCE(v.mux_status, ''), COALESCE(v.mux_upload_id, ''), COALESCE(v.mux_asset_id, ''),
	COALESCE(v.mux_playback_id, ''), COALESCE(v.mux_track_id, ''), COALESCE(v.mux_track_status, ''),
	COALESCE(v.thumbnail_url, ''), COALESCE(v.thumbnail_key, ''), COALESCE(v.preview_url, ''),
	COALESCE(v.preview_key, ''), v.duration_ms, v.created_at, v.updated_at`

const videoCardColumns = videoColumns + `, u.id, u.name, u.image_url,
	(SELECT count(*) FROM video_views vv WHERE vv.video_id = v.id),
	(SELECT count(*) FROM video_reactions r WHERE r.video_id = v.id AND r.type = 'like'),
	(SELECT count(*) FROM video_reactions r WHERE r.video_id = v.id AND r.type = 'dislike')`

const videoCardFrom = ` FROM videos v JOIN users u ON u.id = v.user_id`

func videoDest(v *Video) []any {
	return []any{&v.ID, &v.UserID, &v.CategoryID, &v.Title, &v.Description,
		&v.Visibility, &v.MuxStatus, &v.MuxUploadID, &v.MuxAssetID,
		&v.MuxPlaybackID, &v.MuxTrackID, &v.MuxTrackStatus,
		&v.ThumbnailURL, &v.ThumbnailKey, &v.PreviewURL,
		&v.PreviewKey, &v.DurationMs, &v.CreatedAt, &v.UpdatedAt}
}

func videoCardDest(c *VideoCard) []any {
	return append(videoDest(&c.Video), &c.User.ID, &c.User.Name, &c.User.ImageURL,
		&c.ViewCount, &c.LikeCount, &c.DislikeCount)
}

func scanVideo(row pgx.Row) (Video, error) {
	var v Video
	err := row.Scan(videoDest(&v)...)
	return v, mapErr(err)
}

func scanVideoCard(row pgx.CollectableRow) (VideoCard, error) {
	var c VideoCard
	err := row.Scan(videoCardDest(&c)...)
	return c, err
}

func (s *PostgresStore) CreateVideo(ctx context.Context, v Video) (Video, error) {
	if v.Visibility == "" {
		v.Visibility = VisibilityPrivate
	}
	q := `INSERT INTO videos AS v (user_id, category_id, title, description, visibility,
	                               mux_status, mux_upload_id, thumbnail_url, thumbnail_key)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	      RETURNING ` + videoColumns
	return scanVideo(s.pool.QueryRow(ctx, q, v.UserID, nullIfEmpty(v.CategoryID), v.Title,
		nullIfEmpty(v.Description), v.Visibility, nullIfEmpty(v.MuxStatus), nullIfEmpty(v.MuxUploadID),
		nullIfEmpty(v.ThumbnailURL), nullIfEmpty(v.ThumbnailKey)))
}

func (s *PostgresStore) GetVideo(ctx context.Context, id string) (Video, error) {
	return scanVideo(s.pool.QueryRow(ctx, `SELECT `+videoColumns+` FROM videos v WHERE v.id = $1`, id))
}

func (s *PostgresStore) GetOwnedVideo(ctx context.Context, id, ownerID string) (Video, error) {
	q := `SELECT ` + videoColumns + ` FROM videos v WHERE v.id = $1 AND v.user_id = $2`
	return scanVideo(s.pool.QueryRow(ctx, q, id, ownerID))
}

func (s *PostgresStore) FindVideoByUploadID(ctx context.Context, uploadID string) (Video, error) {
	q := `SELECT ` + videoColumns + ` FROM videos v WHERE v.mux_upload_id = $1`
	return scanVideo(s.pool.QueryRow(ctx, q, uploadID))
}

func (s *PostgresStore) FindVideoByAssetID(ctx context.Context, assetID string) (Video, error) {
	q := `SELECT ` + videoColumns + ` FROM videos v WHERE v.mux_asset_id = $1`
	return scanVideo(s.pool.QueryRow(ctx, q, assetID))
}

func (s *PostgresStore) GetVideoDetail(ctx context.Context, id, viewerID string) (VideoDetail, error) {
	q := `SELECT ` + videoCardColumns + `,
	        (SELECT count(*) FROM subscriptions s WHERE s.creator_id = v.user_id),
	        (SELECT r.type FROM video_reactions r WHERE r.video_id = v.id AND r.user_id = NULLIF($2, '')::uuid),
	        EXISTS (SELECT 1 FROM subscriptions s
	                 WHERE s.creator_id = v.user_id AND s.viewer_id = NULLIF($2, '')::uuid)` +
		videoCardFrom + `
	      WHERE v.id = $1 AND (v.visibility = 'public' OR v.user_id = NULLIF($2, '')::uuid)`
	var d VideoDetail
	var reaction *string
	dest := append(videoCardDest(&d.VideoCard), &d.SubscriberCount, &reaction, &d.ViewerSubscribed)
	if err := s.pool.QueryRow(ctx, q, id, viewerID).Scan(dest...); err != nil {
		return VideoDetail{}, mapErr(err)
	}
	d.ViewerReaction = toReaction(reaction)
	return d, nil
}

func toReaction(s *string) *ReactionType {
	if s == nil {
		return nil
	}
	t := ReactionType(*s)
	return &t
}

func (s *PostgresStore) UpdateVideo(ctx context.Context, id, ownerID string, p VideoPatch) (Video, error) {
	var category *string
	clearCategory := false
	if p.CategoryID != nil {
		category = nullIfEmpty(*p.CategoryID)
		clearCategory = *p.CategoryID == ""
	}
	var visibility *string
	if p.Visibility != nil {
		vis := string(*p.Visibility)
		visibility = &vis
	}
	q := `UPDATE videos AS v SET
	        title       = COALESCE($3, v.title),
	        description = COALESCE($4, v.description),
	        category_id = CASE WHEN $6 THEN NULL ELSE COALESCE($5::uuid, v.category_id) END,
	        visibility  = COALESCE($7, v.visibility),
	        updated_at  = now()
	      WHERE v.id = $1 AND v.user_id = $2
	      RETURNING ` + videoColumns
	return scanVideo(s.pool.QueryRow(ctx, q, id, ownerID, p.Title, p.Description, category, clearCategory, visibility))
}

// mediaColumns lists the pipeline-owned text columns in MediaUpdate order.
var mediaColumns = []string{
	"mux_status", "mux_asset_id", "mux_playback_id", "mux_track_id", "mux_track_status",
	"thumbnail_url", "thumbnail_key", "preview_url", "preview_key",
}

// UpdateVideoMedia leaves nil fields unchanged and stores empty strings as
// NULL so cleared ids never collide on the unique columns.
func (s *PostgresStore) UpdateVideoMedia(ctx context.Context, id string, m MediaUpdate) (Video, error) {
	values := []*string{
		m.MuxStatus, m.MuxAssetID, m.MuxPlaybackID, m.MuxTrackID, m.MuxTrackStatus,
		m.ThumbnailURL, m.ThumbnailKey, m.PreviewURL, m.PreviewKey,
	}
	sets := make([]string, 0, len(mediaColumns)+1)
	args := []any{id}
	for i, col := range mediaColumns {
		n := strconv.Itoa(len(args) + 1)
		sets = append(sets, col+" = CASE WHEN $"+n+"::text IS NULL THEN v."+col+" ELSE NULLIF($"+n+"::text, '') END")
		args = append(args, values[i])
	}
	args = append(args, m.DurationMs)
	sets = append(sets, "duration_ms = COALESCE($"+strconv.Itoa(len(args))+"::bigint, v.duration_ms)")

	q := `UPDATE videos AS v SET ` + strings.Join(sets, ", ") + ` WHERE v.id = $1 RETURNING ` + videoColumns
	return scanVideo(s.pool.QueryRow(ctx, q, args...))
}

func (s *PostgresStore) DeleteVideo(ctx context.Context, id, ownerID string) (Video, error) {
	q := `DELETE FROM videos AS v WHERE v.id = $1 AND v.user_id = $2 RETURNING ` + videoColumns
	return scanVideo(s.pool.QueryRow(ctx, q, id, ownerID))
}

func (s *PostgresStore) PurgeVideo(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func videoWhere(f VideoFilter) paging.Where {
	var w paging.Where
	w = w.AndIf(!f.IncludePrivate, "v.visibility = 'public'")
	w = w.AndIf(f.CategoryID != "", "v.category_id = ?", f.CategoryID)
	w = w.AndIf(f.OwnerID != "", "v.user_id = ?", f.OwnerID)
	w = w.AndIf(f.Query != "", "v.title ILIKE ?", "%"+escapeLike(f.Query)+"%")
	w = w.AndIf(f.ExcludeID != "", "v.id <> ?", f.ExcludeID)
	w = w.AndIf(f.SubscribedBy != "",
		"EXISTS (SELECT 1 FROM subscriptions s WHERE s.viewer_id = ? AND s.creator_id = v.user_id)", f.SubscribedBy)
	w = w.AndIf(f.PlaylistID != "",
		"EXISTS (SELECT 1 FROM playlist_videos pv WHERE pv.playlist_id = ? AND pv.video_id = v.id)", f.PlaylistID)
	return w
}

func (s *PostgresStore) ListVideos(ctx context.Context, f VideoFilter, req paging.Request) (paging.Page[VideoCard], error) {
	return pgQuery[VideoCard]{
		pool:    s.pool,
		selectQ: `SELECT ` + videoCardColumns + videoCardFrom,
		where:   videoWhere(f),
		primary: "v.updated_at",
		tie:     "v.id",
		keys:    VideoKeys,
		scan:    scanVideoCard,
	}.run(ctx, req)
}
