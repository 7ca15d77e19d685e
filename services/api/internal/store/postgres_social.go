package store

import (
	"context"
	"errors"

	"github.com/example/video-platform/internal/platform/paging"
	"github.com/jackc/pgx/v5"
)

// toggleReaction applies the toggle rule to one row of a reactions table.
// table and column are constants supplied by the callers below.
func (s *PostgresStore) toggleReaction(ctx context.Context, table, column, targetTable, userID, targetID string, t ReactionType) (*ReactionType, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM `+targetTable+` WHERE id = $1)`, targetID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	var current string
	err = tx.QueryRow(ctx, `SELECT type FROM `+table+` WHERE user_id = $1 AND `+column+` = $2 FOR UPDATE`,
		userID, targetID).Scan(&current)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return nil, err
	}

	var result *ReactionType
	if current == string(t) {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE user_id = $1 AND `+column+` = $2`, userID, targetID); err != nil {
			return nil, err
		}
	} else {
		_, err := tx.Exec(ctx, `INSERT INTO `+table+` (user_id, `+column+`, type) VALUES ($1, $2, $3)
		                        ON CONFLICT (user_id, `+column+`) DO UPDATE
		                          SET type = EXCLUDED.type, updated_at = now()`,
			userID, targetID, string(t))
		if err != nil {
			return nil, mapErr(err)
		}
		result = &t
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PostgresStore) ToggleVideoReaction(ctx context.Context, userID, videoID string, t ReactionType) (*ReactionType, error) {
	return s.toggleReaction(ctx, "video_reactions", "video_id", "videos", userID, videoID, t)
}

func (s *PostgresStore) ToggleCommentReaction(ctx context.Context, userID, commentID string, t ReactionType) (*ReactionType, error) {
	return s.toggleReaction(ctx, "comment_reactions", "comment_id", "comments", userID, commentID, t)
}

func (s *PostgresStore) ListLikedVideos(ctx context.Context, userID string, req paging.Request) (paging.Page[LikedVideo], error) {
	where := paging.Where{}.
		And("lr.user_id = ?", userID).
		And("lr.type = 'like'").
		And("v.visibility = 'public'")
	return pgQuery[LikedVideo]{
		pool:    s.pool,
		selectQ: `SELECT ` + videoCardColumns + `, lr.updated_at` + videoCardFrom + ` JOIN video_reactions lr ON lr.video_id = v.id`,
		where:   where,
		primary: "lr.updated_at",
		tie:     "v.id",
		keys:    LikedKeys,
		scan: func(row pgx.CollectableRow) (LikedVideo, error) {
			var l LikedVideo
			err := row.Scan(append(videoCardDest(&l.VideoCard), &l.LikedAt)...)
			return l, err
		},
	}.run(ctx, req)
}

func (s *PostgresStore) Subscribe(ctx context.Context, viewerID, creatorID string) (Subscription, error) {
	if viewerID == creatorID {
		return Subscription{}, ErrSelfSubscription
	}
	const q = `INSERT INTO subscriptions (viewer_id, creator_id) VALUES ($1, $2)
	           RETURNING viewer_id, creator_id, created_at, updated_at`
	var sub Subscription
	err := s.pool.QueryRow(ctx, q, viewerID, creatorID).
		Scan(&sub.ViewerID, &sub.CreatorID, &sub.CreatedAt, &sub.UpdatedAt)
	return sub, mapErr(err)
}

func (s *PostgresStore) Unsubscribe(ctx context.Context, viewerID, creatorID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM subscriptions WHERE viewer_id = $1 AND creator_id = $2`, viewerID, creatorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListSubscriptions(ctx context.Context, viewerID string, req paging.Request) (paging.Page[SubscriptionView], error) {
	selectQ := `SELECT s.viewer_id, s.creator_id, s.created_at, s.updated_at, u.id, u.name, u.image_url,
	       (SELECT count(*) FROM subscriptions cs WHERE cs.creator_id = s.creator_id)
	     FROM subscriptions s JOIN users u ON u.id = s.creator_id`
	return pgQuery[SubscriptionView]{
		pool:    s.pool,
		selectQ: selectQ,
		where:   paging.Where{}.And("s.viewer_id = ?", viewerID),
		primary: "s.updated_at",
		tie:     "s.creator_id",
		keys:    SubscriptionKeys,
		scan: func(row pgx.CollectableRow) (SubscriptionView, error) {
			var v SubscriptionView
			err := row.Scan(&v.ViewerID, &v.CreatorID, &v.CreatedAt, &v.UpdatedAt,
				&v.Creator.ID, &v.Creator.Name, &v.Creator.ImageURL, &v.SubscriberCount)
			return v, err
		},
	}.run(ctx, req)
}

func (s *PostgresStore) RecordView(ctx context.Context, userID, videoID string) (VideoView, error) {
	const q = `INSERT INTO video_views (user_id, video_id) VALUES ($1, $2)
	           ON CONFLICT (user_id, video_id) DO UPDATE SET updated_at = now()
	           RETURNING user_id, video_id, created_at, updated_at`
	var v VideoView
	err := s.pool.QueryRow(ctx, q, userID, videoID).Scan(&v.UserID, &v.VideoID, &v.CreatedAt, &v.UpdatedAt)
	return v, mapErr(err)
}

func (s *PostgresStore) ListHistory(ctx context.Context, userID string, req paging.Request) (paging.Page[HistoryEntry], error) {
	where := paging.Where{}.
		And("vw.user_id = ?", userID).
		And("v.visibility = 'public'")
	return pgQuery[HistoryEntry]{
		pool:    s.pool,
		selectQ: `SELECT ` + videoCardColumns + `, vw.updated_at` + videoCardFrom + ` JOIN video_views vw ON vw.video_id = v.id`,
		where:   where,
		primary: "vw.updated_at",
		tie:     "v.id",
		keys:    HistoryKeys,
		scan: func(row pgx.CollectableRow) (HistoryEntry, error) {
			var h HistoryEntry
			err := row.Scan(append(videoCardDest(&h.VideoCard), &h.ViewedAt)...)
			return h, err
		},
	}.run(ctx, req)
}
