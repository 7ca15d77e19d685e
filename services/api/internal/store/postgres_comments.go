package store

import (
	"context"

	"github.com/example/video-platform/internal/platform/paging"
	"github.com/jackc/pgx/v5"
)

const commentColumns = `c.id, c.video_id, c.user_id, c.parent_id, c.value, c.created_at, c.updated_at`

func scanComment(row pgx.Row) (Comment, error) {
	var c Comment
	err := row.Scan(&c.ID, &c.VideoID, &c.UserID, &c.ParentID, &c.Value, &c.CreatedAt, &c.UpdatedAt)
	return c, mapErr(err)
}

func (s *PostgresStore) CreateComment(ctx context.Context, c Comment) (Comment, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Comment{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM videos WHERE id = $1)`, c.VideoID).Scan(&exists); err != nil {
		return Comment{}, err
	}
	if !exists {
		return Comment{}, ErrNotFound
	}
	if c.ParentID != nil {
		var videoID string
		var grandParent *string
		err := tx.QueryRow(ctx, `SELECT video_id, parent_id FROM comments WHERE id = $1 FOR SHARE`, *c.ParentID).
			Scan(&videoID, &grandParent)
		if err != nil {
			return Comment{}, mapErr(err)
		}
		if grandParent != nil || videoID != c.VideoID {
			return Comment{}, ErrInvalidParent
		}
	}

	q := `INSERT INTO comments AS c (video_id, user_id, parent_id, value)
	      VALUES ($1, $2, $3, $4)
	      RETURNING ` + commentColumns
	out, err := scanComment(tx.QueryRow(ctx, q, c.VideoID, c.UserID, c.ParentID, c.Value))
	if err != nil {
		return Comment{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Comment{}, err
	}
	return out, nil
}

func (s *PostgresStore) DeleteComment(ctx context.Context, id, userID string) (Comment, error) {
	q := `DELETE FROM comments AS c WHERE c.id = $1 AND c.user_id = $2 RETURNING ` + commentColumns
	return scanComment(s.pool.QueryRow(ctx, q, id, userID))
}

func commentWhere(f CommentFilter) paging.Where {
	w := paging.Where{}.And("c.video_id = ?", f.VideoID)
	if f.ParentID == "" {
		return w.And("c.parent_id IS NULL")
	}
	return w.And("c.parent_id = ?", f.ParentID)
}

func (s *PostgresStore) ListComments(ctx context.Context, f CommentFilter, viewerID string, req paging.Request) (paging.Page[CommentView], error) {
	selectQ := `SELECT ` + commentColumns + `, u.id, u.name, u.image_url,
	       (SELECT count(*) FROM comments rc WHERE rc.parent_id = c.id),
	       (SELECT count(*) FROM comment_reactions r WHERE r.comment_id = c.id AND r.type = 'like'),
	       (SELECT count(*) FROM comment_reactions r WHERE r.comment_id = c.id AND r.type = 'dislike'),
	       (SELECT r.type FROM comment_reactions r WHERE r.comment_id = c.id AND r.user_id = NULLIF($1, '')::uuid)
	     FROM comments c JOIN users u ON u.id = c.user_id`
	return pgQuery[CommentView]{
		pool:    s.pool,
		selectQ: selectQ,
		countQ:  `SELECT count(*) FROM comments c`,
		where:   commentWhere(f),
		head:    []any{viewerID},
		primary: "c.updated_at",
		tie:     "c.id",
		keys:    CommentKeys,
		scan: func(row pgx.CollectableRow) (CommentView, error) {
			var v CommentView
			var reaction *string
			err := row.Scan(&v.ID, &v.VideoID, &v.UserID, &v.ParentID, &v.Value, &v.CreatedAt, &v.UpdatedAt,
				&v.User.ID, &v.User.Name, &v.User.ImageURL,
				&v.ReplyCount, &v.LikeCount, &v.DislikeCount, &reaction)
			v.ViewerReaction = toReaction(reaction)
			return v, err
		},
		withTotal: true,
	}.run(ctx, req)
}
