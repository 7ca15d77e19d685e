package store

import (
	"context"
	"fmt"

	"github.com/example/video-platform/internal/platform/paging"
	"github.com/jackc/pgx/v5"
)

const playlistColumns = `p.id, p.user_id, p.name, COALESCE(p.description, ''), p.created_at, p.updated_at`

func scanPlaylist(row pgx.Row) (Playlist, error) {
	var p Playlist
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	return p, mapErr(err)
}

func (s *PostgresStore) CreatePlaylist(ctx context.Context, p Playlist) (Playlist, error) {
	q := `INSERT INTO playlists AS p (user_id, name, description) VALUES ($1, $2, $3)
	      RETURNING ` + playlistColumns
	return scanPlaylist(s.pool.QueryRow(ctx, q, p.UserID, p.Name, nullIfEmpty(p.Description)))
}

func (s *PostgresStore) GetPlaylist(ctx context.Context, id, ownerID string) (Playlist, error) {
	q := `SELECT ` + playlistColumns + ` FROM playlists p WHERE p.id = $1 AND p.user_id = $2`
	return scanPlaylist(s.pool.QueryRow(ctx, q, id, ownerID))
}

func (s *PostgresStore) DeletePlaylist(ctx context.Context, id, ownerID string) (Playlist, error) {
	q := `DELETE FROM playlists AS p WHERE p.id = $1 AND p.user_id = $2 RETURNING ` + playlistColumns
	return scanPlaylist(s.pool.QueryRow(ctx, q, id, ownerID))
}

func (s *PostgresStore) ListPlaylists(ctx context.Context, ownerID, containsVideoID string, req paging.Request) (paging.Page[PlaylistCard], error) {
	selectQ := `SELECT ` + playlistColumns + `, u.id, u.name, u.image_url,
	       (SELECT count(*) FROM playlist_videos pv WHERE pv.playlist_id = p.id),
	       COALESCE((SELECT v.thumbnail_url FROM playlist_videos pv JOIN videos v ON v.id = pv.video_id
	                  WHERE pv.playlist_id = p.id
	                  ORDER BY pv.updated_at DESC LIMIT 1), ''),
	       CASE WHEN $1 = '' THEN NULL
	            ELSE EXISTS (SELECT 1 FROM playlist_videos pv
	                          WHERE pv.playlist_id = p.id AND pv.video_id = NULLIF($1, '')::uuid)
	       END
	     FROM playlists p JOIN users u ON u.id = p.user_id`
	return pgQuery[PlaylistCard]{
		pool:    s.pool,
		selectQ: selectQ,
		where:   paging.Where{}.And("p.user_id = ?", ownerID),
		head:    []any{containsVideoID},
		primary: "p.updated_at",
		tie:     "p.id",
		keys:    PlaylistKeys,
		scan: func(row pgx.CollectableRow) (PlaylistCard, error) {
			var c PlaylistCard
			err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt,
				&c.User.ID, &c.User.Name, &c.User.ImageURL,
				&c.VideoCount, &c.ThumbnailURL, &c.ContainsVideo)
			return c, err
		},
	}.run(ctx, req)
}

// checkPlaylistVideo locks the playlist row and applies the ownership and
// existence checks shared by adding and removing entries.
func checkPlaylistVideo(ctx context.Context, tx pgx.Tx, playlistID, videoID, userID string) error {
	var owner string
	err := tx.QueryRow(ctx, `SELECT user_id FROM playlists WHERE id = $1 FOR UPDATE`, playlistID).Scan(&owner)
	if err != nil {
		return fmt.Errorf("playlist: %w", mapErr(err))
	}
	if owner != userID {
		return fmt.Errorf("playlist: %w", ErrForbidden)
	}
	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM videos WHERE id = $1)`, videoID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("video: %w", ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) AddPlaylistVideo(ctx context.Context, playlistID, videoID, userID string) (PlaylistVideo, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return PlaylistVideo{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := checkPlaylistVideo(ctx, tx, playlistID, videoID, userID); err != nil {
		return PlaylistVideo{}, err
	}
	var pv PlaylistVideo
	err = tx.QueryRow(ctx, `INSERT INTO playlist_videos (playlist_id, video_id) VALUES ($1, $2)
	                        RETURNING playlist_id, video_id, created_at, updated_at`, playlistID, videoID).
		Scan(&pv.PlaylistID, &pv.VideoID, &pv.CreatedAt, &pv.UpdatedAt)
	if err != nil {
		return PlaylistVideo{}, mapErr(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return PlaylistVideo{}, err
	}
	return pv, nil
}

func (s *PostgresStore) RemovePlaylistVideo(ctx context.Context, playlistID, videoID, userID string) (PlaylistVideo, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return PlaylistVideo{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := checkPlaylistVideo(ctx, tx, playlistID, videoID, userID); err != nil {
		return PlaylistVideo{}, err
	}
	var pv PlaylistVideo
	err = tx.QueryRow(ctx, `DELETE FROM playlist_videos WHERE playlist_id = $1 AND video_id = $2
	                        RETURNING playlist_id, video_id, created_at, updated_at`, playlistID, videoID).
		Scan(&pv.PlaylistID, &pv.VideoID, &pv.CreatedAt, &pv.UpdatedAt)
	if err != nil {
		return PlaylistVideo{}, fmt.Errorf("playlist video: %w", mapErr(err))
	}
	if err := tx.Commit(ctx); err != nil {
		return PlaylistVideo{}, err
	}
	return pv, nil
}

var (
	_ Store = (*PostgresStore)(nil)
	_ Store = (*InMemoryStore)(nil)
)
