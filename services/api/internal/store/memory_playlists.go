package store

import (
	"context"
	"fmt"

	"github.com/example/video-platform/internal/platform/paging"
	"github.com/google/uuid"
)

func (s *InMemoryStore) CreatePlaylist(_ context.Context, p Playlist) (Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[p.UserID]; !ok {
		return Playlist{}, ErrNotFound
	}
	now := s.stamp()
	p.ID = uuid.NewString()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.playlists[p.ID] = p
	return p, nil
}

func (s *InMemoryStore) GetPlaylist(_ context.Context, id, ownerID string) (Playlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.playlists[id]
	if !ok || p.UserID != ownerID {
		return Playlist{}, ErrNotFound
	}
	return p, nil
}

func (s *InMemoryStore) DeletePlaylist(_ context.Context, id, ownerID string) (Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.playlists[id]
	if !ok || p.UserID != ownerID {
		return Playlist{}, ErrNotFound
	}
	s.deletePlaylistLocked(id)
	return p, nil
}

func (s *InMemoryStore) deletePlaylistLocked(id string) {
	delete(s.playlists, id)
	for k := range s.playlistVideos {
		if k.a == id {
			delete(s.playlistVideos, k)
		}
	}
}

func (s *InMemoryStore) ListPlaylists(ctx context.Context, ownerID, containsVideoID string, req paging.Request) (paging.Page[PlaylistCard], error) {
	if err := req.Validate(); err != nil {
		return paging.Page[PlaylistCard]{}, err
	}
	s.mu.RLock()
	var rows []PlaylistCard
	for _, p := range s.playlists {
		if p.UserID != ownerID {
			continue
		}
		card := PlaylistCard{Playlist: p, User: s.users[p.UserID].Summary()}
		var latest PlaylistVideo
		for k, pv := range s.playlistVideos {
			if k.a != p.ID {
				continue
			}
			card.VideoCount++
			if latest.VideoID == "" || pv.UpdatedAt.After(latest.UpdatedAt) {
				latest = pv
			}
		}
		if latest.VideoID != "" {
			card.ThumbnailURL = s.videos[latest.VideoID].ThumbnailURL
		}
		if containsVideoID != "" {
			_, ok := s.playlistVideos[pair{p.ID, containsVideoID}]
			card.ContainsVideo = &ok
		}
		rows = append(rows, card)
	}
	s.mu.RUnlock()
	return page(ctx, rows, PlaylistKeys, req, false)
}

// checkPlaylistVideoLocked applies the ownership and existence checks shared
// by adding and removing playlist entries.
func (s *InMemoryStore) checkPlaylistVideoLocked(playlistID, videoID, userID string) error {
	p, ok := s.playlists[playlistID]
	if !ok {
		return fmt.Errorf("playlist: %w", ErrNotFound)
	}
	if p.UserID != userID {
		return fmt.Errorf("playlist: %w", ErrForbidden)
	}
	if _, ok := s.videos[videoID]; !ok {
		return fmt.Errorf("video: %w", ErrNotFound)
	}
	return nil
}

func (s *InMemoryStore) AddPlaylistVideo(_ context.Context, playlistID, videoID, userID string) (PlaylistVideo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkPlaylistVideoLocked(playlistID, videoID, userID); err != nil {
		return PlaylistVideo{}, err
	}
	key := pair{playlistID, videoID}
	if _, ok := s.playlistVideos[key]; ok {
		return PlaylistVideo{}, ErrConflict
	}
	now := s.stamp()
	pv := PlaylistVideo{PlaylistID: playlistID, VideoID: videoID, CreatedAt: now, UpdatedAt: now}
	s.playlistVideos[key] = pv
	return pv, nil
}

func (s *InMemoryStore) RemovePlaylistVideo(_ context.Context, playlistID, videoID, userID string) (PlaylistVideo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkPlaylistVideoLocked(playlistID, videoID, userID); err != nil {
		return PlaylistVideo{}, err
	}
	key := pair{playlistID, videoID}
	pv, ok := s.playlistVideos[key]
	if !ok {
		return PlaylistVideo{}, fmt.Errorf("playlist video: %w", ErrNotFound)
	}
	delete(s.playlistVideos, key)
	return pv, nil
}
