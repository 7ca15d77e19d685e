package store

import (
	"context"
	"strings"

	"github.com/example/video-platform/internal/platform/paging"
	"github.com/google/uuid"
)

func (s *InMemoryStore) CreateVideo(_ context.Context, v Video) (Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[v.UserID]; !ok {
		return Video{}, ErrNotFound
	}
	if v.CategoryID != "" {
		if _, ok := s.categories[v.CategoryID]; !ok {
			return Video{}, ErrNotFound
		}
	}
	if v.Visibility == "" {
		v.Visibility = VisibilityPrivate
	}
	now := s.stamp()
	v.ID = uuid.NewString()
	v.CreatedAt = now
	v.UpdatedAt = now
	s.videos[v.ID] = v
	return v, nil
}

func (s *InMemoryStore) GetVideo(_ context.Context, id string) (Video, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.videos[id]
	if !ok {
		return Video{}, ErrNotFound
	}
	return v, nil
}

func (s *InMemoryStore) GetOwnedVideo(_ context.Context, id, ownerID string) (Video, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.videos[id]
	if !ok || v.UserID != ownerID {
		return Video{}, ErrNotFound
	}
	return v, nil
}

func (s *InMemoryStore) findVideo(match func(Video) bool) (Video, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, v := range s.videos {
		if match(v) {
			return v, nil
		}
	}
	return Video{}, ErrNotFound
}

func (s *InMemoryStore) FindVideoByUploadID(_ context.Context, uploadID string) (Video, error) {
	return s.findVideo(func(v Video) bool { return uploadID != "" && v.MuxUploadID == uploadID })
}

func (s *InMemoryStore) FindVideoByAssetID(_ context.Context, assetID string) (Video, error) {
	return s.findVideo(func(v Video) bool { return assetID != "" && v.MuxAssetID == assetID })
}

func (s *InMemoryStore) GetVideoDetail(_ context.Context, id, viewerID string) (VideoDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.videos[id]
	if !ok || (v.Visibility != VisibilityPublic && v.UserID != viewerID) {
		return VideoDetail{}, ErrNotFound
	}
	d := VideoDetail{
		VideoCard:       s.cardLocked(v),
		SubscriberCount: s.subscriberCountLocked(v.UserID),
	}
	if viewerID != "" {
		if r, ok := s.videoReactions[pair{viewerID, id}]; ok {
			t := r.Type
			d.ViewerReaction = &t
		}
		_, d.ViewerSubscribed = s.subscriptions[pair{viewerID, v.UserID}]
	}
	return d, nil
}

func (s *InMemoryStore) cardLocked(v Video) VideoCard {
	c := VideoCard{Video: v, User: s.users[v.UserID].Summary()}
	for k := range s.views {
		if k.b == v.ID {
			c.ViewCount++
		}
	}
	for k, r := range s.videoReactions {
		if k.b != v.ID {
			continue
		}
		switch r.Type {
		case ReactionLike:
			c.LikeCount++
		case ReactionDislike:
			c.DislikeCount++
		}
	}
	return c
}

func (s *InMemoryStore) UpdateVideo(_ context.Context, id, ownerID string, p VideoPatch) (Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.videos[id]
	if !ok || v.UserID != ownerID {
		return Video{}, ErrNotFound
	}
	if p.CategoryID != nil && *p.CategoryID != "" {
		if _, ok := s.categories[*p.CategoryID]; !ok {
			return Video{}, ErrNotFound
		}
	}
	setIf(&v.Title, p.Title)
	setIf(&v.Description, p.Description)
	setIf(&v.CategoryID, p.CategoryID)
	setIf(&v.Visibility, p.Visibility)
	v.UpdatedAt = s.stamp()
	s.videos[id] = v
	return v, nil
}

func (s *InMemoryStore) UpdateVideoMedia(_ context.Context, id string, m MediaUpdate) (Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.videos[id]
	if !ok {
		return Video{}, ErrNotFound
	}
	setIf(&v.MuxStatus, m.MuxStatus)
	setIf(&v.MuxAssetID, m.MuxAssetID)
	setIf(&v.MuxPlaybackID, m.MuxPlaybackID)
	setIf(&v.MuxTrackID, m.MuxTrackID)
	setIf(&v.MuxTrackStatus, m.MuxTrackStatus)
	setIf(&v.ThumbnailURL, m.ThumbnailURL)
	setIf(&v.ThumbnailKey, m.ThumbnailKey)
	setIf(&v.PreviewURL, m.PreviewURL)
	setIf(&v.PreviewKey, m.PreviewKey)
	setIf(&v.DurationMs, m.DurationMs)
	s.videos[id] = v
	return v, nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func (s *InMemoryStore) DeleteVideo(_ context.Context, id, ownerID string) (Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.videos[id]
	if !ok || v.UserID != ownerID {
		return Video{}, ErrNotFound
	}
	s.deleteVideoLocked(id)
	return v, nil
}

func (s *InMemoryStore) PurgeVideo(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.videos[id]; !ok {
		return ErrNotFound
	}
	s.deleteVideoLocked(id)
	return nil
}

func (s *InMemoryStore) deleteVideoLocked(id string) {
	delete(s.videos, id)
	for cid, c := range s.comments {
		if c.VideoID == id {
			s.deleteCommentLocked(cid)
		}
	}
	for k := range s.videoReactions {
		if k.b == id {
			delete(s.videoReactions, k)
		}
	}
	for k := range s.views {
		if k.b == id {
			delete(s.views, k)
		}
	}
	for k := range s.playlistVideos {
		if k.b == id {
			delete(s.playlistVideos, k)
		}
	}
}

func (s *InMemoryStore) videoMatchesLocked(v Video, f VideoFilter) bool {
	if !f.IncludePrivate && v.Visibility != VisibilityPublic {
		return false
	}
	if f.CategoryID != "" && v.CategoryID != f.CategoryID {
		return false
	}
	if f.OwnerID != "" && v.UserID != f.OwnerID {
		return false
	}
	if f.Query != "" && !strings.Contains(strings.ToLower(v.Title), strings.ToLower(f.Query)) {
		return false
	}
	if f.ExcludeID != "" && v.ID == f.ExcludeID {
		return false
	}
	if f.SubscribedBy != "" {
		if _, ok := s.subscriptions[pair{f.SubscribedBy, v.UserID}]; !ok {
			return false
		}
	}
	if f.PlaylistID != "" {
		if _, ok := s.playlistVideos[pair{f.PlaylistID, v.ID}]; !ok {
			return false
		}
	}
	return true
}

func (s *InMemoryStore) ListVideos(ctx context.Context, f VideoFilter, req paging.Request) (paging.Page[VideoCard], error) {
	if err := req.Validate(); err != nil {
		return paging.Page[VideoCard]{}, err
	}
	s.mu.RLock()
	var rows []VideoCard
	for _, v := range s.videos {
		if s.videoMatchesLocked(v, f) {
			rows = append(rows, s.cardLocked(v))
		}
	}
	s.mu.RUnlock()
	return page(ctx, rows, VideoKeys, req, false)
}
