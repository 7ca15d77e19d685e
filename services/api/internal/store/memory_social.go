package store

import (
	"context"

	"github.com/example/video-platform/internal/platform/paging"
)

func (s *InMemoryStore) toggleLocked(m map[pair]reaction, key pair, t ReactionType) *ReactionType {
	now := s.stamp()
	r, ok := m[key]
	if ok && r.Type == t {
		delete(m, key)
		return nil
	}
	if !ok {
		r.CreatedAt = now
	}
	r.Type = t
	r.UpdatedAt = now
	m[key] = r
	out := t
	return &out
}

func (s *InMemoryStore) ToggleVideoReaction(_ context.Context, userID, videoID string, t ReactionType) (*ReactionType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.videos[videoID]; !ok {
		return nil, ErrNotFound
	}
	return s.toggleLocked(s.videoReactions, pair{userID, videoID}, t), nil
}

func (s *InMemoryStore) ToggleCommentReaction(_ context.Context, userID, commentID string, t ReactionType) (*ReactionType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[commentID]; !ok {
		return nil, ErrNotFound
	}
	return s.toggleLocked(s.commentReactions, pair{userID, commentID}, t), nil
}

func (s *InMemoryStore) ListLikedVideos(ctx context.Context, userID string, req paging.Request) (paging.Page[LikedVideo], error) {
	if err := req.Validate(); err != nil {
		return paging.Page[LikedVideo]{}, err
	}
	s.mu.RLock()
	var rows []LikedVideo
	for k, r := range s.videoReactions {
		if k.a != userID || r.Type != ReactionLike {
			continue
		}
		v, ok := s.videos[k.b]
		if !ok || v.Visibility != VisibilityPublic {
			continue
		}
		rows = append(rows, LikedVideo{VideoCard: s.cardLocked(v), LikedAt: r.UpdatedAt})
	}
	s.mu.RUnlock()
	return page(ctx, rows, LikedKeys, req, false)
}

func (s *InMemoryStore) Subscribe(_ context.Context, viewerID, creatorID string) (Subscription, error) {
	if viewerID == creatorID {
		return Subscription{}, ErrSelfSubscription
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[creatorID]; !ok {
		return Subscription{}, ErrNotFound
	}
	key := pair{viewerID, creatorID}
	if _, ok := s.subscriptions[key]; ok {
		return Subscription{}, ErrConflict
	}
	now := s.stamp()
	sub := Subscription{ViewerID: viewerID, CreatorID: creatorID, CreatedAt: now, UpdatedAt: now}
	s.subscriptions[key] = sub
	return sub, nil
}

func (s *InMemoryStore) Unsubscribe(_ context.Context, viewerID, creatorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pair{viewerID, creatorID}
	if _, ok := s.subscriptions[key]; !ok {
		return ErrNotFound
	}
	delete(s.subscriptions, key)
	return nil
}

func (s *InMemoryStore) ListSubscriptions(ctx context.Context, viewerID string, req paging.Request) (paging.Page[SubscriptionView], error) {
	if err := req.Validate(); err != nil {
		return paging.Page[SubscriptionView]{}, err
	}
	s.mu.RLock()
	var rows []SubscriptionView
	for k, sub := range s.subscriptions {
		if k.a != viewerID {
			continue
		}
		rows = append(rows, SubscriptionView{
			Subscription:    sub,
			Creator:         s.users[k.b].Summary(),
			SubscriberCount: s.subscriberCountLocked(k.b),
		})
	}
	s.mu.RUnlock()
	return page(ctx, rows, SubscriptionKeys, req, false)
}

func (s *InMemoryStore) RecordView(_ context.Context, userID, videoID string) (VideoView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.videos[videoID]; !ok {
		return VideoView{}, ErrNotFound
	}
	now := s.stamp()
	key := pair{userID, videoID}
	v, ok := s.views[key]
	if !ok {
		v = VideoView{UserID: userID, VideoID: videoID, CreatedAt: now}
	}
	v.UpdatedAt = now
	s.views[key] = v
	return v, nil
}

func (s *InMemoryStore) ListHistory(ctx context.Context, userID string, req paging.Request) (paging.Page[HistoryEntry], error) {
	if err := req.Validate(); err != nil {
		return paging.Page[HistoryEntry]{}, err
	}
	s.mu.RLock()
	var rows []HistoryEntry
	for k, view := range s.views {
		if k.a != userID {
			continue
		}
		v, ok := s.videos[k.b]
		if !ok || v.Visibility != VisibilityPublic {
			continue
		}
		rows = append(rows, HistoryEntry{VideoCard: s.cardLocked(v), ViewedAt: view.UpdatedAt})
	}
	s.mu.RUnlock()
	return page(ctx, rows, HistoryKeys, req, false)
}
