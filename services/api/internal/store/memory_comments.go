package store

import (
	"context"

	"github.com/example/video-platform/internal/platform/paging"
	"github.com/google/uuid"
)

func (s *InMemoryStore) CreateComment(_ context.Context, c Comment) (Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.videos[c.VideoID]; !ok {
		return Comment{}, ErrNotFound
	}
	if c.ParentID != nil {
		parent, ok := s.comments[*c.ParentID]
		if !ok {
			return Comment{}, ErrNotFound
		}
		if parent.ParentID != nil || parent.VideoID != c.VideoID {
			return Comment{}, ErrInvalidParent
		}
	}
	now := s.stamp()
	c.ID = uuid.NewString()
	c.CreatedAt = now
	c.UpdatedAt = now
	s.comments[c.ID] = c
	return c, nil
}

func (s *InMemoryStore) DeleteComment(_ context.Context, id, userID string) (Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok || c.UserID != userID {
		return Comment{}, ErrNotFound
	}
	s.deleteCommentLocked(id)
	return c, nil
}

func (s *InMemoryStore) deleteCommentLocked(id string) {
	delete(s.comments, id)
	for k := range s.commentReactions {
		if k.b == id {
			delete(s.commentReactions, k)
		}
	}
	for rid, r := range s.comments {
		if r.ParentID != nil && *r.ParentID == id {
			s.deleteCommentLocked(rid)
		}
	}
}

func (s *InMemoryStore) ListComments(ctx context.Context, f CommentFilter, viewerID string, req paging.Request) (paging.Page[CommentView], error) {
	if err := req.Validate(); err != nil {
		return paging.Page[CommentView]{}, err
	}
	s.mu.RLock()
	var rows []CommentView
	for _, c := range s.comments {
		if c.VideoID != f.VideoID {
			continue
		}
		if f.ParentID == "" && c.ParentID != nil {
			continue
		}
		if f.ParentID != "" && (c.ParentID == nil || *c.ParentID != f.ParentID) {
			continue
		}
		rows = append(rows, s.commentViewLocked(c, viewerID))
	}
	s.mu.RUnlock()
	return page(ctx, rows, CommentKeys, req, true)
}

func (s *InMemoryStore) commentViewLocked(c Comment, viewerID string) CommentView {
	v := CommentView{Comment: c, User: s.users[c.UserID].Summary()}
	for _, r := range s.comments {
		if r.ParentID != nil && *r.ParentID == c.ID {
			v.ReplyCount++
		}
	}
	for k, r := range s.commentReactions {
		if k.b != c.ID {
			continue
		}
		switch r.Type {
		case ReactionLike:
			v.LikeCount++
		case ReactionDislike:
			v.DislikeCount++
		}
		if k.a == viewerID && viewerID != "" {
			t := r.Type
			v.ViewerReaction = &t
		}
	}
	return v
}
