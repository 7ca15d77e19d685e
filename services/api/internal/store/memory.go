package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/video-platform/internal/platform/paging"
	"github.com/google/uuid"
)

type pair struct{ a, b string }

type reaction struct {
	Type      ReactionType
	CreatedAt time.Time
	UpdatedAt time.Time
}

// InMemoryStore is a development-only implementation of Store. It mirrors
// the Postgres foreign-key cascades.
type InMemoryStore struct {
	mu  sync.RWMutex
	now func() time.Time

	users            map[string]User
	categories       map[string]Category
	videos           map[string]Video
	comments         map[string]Comment
	videoReactions   map[pair]reaction // {userID, videoID}
	commentReactions map[pair]reaction // {userID, commentID}
	playlists        map[string]Playlist
	playlistVideos   map[pair]PlaylistVideo // {playlistID, videoID}
	subscriptions    map[pair]Subscription  // {viewerID, creatorID}
	views            map[pair]VideoView     // {userID, videoID}
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		now:              time.Now,
		users:            make(map[string]User),
		categories:       make(map[string]Category),
		videos:           make(map[string]Video),
		comments:         make(map[string]Comment),
		videoReactions:   make(map[pair]reaction),
		commentReactions: make(map[pair]reaction),
		playlists:        make(map[string]Playlist),
		playlistVideos:   make(map[pair]PlaylistVideo),
		subscriptions:    make(map[pair]Subscription),
		views:            make(map[pair]VideoView),
	}
}

// WithClock replaces the time source. Tests use it to control sort keys.
func (s *InMemoryStore) WithClock(now func() time.Time) *InMemoryStore {
	s.now = now
	return s
}

func (s *InMemoryStore) stamp() time.Time {
	return s.now().UTC()
}

// page runs the executor over rows already filtered by the caller.
func page[T any](ctx context.Context, rows []T, keys paging.Keys[T], req paging.Request, withCount bool) (paging.Page[T], error) {
	q := paging.Query[T]{
		Keys: keys,
		Fetch: func(_ context.Context, after *paging.Cursor, limit int) ([]T, error) {
			return paging.Slice(rows, keys, after, limit), nil
		},
	}
	if withCount {
		n := int64(len(rows))
		q.Count = func(context.Context) (int64, error) { return n, nil }
	}
	return paging.Execute(ctx, req, q)
}

func (s *InMemoryStore) UpsertUser(_ context.Context, u User) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.stamp()
	for id, existing := range s.users {
		if existing.AuthID == u.AuthID {
			existing.Name = u.Name
			existing.ImageURL = u.ImageURL
			existing.UpdatedAt = now
			s.users[id] = existing
			return existing, nil
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now
	s.users[u.ID] = u
	return u, nil
}

func (s *InMemoryStore) DeleteUserByAuthID(_ context.Context, authID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, u := range s.users {
		if u.AuthID != authID {
			continue
		}
		delete(s.users, id)
		for vid, v := range s.videos {
			if v.UserID == id {
				s.deleteVideoLocked(vid)
			}
		}
		for cid, c := range s.comments {
			if c.UserID == id {
				s.deleteCommentLocked(cid)
			}
		}
		for pid, p := range s.playlists {
			if p.UserID == id {
				s.deletePlaylistLocked(pid)
			}
		}
		for k := range s.videoReactions {
			if k.a == id {
				delete(s.videoReactions, k)
			}
		}
		for k := range s.commentReactions {
			if k.a == id {
				delete(s.commentReactions, k)
			}
		}
		for k := range s.subscriptions {
			if k.a == id || k.b == id {
				delete(s.subscriptions, k)
			}
		}
		for k := range s.views {
			if k.a == id {
				delete(s.views, k)
			}
		}
		return nil
	}
	return ErrNotFound
}

func (s *InMemoryStore) GetUserByAuthID(_ context.Context, authID string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.AuthID == authID {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (s *InMemoryStore) GetUserProfile(_ context.Context, userID, viewerID string) (UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return UserProfile{}, ErrNotFound
	}
	p := UserProfile{User: u, SubscriberCount: s.subscriberCountLocked(userID)}
	for _, v := range s.videos {
		if v.UserID == userID && (v.Visibility == VisibilityPublic || userID == viewerID) {
			p.VideoCount++
		}
	}
	if viewerID != "" {
		_, p.ViewerSubscribed = s.subscriptions[pair{viewerID, userID}]
	}
	return p, nil
}

func (s *InMemoryStore) subscriberCountLocked(creatorID string) int64 {
	var n int64
	for k := range s.subscriptions {
		if k.b == creatorID {
			n++
		}
	}
	return n
}

func (s *InMemoryStore) ListCategories(_ context.Context) ([]Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *InMemoryStore) CreateCategory(_ context.Context, c Category) (Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.categories {
		if existing.Name == c.Name {
			return Category{}, ErrConflict
		}
	}
	now := s.stamp()
	c.ID = uuid.NewString()
	c.CreatedAt = now
	c.UpdatedAt = now
	s.categories[c.ID] = c
	return c, nil
}
