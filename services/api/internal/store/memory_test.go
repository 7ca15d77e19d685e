package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/video-platform/internal/platform/paging"
)

// stepClock advances one second per call so every write gets a distinct
// sort key.
func stepClock() func() time.Time {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newTestStore(t *testing.T) (*InMemoryStore, User, User) {
	t.Helper()
	s := NewInMemoryStore().WithClock(stepClock())
	ctx := context.Background()
	alice, err := s.UpsertUser(ctx, User{AuthID: "auth-alice", Name: "Alice", ImageURL: "https://img/a.png"})
	if err != nil {
		t.Fatalf("upsert alice: %v", err)
	}
	bob, err := s.UpsertUser(ctx, User{AuthID: "auth-bob", Name: "Bob", ImageURL: "https://img/b.png"})
	if err != nil {
		t.Fatalf("upsert bob: %v", err)
	}
	return s, alice, bob
}

func mustVideo(t *testing.T, s *InMemoryStore, v Video) Video {
	t.Helper()
	out, err := s.CreateVideo(context.Background(), v)
	if err != nil {
		t.Fatalf("create video: %v", err)
	}
	return out
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = id(it)
	}
	return out
}

func cardID(c VideoCard) string { return c.ID }

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestInMemoryStore_UpsertUser_ByAuthID(t *testing.T) {
	s, alice, _ := newTestStore(t)
	ctx := context.Background()

	again, err := s.UpsertUser(ctx, User{AuthID: "auth-alice", Name: "Alice B", ImageURL: "https://img/a2.png"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if again.ID != alice.ID {
		t.Fatalf("expected same id %s, got %s", alice.ID, again.ID)
	}
	if again.Name != "Alice B" {
		t.Fatalf("expected updated name, got %q", again.Name)
	}
	got, err := s.GetUserByAuthID(ctx, "auth-alice")
	if err != nil || got.Name != "Alice B" {
		t.Fatalf("get by auth id: %+v, %v", got, err)
	}
}

func TestInMemoryStore_ListVideos_Pages(t *testing.T) {
	s, alice, _ := newTestStore(t)
	ctx := context.Background()

	var want []string
	for i := 0; i < 5; i++ {
		v := mustVideo(t, s, Video{UserID: alice.ID, Title: "v", Visibility: VisibilityPublic})
		want = append([]string{v.ID}, want...)
	}
	mustVideo(t, s, Video{UserID: alice.ID, Title: "hidden"})

	var got []string
	req := paging.First(2)
	pages := 0
	for {
		p, err := s.ListVideos(ctx, VideoFilter{}, req)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		pages++
		got = append(got, ids(p.Items, cardID)...)
		if p.NextCursor == nil {
			break
		}
		req.Cursor = p.NextCursor
	}
	if pages != 3 {
		t.Fatalf("expected 3 pages, got %d", pages)
	}
	if !equalIDs(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestInMemoryStore_ListVideos_InvalidLimit(t *testing.T) {
	s, _, _ := newTestStore(t)

	_, err := s.ListVideos(context.Background(), VideoFilter{}, paging.First(0))
	var verr *paging.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestInMemoryStore_ListVideos_Filters(t *testing.T) {
	s, alice, bob := newTestStore(t)
	ctx := context.Background()

	music, _ := s.CreateCategory(ctx, Category{Name: "Music"})
	song := mustVideo(t, s, Video{UserID: alice.ID, Title: "Great Song", CategoryID: music.ID, Visibility: VisibilityPublic})
	talk := mustVideo(t, s, Video{UserID: bob.ID, Title: "A talk", Visibility: VisibilityPublic})
	draft := mustVideo(t, s, Video{UserID: alice.ID, Title: "draft song"})

	tests := []struct {
		name   string
		filter VideoFilter
		want   []string
	}{
		{"all public", VideoFilter{}, []string{talk.ID, song.ID}},
		{"category", VideoFilter{CategoryID: music.ID}, []string{song.ID}},
		{"owner", VideoFilter{OwnerID: bob.ID}, []string{talk.ID}},
		{"query is case-insensitive", VideoFilter{Query: "SONG"}, []string{song.ID}},
		{"exclude", VideoFilter{ExcludeID: talk.ID}, []string{song.ID}},
		{"studio", VideoFilter{OwnerID: alice.ID, IncludePrivate: true}, []string{draft.ID, song.ID}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := s.ListVideos(ctx, tc.filter, paging.First(10))
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if got := ids(p.Items, cardID); !equalIDs(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestInMemoryStore_ListVideos_SubscribedFeed(t *testing.T) {
	s, alice, bob := newTestStore(t)
	ctx := context.Background()

	mustVideo(t, s, Video{UserID: alice.ID, Title: "mine", Visibility: VisibilityPublic})
	theirs := mustVideo(t, s, Video{UserID: bob.ID, Title: "theirs", Visibility: VisibilityPublic})
	if _, err := s.Subscribe(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	p, err := s.ListVideos(ctx, VideoFilter{SubscribedBy: alice.ID}, paging.First(10))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got := ids(p.Items, cardID); !equalIDs(got, []string{theirs.ID}) {
		t.Fatalf("expected only bob's video, got %v", got)
	}
}

func TestInMemoryStore_UpdateVideo_MovesToTop(t *testing.T) {
	s, alice, _ := newTestStore(t)
	ctx := context.Background()

	first := mustVideo(t, s, Video{UserID: alice.ID, Title: "first", Visibility: VisibilityPublic})
	second := mustVideo(t, s, Video{UserID: alice.ID, Title: "second", Visibility: VisibilityPublic})

	title := "first, edited"
	if _, err := s.UpdateVideo(ctx, first.ID, alice.ID, VideoPatch{Title: &title}); err != nil {
		t.Fatalf("update: %v", err)
	}
	p, _ := s.ListVideos(ctx, VideoFilter{}, paging.First(10))
	if got := ids(p.Items, cardID); !equalIDs(got, []string{first.ID, second.ID}) {
		t.Fatalf("expected edited video first, got %v", got)
	}

	thumb := "https://thumbs/second.jpg"
	if _, err := s.UpdateVideoMedia(ctx, second.ID, MediaUpdate{ThumbnailURL: &thumb}); err != nil {
		t.Fatalf("update media: %v", err)
	}
	p, _ = s.ListVideos(ctx, VideoFilter{}, paging.First(10))
	if got := ids(p.Items, cardID); !equalIDs(got, []string{first.ID, second.ID}) {
		t.Fatalf("media update must not reorder, got %v", got)
	}
	if p.Items[1].ThumbnailURL != thumb {
		t.Fatalf("expected thumbnail %q, got %q", thumb, p.Items[1].ThumbnailURL)
	}
}

func TestInMemoryStore_UpdateVideo_NotOwner(t *testing.T) {
	s, alice, bob := newTestStore(t)
	v := mustVideo(t, s, Video{UserID: alice.ID, Title: "v"})

	title := "hijacked"
	_, err := s.UpdateVideo(context.Background(), v.ID, bob.ID, VideoPatch{Title: &title})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInMemoryStore_GetVideoDetail(t *testing.T) {
	s, alice, bob := newTestStore(t)
	ctx := context.Background()

	private := mustVideo(t, s, Video{UserID: alice.ID, Title: "private"})
	if _, err := s.GetVideoDetail(ctx, private.ID, bob.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected private video hidden from bob, got %v", err)
	}
	if _, err := s.GetVideoDetail(ctx, private.ID, alice.ID); err != nil {
		t.Fatalf("owner should see private video: %v", err)
	}

	public := mustVideo(t, s, Video{UserID: alice.ID, Title: "public", Visibility: VisibilityPublic})
	_, _ = s.ToggleVideoReaction(ctx, bob.ID, public.ID, ReactionLike)
	_, _ = s.RecordView(ctx, bob.ID, public.ID)
	_, _ = s.Subscribe(ctx, bob.ID, alice.ID)

	d, err := s.GetVideoDetail(ctx, public.ID, bob.ID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if d.LikeCount != 1 || d.ViewCount != 1 || d.SubscriberCount != 1 {
		t.Fatalf("unexpected counts: likes=%d views=%d subs=%d", d.LikeCount, d.ViewCount, d.SubscriberCount)
	}
	if d.ViewerReaction == nil || *d.ViewerReaction != ReactionLike {
		t.Fatalf("expected viewer reaction like, got %v", d.ViewerReaction)
	}
	if !d.ViewerSubscribed {
		t.Fatal("expected viewer subscribed")
	}

	anon, err := s.GetVideoDetail(ctx, public.ID, "")
	if err != nil {
		t.Fatalf("anonymous detail: %v", err)
	}
	if anon.ViewerReaction != nil || anon.ViewerSubscribed {
		t.Fatalf("anonymous viewer should carry no viewer state: %+v", anon)
	}
}

func TestInMemoryStore_ToggleVideoReaction(t *testing.T) {
	s, alice, bob := newTestStore(t)
	ctx := context.Background()
	v := mustVideo(t, s, Video{UserID: alice.ID, Title: "v", Visibility: VisibilityPublic})

	steps := []struct {
		react ReactionType
		want  *ReactionType
	}{
		{ReactionLike, ptr(ReactionLike)},
		{ReactionDislike, ptr(ReactionDislike)},
		{ReactionDislike, nil},
		{ReactionLike, ptr(ReactionLike)},
		{ReactionLike, nil},
	}
	for i, st := range steps {
		got, err := s.ToggleVideoReaction(ctx, bob.ID, v.ID, st.react)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if (got == nil) != (st.want == nil) || (got != nil && *got != *st.want) {
			t.Fatalf("step %d: expected %v, got %v", i, st.want, got)
		}
	}

	if _, err := s.ToggleVideoReaction(ctx, bob.ID, "missing", ReactionLike); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing video, got %v", err)
	}
}

func ptr[T any](v T) *T { return &v }

func TestInMemoryStore_ListLikedVideos(t *testing.T) {
	s, alice, bob := newTestStore(t)
	ctx := context.Background()

	a := mustVideo(t, s, Video{UserID: alice.ID, Title: "a", Visibility: VisibilityPublic})
	b := mustVideo(t, s, Video{UserID: alice.ID, Title: "b", Visibility: VisibilityPublic})
	c := mustVideo(t, s, Video{UserID: alice.ID, Title: "c", Visibility: VisibilityPublic})

	_, _ = s.ToggleVideoReaction(ctx, bob.ID, b.ID, ReactionLike)
	_, _ = s.ToggleVideoReaction(ctx, bob.ID, a.ID, ReactionLike)
	_, _ = s.ToggleVideoReaction(ctx, bob.ID, c.ID, ReactionDislike)

	p, err := s.ListLikedVideos(ctx, bob.ID, paging.First(10))
	if err != nil {
		t.Fatalf("liked: %v", err)
	}
	got := ids(p.Items, func(l LikedVideo) string { return l.ID })
	if !equalIDs(got, []string{a.ID, b.ID}) {
		t.Fatalf("expected most recently liked first, got %v", got)
	}
}

func TestInMemoryStore_CreateComment_ParentRules(t *testing.T) {
	s, alice, bob := newTestStore(t)
	ctx := context.Background()

	v1 := mustVideo(t, s, Video{UserID: alice.ID, Title: "v1", Visibility: VisibilityPublic})
	v2 := mustVideo(t, s, Video{UserID: alice.ID, Title: "v2", Visibility: VisibilityPublic})
	root, err := s.CreateComment(ctx, Comment{VideoID: v1.ID, UserID: bob.ID, Value: "root"})
	if err != nil {
		t.Fatalf("root: %v", err)
	}
	reply, err := s.CreateComment(ctx, Comment{VideoID: v1.ID, UserID: alice.ID, ParentID: &root.ID, Value: "reply"})
	if err != nil {
		t.Fatalf("reply: %v", err)
	}

	missing := "00000000-0000-0000-0000-000000000000"
	tests := []struct {
		name string
		c    Comment
		want error
	}{
		{"missing video", Comment{VideoID: missing, UserID: bob.ID, Value: "x"}, ErrNotFound},
		{"missing parent", Comment{VideoID: v1.ID, UserID: bob.ID, ParentID: &missing, Value: "x"}, ErrNotFound},
		{"reply to reply", Comment{VideoID: v1.ID, UserID: bob.ID, ParentID: &reply.ID, Value: "x"}, ErrInvalidParent},
		{"parent on other video", Comment{VideoID: v2.ID, UserID: bob.ID, ParentID: &root.ID, Value: "x"}, ErrInvalidParent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.CreateComment(ctx, tc.c); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestInMemoryStore_ListComments(t *testing.T) {
	s, alice, bob := newTestStore(t)
	ctx := context.Background()
	v := mustVideo(t, s, Video{UserID: alice.ID, Title: "v", Visibility: VisibilityPublic})

	var roots []Comment
	for i := 0; i < 3; i++ {
		c, _ := s.CreateComment(ctx, Comment{VideoID: v.ID, UserID: bob.ID, Value: "root"})
		roots = append(roots, c)
	}
	_, _ = s.CreateComment(ctx, Comment{VideoID: v.ID, UserID: alice.ID, ParentID: &roots[0].ID, Value: "r1"})
	_, _ = s.CreateComment(ctx, Comment{VideoID: v.ID, UserID: alice.ID, ParentID: &roots[0].ID, Value: "r2"})
	_, _ = s.ToggleCommentReaction(ctx, alice.ID, roots[0].ID, ReactionLike)

	p, err := s.ListComments(ctx, CommentFilter{VideoID: v.ID}, alice.ID, paging.First(2))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if p.TotalCount == nil || *p.TotalCount != 3 {
		t.Fatalf("expected total 3, got %v", p.TotalCount)
	}
	if len(p.Items) != 2 || p.Items[0].ID != roots[2].ID || p.NextCursor == nil {
		t.Fatalf("unexpected first page: %+v", p)
	}

	p, err = s.ListComments(ctx, CommentFilter{VideoID: v.ID}, alice.ID, paging.Request{Limit: 2, Cursor: p.NextCursor})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(p.Items) != 1 || p.NextCursor != nil {
		t.Fatalf("unexpected last page: %+v", p)
	}
	last := p.Items[0]
	if last.ID != roots[0].ID || last.ReplyCount != 2 || last.LikeCount != 1 {
		t.Fatalf("unexpected oldest root: %+v", last)
	}
	if last.ViewerReaction == nil || *last.ViewerReaction != ReactionLike {
		t.Fatalf("expected viewer reaction like, got %v", last.ViewerReaction)
	}

	replies, err := s.ListComments(ctx, CommentFilter{VideoID: v.ID, ParentID: roots[0].ID}, "", paging.First(10))
	if err != nil {
		t.Fatalf("replies: %v", err)
	}
	if len(replies.Items) != 2 || *replies.TotalCount != 2 {
		t.Fatalf("expected 2 replies, got %+v", replies)
	}
}

func TestInMemoryStore_DeleteComment_CascadesReplies(t *testing.T) {
	s, alice, bob := newTestStore(t)
	ctx := context.Background()
	v := mustVideo(t, s, Video{UserID: alice.ID, Title: "v", Visibility: VisibilityPublic})

	root, _ := s.CreateComment(ctx, Comment{VideoID: v.ID, UserID: bob.ID, Value: "root"})
	_, _ = s.CreateComment(ctx, Comment{VideoID: v.ID, UserID: alice.ID, ParentID: &root.ID, Value: "reply"})

	if _, err := s.DeleteComment(ctx, root.ID, alice.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("non-author delete: expected ErrNotFound, got %v", err)
	}
	if _, err := s.DeleteComment(ctx, root.ID, bob.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	replies, _ := s.ListComments(ctx, CommentFilter{VideoID: v.ID, ParentID: root.ID}, "", paging.First(10))
	if len(replies.Items) != 0 {
		t.Fatalf("expected replies deleted, got %d", len(replies.Items))
	}
}

func TestInMemoryStore_Subscribe(t *testing.T) {
	s, alice, bob := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Subscribe(ctx, alice.ID, alice.ID); !errors.Is(err, ErrSelfSubscription) {
		t.Fatalf("expected ErrSelfSubscription, got %v", err)
	}
	if _, err := s.Subscribe(ctx, alice.ID, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Subscribe(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if _, err := s.Subscribe(ctx, alice.ID, bob.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	p, err := s.ListSubscriptions(ctx, alice.ID, paging.First(10))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(p.Items) != 1 || p.Items[0].Creator.ID != bob.ID || p.Items[0].SubscriberCount != 1 {
		t.Fatalf("unexpected subscriptions: %+v", p.Items)
	}

	if err := s.Unsubscribe(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	if err := s.Unsubscribe(ctx, alice.ID, bob.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInMemoryStore_History_ReviewMovesToTop(t *testing.T) {
	s, alice, bob := newTestStore(t)
	ctx := context.Background()

	a := mustVideo(t, s, Video{UserID: alice.ID, Title: "a", Visibility: VisibilityPublic})
	b := mustVideo(t, s, Video{UserID: alice.ID, Title: "b", Visibility: VisibilityPublic})

	_, _ = s.RecordView(ctx, bob.ID, a.ID)
	_, _ = s.RecordView(ctx, bob.ID, b.ID)
	_, _ = s.RecordView(ctx, bob.ID, a.ID)

	p, err := s.ListHistory(ctx, bob.ID, paging.First(10))
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	got := ids(p.Items, func(h HistoryEntry) string { return h.ID })
	if !equalIDs(got, []string{a.ID, b.ID}) {
		t.Fatalf("expected re-viewed video first, got %v", got)
	}
	if p.Items[0].ViewCount != 1 {
		t.Fatalf("a repeat view must not add a view, got %d", p.Items[0].ViewCount)
	}
}

func TestInMemoryStore_Playlists(t *testing.T) {
	s, alice, bob := newTestStore(t)
	ctx := context.Background()

	v1 := mustVideo(t, s, Video{UserID: alice.ID, Title: "v1", Visibility: VisibilityPublic, ThumbnailURL: "https://t/1"})
	v2 := mustVideo(t, s, Video{UserID: alice.ID, Title: "v2", Visibility: VisibilityPublic, ThumbnailURL: "https://t/2"})
	pl, err := s.CreatePlaylist(ctx, Playlist{UserID: alice.ID, Name: "favs"})
	if err != nil {
		t.Fatalf("create playlist: %v", err)
	}

	if _, err := s.AddPlaylistVideo(ctx, pl.ID, v1.ID, alice.ID); err != nil {
		t.Fatalf("add v1: %v", err)
	}
	if _, err := s.AddPlaylistVideo(ctx, pl.ID, v2.ID, alice.ID); err != nil {
		t.Fatalf("add v2: %v", err)
	}
	v3 := mustVideo(t, s, Video{UserID: alice.ID, Title: "v3"})

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{"duplicate", func() error { _, err := s.AddPlaylistVideo(ctx, pl.ID, v1.ID, alice.ID); return err }, ErrConflict},
		{"not owner", func() error { _, err := s.AddPlaylistVideo(ctx, pl.ID, v1.ID, bob.ID); return err }, ErrForbidden},
		{"missing playlist", func() error { _, err := s.AddPlaylistVideo(ctx, "missing", v1.ID, alice.ID); return err }, ErrNotFound},
		{"missing video", func() error { _, err := s.AddPlaylistVideo(ctx, pl.ID, "missing", alice.ID); return err }, ErrNotFound},
		{"remove absent", func() error { _, err := s.RemovePlaylistVideo(ctx, pl.ID, v3.ID, alice.ID); return err }, ErrNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.run(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	p, err := s.ListPlaylists(ctx, alice.ID, v1.ID, paging.First(10))
	if err != nil {
		t.Fatalf("list playlists: %v", err)
	}
	if len(p.Items) != 1 {
		t.Fatalf("expected 1 playlist, got %d", len(p.Items))
	}
	card := p.Items[0]
	if card.VideoCount != 2 || card.ThumbnailURL != "https://t/2" {
		t.Fatalf("unexpected card: %+v", card)
	}
	if card.ContainsVideo == nil || !*card.ContainsVideo {
		t.Fatalf("expected contains_video true, got %v", card.ContainsVideo)
	}

	videos, err := s.ListVideos(ctx, VideoFilter{PlaylistID: pl.ID}, paging.First(10))
	if err != nil {
		t.Fatalf("playlist videos: %v", err)
	}
	if len(videos.Items) != 2 {
		t.Fatalf("expected 2 playlist videos, got %d", len(videos.Items))
	}

	if _, err := s.RemovePlaylistVideo(ctx, pl.ID, v1.ID, alice.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := s.DeletePlaylist(ctx, pl.ID, bob.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting someone else's playlist, got %v", err)
	}
}

func TestInMemoryStore_DeleteUser_Cascades(t *testing.T) {
	s, alice, bob := newTestStore(t)
	ctx := context.Background()

	v := mustVideo(t, s, Video{UserID: alice.ID, Title: "v", Visibility: VisibilityPublic})
	_, _ = s.CreateComment(ctx, Comment{VideoID: v.ID, UserID: bob.ID, Value: "hi"})
	_, _ = s.Subscribe(ctx, bob.ID, alice.ID)
	_, _ = s.RecordView(ctx, bob.ID, v.ID)

	if err := s.DeleteUserByAuthID(ctx, alice.AuthID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetVideo(ctx, v.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected video gone, got %v", err)
	}
	subs, _ := s.ListSubscriptions(ctx, bob.ID, paging.First(10))
	if len(subs.Items) != 0 {
		t.Fatalf("expected subscriptions gone, got %d", len(subs.Items))
	}
	hist, _ := s.ListHistory(ctx, bob.ID, paging.First(10))
	if len(hist.Items) != 0 {
		t.Fatalf("expected history gone, got %d", len(hist.Items))
	}
	if err := s.DeleteUserByAuthID(ctx, alice.AuthID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestInMemoryStore_CreateCategory_Duplicate(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateCategory(ctx, Category{Name: "Gaming"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateCategory(ctx, Category{Name: "Gaming"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	cats, _ := s.ListCategories(ctx)
	if len(cats) != 1 {
		t.Fatalf("expected 1 category, got %d", len(cats))
	}
}
