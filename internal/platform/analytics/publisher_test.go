package analytics

import (
	"encoding/json"
	"testing"
	"time"
)

func TestPublish_NilSafe(t *testing.T) {
	var p *Publisher
	p.Publish(SubjectVideoViewed, "video_viewed", "u1", nil)

	New(nil, nil).Publish(SubjectSearchPerformed, "search_performed", "", map[string]any{"query": "cats"})
}

func TestNewEvent(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("x", 7200))
	ev := NewEvent("video_viewed", "u1", map[string]any{"video_id": "v1"}, at)

	if ev.EventID == "" {
		t.Fatal("expected event id")
	}
	if ev.OccurredAt.Location() != time.UTC || !ev.OccurredAt.Equal(at) {
		t.Fatalf("expected UTC timestamp equal to input, got %v", ev.OccurredAt)
	}
	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	if m["event_name"] != "video_viewed" || m["user_id"] != "u1" {
		t.Fatalf("unexpected json %s", b)
	}
}
