// Package analytics provides a fire-and-forget NATS publisher for product
// events (views, uploads, reactions, searches).
package analytics

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// StreamName holds every analytics.* subject.
const StreamName = "ANALYTICS"

const (
	SubjectVideoViewed       = "analytics.video.viewed"
	SubjectVideoUploaded     = "analytics.video.uploaded"
	SubjectVideoReacted      = "analytics.video.reacted"
	SubjectCommentPosted     = "analytics.comment.posted"
	SubjectCreatorSubscribed = "analytics.creator.subscribed"
	SubjectSearchPerformed   = "analytics.search.performed"
)

// Event is the canonical envelope sent to all analytics.* subjects.
type Event struct {
	EventID    string         `json:"event_id"`
	EventName  string         `json:"event_name"`
	UserID     string         `json:"user_id,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Publisher publishes analytics events to NATS JetStream.
// The zero value and a nil pointer are both safe no-op stubs.
type Publisher struct {
	js  nats.JetStreamContext
	log *zap.Logger
	now func() time.Time
}

// New creates a Publisher using an existing JetStream context.
// Pass js=nil to get a no-op stub.
func New(js nats.JetStreamContext, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{js: js, log: log, now: time.Now}
}

// NewEvent builds the envelope Publish sends.
func NewEvent(eventName, userID string, props map[string]any, at time.Time) Event {
	return Event{
		EventID:    uuid.NewString(),
		EventName:  eventName,
		UserID:     userID,
		OccurredAt: at.UTC(),
		Properties: props,
	}
}

// Publish sends an analytics event asynchronously. Failures are logged as
// warnings and never surface to the caller.
func (p *Publisher) Publish(subject, eventName, userID string, props map[string]any) {
	if p == nil || p.js == nil {
		return
	}
	data, err := json.Marshal(NewEvent(eventName, userID, props, p.now()))
	if err != nil {
		p.log.Warn("analytics: marshal failed", zap.String("event", eventName), zap.Error(err))
		return
	}
	if _, err := p.js.PublishAsync(subject, data); err != nil {
		p.log.Warn("analytics: publish failed", zap.String("subject", subject), zap.Error(err))
	}
}
