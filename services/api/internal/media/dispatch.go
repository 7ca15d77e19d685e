package media

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/example/video-platform/internal/platform/natsconn"
	"github.com/example/video-platform/services/api/internal/videoplatform"
)

const (
	StreamName   = "MEDIA"
	Subject      = "media.events"
	ConsumerName = "media_processor"
)

// Dispatcher hands a verified webhook event to whatever applies it.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev videoplatform.Event) error
}

// Inline applies events in the webhook request.
type Inline struct {
	Processor *Processor
}

func (d Inline) Dispatch(ctx context.Context, ev videoplatform.Event) error {
	return d.Processor.Apply(ctx, ev)
}

// Publisher queues events on the MEDIA stream for the worker. The event id
// doubles as the JetStream message id so redeliveries of one webhook are
// stored once.
type Publisher struct {
	JS nats.JetStreamContext
}

func (d Publisher) Dispatch(ctx context.Context, ev videoplatform.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	opts := []nats.PubOpt{nats.Context(ctx)}
	if ev.ID != "" {
		opts = append(opts, nats.MsgId(ev.ID))
	}
	_, err = d.JS.Publish(Subject, data, opts...)
	return err
}

// EnsureStream creates the MEDIA stream.
func EnsureStream(js nats.JetStreamContext) error {
	return natsconn.EnsureStream(js, StreamName, Subject, 7*24*time.Hour)
}
