package media

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/example/video-platform/services/api/internal/videoplatform"
)

// fetcher is the pull side of a JetStream subscription.
type fetcher interface {
	Fetch(batch int, opts ...nats.PullOpt) ([]*nats.Msg, error)
}

// Worker drains the MEDIA stream through a durable pull consumer.
type Worker struct {
	sub       fetcher
	proc      *Processor
	batchSize int
	wait      time.Duration
	log       *zap.Logger
}

// NewWorker binds the durable consumer. The stream must exist.
func NewWorker(js nats.JetStreamContext, proc *Processor, batchSize int, wait time.Duration, log *zap.Logger) (*Worker, error) {
	sub, err := js.PullSubscribe(Subject, ConsumerName, nats.BindStream(StreamName), nats.ManualAck())
	if err != nil {
		return nil, err
	}
	return newWorker(sub, proc, batchSize, wait, log), nil
}

func newWorker(sub fetcher, proc *Processor, batchSize int, wait time.Duration, log *zap.Logger) *Worker {
	if batchSize <= 0 {
		batchSize = 10
	}
	if wait <= 0 {
		wait = 2 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Worker{sub: sub, proc: proc, batchSize: batchSize, wait: wait, log: log}
}

// Run processes messages until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msgs, err := w.sub.Fetch(w.batchSize, nats.MaxWait(w.wait))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) {
				continue
			}
			w.log.Error("media worker: fetch", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		for _, msg := range msgs {
			w.settle(msg, w.handle(ctx, msg.Data))
		}
	}
}

type outcome int

const (
	ack outcome = iota
	retry
	drop
)

func (w *Worker) handle(ctx context.Context, data []byte) outcome {
	var ev videoplatform.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		w.log.Warn("media worker: undecodable message", zap.Error(err))
		return drop
	}
	err := w.proc.Apply(ctx, ev)
	switch {
	case err == nil:
		return ack
	case errors.Is(err, ErrMalformedEvent):
		w.log.Warn("media worker: dropping event", zap.String("event_id", ev.ID), zap.Error(err))
		return drop
	default:
		w.log.Error("media worker: apply failed", zap.String("event_id", ev.ID), zap.Error(err))
		return retry
	}
}

func (w *Worker) settle(msg *nats.Msg, o outcome) {
	var err error
	switch o {
	case ack:
		err = msg.Ack()
	case retry:
		err = msg.NakWithDelay(5 * time.Second)
	case drop:
		err = msg.Term()
	}
	if err != nil {
		w.log.Warn("media worker: settle", zap.Error(err))
	}
}
