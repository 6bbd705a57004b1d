package audit

import (
	"context"
	"log/slog"
)

// Worker decouples request paths from a slow sink (Kafka). Emit enqueues;
// Run drains the queue into the sink until ctx is cancelled, then flushes
// what is left.
type Worker struct {
	sink   Publisher
	inbox  chan Event
	logger *slog.Logger
}

func NewWorker(sink Publisher, buffer int, logger *slog.Logger) *Worker {
	if buffer <= 0 {
		buffer = 256
	}
	return &Worker{sink: sink, inbox: make(chan Event, buffer), logger: logger}
}

// Emit enqueues e. When the queue is full the event is written to the log
// instead of blocking the caller.
func (w *Worker) Emit(ctx context.Context, e Event) error {
	e = Enrich(ctx, e)
	select {
	case w.inbox <- e:
	default:
		w.logger.WarnContext(ctx, "audit queue full, event logged only",
			"log_type", "audit",
			"action", e.Action,
			"investor_id", e.InvestorID,
			"event_id", e.ID,
		)
	}
	return nil
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return ctx.Err()
		case e := <-w.inbox:
			w.deliver(ctx, e)
		}
	}
}

func (w *Worker) drain() {
	for {
		select {
		case e := <-w.inbox:
			w.deliver(context.Background(), e)
		default:
			return
		}
	}
}

func (w *Worker) deliver(ctx context.Context, e Event) {
	if err := w.sink.Emit(ctx, e); err != nil {
		w.logger.ErrorContext(ctx, "audit delivery failed",
			"action", e.Action,
			"event_id", e.ID,
			"error", err,
		)
	}
}
