package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"irdesk/pkg/requestcontext"
)

// Publisher is the sink every service emits audit events to.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// Enrich fills id, timestamp, actor and request id from ctx when unset.
func Enrich(ctx context.Context, e Event) Event {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = requestcontext.Now(ctx)
	}
	if e.ActorID == "" {
		e.ActorID = requestcontext.ActorID(ctx)
		if e.ActorID == "" {
			e.ActorID = "system"
		}
	}
	if e.RequestID == "" {
		e.RequestID = requestcontext.RequestID(ctx)
	}
	return e
}

// LogPublisher writes events as structured log lines.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Emit(ctx context.Context, e Event) error {
	e = Enrich(ctx, e)
	p.logger.InfoContext(ctx, string(e.Action),
		"log_type", "audit",
		"event_id", e.ID,
		"category", e.Category,
		"investor_id", e.InvestorID,
		"check_id", e.CheckID,
		"status", e.Status,
		"reason", e.Reason,
		"actor_id", e.ActorID,
		"request_id", e.RequestID,
		"timestamp", e.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	return nil
}

// MemoryPublisher keeps events in memory. Used by tests and local runs.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Emit(ctx context.Context, e Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, Enrich(ctx, e))
	return nil
}

// Events returns a copy of everything emitted so far.
func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

// ByAction returns the emitted events with the given action.
func (p *MemoryPublisher) ByAction(action Action) []Event {
	var out []Event
	for _, e := range p.Events() {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}
