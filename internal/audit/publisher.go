package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	id "ishemalink/pkg/domain"
	"ishemalink/pkg/platform/audit"
	"ishemalink/pkg/requestcontext"
)

// Publisher records audit entries. It is append-only and uses the storage
// layer for persistence so tests can swap sinks easily. Request metadata
// (client IP, request ID, request time) is taken from the context.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger
}

func NewPublisher(store audit.Store, logger *slog.Logger) *Publisher {
	return &Publisher{store: store, logger: logger}
}

// Record appends an entry for actor. A nil actor records an anonymous action.
func (p *Publisher) Record(ctx context.Context, actor *id.UserID, action audit.Action, detail string) error {
	event := audit.Event{
		ID:        id.AuditID(uuid.New()),
		ActorID:   actor,
		Action:    action,
		IP:        requestcontext.ClientIP(ctx),
		Detail:    detail,
		RequestID: requestcontext.RequestID(ctx),
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	if p.logger != nil {
		attrs := []any{
			"log_type", "audit",
			"action", string(action),
			"category", string(action.Category()),
			"request_id", event.RequestID,
		}
		if actor != nil {
			attrs = append(attrs, "actor_id", actor.String())
		}
		p.logger.InfoContext(ctx, "audit entry recorded", attrs...)
	}
	return nil
}

// Recent returns the latest entries across all actors.
func (p *Publisher) Recent(ctx context.Context, limit int) ([]audit.Event, error) {
	return p.store.ListRecent(ctx, limit)
}
