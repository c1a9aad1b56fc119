package audit

import (
	"context"
	"strings"
)

type ctxKey string

const actorKey ctxKey = "audit_actor"

// DefaultActor is recorded when a request does not identify its caller.
const DefaultActor = "system"

// WithActor attaches the acting user to the context for audit records.
func WithActor(ctx context.Context, actor string) context.Context {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey, actor)
}

func ActorFromContext(ctx context.Context) string {
	if ctx == nil {
		return DefaultActor
	}
	if v, ok := ctx.Value(actorKey).(string); ok {
		return v
	}
	return DefaultActor
}
