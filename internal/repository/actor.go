package repository

import (
	"context"

	"github.com/google/uuid"
)

type actorKey struct{}

// WithActor tags the context with the principal performing a mutation.
// The postgres store forwards it to the audit trigger via a session
// setting; without it the trigger cannot attribute the change and
// skips logging.
func WithActor(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, actorKey{}, id)
}

func ActorFrom(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(actorKey{}).(uuid.UUID)
	return id, ok
}
