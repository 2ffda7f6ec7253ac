package shared

import (
	"context"

	"github.com/google/uuid"
)

// Actor identifies the user on whose behalf a stock-changing operation runs
type Actor struct {
	ID   uuid.UUID
	Name string
}

// SystemActor is recorded when no authenticated user is present (jobs, migrations)
var SystemActor = Actor{ID: uuid.Nil, Name: "system"}

// ActorProvider supplies the actor recorded on sales and stock movements.
// Implementations read the current session; the core never authenticates.
type ActorProvider interface {
	CurrentActorID(ctx context.Context) uuid.UUID
	CurrentActorName(ctx context.Context) string
}

type actorContextKey struct{}

// WithActor returns a context carrying the given actor
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext returns the actor stored in ctx, if any
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}

// ContextActorProvider resolves the actor from the request context,
// falling back to SystemActor when none is set.
type ContextActorProvider struct{}

// CurrentActorID returns the actor id from ctx
func (ContextActorProvider) CurrentActorID(ctx context.Context) uuid.UUID {
	if actor, ok := ActorFromContext(ctx); ok {
		return actor.ID
	}
	return SystemActor.ID
}

// CurrentActorName returns the actor name from ctx
func (ContextActorProvider) CurrentActorName(ctx context.Context) string {
	if actor, ok := ActorFromContext(ctx); ok && actor.Name != "" {
		return actor.Name
	}
	return SystemActor.Name
}

// CurrentActor resolves both fields from a provider
func CurrentActor(ctx context.Context, p ActorProvider) Actor {
	return Actor{ID: p.CurrentActorID(ctx), Name: p.CurrentActorName(ctx)}
}
