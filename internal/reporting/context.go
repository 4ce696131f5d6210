package reporting

import (
	"context"
	"maps"
	"time"
)

type pollMetaContextKey struct{}

// PollMeta describes where in the polling loop an error happened
type PollMeta struct {
	iterationID string
	startedAt   time.Time
	playerID    string
	extras      map[string]string
}

func MetaFromContext(ctx context.Context) PollMeta {
	meta, ok := ctx.Value(pollMetaContextKey{}).(PollMeta)
	if !ok {
		return PollMeta{extras: make(map[string]string)}
	}
	meta.extras = maps.Clone(meta.extras)
	if meta.extras == nil {
		meta.extras = make(map[string]string)
	}
	return meta
}

func (m PollMeta) IterationID() string {
	return m.iterationID
}

func (m PollMeta) PlayerID() string {
	return m.playerID
}

func (m PollMeta) Extras() map[string]string {
	return maps.Clone(m.extras)
}

func (m PollMeta) tags() map[string]string {
	tags := make(map[string]string, 2)
	if m.iterationID != "" {
		tags["iterationID"] = m.iterationID
	}
	if m.playerID != "" {
		tags["playerID"] = m.playerID
	}
	return tags
}

func withMeta(ctx context.Context, meta PollMeta) context.Context {
	return context.WithValue(ctx, pollMetaContextKey{}, meta)
}

// StartIterationInContext marks the start of a polling round. The player from a previous round is cleared.
func StartIterationInContext(ctx context.Context, iterationID string, startedAt time.Time) context.Context {
	meta := MetaFromContext(ctx)
	meta.iterationID = iterationID
	meta.startedAt = startedAt
	meta.playerID = ""

	return withMeta(ctx, meta)
}

func SetPlayerInContext(ctx context.Context, playerID string) context.Context {
	meta := MetaFromContext(ctx)
	meta.playerID = playerID

	return withMeta(ctx, meta)
}

func AddExtrasToContext(ctx context.Context, extras map[string]string) context.Context {
	meta := MetaFromContext(ctx)
	maps.Copy(meta.extras, extras)

	return withMeta(ctx, meta)
}
