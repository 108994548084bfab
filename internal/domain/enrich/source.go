package enrich

import (
	"context"

	"github.com/beaconkit/beacon/internal/domain/model"
)

type pageContextKey struct{}

// WithPageContext returns a context carrying the page context for the
// current ingest request. Metrics emitted while handling that request are
// enriched from it.
func WithPageContext(ctx context.Context, pc model.PageContext) context.Context {
	return context.WithValue(ctx, pageContextKey{}, pc)
}

// PageContextFrom extracts the page context from ctx, if any.
func PageContextFrom(ctx context.Context) (model.PageContext, bool) {
	pc, ok := ctx.Value(pageContextKey{}).(model.PageContext)
	return pc, ok
}

// RequestSource resolves ambient context from the request context placed
// there by the ingest layer. The zero value is usable.
type RequestSource struct{}

// PageContext implements ContextSource.
func (RequestSource) PageContext(ctx context.Context) model.PageContext {
	pc, _ := PageContextFrom(ctx)
	return pc
}

// StaticSource returns a fixed page context. Useful for in-process hosts
// and tests.
type StaticSource struct {
	Context model.PageContext
}

// PageContext implements ContextSource.
func (s StaticSource) PageContext(_ context.Context) model.PageContext {
	return s.Context
}
