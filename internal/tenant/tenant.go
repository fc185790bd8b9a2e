// Package tenant carries the current tenant through request contexts.
//
// Every cache key and repository query is partitioned by tenant. A request
// with no tenant operates in the shared "host" context.
package tenant

import (
	"context"

	"github.com/google/uuid"
)

type contextKey struct{}

// HostScope is the cache-key segment used when no tenant is resolved.
const HostScope = "host"

// WithTenant returns a context operating under the given tenant. A nil id
// yields the host context.
func WithTenant(ctx context.Context, id *uuid.UUID) context.Context {
	if id == nil {
		return ctx
	}

	return context.WithValue(ctx, contextKey{}, *id)
}

// FromContext returns the current tenant id, or nil in the host context.
func FromContext(ctx context.Context) *uuid.UUID {
	if id, ok := ctx.Value(contextKey{}).(uuid.UUID); ok {
		return &id
	}

	return nil
}

// Scope returns the tenant segment used in cache keys: the tenant id string,
// or "host" when none is set.
func Scope(ctx context.Context) string {
	if id := FromContext(ctx); id != nil {
		return id.String()
	}

	return HostScope
}
