// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"

	"github.com/huangsam/provstats/schema"
)

// HierarchyStore serves the product catalog.
// This allows the resolution logic to be tested without a real database.
type HierarchyStore interface {
	// GetHierarchy returns catalog entries matching the optional filters.
	// A nil scope means the call is not ACL-filtered; only structural checks use that.
	GetHierarchy(ctx context.Context, company schema.Optional[schema.Company], family schema.Optional[schema.Family], scope *schema.AccessScope) ([]schema.HierarchyItem, error)

	// GetHierarchyForProduct returns the scoped catalog entries of a product.
	GetHierarchyForProduct(ctx context.Context, product schema.Product, scope schema.AccessScope) ([]schema.HierarchyItem, error)
}

// StatisticsStore produces provisioning statistics.
type StatisticsStore interface {
	// QueryStatistics returns one row per bucket of the query's partitioning, in date order.
	QueryStatistics(ctx context.Context, query schema.ResolvedQuery, scope schema.AccessScope) ([]schema.StatisticsRow, error)
}

// ScopeProvider returns the access scope of the agent bound to ctx.
type ScopeProvider interface {
	GetUserScope(ctx context.Context) (schema.AccessScope, error)
}

// Store is a backend able to serve both the catalog and statistics.
type Store interface {
	HierarchyStore
	StatisticsStore

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// GetStatus reports the backend state.
	GetStatus(ctx context.Context) (schema.StoreStatus, error)

	// Close releases the underlying connection.
	Close() error
}
