package store

import (
	"context"

	"github.com/huangsam/provstats/internal/contract"
	"github.com/huangsam/provstats/schema"
)

// MemoryStore serves the demo catalog and synthesizes statistics on demand.
// It holds no mutable state.
type MemoryStore struct {
	catalog []schema.HierarchyItem
}

var _ contract.Store = &MemoryStore{} // Compile-time check

// NewMemoryStore creates a store over catalog, or the demo catalog when nil.
func NewMemoryStore(catalog []schema.HierarchyItem) *MemoryStore {
	if catalog == nil {
		catalog = DemoCatalog()
	}
	return &MemoryStore{catalog: catalog}
}

// GetHierarchy implements contract.HierarchyStore.
func (ms *MemoryStore) GetHierarchy(_ context.Context, company schema.Optional[schema.Company], family schema.Optional[schema.Family], scope *schema.AccessScope) ([]schema.HierarchyItem, error) {
	items := filterCatalog(ms.catalog, company, family)
	if scope != nil {
		items = scope.Filter(items)
	}
	return items, nil
}

// GetHierarchyForProduct implements contract.HierarchyStore.
func (ms *MemoryStore) GetHierarchyForProduct(_ context.Context, product schema.Product, scope schema.AccessScope) ([]schema.HierarchyItem, error) {
	return scope.Filter(productEntries(ms.catalog, product)), nil
}

// QueryStatistics implements contract.StatisticsStore.
func (ms *MemoryStore) QueryStatistics(ctx context.Context, q schema.ResolvedQuery, scope schema.AccessScope) ([]schema.StatisticsRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !scope.Allows(q.Hierarchy()) || !containsItem(ms.catalog, q.Hierarchy()) {
		return BucketStats(nil, q), nil
	}
	daily := SyntheticDailyStats([]schema.HierarchyItem{q.Hierarchy()}, q.Range)
	return BucketStats(daily, q), nil
}

// Ping implements contract.Store.
func (ms *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// GetStatus implements contract.Store.
func (ms *MemoryStore) GetStatus(context.Context) (schema.StoreStatus, error) {
	return schema.StoreStatus{
		Backend:        string(schema.MemoryBackend),
		Connected:      true,
		CatalogEntries: int64(len(ms.catalog)),
	}, nil
}

// Close implements contract.Store.
func (ms *MemoryStore) Close() error { return nil }

func filterCatalog(catalog []schema.HierarchyItem, company schema.Optional[schema.Company], family schema.Optional[schema.Family]) []schema.HierarchyItem {
	out := make([]schema.HierarchyItem, 0, len(catalog))
	for _, item := range catalog {
		if c, ok := company.Get(); ok && c != item.Company {
			continue
		}
		if f, ok := family.Get(); ok && f != item.Family {
			continue
		}
		out = append(out, item)
	}
	return out
}

func productEntries(catalog []schema.HierarchyItem, product schema.Product) []schema.HierarchyItem {
	out := make([]schema.HierarchyItem, 0, 2)
	for _, item := range catalog {
		if item.Product == product {
			out = append(out, item)
		}
	}
	return out
}

func containsItem(catalog []schema.HierarchyItem, target schema.HierarchyItem) bool {
	for _, item := range catalog {
		if item == target {
			return true
		}
	}
	return false
}
