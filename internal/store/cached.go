package store

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/huangsam/provstats/internal/contract"
	"github.com/huangsam/provstats/schema"
	"golang.org/x/sync/singleflight"
)

const catalogKey = "catalog"

// loadTimeout bounds one shared catalog load.
const loadTimeout = 30 * time.Second

// catalogSnapshot is an immutable copy of the full catalog.
type catalogSnapshot struct {
	items    []schema.HierarchyItem
	loadedAt time.Time
}

// CachedCatalog serves hierarchy lookups from a periodically reloaded
// snapshot of the unscoped catalog. Concurrent misses share one load.
type CachedCatalog struct {
	inner    contract.HierarchyStore
	ttl      time.Duration
	now      func() time.Time
	snapshot atomic.Pointer[catalogSnapshot]
	group    singleflight.Group
	loads    atomic.Int64
}

var _ contract.HierarchyStore = &CachedCatalog{} // Compile-time check

// NewCachedCatalog wraps inner. A ttl of zero reloads on every call.
func NewCachedCatalog(inner contract.HierarchyStore, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{inner: inner, ttl: ttl, now: time.Now}
}

// Loads returns how many times the inner store was read.
func (cc *CachedCatalog) Loads() int64 {
	return cc.loads.Load()
}

// Invalidate drops the current snapshot.
func (cc *CachedCatalog) Invalidate() {
	cc.snapshot.Store(nil)
}

func (cc *CachedCatalog) fresh() (*catalogSnapshot, bool) {
	snap := cc.snapshot.Load()
	if snap == nil || cc.ttl <= 0 || cc.now().Sub(snap.loadedAt) >= cc.ttl {
		return nil, false
	}
	return snap, true
}

func (cc *CachedCatalog) load(ctx context.Context) (*catalogSnapshot, error) {
	if snap, ok := cc.fresh(); ok {
		return snap, nil
	}

	// The load is shared, so one caller's cancellation must not fail the others.
	loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
	defer cancel()

	resultI, err, _ := cc.group.Do(catalogKey, func() (any, error) {
		// Double-check inside singleflight
		if snap, ok := cc.fresh(); ok {
			return snap, nil
		}
		items, err := cc.inner.GetHierarchy(loadCtx, schema.None[schema.Company](), schema.None[schema.Family](), nil)
		if err != nil {
			return nil, err
		}
		cc.loads.Add(1)
		snap := &catalogSnapshot{items: items, loadedAt: cc.now()}
		cc.snapshot.Store(snap)
		return snap, nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	snap, ok := resultI.(*catalogSnapshot)
	if !ok {
		return nil, fmt.Errorf("unexpected type from singleflight group: got %T", resultI)
	}
	return snap, nil
}

// GetHierarchy implements contract.HierarchyStore.
func (cc *CachedCatalog) GetHierarchy(ctx context.Context, company schema.Optional[schema.Company], family schema.Optional[schema.Family], scope *schema.AccessScope) ([]schema.HierarchyItem, error) {
	snap, err := cc.load(ctx)
	if err != nil {
		return nil, err
	}
	items := filterCatalog(snap.items, company, family)
	if scope != nil {
		items = scope.Filter(items)
	}
	return items, nil
}

// GetHierarchyForProduct implements contract.HierarchyStore.
func (cc *CachedCatalog) GetHierarchyForProduct(ctx context.Context, product schema.Product, scope schema.AccessScope) ([]schema.HierarchyItem, error) {
	snap, err := cc.load(ctx)
	if err != nil {
		return nil, err
	}
	return scope.Filter(productEntries(snap.items, product)), nil
}
