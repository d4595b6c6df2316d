package core

import (
	"context"
	"sort"
	"strings"

	"github.com/huangsam/provstats/internal/contract"
	"github.com/huangsam/provstats/schema"
	"go.uber.org/zap"
)

// CatalogService answers company-info questions under the caller's scope.
type CatalogService struct {
	Hierarchy contract.HierarchyStore
	Scopes    contract.ScopeProvider
	Log       *zap.SugaredLogger
}

// NewCatalogService creates a service. A nil logger discards output.
func NewCatalogService(hierarchy contract.HierarchyStore, scopes contract.ScopeProvider, log *zap.SugaredLogger) *CatalogService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &CatalogService{Hierarchy: hierarchy, Scopes: scopes, Log: log}
}

// ProductsHierarchy returns the visible catalog entries, optionally narrowed
// to a company and family given as labels.
func (s *CatalogService) ProductsHierarchy(ctx context.Context, company, family string) ([]schema.HierarchyItem, error) {
	c, f, err := ParseCompanyFamily(company, family)
	if err != nil {
		return nil, s.reject("products hierarchy", err)
	}
	if err := ValidateHierarchy(ctx, s.Hierarchy, HierarchyFilter{Company: c, Family: f}); err != nil {
		return nil, s.reject("products hierarchy", err)
	}
	scope, err := s.scope(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.Hierarchy.GetHierarchy(ctx, c, f, &scope)
	if err != nil {
		return nil, s.reject("products hierarchy", contract.WrapUpstream(err, "failed to load the product catalog"))
	}
	return withoutUnknown(items), nil
}

// FindProductHierarchy returns every visible entry of a product.
func (s *CatalogService) FindProductHierarchy(ctx context.Context, product string) ([]schema.HierarchyItem, error) {
	product = strings.TrimSpace(product)
	if product == "" {
		return nil, s.reject("find product", contract.NewInvalidArgument("product parameter is required"))
	}
	p, ok := schema.ParseProduct(product)
	if !ok {
		return nil, s.reject("find product", invalidLabel(product, schema.ProductKind))
	}
	scope, err := s.scope(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.Hierarchy.GetHierarchyForProduct(ctx, p, scope)
	if err != nil {
		return nil, s.reject("find product", contract.WrapUpstream(err, "failed to load hierarchy for product %s", p))
	}
	items = withoutUnknown(items)
	if len(items) == 0 {
		return nil, s.reject("find product", contract.NewHierarchyNotFound(p.String()))
	}
	return items, nil
}

// AllProductNames returns the distinct visible product labels, sorted.
func (s *CatalogService) AllProductNames(ctx context.Context) ([]string, error) {
	scope, err := s.scope(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.Hierarchy.GetHierarchy(ctx, schema.None[schema.Company](), schema.None[schema.Family](), &scope)
	if err != nil {
		return nil, s.reject("product names", contract.WrapUpstream(err, "failed to load the product catalog"))
	}
	seen := make(map[string]struct{})
	names := make([]string, 0, len(items))
	for _, item := range withoutUnknown(items) {
		label := item.Product.String()
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		names = append(names, label)
	}
	sort.Strings(names)
	return names, nil
}

// MyPermissions renders the caller's scope with labels.
func (s *CatalogService) MyPermissions(ctx context.Context) ([]schema.PermissionEntry, error) {
	scope, err := s.scope(ctx)
	if err != nil {
		return nil, err
	}
	return scope.Permissions(), nil
}

func (s *CatalogService) scope(ctx context.Context) (schema.AccessScope, error) {
	scope, err := s.Scopes.GetUserScope(ctx)
	if err != nil {
		return schema.AccessScope{}, s.reject("access scope", contract.WrapUpstream(err, "failed to load access scope"))
	}
	return scope, nil
}

// reject logs err at the level its kind calls for and returns it unchanged.
func (s *CatalogService) reject(op string, err error) error {
	kind := contract.KindOf(err)
	if kind == contract.UpstreamFailure {
		s.Log.Errorw("catalog request failed", "op", op, "kind", kind, "error", err)
	} else {
		s.Log.Warnw("catalog request rejected", "op", op, "kind", kind, "error", err)
	}
	return err
}

// withoutUnknown drops entries carrying the unknown sentinel.
func withoutUnknown(items []schema.HierarchyItem) []schema.HierarchyItem {
	out := make([]schema.HierarchyItem, 0, len(items))
	for _, item := range items {
		if !item.HasUnknown() {
			out = append(out, item)
		}
	}
	return out
}
