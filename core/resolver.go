package core

import (
	"context"

	"github.com/huangsam/provstats/internal/contract"
	"github.com/huangsam/provstats/schema"
)

// hierarchyKey identifies a candidate by its owning company and family.
type hierarchyKey struct {
	company schema.Company
	family  schema.Family
}

// ResolveHierarchy fills in the company and family a product belongs to.
// Values supplied by the caller are kept as-is; the store is only consulted
// when one of them is missing. A complete triple outside scope is not found,
// the same outcome a product-only lookup gets.
func ResolveHierarchy(ctx context.Context, store contract.HierarchyStore, req ParsedRequest, scope schema.AccessScope) (schema.ResolvedQuery, error) {
	query := schema.ResolvedQuery{
		Range:        req.Range,
		Partitioning: req.Partitioning,
		Product:      req.Product,
		Phase:        req.Phase,
	}

	company, hasCompany := req.Company.Get()
	family, hasFamily := req.Family.Get()
	if hasCompany && hasFamily {
		query.Company = company
		query.Family = family
		if !scope.Allows(query.Hierarchy()) {
			return schema.ResolvedQuery{}, contract.NewHierarchyNotFound(req.Product.String())
		}
		return query, nil
	}

	items, err := store.GetHierarchyForProduct(ctx, req.Product, scope)
	if err != nil {
		return schema.ResolvedQuery{}, contract.WrapUpstream(err, "failed to load hierarchy for product %s", req.Product)
	}

	candidates := selectCandidates(items, req.Company, req.Family)
	switch len(candidates) {
	case 0:
		return schema.ResolvedQuery{}, contract.NewHierarchyNotFound(req.Product.String())
	case 1:
		query.Company = req.Company.OrElse(candidates[0].Company)
		query.Family = req.Family.OrElse(candidates[0].Family)
		return query, nil
	default:
		return schema.ResolvedQuery{}, contract.NewAmbiguousHierarchy(req.Product.String(), candidates)
	}
}

// selectCandidates applies the caller filters and the data-quality denylist,
// then keeps one entry per (company, family).
func selectCandidates(items []schema.HierarchyItem, company schema.Optional[schema.Company], family schema.Optional[schema.Family]) []schema.HierarchyItem {
	seen := make(map[hierarchyKey]struct{}, len(items))
	out := make([]schema.HierarchyItem, 0, len(items))
	for _, item := range items {
		if c, ok := company.Get(); ok && c != item.Company {
			continue
		}
		if f, ok := family.Get(); ok && f != item.Family {
			continue
		}
		if item.Company.IsTest() || !item.Company.IsKnown() || !item.Family.IsKnown() {
			continue
		}
		key := hierarchyKey{company: item.Company, family: item.Family}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
