package core

import (
	"context"

	"github.com/huangsam/provstats/internal/contract"
	"github.com/huangsam/provstats/schema"
)

// HierarchyFilter is a partial (company, family, product) specification.
type HierarchyFilter struct {
	Company schema.Optional[schema.Company]
	Family  schema.Optional[schema.Family]
	Product schema.Optional[schema.Product]
}

// FilterOf lifts a resolved query into a fully specified filter.
func FilterOf(q schema.ResolvedQuery) HierarchyFilter {
	return HierarchyFilter{
		Company: schema.Some(q.Company),
		Family:  schema.Some(q.Family),
		Product: schema.Some(q.Product),
	}
}

// ValidateHierarchy enforces the cross-field rules of a filter, first failure wins:
//
//  1. a family needs a company
//  2. a product needs both company and family
//  3. the company and family must appear together in the catalog
//  4. the full triple must appear together in the catalog
//
// The catalog used for rules 3 and 4 is fetched without ACL filtering, and
// only when one of those rules applies.
func ValidateHierarchy(ctx context.Context, store contract.HierarchyStore, filter HierarchyFilter) error {
	company, hasCompany := filter.Company.Get()
	family, hasFamily := filter.Family.Get()
	product, hasProduct := filter.Product.Get()

	if hasFamily && !hasCompany {
		return contract.NewInvalidArgument("If 'family' is provided, 'company' must also be provided.")
	}
	if hasProduct && (!hasCompany || !hasFamily) {
		return contract.NewInvalidArgument("If 'product' is provided, both 'company' and 'family' must also be provided.")
	}
	if !hasCompany || !hasFamily {
		return nil
	}

	catalog, err := store.GetHierarchy(ctx, schema.None[schema.Company](), schema.None[schema.Family](), nil)
	if err != nil {
		return contract.WrapUpstream(err, "failed to load the product catalog")
	}

	pairFound, tripleFound := false, false
	for _, item := range catalog {
		if item.Company != company || item.Family != family {
			continue
		}
		if !item.Company.IsKnown() || !item.Family.IsKnown() {
			continue
		}
		pairFound = true
		if hasProduct && item.Product == product && item.Product.IsKnown() {
			tripleFound = true
			break
		}
	}

	if !pairFound {
		return contract.NewInvalidArgument("Family '%s' does not belong to company '%s'.", family, company)
	}
	if hasProduct && !tripleFound {
		return contract.NewInvalidArgument("Product '%s' does not belong to company '%s' and family '%s'.", product, company, family)
	}
	return nil
}
