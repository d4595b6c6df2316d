package core

import (
	"context"
	"errors"
	"testing"

	"github.com/huangsam/provstats/internal/contract"
	"github.com/huangsam/provstats/schema"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestValidateHierarchy(t *testing.T) {
	company := schema.Some(schema.NetWave)
	family := schema.Some(schema.NetworkServices)

	tests := []struct {
		name   string
		filter HierarchyFilter
		msg    string
	}{
		{
			name:   "empty filter",
			filter: HierarchyFilter{},
		},
		{
			name:   "company only",
			filter: HierarchyFilter{Company: company},
		},
		{
			name:   "family without company",
			filter: HierarchyFilter{Family: family},
			msg:    "If 'family' is provided, 'company' must also be provided.",
		},
		{
			name:   "product without family",
			filter: HierarchyFilter{Company: company, Product: schema.Some(schema.ManagedFirewall)},
			msg:    "If 'product' is provided, both 'company' and 'family' must also be provided.",
		},
		{
			name:   "family rule wins over product rule",
			filter: HierarchyFilter{Family: family, Product: schema.Some(schema.ManagedFirewall)},
			msg:    "If 'family' is provided",
		},
		{
			name:   "valid pair",
			filter: HierarchyFilter{Company: company, Family: family},
		},
		{
			name:   "valid triple",
			filter: HierarchyFilter{Company: company, Family: family, Product: schema.Some(schema.LoadBalancerAsAService)},
		},
		{
			name:   "family not owned by company",
			filter: HierarchyFilter{Company: company, Family: schema.Some(schema.CloudStorage)},
			msg:    "Family 'CloudStorage' does not belong to company 'NetWave'.",
		},
		{
			name:   "product not in pair",
			filter: HierarchyFilter{Company: company, Family: family, Product: schema.Some(schema.ObjectStorage)},
			msg:    "Product 'ObjectStorage' does not belong to company 'NetWave' and family 'NetworkServices'.",
		},
		{
			name:   "pair only present on test company",
			filter: HierarchyFilter{Company: schema.Some(schema.Test1), Family: schema.Some(schema.CloudStorage)},
		},
		{
			name:   "pair only present with unknown family",
			filter: HierarchyFilter{Company: schema.Some(schema.SkyLink), Family: schema.Some(schema.Family(99))},
			msg:    "Family 'UNKNOWN_VALUE' does not belong to company 'SkyLink'.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHierarchy(context.Background(), catalogStore{}, tt.filter)
			if tt.msg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, contract.InvalidArgument, contract.KindOf(err))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestValidateHierarchySkipsCatalogForPartialFilters(t *testing.T) {
	store := &contract.MockHierarchyStore{}
	err := ValidateHierarchy(context.Background(), store, HierarchyFilter{Company: schema.Some(schema.SkyLink)})
	assert.NoError(t, err)
	store.AssertNotCalled(t, "GetHierarchy", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestValidateHierarchyUsesUnscopedCatalog(t *testing.T) {
	ctx := context.Background()
	store := &contract.MockHierarchyStore{}
	store.On("GetHierarchy", ctx, schema.None[schema.Company](), schema.None[schema.Family](), (*schema.AccessScope)(nil)).
		Return(nil, errors.New("catalog offline"))

	err := ValidateHierarchy(ctx, store, HierarchyFilter{Company: schema.Some(schema.SkyLink), Family: schema.Some(schema.CloudStorage)})
	assert.Equal(t, contract.UpstreamFailure, contract.KindOf(err))
	store.AssertExpectations(t)
}

func TestValidateHierarchyRejectsTriplesOutsideCatalog(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	inCatalog := func(c schema.Company, f schema.Family, p schema.Product) bool {
		for _, item := range testCatalog() {
			if item.Company == c && item.Family == f && item.Product == p && !item.HasUnknown() {
				return true
			}
		}
		return false
	}

	properties.Property("validator accepts exactly the catalog triples", prop.ForAll(
		func(c, f, p int) bool {
			company, family, product := schema.Company(c), schema.Family(f), schema.Product(p)
			err := ValidateHierarchy(context.Background(), catalogStore{}, HierarchyFilter{
				Company: schema.Some(company),
				Family:  schema.Some(family),
				Product: schema.Some(product),
			})
			if inCatalog(company, family, product) {
				return err == nil
			}
			return contract.KindOf(err) == contract.InvalidArgument
		},
		gen.OneConstOf(1, 2, 901, 5),
		gen.IntRange(0, 5),
		gen.IntRange(0, 9),
	))

	properties.TestingRun(t)
}
