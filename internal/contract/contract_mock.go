package contract

import (
	"context"

	"github.com/huangsam/provstats/schema"
	"github.com/stretchr/testify/mock"
)

// MockHierarchyStore is a mock implementation of HierarchyStore for testing.
type MockHierarchyStore struct {
	mock.Mock
}

var _ HierarchyStore = &MockHierarchyStore{} // Compile-time check

// GetHierarchy implements the HierarchyStore interface.
func (m *MockHierarchyStore) GetHierarchy(ctx context.Context, company schema.Optional[schema.Company], family schema.Optional[schema.Family], scope *schema.AccessScope) ([]schema.HierarchyItem, error) {
	args := m.Called(ctx, company, family, scope)
	items, _ := args.Get(0).([]schema.HierarchyItem)
	return items, args.Error(1)
}

// GetHierarchyForProduct implements the HierarchyStore interface.
func (m *MockHierarchyStore) GetHierarchyForProduct(ctx context.Context, product schema.Product, scope schema.AccessScope) ([]schema.HierarchyItem, error) {
	args := m.Called(ctx, product, scope)
	items, _ := args.Get(0).([]schema.HierarchyItem)
	return items, args.Error(1)
}

// MockStatisticsStore is a mock implementation of StatisticsStore for testing.
type MockStatisticsStore struct {
	mock.Mock
}

var _ StatisticsStore = &MockStatisticsStore{} // Compile-time check

// QueryStatistics implements the StatisticsStore interface.
func (m *MockStatisticsStore) QueryStatistics(ctx context.Context, query schema.ResolvedQuery, scope schema.AccessScope) ([]schema.StatisticsRow, error) {
	args := m.Called(ctx, query, scope)
	rows, _ := args.Get(0).([]schema.StatisticsRow)
	return rows, args.Error(1)
}

// MockScopeProvider is a mock implementation of ScopeProvider for testing.
type MockScopeProvider struct {
	mock.Mock
}

var _ ScopeProvider = &MockScopeProvider{} // Compile-time check

// GetUserScope implements the ScopeProvider interface.
func (m *MockScopeProvider) GetUserScope(ctx context.Context) (schema.AccessScope, error) {
	args := m.Called(ctx)
	scope, _ := args.Get(0).(schema.AccessScope)
	return scope, args.Error(1)
}
