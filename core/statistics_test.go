package core

import (
	"context"
	"errors"
	"testing"

	"github.com/huangsam/provstats/internal/contract"
	"github.com/huangsam/provstats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

type serviceMocks struct {
	hierarchy *contract.MockHierarchyStore
	stats     *contract.MockStatisticsStore
	scopes    *contract.MockScopeProvider
}

func newTestService(t *testing.T) (*StatisticsService, serviceMocks) {
	m := serviceMocks{
		hierarchy: &contract.MockHierarchyStore{},
		stats:     &contract.MockStatisticsStore{},
		scopes:    &contract.MockScopeProvider{},
	}
	svc := NewStatisticsService(m.hierarchy, m.stats, m.scopes, zaptest.NewLogger(t).Sugar())
	return svc, m
}

// expectCatalog wires the hierarchy mock to the test catalog.
func (m serviceMocks) expectCatalog() {
	for p := schema.FiberInternet1Gbps; p <= schema.LoadBalancerAsAService; p++ {
		m.hierarchy.On("GetHierarchyForProduct", mock.Anything, p, mock.Anything).
			Return(productEntries(p), nil).Maybe()
	}
	m.hierarchy.On("GetHierarchy", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(testCatalog(), nil).Maybe()
}

func TestStatisticsServiceQuery(t *testing.T) {
	t.Run("object storage january by day", func(t *testing.T) {
		svc, m := newTestService(t)
		m.scopes.On("GetUserScope", mock.Anything).Return(schema.AccessScope{}, nil).Once()
		m.hierarchy.On("GetHierarchyForProduct", mock.Anything, schema.ObjectStorage, schema.AccessScope{}).
			Return(productEntries(schema.ObjectStorage), nil)
		m.hierarchy.On("GetHierarchy", mock.Anything, mock.Anything, mock.Anything, (*schema.AccessScope)(nil)).
			Return(testCatalog(), nil)

		rows := dailyRows(mustDate("2025-01-01"), mustDate("2025-01-31"), schema.SkyLink, schema.CloudStorage, schema.ObjectStorage)
		m.stats.On("QueryStatistics", mock.Anything, mock.MatchedBy(func(q schema.ResolvedQuery) bool {
			return q.Company == schema.SkyLink && q.Family == schema.CloudStorage && q.Product == schema.ObjectStorage
		}), schema.AccessScope{}).Return(rows, nil).Once()

		q, got, err := svc.Query(context.Background(), validRequest())
		require.NoError(t, err)
		assert.Equal(t, schema.SkyLink, q.Company)
		assert.Equal(t, schema.CloudStorage, q.Family)
		assert.Equal(t, 31, EstimateBuckets(q.Range, q.Partitioning))
		assert.Len(t, got, 31)
		m.scopes.AssertExpectations(t)
		m.stats.AssertExpectations(t)
	})

	t.Run("thirty six days is rejected before the store", func(t *testing.T) {
		svc, m := newTestService(t)
		m.scopes.On("GetUserScope", mock.Anything).Return(schema.AccessScope{}, nil)
		m.expectCatalog()

		req := validRequest()
		req.QueryDateTo = "2025-02-05"
		_, _, err := svc.Query(context.Background(), req)
		require.Error(t, err)
		assert.Equal(t, contract.UnprocessableQuery, contract.KindOf(err))
		assert.EqualError(t, err, contract.MsgTooManyRows)
		m.stats.AssertNotCalled(t, "QueryStatistics", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("managed firewall is ambiguous", func(t *testing.T) {
		svc, m := newTestService(t)
		m.scopes.On("GetUserScope", mock.Anything).Return(schema.AccessScope{}, nil)
		m.expectCatalog()

		req := validRequest()
		req.Product = "ManagedFirewall"
		_, _, err := svc.Query(context.Background(), req)
		qe, ok := contract.AsQueryError(err)
		require.True(t, ok)
		assert.Equal(t, contract.AmbiguousHierarchy, qe.Kind)
		assert.Len(t, qe.Candidates, 2)
		m.stats.AssertNotCalled(t, "QueryStatistics", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("inconsistent caller hierarchy is invalid", func(t *testing.T) {
		svc, m := newTestService(t)
		m.scopes.On("GetUserScope", mock.Anything).Return(schema.AccessScope{}, nil)
		m.expectCatalog()

		req := validRequest()
		req.Company = "NetWave"
		req.Family = "CloudStorage"
		_, _, err := svc.Query(context.Background(), req)
		assert.Equal(t, contract.InvalidArgument, contract.KindOf(err))
		assert.Contains(t, err.Error(), "Family 'CloudStorage' does not belong to company 'NetWave'.")
	})

	t.Run("complete hierarchy outside scope matches product-only outcome", func(t *testing.T) {
		svc, m := newTestService(t)
		scope := schema.AccessScope{Entries: []schema.ScopeEntry{{Company: schema.Some(schema.NetWave)}}}
		m.scopes.On("GetUserScope", mock.Anything).Return(scope, nil)
		m.hierarchy.On("GetHierarchyForProduct", mock.Anything, schema.ObjectStorage, scope).
			Return([]schema.HierarchyItem{}, nil)
		m.hierarchy.On("GetHierarchy", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(testCatalog(), nil).Maybe()

		req := validRequest()
		req.QueryDateTo = "2025-01-05"
		_, _, productOnly := svc.Query(context.Background(), req)
		assert.Equal(t, contract.HierarchyNotFound, contract.KindOf(productOnly))

		req.Company = "SkyLink"
		req.Family = "CloudStorage"
		_, rows, complete := svc.Query(context.Background(), req)
		assert.Equal(t, contract.HierarchyNotFound, contract.KindOf(complete))
		assert.Equal(t, productOnly.Error(), complete.Error())
		assert.Nil(t, rows)
		m.stats.AssertNotCalled(t, "QueryStatistics", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("parse failure touches no collaborator", func(t *testing.T) {
		svc, m := newTestService(t)
		req := validRequest()
		req.DataPartitioning = "Hour"
		_, _, err := svc.Query(context.Background(), req)
		assert.Equal(t, contract.InvalidArgument, contract.KindOf(err))
		m.scopes.AssertNotCalled(t, "GetUserScope", mock.Anything)
	})

	t.Run("scope failure is upstream", func(t *testing.T) {
		svc, m := newTestService(t)
		m.scopes.On("GetUserScope", mock.Anything).Return(schema.AccessScope{}, errors.New("acl down"))

		_, _, err := svc.Query(context.Background(), validRequest())
		assert.Equal(t, contract.UpstreamFailure, contract.KindOf(err))
		assert.Contains(t, err.Error(), "acl down")
	})

	t.Run("store failure is upstream", func(t *testing.T) {
		svc, m := newTestService(t)
		m.scopes.On("GetUserScope", mock.Anything).Return(schema.AccessScope{}, nil)
		m.expectCatalog()
		m.stats.On("QueryStatistics", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

		_, _, err := svc.Query(context.Background(), validRequest())
		assert.Equal(t, contract.UpstreamFailure, contract.KindOf(err))
	})

	t.Run("oversized store result is rejected", func(t *testing.T) {
		svc, m := newTestService(t)
		m.scopes.On("GetUserScope", mock.Anything).Return(schema.AccessScope{}, nil)
		m.expectCatalog()
		rows := dailyRows(mustDate("2025-01-01"), mustDate("2025-02-10"), schema.SkyLink, schema.CloudStorage, schema.ObjectStorage)
		m.stats.On("QueryStatistics", mock.Anything, mock.Anything, mock.Anything).Return(rows, nil)

		_, _, err := svc.Query(context.Background(), validRequest())
		assert.Equal(t, contract.UnprocessableQuery, contract.KindOf(err))
		assert.EqualError(t, err, contract.MsgTooManyRows)
	})

	t.Run("mixed companies are rejected", func(t *testing.T) {
		svc, m := newTestService(t)
		m.scopes.On("GetUserScope", mock.Anything).Return(schema.AccessScope{}, nil)
		m.expectCatalog()
		day := mustDate("2025-01-01")
		rows := append(
			dailyRows(day, day, schema.SkyLink, schema.CloudStorage, schema.ObjectStorage),
			dailyRows(day, day, schema.NetWave, schema.CloudStorage, schema.ObjectStorage)...)
		m.stats.On("QueryStatistics", mock.Anything, mock.Anything, mock.Anything).Return(rows, nil)

		_, _, err := svc.Query(context.Background(), validRequest())
		assert.EqualError(t, err, contract.MsgNotHomogeneous)
	})
}

func TestStatisticsQueryBuilderStages(t *testing.T) {
	svc, m := newTestService(t)
	scope := schema.AccessScope{Entries: []schema.ScopeEntry{{Company: schema.Some(schema.SkyLink)}}}
	m.scopes.On("GetUserScope", mock.Anything).Return(scope, nil).Once()
	m.expectCatalog()

	b := NewStatisticsQueryBuilder(context.Background(), svc)
	_, err := b.ParseInputs(validRequest())
	require.NoError(t, err)
	_, err = b.LoadScope()
	require.NoError(t, err)
	_, err = b.ResolveHierarchy()
	require.NoError(t, err)
	_, err = b.ValidateHierarchy()
	require.NoError(t, err)
	_, err = b.EstimateRowCount()
	require.NoError(t, err)

	assert.Equal(t, scope, b.scope)
	assert.Equal(t, schema.SkyLink, b.query.Company)
	assert.False(t, b.Fetched())
}

func TestStatisticsServiceLogsWhetherStoreWasCalled(t *testing.T) {
	tests := []struct {
		name    string
		to      string
		fetched bool
	}{
		{"pre-flight rejection", "2025-02-05", false},
		{"post-flight rejection", "2025-01-31", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs, logs := observer.New(zap.WarnLevel)
			m := serviceMocks{
				hierarchy: &contract.MockHierarchyStore{},
				stats:     &contract.MockStatisticsStore{},
				scopes:    &contract.MockScopeProvider{},
			}
			svc := NewStatisticsService(m.hierarchy, m.stats, m.scopes, zap.New(obs).Sugar())
			m.scopes.On("GetUserScope", mock.Anything).Return(schema.AccessScope{}, nil)
			m.expectCatalog()
			rows := dailyRows(mustDate("2025-01-01"), mustDate("2025-02-10"), schema.SkyLink, schema.CloudStorage, schema.ObjectStorage)
			m.stats.On("QueryStatistics", mock.Anything, mock.Anything, mock.Anything).Return(rows, nil).Maybe()

			req := validRequest()
			req.QueryDateTo = tt.to
			_, _, err := svc.Query(context.Background(), req)
			require.Error(t, err)

			entries := logs.FilterMessage("statistics query rejected").All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.fetched, entries[0].ContextMap()["fetched"])
		})
	}
}
