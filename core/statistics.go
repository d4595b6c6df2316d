package core

import (
	"context"
	"time"

	"github.com/huangsam/provstats/internal/contract"
	"github.com/huangsam/provstats/schema"
	"go.uber.org/zap"
)

// StatisticsService answers statistics queries against injected collaborators.
// It holds no per-request state and is safe for concurrent use.
type StatisticsService struct {
	Hierarchy contract.HierarchyStore
	Stats     contract.StatisticsStore
	Scopes    contract.ScopeProvider
	Log       *zap.SugaredLogger
}

// NewStatisticsService creates a service. A nil logger discards output.
func NewStatisticsService(hierarchy contract.HierarchyStore, stats contract.StatisticsStore, scopes contract.ScopeProvider, log *zap.SugaredLogger) *StatisticsService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &StatisticsService{Hierarchy: hierarchy, Stats: stats, Scopes: scopes, Log: log}
}

// Query runs one request through the full pipeline and returns the resolved
// query with its rows, or the first typed failure.
func (s *StatisticsService) Query(ctx context.Context, req schema.StatisticsRequest) (schema.ResolvedQuery, []schema.StatisticsRow, error) {
	start := time.Now()
	b := NewStatisticsQueryBuilder(ctx, s)

	steps := []func() (*StatisticsQueryBuilder, error){
		func() (*StatisticsQueryBuilder, error) { return b.ParseInputs(req) },
		b.LoadScope,
		b.ResolveHierarchy,
		b.ValidateHierarchy,
		b.EstimateRowCount,
		b.FetchFromStore,
		b.CheckActualRowCount,
		b.CheckHomogeneity,
	}
	for _, step := range steps {
		if _, err := step(); err != nil {
			s.logFailure(req, b.Fetched(), err)
			return schema.ResolvedQuery{}, nil, err
		}
	}

	s.Log.Debugw("statistics query served",
		"product", b.query.Product,
		"company", b.query.Company,
		"family", b.query.Family,
		"range", b.query.Range,
		"rows", len(b.rows),
		"duration", time.Since(start))
	return b.query, b.rows, nil
}

// logFailure logs rejections at warn and collaborator failures at error.
func (s *StatisticsService) logFailure(req schema.StatisticsRequest, fetched bool, err error) {
	kind := contract.KindOf(err)
	fields := []any{
		"kind", kind,
		"product", req.Product,
		"company", req.Company,
		"family", req.Family,
		"from", req.QueryDateFrom,
		"to", req.QueryDateTo,
		"partitioning", req.DataPartitioning,
		"fetched", fetched,
		"error", err,
	}
	if kind == contract.UpstreamFailure {
		s.Log.Errorw("statistics query failed", fields...)
		return
	}
	s.Log.Warnw("statistics query rejected", fields...)
}

// StatisticsQueryBuilder carries one request through the pipeline stages.
type StatisticsQueryBuilder struct {
	ctx     context.Context
	svc     *StatisticsService
	parsed  ParsedRequest
	scope   schema.AccessScope
	query   schema.ResolvedQuery
	rows    []schema.StatisticsRow
	fetched bool
}

// NewStatisticsQueryBuilder creates a builder bound to ctx.
func NewStatisticsQueryBuilder(ctx context.Context, svc *StatisticsService) *StatisticsQueryBuilder {
	return &StatisticsQueryBuilder{ctx: ctx, svc: svc}
}

// ParseInputs decodes the raw request.
func (b *StatisticsQueryBuilder) ParseInputs(req schema.StatisticsRequest) (*StatisticsQueryBuilder, error) {
	parsed, err := ParseInputs(req)
	if err != nil {
		return nil, err
	}
	b.parsed = parsed
	return b, nil
}

// LoadScope fetches the caller's access scope once for the whole request.
func (b *StatisticsQueryBuilder) LoadScope() (*StatisticsQueryBuilder, error) {
	scope, err := b.svc.Scopes.GetUserScope(b.ctx)
	if err != nil {
		return nil, contract.WrapUpstream(err, "failed to load access scope")
	}
	b.scope = scope
	return b, nil
}

// ResolveHierarchy fills in company and family.
func (b *StatisticsQueryBuilder) ResolveHierarchy() (*StatisticsQueryBuilder, error) {
	query, err := ResolveHierarchy(b.ctx, b.svc.Hierarchy, b.parsed, b.scope)
	if err != nil {
		return nil, err
	}
	b.query = query
	return b, nil
}

// ValidateHierarchy checks the resolved triple against the catalog.
func (b *StatisticsQueryBuilder) ValidateHierarchy() (*StatisticsQueryBuilder, error) {
	if err := ValidateHierarchy(b.ctx, b.svc.Hierarchy, FilterOf(b.query)); err != nil {
		return nil, err
	}
	return b, nil
}

// EstimateRowCount applies the pre-flight size check.
func (b *StatisticsQueryBuilder) EstimateRowCount() (*StatisticsQueryBuilder, error) {
	if err := CheckEstimate(b.query.Range, b.query.Partitioning); err != nil {
		return nil, err
	}
	return b, nil
}

// FetchFromStore runs the only data-producing call.
func (b *StatisticsQueryBuilder) FetchFromStore() (*StatisticsQueryBuilder, error) {
	rows, err := b.svc.Stats.QueryStatistics(b.ctx, b.query, b.scope)
	if err != nil {
		return nil, contract.WrapUpstream(err, "failed to query statistics")
	}
	b.rows = rows
	b.fetched = true
	return b, nil
}

// CheckActualRowCount applies the post-flight size check.
func (b *StatisticsQueryBuilder) CheckActualRowCount() (*StatisticsQueryBuilder, error) {
	if err := CheckActual(b.rows); err != nil {
		return nil, err
	}
	return b, nil
}

// CheckHomogeneity requires a single company and family across the rows.
func (b *StatisticsQueryBuilder) CheckHomogeneity() (*StatisticsQueryBuilder, error) {
	if err := CheckHomogeneity(b.rows); err != nil {
		return nil, err
	}
	return b, nil
}

// Fetched reports whether the statistics store was called.
func (b *StatisticsQueryBuilder) Fetched() bool {
	return b.fetched
}
