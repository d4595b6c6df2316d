package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/provstats/core"
	"github.com/huangsam/provstats/internal/acl"
	"github.com/huangsam/provstats/internal/contract"
	mcp_internal "github.com/huangsam/provstats/internal/mcp"
	"github.com/huangsam/provstats/internal/store"
	"github.com/huangsam/provstats/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testACL = `agents:
  reporting-bot:
    - company: SkyLink
  admin: []
`

func newTestServer(t *testing.T, scopes contract.ScopeProvider) *server.MCPServer {
	t.Helper()
	log := zaptest.NewLogger(t).Sugar()
	ms := store.NewMemoryStore(nil)
	return mcp_internal.NewMCPServer(
		core.NewStatisticsService(ms, ms, scopes, log),
		core.NewCatalogService(ms, scopes, log),
		log,
	)
}

func callTool(t *testing.T, ctx context.Context, s *server.MCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := s.GetTool(name)
	require.NotNil(t, tool, "tool %s should exist", name)

	res, err := tool.Handler(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "tool failures are reported in the result, not as raw errors")
	require.NotEmpty(t, res.Content)
	return res
}

func resultText(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func TestMCPServerStatisticsTools(t *testing.T) {
	s := newTestServer(t, acl.StaticProvider{})
	ctx := context.Background()
	args := map[string]any{
		"queryDateFrom":    "2025-01-01",
		"queryDateTo":      "2025-01-31",
		"product":          "ObjectStorage",
		"dataPartitioning": "Day",
	}

	t.Run("raw counters", func(t *testing.T) {
		res := callTool(t, ctx, s, mcp_internal.ToolStatisticsGet, args)
		require.False(t, res.IsError, resultText(res))

		var result schema.StatisticsResult[schema.StatisticsRecord]
		require.NoError(t, json.Unmarshal([]byte(resultText(res)), &result))
		assert.Equal(t, "SkyLink", result.Company)
		assert.Equal(t, "CloudStorage", result.Family)
		assert.Len(t, result.Rows, 31)
	})

	t.Run("rates", func(t *testing.T) {
		res := callTool(t, ctx, s, mcp_internal.ToolStatisticsGetRates, args)
		require.False(t, res.IsError, resultText(res))
		assert.Contains(t, resultText(res), "percentageOfSuccess")
	})

	t.Run("duration", func(t *testing.T) {
		res := callTool(t, ctx, s, mcp_internal.ToolStatisticsGetDuration, args)
		require.False(t, res.IsError, resultText(res))
		assert.Contains(t, resultText(res), "userAverageElapsedInterval")
	})
}

func TestMCPServerStatisticsErrors(t *testing.T) {
	s := newTestServer(t, acl.StaticProvider{})
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]any
		kind contract.ErrorKind
	}{
		{
			name: "ambiguous product",
			args: map[string]any{"queryDateFrom": "2025-01-01", "queryDateTo": "2025-01-31", "product": "ManagedFirewall", "dataPartitioning": "Day"},
			kind: contract.AmbiguousHierarchy,
		},
		{
			name: "malformed date",
			args: map[string]any{"queryDateFrom": "01/01/2025", "queryDateTo": "2025-01-31", "product": "ObjectStorage", "dataPartitioning": "Day"},
			kind: contract.InvalidArgument,
		},
		{
			name: "missing product",
			args: map[string]any{"queryDateFrom": "2025-01-01", "queryDateTo": "2025-01-31", "dataPartitioning": "Day"},
			kind: contract.InvalidArgument,
		},
		{
			name: "too many rows",
			args: map[string]any{"queryDateFrom": "2025-01-01", "queryDateTo": "2025-03-31", "product": "ObjectStorage", "dataPartitioning": "Day"},
			kind: contract.UnprocessableQuery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, ctx, s, mcp_internal.ToolStatisticsGet, tt.args)
			assert.True(t, res.IsError)
			assert.Contains(t, resultText(res), string(tt.kind))
		})
	}
}

func TestMCPServerCompanyInfoTools(t *testing.T) {
	s := newTestServer(t, acl.StaticProvider{})
	ctx := context.Background()

	res := callTool(t, ctx, s, mcp_internal.ToolCompanyInfoFindProduct, map[string]any{"product": "ManagedFirewall"})
	require.False(t, res.IsError, resultText(res))
	var found struct {
		Hierarchy []schema.HierarchyItem `json:"hierarchy"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &found))
	assert.Len(t, found.Hierarchy, 2)

	res = callTool(t, ctx, s, mcp_internal.ToolCompanyInfoHierarchy, map[string]any{"company": "NetWave", "family": "NetworkServices"})
	require.False(t, res.IsError, resultText(res))
	assert.Contains(t, resultText(res), "LoadBalancerAsAService")

	res = callTool(t, ctx, s, mcp_internal.ToolCompanyInfoAllProducts, nil)
	require.False(t, res.IsError, resultText(res))
	var names struct {
		Products []string `json:"products"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &names))
	assert.Contains(t, names.Products, "ObjectStorage")
	assert.IsNonDecreasing(t, names.Products)
}

func TestMCPServerPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "acl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testACL), 0o600))
	fp, err := acl.NewFileProvider(path, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)

	s := newTestServer(t, fp)

	tests := []struct {
		name         string
		agent        string
		isError      bool
		unrestricted bool
		contains     string
	}{
		{name: "restricted agent", agent: "reporting-bot", contains: "SkyLink"},
		{name: "unrestricted agent", agent: "admin", unrestricted: true},
		{name: "unknown agent", agent: "stranger", isError: true, contains: string(contract.UpstreamFailure)},
		{name: "no agent", isError: true, contains: string(contract.UpstreamFailure)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.agent != "" {
				ctx = acl.WithAgentID(ctx, tt.agent)
			}
			res := callTool(t, ctx, s, mcp_internal.ToolMyPermissionsGet, nil)
			assert.Equal(t, tt.isError, res.IsError, resultText(res))
			if tt.contains != "" {
				assert.Contains(t, resultText(res), tt.contains)
			}
			if !tt.isError {
				var perms struct {
					Unrestricted bool `json:"unrestricted"`
				}
				require.NoError(t, json.Unmarshal([]byte(resultText(res)), &perms))
				assert.Equal(t, tt.unrestricted, perms.Unrestricted)
			}
		})
	}
}

func TestMCPServerScopedStatistics(t *testing.T) {
	s := newTestServer(t, acl.StaticProvider{Scope: schema.AccessScope{
		Entries: []schema.ScopeEntry{{Company: schema.Some(schema.NetWave)}},
	}})

	res := callTool(t, context.Background(), s, mcp_internal.ToolStatisticsGet, map[string]any{
		"queryDateFrom":    "2025-01-01",
		"queryDateTo":      "2025-01-31",
		"product":          "ObjectStorage",
		"dataPartitioning": "Day",
	})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(res), string(contract.HierarchyNotFound))
}
