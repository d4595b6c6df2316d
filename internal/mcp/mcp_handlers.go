package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/provstats/core"
	"github.com/huangsam/provstats/internal/acl"
	"github.com/huangsam/provstats/internal/contract"
	"github.com/huangsam/provstats/internal/metrics"
	"github.com/huangsam/provstats/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	stats   *core.StatisticsService
	catalog *core.CatalogService
	log     *zap.SugaredLogger
}

// toolFunc returns the structured payload of a tool call, or a typed error.
type toolFunc func(ctx context.Context, request mcp.CallToolRequest) (any, error)

// Envelopes keep structured content a JSON object.
type (
	hierarchyResult struct {
		Hierarchy []schema.HierarchyItem `json:"hierarchy"`
	}
	productNamesResult struct {
		Products []string `json:"products"`
	}
	permissionsResult struct {
		Unrestricted bool                     `json:"unrestricted"`
		Permissions  []schema.PermissionEntry `json:"permissions"`
	}
)

// wrap turns fn into a tool handler. Failures become tool errors carrying the
// error kind, so the caller can correct its arguments.
func (h *toolHandler) wrap(name string, fn toolFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		log := h.log.With("tool", name, "call_id", uuid.NewString())
		if agentID, ok := acl.AgentIDFrom(ctx); ok {
			log = log.With("agent_id", agentID)
		}

		payload, err := fn(ctx, request)
		elapsed := time.Since(start)
		if err != nil {
			kind := contract.KindOf(err)
			metrics.RecordToolCall(name, string(kind), elapsed.Seconds())
			log.Debugw("tool call failed", "kind", kind, "elapsed", elapsed)
			return mcp.NewToolResultError(contract.Describe(err)), nil
		}

		text, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			metrics.RecordToolCall(name, string(contract.UpstreamFailure), elapsed.Seconds())
			log.Errorw("failed to encode tool result", "error", err)
			return mcp.NewToolResultError(fmt.Sprintf("%s: failed to encode result", contract.UpstreamFailure)), nil
		}
		metrics.RecordToolCall(name, metrics.OutcomeSuccess, elapsed.Seconds())
		log.Debugw("tool call served", "elapsed", elapsed)
		return mcp.NewToolResultStructured(payload, string(text)), nil
	}
}

func statisticsRequest(request mcp.CallToolRequest) schema.StatisticsRequest {
	return schema.StatisticsRequest{
		QueryDateFrom:     request.GetString("queryDateFrom", ""),
		QueryDateTo:       request.GetString("queryDateTo", ""),
		Product:           request.GetString("product", ""),
		DataPartitioning:  request.GetString("dataPartitioning", ""),
		ProvisioningPhase: request.GetString("provisioningPhase", ""),
		Company:           request.GetString("company", ""),
		Family:            request.GetString("family", ""),
	}
}

func (h *toolHandler) statistics(shape schema.StatisticsShape) toolFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (any, error) {
		query, rows, err := h.stats.Query(ctx, statisticsRequest(request))
		if err != nil {
			return nil, err
		}
		return schema.ShapeStatistics(shape, query, rows), nil
	}
}

func (h *toolHandler) productsHierarchy(ctx context.Context, request mcp.CallToolRequest) (any, error) {
	items, err := h.catalog.ProductsHierarchy(ctx, request.GetString("company", ""), request.GetString("family", ""))
	if err != nil {
		return nil, err
	}
	return hierarchyResult{Hierarchy: items}, nil
}

func (h *toolHandler) findProductHierarchy(ctx context.Context, request mcp.CallToolRequest) (any, error) {
	items, err := h.catalog.FindProductHierarchy(ctx, request.GetString("product", ""))
	if err != nil {
		return nil, err
	}
	return hierarchyResult{Hierarchy: items}, nil
}

func (h *toolHandler) allProductNames(ctx context.Context, _ mcp.CallToolRequest) (any, error) {
	names, err := h.catalog.AllProductNames(ctx)
	if err != nil {
		return nil, err
	}
	return productNamesResult{Products: names}, nil
}

func (h *toolHandler) myPermissions(ctx context.Context, _ mcp.CallToolRequest) (any, error) {
	perms, err := h.catalog.MyPermissions(ctx)
	if err != nil {
		return nil, err
	}
	return permissionsResult{Unrestricted: len(perms) == 0, Permissions: perms}, nil
}
