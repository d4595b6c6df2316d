// Package core has the query pipeline and catalog lookups behind every
// provisioning statistics surface.
package core

import (
	"context"
	"time"

	"github.com/huangsam/provstats/internal/acl"
	"github.com/huangsam/provstats/internal/contract"
	"github.com/huangsam/provstats/internal/outwriter"
	"github.com/huangsam/provstats/schema"
)

// Services bundles the services a command runs against.
type Services struct {
	Stats   *StatisticsService
	Catalog *CatalogService
}

// ExecutorFunc defines the function signature for executing the CLI commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, svc *Services) error

// withAgent binds the configured agent id, if any, to ctx.
func withAgent(ctx context.Context, cfg *contract.Config) context.Context {
	if cfg.AgentID == "" {
		return ctx
	}
	return acl.WithAgentID(ctx, cfg.AgentID)
}

// ExecuteStatistics returns the executor that answers cfg.Request in the given shape.
func ExecuteStatistics(shape schema.StatisticsShape) ExecutorFunc {
	return func(ctx context.Context, cfg *contract.Config, svc *Services) error {
		start := time.Now()
		query, rows, err := svc.Stats.Query(withAgent(ctx, cfg), cfg.Request)
		if err != nil {
			return err
		}
		return outwriter.NewOutWriter().WriteStatistics(shape, query, rows, cfg, time.Since(start))
	}
}

// ExecuteHierarchy lists the catalog, narrowed by the company and family of cfg.Request.
func ExecuteHierarchy(ctx context.Context, cfg *contract.Config, svc *Services) error {
	items, err := svc.Catalog.ProductsHierarchy(withAgent(ctx, cfg), cfg.Request.Company, cfg.Request.Family)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteHierarchy(items, cfg)
}

// ExecuteFindProduct lists the hierarchies of the product of cfg.Request.
func ExecuteFindProduct(ctx context.Context, cfg *contract.Config, svc *Services) error {
	items, err := svc.Catalog.FindProductHierarchy(withAgent(ctx, cfg), cfg.Request.Product)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteHierarchy(items, cfg)
}

// ExecuteProductNames lists every visible product name.
func ExecuteProductNames(ctx context.Context, cfg *contract.Config, svc *Services) error {
	names, err := svc.Catalog.AllProductNames(withAgent(ctx, cfg))
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteProductNames(names, cfg)
}

// ExecutePermissions shows what the configured agent may see.
func ExecutePermissions(ctx context.Context, cfg *contract.Config, svc *Services) error {
	perms, err := svc.Catalog.MyPermissions(withAgent(ctx, cfg))
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WritePermissions(perms, cfg)
}
