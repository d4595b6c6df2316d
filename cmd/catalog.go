package cmd

import (
	"github.com/huangsam/provstats/core"
	"github.com/spf13/cobra"
)

// catalogCmd groups the product catalog lookups.
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Explore the company, family and product catalog",
	Long: `Look up the product catalog visible to the configured agent.

Subcommands:
  hierarchy   - list entries, optionally narrowed by --company and --family
  find        - list the hierarchies of --product
  products    - list every product name
  permissions - show what the agent may see`,
}

// catalogCommand builds a catalog subcommand running exec.
func catalogCommand(use, short string, exec core.ExecutorFunc) *cobra.Command {
	return &cobra.Command{
		Use:     use,
		Short:   short,
		PreRunE: sharedSetup,
		Run: func(_ *cobra.Command, _ []string) {
			if err := exec(rootCtx, cfg, services); err != nil {
				fatal("Cannot run catalog "+use, err)
			}
		},
	}
}

var (
	catalogHierarchyCmd   = catalogCommand("hierarchy", "List catalog entries", core.ExecuteHierarchy)
	catalogFindCmd        = catalogCommand("find", "Find the company and family of a product", core.ExecuteFindProduct)
	catalogProductsCmd    = catalogCommand("products", "List every product name", core.ExecuteProductNames)
	catalogPermissionsCmd = catalogCommand("permissions", "Show the agent's permissions", core.ExecutePermissions)
)
