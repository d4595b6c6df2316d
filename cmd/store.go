package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/huangsam/provstats/internal/contract"
	"github.com/huangsam/provstats/internal/outwriter"
	"github.com/huangsam/provstats/internal/store"
	"github.com/huangsam/provstats/schema"
	"github.com/spf13/cobra"
)

// fatal releases resources, then exits with err rendered the way agents see it.
func fatal(msg string, err error) {
	closeResources()
	contract.LogFatal(msg, errors.New(contract.Describe(err)))
}

// reloadCatalog drops the cached catalog after a write and counts the entries now stored.
func reloadCatalog() (int, error) {
	catalog.Invalidate()
	items, err := catalog.GetHierarchy(rootCtx, schema.None[schema.Company](), schema.None[schema.Family](), nil)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// storeCmd focused on store management.
//
// Note: migrate uses configSetup instead of sharedSetup, because opening a
// SQL store migrates it to the latest version first.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the statistics store",
	Long: `Manage the database behind the catalog and statistics.

Supported backends: memory (default, synthetic demo data), SQLite, MySQL, PostgreSQL

Subcommands:
  migrate - Move the schema to a target version
  seed    - Load the demo catalog and synthetic daily statistics
  status  - Show connection, schema version and row counts
  clear   - Remove every catalog entry and statistic

Examples:
  # Seed a local SQLite store with the last 90 days
  provstats store seed --store-backend sqlite

  # Check a PostgreSQL store (set the connection string via env variable)
  PROVSTATS_STORE_BACKEND=postgresql PROVSTATS_STORE_DB_CONNECT="..." provstats store status`,
}

// storeMigrateCmd migrates the store schema.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the store schema to a target version",
	Long: `Apply or roll back schema migrations on a SQL store.

  --target-version -1 migrates to the latest version (default)
  --target-version 0  rolls every migration back
  --target-version N  migrates to exactly version N`,
	PreRunE: configSetup,
	Run: func(_ *cobra.Command, _ []string) {
		result, err := store.Migrate(cfg.StoreBackend, cfg.StoreDBConnect, cfg.TargetVersion)
		if err != nil {
			fatal("Failed to migrate store", err)
		}
		if !result.Changed {
			fmt.Printf("Store schema already at version %d.\n", result.ToVersion)
			return
		}
		fmt.Printf("Migrated store schema from version %d to %d.\n", result.FromVersion, result.ToVersion)
	},
}

// storeSeedCmd loads demo data.
var storeSeedCmd = &cobra.Command{
	Use:     "seed",
	Short:   "Load the demo catalog and synthetic statistics",
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		seeder, err := store.AsSeeder(backend)
		if err != nil {
			fatal("Cannot seed store", err)
		}
		rows, err := seeder.Seed(rootCtx, store.DemoCatalog(), cfg.SeedRange)
		if err != nil {
			fatal("Failed to seed store", err)
		}
		entries, err := reloadCatalog()
		if err != nil {
			fatal("Failed to read seeded catalog", err)
		}
		fmt.Printf("Seeded %d daily statistic rows for %s. Catalog holds %d entries.\n", rows, cfg.SeedRange, entries)
	},
}

// storeStatusCmd shows store status.
var storeStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display store statistics and connection details",
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := backend.GetStatus(rootCtx)
		if err != nil {
			fatal("Failed to get store status", err)
		}
		if err := outwriter.NewOutWriter().WriteStoreStatus(os.Stdout, status, cfg); err != nil {
			fatal("Failed to print store status", err)
		}
	},
}

// storeClearCmd clears the store.
var storeClearCmd = &cobra.Command{
	Use:     "clear",
	Short:   "Remove every catalog entry and statistic",
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		seeder, err := store.AsSeeder(backend)
		if err != nil {
			fatal("Cannot clear store", err)
		}
		if err := seeder.Clear(rootCtx); err != nil {
			fatal("Failed to clear store", err)
		}
		entries, err := reloadCatalog()
		if err != nil {
			fatal("Failed to read cleared catalog", err)
		}
		fmt.Printf("Store cleared successfully. Catalog holds %d entries.\n", entries)
	},
}
