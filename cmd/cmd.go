// Package cmd defines the command-line interface for provstats.
package cmd

import (
	"github.com/huangsam/provstats/internal/contract"
	"github.com/huangsam/provstats/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(versionCmd)

	statsCmd.AddCommand(statsGetCmd)
	statsCmd.AddCommand(statsRatesCmd)
	statsCmd.AddCommand(statsDurationCmd)

	catalogCmd.AddCommand(catalogHierarchyCmd)
	catalogCmd.AddCommand(catalogFindCmd)
	catalogCmd.AddCommand(catalogProductsCmd)
	catalogCmd.AddCommand(catalogPermissionsCmd)

	storeCmd.AddCommand(storeMigrateCmd)
	storeCmd.AddCommand(storeSeedCmd)
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	rootCmd.PersistentFlags().String("store-backend", string(schema.MemoryBackend), "Store backend: memory or sqlite or mysql or postgresql")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for sqlite/mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("acl-file", "", "YAML file mapping agent ids to their permissions (empty = unrestricted)")
	rootCmd.PersistentFlags().String("agent-id", "", "Agent id used when no request header carries one (stdio and CLI)")
	rootCmd.PersistentFlags().String("catalog-cache-ttl", contract.DefaultCatalogCacheTTL.String(), "How long the product catalog is cached (0 = always reload)")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("log-format", contract.DefaultLogFormat, "Log format: console or json")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored success rates in output (yes/no/true/false/1/0)")
	bindFlags("root", rootCmd.PersistentFlags())

	// Bind all flags of mcpCmd to Viper
	mcpCmd.Flags().String("transport", string(schema.StdioTransport), "MCP transport: stdio or http")
	mcpCmd.Flags().String("listen", contract.DefaultListenAddr, "Listen address of the http transport")
	bindFlags("mcp", mcpCmd.Flags())

	// Query flags are shared by the stats and catalog commands. They are bound
	// in configSetup for the running command only, since both sets use the same keys.
	for _, flags := range []*pflag.FlagSet{statsCmd.PersistentFlags(), catalogCmd.PersistentFlags()} {
		flags.String("product", "", "Product name")
		flags.String("company", "", "Company filter")
		flags.String("family", "", "Family filter")
	}
	statsCmd.PersistentFlags().String("from", "", "Start date, inclusive (yyyy-MM-dd)")
	statsCmd.PersistentFlags().String("to", "", "End date, inclusive (yyyy-MM-dd)")
	statsCmd.PersistentFlags().String("partitioning", "Day", "Time bucket: Day or Month or Year")
	statsCmd.PersistentFlags().String("phase", "", "Provisioning phase filter (empty = all phases)")

	// Bind all flags of storeSeedCmd to Viper
	storeSeedCmd.Flags().String("seed-from", "", "First day of generated statistics (default: 90 days before seed-to)")
	storeSeedCmd.Flags().String("seed-to", "", "Last day of generated statistics (default: today)")
	bindFlags("store seed", storeSeedCmd.Flags())

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	bindFlags("store migrate", storeMigrateCmd.Flags())
}

// bindFlags binds flags to Viper, exiting when a flag cannot be bound.
func bindFlags(name string, flags *pflag.FlagSet) {
	if err := viper.BindPFlags(flags); err != nil {
		contract.LogFatal("Error binding "+name+" flags", err)
	}
}
