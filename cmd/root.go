package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/huangsam/provstats/core"
	"github.com/huangsam/provstats/internal"
	"github.com/huangsam/provstats/internal/acl"
	"github.com/huangsam/provstats/internal/contract"
	"github.com/huangsam/provstats/internal/store"
	"github.com/huangsam/provstats/schema"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// log is the process logger, built once the configuration is validated.
var log = zap.NewNop().Sugar()

// backend is the opened store, catalog its cached catalog, and services the
// query services running on them.
var (
	backend  contract.Store
	catalog  *store.CachedCatalog
	services *core.Services
	stopACL  = func() error { return nil }
)

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "provstats",
	Short:              "Serve provisioning statistics to AI agents and operators.",
	Long:               `Provstats answers provisioning statistics queries over MCP and the command line, scoped by agent permissions.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// A missing .env is fine; anything else is reported once the logger exists.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		internal.Warning(fmt.Sprintf("could not load .env: %v", err))
	}

	// Check if a specific config file is provided
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".provstats") // Name of config file (without extension)
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	viper.SetEnvPrefix("PROVSTATS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("store-backend", schema.MemoryBackend)
	viper.SetDefault("store-db-connect", "")
	viper.SetDefault("catalog-cache-ttl", contract.DefaultCatalogCacheTTL.String())
	viper.SetDefault("log-level", contract.DefaultLogLevel)
	viper.SetDefault("log-format", contract.DefaultLogFormat)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("color", "yes")
	viper.SetDefault("transport", schema.StdioTransport)
	viper.SetDefault("listen", contract.DefaultListenAddr)
	viper.SetDefault("target-version", -1)
}

// configSetup unmarshals config, runs validation and builds the logger.
func configSetup(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.InheritedFlags()); err != nil {
		return fmt.Errorf("unable to bind flags: %w", err)
	}
	if err := viper.BindPFlags(cmd.LocalFlags()); err != nil {
		return fmt.Errorf("unable to bind flags: %w", err)
	}

	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Run all validation and complex parsing.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}

	// 4. Build the logger. It writes to stderr, keeping stdout for results and stdio MCP.
	logger, err := internal.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	log = logger
	return nil
}

// sharedSetup runs configSetup, then opens the store and wires the services.
func sharedSetup(cmd *cobra.Command, args []string) error {
	if err := configSetup(cmd, args); err != nil {
		return err
	}

	st, err := store.Open(cfg.StoreBackend, cfg.StoreDBConnect)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	backend = st

	scopes, stop, err := acl.New(cfg.ACLFile, log.Named("acl"))
	if err != nil {
		return fmt.Errorf("failed to load acl file: %w", err)
	}
	stopACL = stop

	catalog = store.NewCachedCatalog(st, cfg.CatalogCacheTTL)
	services = &core.Services{
		Stats:   core.NewStatisticsService(catalog, st, scopes, log.Named("statistics")),
		Catalog: core.NewCatalogService(catalog, scopes, log.Named("catalog")),
	}
	log.Debugw("store opened", "backend", cfg.StoreBackend, "acl_file", cfg.ACLFile, "catalog_cache_ttl", cfg.CatalogCacheTTL)
	return nil
}

// closeResources releases the store and the ACL watcher opened by sharedSetup.
func closeResources() {
	if err := stopACL(); err != nil {
		log.Warnw("failed to stop acl watcher", "error", err)
	}
	if backend != nil {
		if err := backend.Close(); err != nil {
			log.Warnw("failed to close store", "error", err)
		}
	}
	_ = log.Sync()
}

// Execute runs the root command.
func Execute() error {
	defer closeResources()
	return rootCmd.Execute()
}
