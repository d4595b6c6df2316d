package contract

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/huangsam/provstats/schema"
	"go.uber.org/zap/zapcore"
)

// Default values for configuration.
const (
	DefaultPrecision       = 1
	DefaultListenAddr      = ":8080"
	DefaultCatalogCacheTTL = 5 * time.Minute
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "console"
	DefaultSeedDays        = 90
)

// configValidate checks the declarative constraints of ConfigRawInput.
var configValidate = validator.New()

// Config holds the runtime configuration.
// This struct remains the "final, validated" config.
type Config struct {
	Transport schema.TransportMode
	Listen    string
	AgentID   string // Used for stdio, where there are no request headers

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	ACLFile         string
	CatalogCacheTTL time.Duration

	LogLevel  zapcore.Level
	LogFormat string

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	// Request is the statistics query given on the command line.
	Request schema.StatisticsRequest

	// SeedRange is the date range the seed command generates statistics for.
	SeedRange schema.DateRange

	// TargetVersion is the migration target (-1 latest, 0 rollback).
	TargetVersion int
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	StoreBackend    string `mapstructure:"store-backend"`
	StoreDBConnect  string `mapstructure:"store-db-connect"`
	ACLFile         string `mapstructure:"acl-file"`
	AgentID         string `mapstructure:"agent-id"`
	CatalogCacheTTL string `mapstructure:"catalog-cache-ttl"`
	LogLevel        string `mapstructure:"log-level"`
	LogFormat       string `mapstructure:"log-format" validate:"oneof=console json"`
	Output          string `mapstructure:"output"`
	OutputFile      string `mapstructure:"output-file"`
	Precision       int    `mapstructure:"precision" validate:"min=0,max=4"`
	Width           int    `mapstructure:"width" validate:"min=0"`
	Color           string `mapstructure:"color"`

	// --- Fields from mcpCmd.Flags() ---
	Transport string `mapstructure:"transport"`
	Listen    string `mapstructure:"listen"`

	// --- Fields from statsCmd.PersistentFlags() ---
	From         string `mapstructure:"from"`
	To           string `mapstructure:"to"`
	Product      string `mapstructure:"product"`
	Partitioning string `mapstructure:"partitioning"`
	Phase        string `mapstructure:"phase"`
	Company      string `mapstructure:"company"`
	Family       string `mapstructure:"family"`

	// --- Fields from storeSeedCmd.Flags() ---
	SeedFrom string `mapstructure:"seed-from"`
	SeedTo   string `mapstructure:"seed-to"`

	// --- Fields from storeMigrateCmd.Flags() ---
	TargetVersion int `mapstructure:"target-version"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processServeMode(cfg, input); err != nil {
		return err
	}
	if err := processSeedRange(cfg, input, time.Now()); err != nil {
		return err
	}
	processStatisticsRequest(cfg, input)
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.MemoryBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates the store backend configuration.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(strings.TrimSpace(input.StoreBackend)))
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be memory, sqlite, mysql, postgresql", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	return ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect)
}

// validateSimpleInputs processes and validates output and logging fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	if err := configValidate.Struct(input); err != nil {
		return describeValidation(err)
	}

	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Precision = input.Precision
	cfg.ACLFile = strings.TrimSpace(input.ACLFile)
	cfg.AgentID = strings.TrimSpace(input.AgentID)
	cfg.LogFormat = input.LogFormat

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	level, err := zapcore.ParseLevel(input.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level '%s': %w", input.LogLevel, err)
	}
	cfg.LogLevel = level

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	cfg.CatalogCacheTTL = DefaultCatalogCacheTTL
	if input.CatalogCacheTTL != "" {
		ttl, err := time.ParseDuration(input.CatalogCacheTTL)
		if err != nil {
			return fmt.Errorf("invalid catalog-cache-ttl '%s': %w", input.CatalogCacheTTL, err)
		}
		if ttl < 0 {
			return fmt.Errorf("catalog-cache-ttl cannot be negative (received %s)", ttl)
		}
		cfg.CatalogCacheTTL = ttl
	}

	cfg.TargetVersion = input.TargetVersion
	return nil
}

// processServeMode handles the MCP transport settings.
func processServeMode(cfg *Config, input *ConfigRawInput) error {
	cfg.Transport = schema.TransportMode(strings.ToLower(strings.TrimSpace(input.Transport)))
	if cfg.Transport == "" {
		cfg.Transport = schema.StdioTransport
	}
	if _, ok := schema.ValidTransportModes[cfg.Transport]; !ok {
		return fmt.Errorf("invalid transport '%s'. must be stdio, http", input.Transport)
	}

	cfg.Listen = strings.TrimSpace(input.Listen)
	if cfg.Listen == "" {
		cfg.Listen = DefaultListenAddr
	}
	return nil
}

// processSeedRange parses the seed range, defaulting to the DefaultSeedDays days ending today.
func processSeedRange(cfg *Config, input *ConfigRawInput, now time.Time) error {
	to := schema.DateOf(now)
	if input.SeedTo != "" {
		t, err := schema.ParseDate(input.SeedTo)
		if err != nil {
			return fmt.Errorf("invalid seed-to date '%s'. %s", input.SeedTo, MsgDateFormatSuffix)
		}
		to = t
	}

	from := to.AddDate(0, 0, -(DefaultSeedDays - 1))
	if input.SeedFrom != "" {
		t, err := schema.ParseDate(input.SeedFrom)
		if err != nil {
			return fmt.Errorf("invalid seed-from date '%s'. %s", input.SeedFrom, MsgDateFormatSuffix)
		}
		from = t
	}

	r, err := schema.NewDateRange(from, to)
	if err != nil {
		return err
	}
	cfg.SeedRange = r
	return nil
}

// processStatisticsRequest copies the query flags. They are validated by the query pipeline.
func processStatisticsRequest(cfg *Config, input *ConfigRawInput) {
	cfg.Request = schema.StatisticsRequest{
		QueryDateFrom:     input.From,
		QueryDateTo:       input.To,
		Product:           input.Product,
		DataPartitioning:  input.Partitioning,
		ProvisioningPhase: input.Phase,
		Company:           input.Company,
		Family:            input.Family,
	}.Normalized()
}

// describeValidation turns the first validator failure into a flag-oriented message.
func describeValidation(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "oneof":
		return fmt.Errorf("invalid %s '%v'. must be one of: %s", strings.ToLower(fe.Field()), fe.Value(), fe.Param())
	case "min", "max":
		return fmt.Errorf("%s must be between bounds (%s=%s, received %v)", strings.ToLower(fe.Field()), fe.Tag(), fe.Param(), fe.Value())
	default:
		return fmt.Errorf("invalid %s: failed '%s' check", strings.ToLower(fe.Field()), fe.Tag())
	}
}
