package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the backend serving catalog and statistics data.
	DatabaseBackend string

	// TransportMode represents how the MCP server talks to its client.
	TransportMode string

	// StatisticsShape selects which record shape a statistics query renders.
	StatisticsShape string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All store backends supported.
const (
	MemoryBackend     DatabaseBackend = "memory" // default
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
)

// All MCP transports supported.
const (
	StdioTransport TransportMode = "stdio" // default
	HTTPTransport  TransportMode = "http"
)

// All statistics shapes supported.
const (
	RawShape      StatisticsShape = "raw"
	RatesShape    StatisticsShape = "rates"
	DurationShape StatisticsShape = "duration"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid store backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	MemoryBackend:     {},
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
}

// ValidTransportModes lists all valid MCP transports.
var ValidTransportModes = map[TransportMode]struct{}{
	StdioTransport: {},
	HTTPTransport:  {},
}

// UnknownValue is rendered for any code that is not a defined member of its enumeration.
const UnknownValue = "UNKNOWN_VALUE"

// AllPhasesLabel is the phase label of rows aggregated across every provisioning phase.
const AllPhasesLabel = "AllPhases"

// DateLayout is the only accepted wire format for query dates.
const DateLayout = "2006-01-02"
