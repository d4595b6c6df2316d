// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"strings"

	"github.com/huangsam/provstats/core"
	"github.com/huangsam/provstats/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// Tool names exposed by the server.
const (
	ToolStatisticsGet          = "provstats_statistics_get"
	ToolStatisticsGetRates     = "provstats_statistics_get_rates"
	ToolStatisticsGetDuration  = "provstats_statistics_get_average_duration"
	ToolCompanyInfoHierarchy   = "provstats_companyinfo_get_products_hierarchy"
	ToolCompanyInfoFindProduct = "provstats_companyinfo_find_product_hierarchy"
	ToolCompanyInfoAllProducts = "provstats_companyinfo_get_all_product_names"
	ToolMyPermissionsGet       = "provstats_mypermissions_get"
)

const (
	serverName                  = "Provisioning Statistics Server"
	serverInstructions          = "Query provisioning statistics by product. Dates use yyyy-MM-dd and at most 31 rows are returned per query; narrow the range or use a coarser partitioning when a query is rejected. Use the companyinfo tools to discover valid company, family and product values."
	descQueryDateFrom           = "Start of the query range, inclusive, formatted yyyy-MM-dd."
	descQueryDateTo             = "End of the query range, inclusive, formatted yyyy-MM-dd."
	descDataPartitioning        = "Time bucket of each returned row."
	descCompanyFilter           = "Company filter. Required together with family when the product exists in several hierarchies."
	descFamilyFilter            = "Family filter. Required together with company when the product exists in several hierarchies."
	descProvisioningPhaseFilter = "Provisioning phase filter. Omit to aggregate every phase."
	descProductFilter           = "Product name."
)

// Version is reported to MCP clients during initialization.
var Version = "dev"

// NewMCPServer initializes and configures the MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(stats *core.StatisticsService, catalog *core.CatalogService, log *zap.SugaredLogger) *server.MCPServer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	s := server.NewMCPServer(
		serverName,
		Version,
		server.WithToolCapabilities(false),
		server.WithInstructions(serverInstructions),
		server.WithRecovery(),
		server.WithLogging(),
	)

	h := &toolHandler{
		stats:   stats,
		catalog: catalog,
		log:     log.Named("mcp"),
	}

	// --- Statistics tools ---
	s.AddTool(statisticsTool(ToolStatisticsGet, "Provisioning statistics",
		"Get provisioning processes statistics for a specific product using Company, Family, Product and ProvisioningPhase filters. Supports data partitioning."),
		h.wrap(ToolStatisticsGet, h.statistics(schema.RawShape)))
	s.AddTool(statisticsTool(ToolStatisticsGetRates, "Provisioning success rates",
		"Get provisioning processes statistics rates for a specific product using Company, Family, Product and ProvisioningPhase filters. Supports data partitioning."),
		h.wrap(ToolStatisticsGetRates, h.statistics(schema.RatesShape)))
	s.AddTool(statisticsTool(ToolStatisticsGetDuration, "Provisioning average duration",
		"Get provisioning processes average duration in seconds for a specific product using Company, Family, Product and ProvisioningPhase filters. Supports data partitioning."),
		h.wrap(ToolStatisticsGetDuration, h.statistics(schema.DurationShape)))

	// --- Company info tools ---
	s.AddTool(mcp.NewTool(ToolCompanyInfoHierarchy,
		mcp.WithDescription("CompanyInfo - Retrieves the Company/Family/Product flattened map. Omit filters to get the complete map."),
		mcp.WithString("company", mcp.Description("Company filter."), mcp.Enum(schema.Labels(schema.CompanyKind)...)),
		mcp.WithString("family", mcp.Description("Family filter."), mcp.Enum(schema.Labels(schema.FamilyKind)...)),
		readOnly("Products hierarchy"),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	), h.wrap(ToolCompanyInfoHierarchy, h.productsHierarchy))

	s.AddTool(mcp.NewTool(ToolCompanyInfoFindProduct,
		mcp.WithDescription("CompanyInfo - Finds which Company and Family a specific Product belongs to."),
		mcp.WithString("product", mcp.Description(descProductFilter), mcp.Required(), mcp.Enum(schema.Labels(schema.ProductKind)...)),
		readOnly("Find product hierarchy"),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	), h.wrap(ToolCompanyInfoFindProduct, h.findProductHierarchy))

	s.AddTool(mcp.NewTool(ToolCompanyInfoAllProducts,
		mcp.WithDescription("CompanyInfo - Retrieves all available product names."),
		readOnly("All product names"),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	), h.wrap(ToolCompanyInfoAllProducts, h.allProductNames))

	// --- Permissions ---
	s.AddTool(mcp.NewTool(ToolMyPermissionsGet,
		mcp.WithDescription("Get the current user's permissions (ACLs). Returns a list of access control permissions including Company, Family, and Product access rights. An empty list means unrestricted access."),
		readOnly("My permissions"),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	), h.wrap(ToolMyPermissionsGet, h.myPermissions))

	return s
}

func statisticsTool(name, title, description string) mcp.Tool {
	return mcp.NewTool(name,
		mcp.WithDescription(description),
		mcp.WithString("queryDateFrom", mcp.Description(descQueryDateFrom), mcp.Required()),
		mcp.WithString("queryDateTo", mcp.Description(descQueryDateTo), mcp.Required()),
		mcp.WithString("product", mcp.Description(descProductFilter), mcp.Required(), mcp.Enum(schema.Labels(schema.ProductKind)...)),
		mcp.WithString("dataPartitioning", mcp.Description(descDataPartitioning), mcp.Required(), mcp.Enum(schema.Labels(schema.PartitioningKind)...)),
		mcp.WithString("provisioningPhase", mcp.Description(descProvisioningPhaseFilter), mcp.Enum(schema.Labels(schema.PhaseKind)...)),
		mcp.WithString("company", mcp.Description(descCompanyFilter), mcp.Enum(schema.Labels(schema.CompanyKind)...)),
		mcp.WithString("family", mcp.Description(descFamilyFilter), mcp.Enum(schema.Labels(schema.FamilyKind)...)),
		readOnly(title),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

func readOnly(title string) mcp.ToolOption {
	return func(t *mcp.Tool) {
		mcp.WithTitleAnnotation(title)(t)
		mcp.WithReadOnlyHintAnnotation(true)(t)
	}
}

// toolNames lists every registered tool, for logging at startup.
func toolNames() string {
	return strings.Join([]string{
		ToolStatisticsGet, ToolStatisticsGetRates, ToolStatisticsGetDuration,
		ToolCompanyInfoHierarchy, ToolCompanyInfoFindProduct, ToolCompanyInfoAllProducts,
		ToolMyPermissionsGet,
	}, ",")
}
