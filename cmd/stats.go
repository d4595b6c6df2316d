package cmd

import (
	"github.com/huangsam/provstats/core"
	"github.com/huangsam/provstats/schema"
	"github.com/spf13/cobra"
)

// statsCmd groups the statistics queries.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Query provisioning statistics for one product",
	Long: `Query provisioning statistics the same way the MCP statistics tools do.

A query covers at most 31 buckets. Company and family are resolved from the
product when omitted, and are required when the product exists in several
hierarchies.

Examples:
  # Daily counters for January
  provstats stats get --product ObjectStorage --from 2025-01-01 --to 2025-01-31

  # Monthly success rates for one hierarchy, as CSV
  provstats stats rates --product ManagedFirewall --company SkyLink --family NetworkServices \
    --from 2025-01-01 --to 2025-06-30 --partitioning Month --output csv`,
}

// statisticsCommand builds a stats subcommand rendering the given shape.
func statisticsCommand(use, short string, shape schema.StatisticsShape) *cobra.Command {
	return &cobra.Command{
		Use:     use,
		Short:   short,
		PreRunE: sharedSetup,
		Run: func(_ *cobra.Command, _ []string) {
			if err := core.ExecuteStatistics(shape)(rootCtx, cfg, services); err != nil {
				fatal("Cannot query statistics", err)
			}
		},
	}
}

var (
	statsGetCmd      = statisticsCommand("get", "Show ok, ko, cumulative ko and total per bucket", schema.RawShape)
	statsRatesCmd    = statisticsCommand("rates", "Show the success percentage per bucket", schema.RatesShape)
	statsDurationCmd = statisticsCommand("duration", "Show the average elapsed seconds per bucket", schema.DurationShape)
)
