package cmd

import (
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/huangsam/provstats/schema"
	"github.com/spf13/cobra"
)

// versionCmd prints build details plus the backends and transports compiled in.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of provstats.",
	Long: `Display version information including build details.

Shows the release version, git commit and build timestamp, the Go runtime,
and the store backends and MCP transports this binary supports.`,
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "provstats CLI\n")
		_, _ = fmt.Fprintf(out, "  Version:    %s\n", version)
		_, _ = fmt.Fprintf(out, "  Commit:     %s\n", commit)
		_, _ = fmt.Fprintf(out, "  Built:      %s\n", date)
		_, _ = fmt.Fprintf(out, "  Runtime:    %s\n", runtime.Version())
		_, _ = fmt.Fprintf(out, "  Backends:   %s\n", sortedKeys(schema.ValidDatabaseBackends))
		_, _ = fmt.Fprintf(out, "  Transports: %s\n", sortedKeys(schema.ValidTransportModes))
	},
}

func sortedKeys[K ~string](m map[K]struct{}) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, string(k))
	}
	slices.Sort(keys)
	return strings.Join(keys, ", ")
}
