package outwriter

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/huangsam/provstats/internal/contract"
	"github.com/huangsam/provstats/internal/parquet"
	"github.com/huangsam/provstats/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Success-rate thresholds used to color the rates table.
const (
	healthyRate  = 98.0
	degradedRate = 90.0
)

var errParquetNeedsFile = errors.New("parquet output requires --output-file")

// PrintStatisticsResults outputs statistics to the configured destination and format.
func PrintStatisticsResults(shape schema.StatisticsShape, q schema.ResolvedQuery, rows []schema.StatisticsRow, cfg *contract.Config, duration time.Duration) error {
	if cfg.Output == schema.ParquetOut {
		if cfg.OutputFile == "" {
			return errParquetNeedsFile
		}
		if err := parquet.WriteStatisticsParquet(parquet.FromStatistics(q, rows), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		_, _ = fmt.Fprintf(os.Stderr, "💾 Wrote %d statistics rows to %s\n", len(rows), cfg.OutputFile)
		return nil
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteStatisticsResults(w, shape, q, rows, cfg, duration)
	}, "Wrote statistics")
}

// WriteStatisticsResults outputs the statistics, dispatching based on the output format configured.
func WriteStatisticsResults(w io.Writer, shape schema.StatisticsShape, q schema.ResolvedQuery, rows []schema.StatisticsRow, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeJSON(w, schema.ShapeStatistics(shape, q, rows)); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeCSVResultsForStatistics(w, shape, q, rows, cfg.Precision); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return errParquetNeedsFile
	default:
		if err := writeStatisticsTable(w, shape, q, rows, cfg, duration); err != nil {
			return fmt.Errorf("error writing statistics table output: %w", err)
		}
	}
	return nil
}

// writeStatisticsTable prints one row per bucket, with the resolved hierarchy as a title.
func writeStatisticsTable(w io.Writer, shape schema.StatisticsShape, q schema.ResolvedQuery, rows []schema.StatisticsRow, cfg *contract.Config, duration time.Duration) error {
	title := fmt.Sprintf("%s / %s / %s by %s, %s", q.Company, q.Family, q.Product, q.Partitioning, q.Range)
	if _, err := fmt.Fprintln(w, fitWidth(title, terminalWidth(cfg))); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	// --- 1. Define Headers ---
	headers := []string{"Date From", "Date To", "Phase"}
	switch shape {
	case schema.RatesShape:
		headers = append(headers, "Success %", "Cumulative Ko")
	case schema.DurationShape:
		headers = append(headers, "Avg Elapsed (s)")
	default:
		headers = append(headers, "Ok", "Ko", "Cumulative Ko", "Total")
	}
	table.Header(headers)

	// 2. Configure Alignment
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// --- 3. Prepare Data Rows ---
	_, fmtOptional := createFormatters(cfg.Precision)
	colorRate := rateColorizer(cfg.UseColors)
	var data [][]string
	for _, r := range rows {
		row := []string{
			r.DateFrom.Format(schema.DateLayout),
			r.DateTo.Format(schema.DateLayout),
			r.ProvisioningPhase,
		}
		switch shape {
		case schema.RatesShape:
			pct := schema.SuccessPercentage(r.Ok, r.Total)
			row = append(row, colorRate(pct, fmtOptional(pct)), strconv.FormatInt(r.CumulativeKo, 10))
		case schema.DurationShape:
			row = append(row, fmtOptional(r.AvgElapsedSeconds.Ptr()))
		default:
			row = append(row,
				strconv.FormatInt(r.Ok, 10),
				strconv.FormatInt(r.Ko, 10),
				strconv.FormatInt(r.CumulativeKo, 10),
				strconv.FormatInt(r.Total, 10),
			)
		}
		data = append(data, row)
	}

	// --- 4. Render the table ---
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "Served %d rows in %v. Store backend: %s\n", len(rows), duration, cfg.StoreBackend)
	return err
}

// rateColorizer returns a function coloring a success percentage by health.
func rateColorizer(useColors bool) func(*float64, string) string {
	if !useColors {
		return func(_ *float64, s string) string { return s }
	}
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	return func(pct *float64, s string) string {
		switch {
		case pct == nil:
			return s
		case *pct >= healthyRate:
			return green(s)
		case *pct >= degradedRate:
			return yellow(s)
		default:
			return red(s)
		}
	}
}
