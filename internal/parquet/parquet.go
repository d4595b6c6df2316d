// Package parquet exports statistics rows to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"

	"github.com/huangsam/provstats/schema"
	"github.com/parquet-go/parquet-go"
)

// StatisticsRow is one time bucket of a statistics query, flattened with its hierarchy.
// Every shape is exported with the same columns so files can be concatenated.
type StatisticsRow struct {
	DateFrom          string `parquet:"date_from,snappy"`
	DateTo            string `parquet:"date_to,snappy"`
	Company           string `parquet:"company,snappy,dict"`
	Family            string `parquet:"family,snappy,dict"`
	Product           string `parquet:"product,snappy,dict"`
	Partitioning      string `parquet:"data_partitioning,snappy,dict"`
	ProvisioningPhase string `parquet:"provisioning_phase,snappy,dict"`
	Ok                int64  `parquet:"ok,snappy"`
	Ko                int64  `parquet:"ko,snappy"`
	CumulativeKo      int64  `parquet:"cumulative_ko,snappy"`
	Total             int64  `parquet:"total,snappy"`

	// PercentageOfSuccess is null for buckets without attempts
	PercentageOfSuccess *float64 `parquet:"percentage_of_success,optional,snappy"`

	// AvgElapsedSeconds is null for buckets without attempts
	AvgElapsedSeconds *float64 `parquet:"avg_elapsed_seconds,optional,snappy"`
}

// FromStatistics flattens rows of query q.
func FromStatistics(q schema.ResolvedQuery, rows []schema.StatisticsRow) []StatisticsRow {
	out := make([]StatisticsRow, len(rows))
	for i, r := range rows {
		out[i] = StatisticsRow{
			DateFrom:            r.DateFrom.Format(schema.DateLayout),
			DateTo:              r.DateTo.Format(schema.DateLayout),
			Company:             r.Company.String(),
			Family:              r.Family.String(),
			Product:             r.Product.String(),
			Partitioning:        q.Partitioning.String(),
			ProvisioningPhase:   r.ProvisioningPhase,
			Ok:                  r.Ok,
			Ko:                  r.Ko,
			CumulativeKo:        r.CumulativeKo,
			Total:               r.Total,
			PercentageOfSuccess: schema.SuccessPercentage(r.Ok, r.Total),
			AvgElapsedSeconds:   r.AvgElapsedSeconds.Ptr(),
		}
	}
	return out
}

// WriteStatisticsParquet writes data to a Parquet file at outputPath.
func WriteStatisticsParquet(data []StatisticsRow, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Schema is inferred from the struct tags
	writer := parquet.NewGenericWriter[StatisticsRow](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ReadStatisticsParquet reads back a file written by WriteStatisticsParquet.
func ReadStatisticsParquet(path string) ([]StatisticsRow, error) {
	rows, err := parquet.ReadFile[StatisticsRow](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet file: %w", err)
	}
	return rows, nil
}
