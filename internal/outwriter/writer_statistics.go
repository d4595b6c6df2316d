package outwriter

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/huangsam/provstats/schema"
)

// statisticsCSVHeader returns the CSV header of shape. Columns use the JSON field names.
func statisticsCSVHeader(shape schema.StatisticsShape) []string {
	header := []string{"company", "family", "product", "dataPartitioning", "dateFrom", "dateTo", "provisioningPhase"}
	switch shape {
	case schema.RatesShape:
		return append(header, "percentageOfSuccess", "cumulativeKo")
	case schema.DurationShape:
		return append(header, "userAverageElapsedInterval")
	default:
		return append(header, "ok", "ko", "cumulativeKo", "total")
	}
}

// writeCSVResultsForStatistics writes one CSV record per bucket. Absent values are empty cells.
func writeCSVResultsForStatistics(w io.Writer, shape schema.StatisticsShape, q schema.ResolvedQuery, rows []schema.StatisticsRow, precision int) error {
	fmtFloat, _ := createFormatters(precision)
	optional := func(v *float64) string {
		if v == nil {
			return ""
		}
		return fmtFloat(*v)
	}

	return writeCSVWithHeader(w, statisticsCSVHeader(shape), func(cw *csv.Writer) error {
		for _, r := range rows {
			record := []string{
				r.Company.String(),
				r.Family.String(),
				r.Product.String(),
				q.Partitioning.String(),
				r.DateFrom.Format(schema.DateLayout),
				r.DateTo.Format(schema.DateLayout),
				r.ProvisioningPhase,
			}
			switch shape {
			case schema.RatesShape:
				record = append(record, optional(schema.SuccessPercentage(r.Ok, r.Total)), strconv.FormatInt(r.CumulativeKo, 10))
			case schema.DurationShape:
				record = append(record, optional(r.AvgElapsedSeconds.Ptr()))
			default:
				record = append(record,
					strconv.FormatInt(r.Ok, 10),
					strconv.FormatInt(r.Ko, 10),
					strconv.FormatInt(r.CumulativeKo, 10),
					strconv.FormatInt(r.Total, 10),
				)
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}
