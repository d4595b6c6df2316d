package core

import (
	"github.com/huangsam/provstats/internal/contract"
	"github.com/huangsam/provstats/schema"
)

// RowCountLimit is the largest number of rows a single statistics response may carry.
const RowCountLimit = 31

// EstimateBuckets returns how many time buckets the range spans under p.
// Month and Year count calendar boundaries crossed; every estimate is at least 1.
func EstimateBuckets(r schema.DateRange, p schema.Partitioning) int {
	var n int
	switch p {
	case schema.PartitionDay:
		n = int(r.To.Sub(r.From).Hours()/24) + 1
	case schema.PartitionMonth:
		n = (r.To.Year()-r.From.Year())*12 + int(r.To.Month()) - int(r.From.Month())
	case schema.PartitionYear:
		n = r.To.Year() - r.From.Year()
	}
	return max(n, 1)
}

// CheckEstimate rejects a query before it reaches the statistics store.
func CheckEstimate(r schema.DateRange, p schema.Partitioning) error {
	if EstimateBuckets(r, p) > RowCountLimit {
		return contract.NewUnprocessable(contract.MsgTooManyRows)
	}
	return nil
}

// CheckActual rejects a result set that came back larger than the limit.
func CheckActual(rows []schema.StatisticsRow) error {
	if len(rows) > RowCountLimit {
		return contract.NewUnprocessable(contract.MsgTooManyRows)
	}
	return nil
}

// CheckHomogeneity requires every row to share one company and one family.
func CheckHomogeneity(rows []schema.StatisticsRow) error {
	if len(rows) == 0 {
		return nil
	}
	company, family := rows[0].Company, rows[0].Family
	for _, row := range rows[1:] {
		if row.Company != company || row.Family != family {
			return contract.NewUnprocessable(contract.MsgNotHomogeneous)
		}
	}
	return nil
}
