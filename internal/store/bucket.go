package store

import (
	"sort"
	"time"

	"github.com/huangsam/provstats/schema"
)

// bucketBounds returns the calendar period containing day under p.
func bucketBounds(day time.Time, p schema.Partitioning) (time.Time, time.Time) {
	day = schema.DateOf(day)
	switch p {
	case schema.PartitionYear:
		start := time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, -1)
	case schema.PartitionMonth:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, -1)
	default:
		return day, day
	}
}

// Buckets splits r into the periods of p, each clipped to r, in date order.
func Buckets(r schema.DateRange, p schema.Partitioning) []schema.DateRange {
	var out []schema.DateRange
	for cursor := r.From; !cursor.After(r.To); {
		_, end := bucketBounds(cursor, p)
		if end.After(r.To) {
			end = r.To
		}
		out = append(out, schema.DateRange{From: cursor, To: end})
		cursor = end.AddDate(0, 0, 1)
	}
	return out
}

// aggregate accumulates the daily rows of one bucket.
type aggregate struct {
	ok, ko, total int64
	elapsed       float64
}

// BucketStats folds daily rows into one row per bucket of q. Only rows of
// q's hierarchy, range and phase (when set) are counted. Every bucket is
// emitted, empty ones with zero counters and no average.
func BucketStats(daily []schema.DailyStat, q schema.ResolvedQuery) []schema.StatisticsRow {
	buckets := Buckets(q.Range, q.Partitioning)
	sums := make([]aggregate, len(buckets))

	phase, hasPhase := q.Phase.Get()
	for _, d := range daily {
		if d.Company != q.Company || d.Family != q.Family || d.Product != q.Product {
			continue
		}
		if hasPhase && d.Phase != phase {
			continue
		}
		if !q.Range.Contains(d.Date) {
			continue
		}
		i := sort.Search(len(buckets), func(i int) bool { return !buckets[i].To.Before(d.Date) })
		if i == len(buckets) {
			continue
		}
		sums[i].ok += d.Ok
		sums[i].ko += d.Ko
		sums[i].total += d.Total
		sums[i].elapsed += d.ElapsedSecondsTotal
	}

	rows := make([]schema.StatisticsRow, 0, len(buckets))
	var cumulative int64
	for i, b := range buckets {
		cumulative += sums[i].ko
		row := schema.StatisticsRow{
			DateFrom:          b.From,
			DateTo:            b.To,
			Company:           q.Company,
			Family:            q.Family,
			Product:           q.Product,
			ProvisioningPhase: q.PhaseLabel(),
			Ok:                sums[i].ok,
			Ko:                sums[i].ko,
			CumulativeKo:      cumulative,
			Total:             sums[i].total,
		}
		if sums[i].total > 0 {
			row.AvgElapsedSeconds = schema.Some(sums[i].elapsed / float64(sums[i].total))
		}
		rows = append(rows, row)
	}
	return rows
}
