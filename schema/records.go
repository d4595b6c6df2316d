package schema

import "strings"

// StatisticsRequest carries the raw filter values of a statistics query as
// received at the boundary. Dates use DateLayout.
type StatisticsRequest struct {
	QueryDateFrom     string `json:"queryDateFrom" validate:"required,datetime=2006-01-02"`
	QueryDateTo       string `json:"queryDateTo" validate:"required,datetime=2006-01-02"`
	Product           string `json:"product" validate:"required"`
	DataPartitioning  string `json:"dataPartitioning" validate:"required"`
	ProvisioningPhase string `json:"provisioningPhase,omitempty"`
	Company           string `json:"company,omitempty"`
	Family            string `json:"family,omitempty"`
}

// Normalized returns a copy with surrounding whitespace removed from every field.
func (r StatisticsRequest) Normalized() StatisticsRequest {
	return StatisticsRequest{
		QueryDateFrom:     strings.TrimSpace(r.QueryDateFrom),
		QueryDateTo:       strings.TrimSpace(r.QueryDateTo),
		Product:           strings.TrimSpace(r.Product),
		DataPartitioning:  strings.TrimSpace(r.DataPartitioning),
		ProvisioningPhase: strings.TrimSpace(r.ProvisioningPhase),
		Company:           strings.TrimSpace(r.Company),
		Family:            strings.TrimSpace(r.Family),
	}
}

// StatisticsRecord is the raw counters shape.
type StatisticsRecord struct {
	DateFrom          string `json:"dateFrom"`
	DateTo            string `json:"dateTo"`
	ProvisioningPhase string `json:"provisioningPhase"`
	Ok                int64  `json:"ok"`
	Ko                int64  `json:"ko"`
	CumulativeKo      int64  `json:"cumulativeKo"`
	Total             int64  `json:"total"`
}

// RatesRecord is the success-rate shape. PercentageOfSuccess is absent when
// the bucket has no provisioning attempts.
type RatesRecord struct {
	DateFrom            string   `json:"dateFrom"`
	DateTo              string   `json:"dateTo"`
	ProvisioningPhase   string   `json:"provisioningPhase"`
	PercentageOfSuccess *float64 `json:"percentageOfSuccess,omitempty"`
	CumulativeKo        int64    `json:"cumulativeKo"`
}

// DurationRecord is the average-duration shape. The interval is in seconds.
type DurationRecord struct {
	DateFrom                   string   `json:"dateFrom"`
	DateTo                     string   `json:"dateTo"`
	ProvisioningPhase          string   `json:"provisioningPhase"`
	UserAverageElapsedInterval *float64 `json:"userAverageElapsedInterval,omitempty"`
}

// StatisticsResult is the envelope returned for every statistics shape.
type StatisticsResult[T any] struct {
	Company          string `json:"company"`
	Family           string `json:"family"`
	Product          string `json:"product"`
	DataPartitioning string `json:"dataPartitioning"`
	Rows             []T    `json:"rows"`
}

// NewStatisticsResult wraps records with the resolved query's hierarchy.
func NewStatisticsResult[T any](q ResolvedQuery, rows []T) StatisticsResult[T] {
	if rows == nil {
		rows = []T{}
	}
	return StatisticsResult[T]{
		Company:          q.Company.String(),
		Family:           q.Family.String(),
		Product:          q.Product.String(),
		DataPartitioning: q.Partitioning.String(),
		Rows:             rows,
	}
}

// ToStatisticsRecords converts rows to the raw counters shape.
func ToStatisticsRecords(rows []StatisticsRow) []StatisticsRecord {
	out := make([]StatisticsRecord, len(rows))
	for i, r := range rows {
		out[i] = StatisticsRecord{
			DateFrom:          r.DateFrom.Format(DateLayout),
			DateTo:            r.DateTo.Format(DateLayout),
			ProvisioningPhase: r.ProvisioningPhase,
			Ok:                r.Ok,
			Ko:                r.Ko,
			CumulativeKo:      r.CumulativeKo,
			Total:             r.Total,
		}
	}
	return out
}

// ToRatesRecords converts rows to the success-rate shape.
func ToRatesRecords(rows []StatisticsRow) []RatesRecord {
	out := make([]RatesRecord, len(rows))
	for i, r := range rows {
		out[i] = RatesRecord{
			DateFrom:            r.DateFrom.Format(DateLayout),
			DateTo:              r.DateTo.Format(DateLayout),
			ProvisioningPhase:   r.ProvisioningPhase,
			PercentageOfSuccess: SuccessPercentage(r.Ok, r.Total),
			CumulativeKo:        r.CumulativeKo,
		}
	}
	return out
}

// ToDurationRecords converts rows to the average-duration shape.
func ToDurationRecords(rows []StatisticsRow) []DurationRecord {
	out := make([]DurationRecord, len(rows))
	for i, r := range rows {
		out[i] = DurationRecord{
			DateFrom:                   r.DateFrom.Format(DateLayout),
			DateTo:                     r.DateTo.Format(DateLayout),
			ProvisioningPhase:          r.ProvisioningPhase,
			UserAverageElapsedInterval: r.AvgElapsedSeconds.Ptr(),
		}
	}
	return out
}

// SuccessPercentage returns ok/total*100, or nil when total is zero.
func SuccessPercentage(ok, total int64) *float64 {
	if total <= 0 {
		return nil
	}
	pct := float64(ok) / float64(total) * 100
	return &pct
}

// ShapeStatistics renders rows of query q in the requested shape, wrapped
// with the resolved hierarchy. Unknown shapes render raw counters.
func ShapeStatistics(shape StatisticsShape, q ResolvedQuery, rows []StatisticsRow) any {
	switch shape {
	case RatesShape:
		return NewStatisticsResult(q, ToRatesRecords(rows))
	case DurationShape:
		return NewStatisticsResult(q, ToDurationRecords(rows))
	default:
		return NewStatisticsResult(q, ToStatisticsRecords(rows))
	}
}
