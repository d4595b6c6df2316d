package schema

import (
	"fmt"
	"time"
)

// HierarchyItem is one legal (company, family, product) combination of the catalog.
// Codes outside their enumeration render as UnknownValue.
type HierarchyItem struct {
	Company Company `json:"company"`
	Family  Family  `json:"family"`
	Product Product `json:"product"`
}

// HasUnknown reports whether any member of the triple is not a defined code.
func (h HierarchyItem) HasUnknown() bool {
	return !h.Company.IsKnown() || !h.Family.IsKnown() || !h.Product.IsKnown()
}

// ScopeEntry is one partial filter of an access scope. Absent fields match anything.
type ScopeEntry struct {
	Company Optional[Company]
	Family  Optional[Family]
	Product Optional[Product]
}

// Matches reports whether item satisfies every field set on the entry.
func (e ScopeEntry) Matches(item HierarchyItem) bool {
	if c, ok := e.Company.Get(); ok && c != item.Company {
		return false
	}
	if f, ok := e.Family.Get(); ok && f != item.Family {
		return false
	}
	if p, ok := e.Product.Get(); ok && p != item.Product {
		return false
	}
	return true
}

// AccessScope is what the calling agent may see. No entries means unrestricted.
type AccessScope struct {
	Entries []ScopeEntry
}

// Unrestricted reports whether the scope places no constraint.
func (s AccessScope) Unrestricted() bool {
	return len(s.Entries) == 0
}

// Allows reports whether item is visible under the scope.
func (s AccessScope) Allows(item HierarchyItem) bool {
	if s.Unrestricted() {
		return true
	}
	for _, e := range s.Entries {
		if e.Matches(item) {
			return true
		}
	}
	return false
}

// Filter returns the items visible under the scope, preserving order.
func (s AccessScope) Filter(items []HierarchyItem) []HierarchyItem {
	if s.Unrestricted() {
		return items
	}
	out := make([]HierarchyItem, 0, len(items))
	for _, item := range items {
		if s.Allows(item) {
			out = append(out, item)
		}
	}
	return out
}

// PermissionEntry is a scope entry rendered with labels.
type PermissionEntry struct {
	Company string `json:"company,omitempty"`
	Family  string `json:"family,omitempty"`
	Product string `json:"product,omitempty"`
}

// Permissions renders the scope entries with labels.
func (s AccessScope) Permissions() []PermissionEntry {
	out := make([]PermissionEntry, 0, len(s.Entries))
	for _, e := range s.Entries {
		var p PermissionEntry
		if c, ok := e.Company.Get(); ok {
			p.Company = c.String()
		}
		if f, ok := e.Family.Get(); ok {
			p.Family = f.String()
		}
		if pr, ok := e.Product.Get(); ok {
			p.Product = pr.String()
		}
		out = append(out, p)
	}
	return out
}

// DateRange is an inclusive range of calendar dates, stored as UTC midnights.
type DateRange struct {
	From time.Time
	To   time.Time
}

// NewDateRange truncates both ends to their date and checks from <= to.
func NewDateRange(from, to time.Time) (DateRange, error) {
	r := DateRange{From: DateOf(from), To: DateOf(to)}
	if r.From.After(r.To) {
		return DateRange{}, fmt.Errorf("date range start %s is after end %s", r.From.Format(DateLayout), r.To.Format(DateLayout))
	}
	return r, nil
}

// Contains reports whether day falls inside the range.
func (r DateRange) Contains(day time.Time) bool {
	d := DateOf(day)
	return !d.Before(r.From) && !d.After(r.To)
}

// String renders the range as "from..to".
func (r DateRange) String() string {
	return r.From.Format(DateLayout) + ".." + r.To.Format(DateLayout)
}

// DateOf returns the UTC midnight of t's calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a date-only ISO 8601 string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// ResolvedQuery is a fully qualified statistics query. Company and Family are
// always present once a value of this type exists.
type ResolvedQuery struct {
	Range        DateRange
	Partitioning Partitioning
	Product      Product
	Company      Company
	Family       Family
	Phase        Optional[ProvisioningPhase]
}

// Hierarchy returns the query's catalog triple.
func (q ResolvedQuery) Hierarchy() HierarchyItem {
	return HierarchyItem{Company: q.Company, Family: q.Family, Product: q.Product}
}

// PhaseLabel returns the label used for rows of this query.
func (q ResolvedQuery) PhaseLabel() string {
	if p, ok := q.Phase.Get(); ok {
		return p.String()
	}
	return AllPhasesLabel
}

// StatisticsRow is one time bucket of provisioning counters.
type StatisticsRow struct {
	DateFrom          time.Time
	DateTo            time.Time
	Company           Company
	Family            Family
	Product           Product
	ProvisioningPhase string
	Ok                int64
	Ko                int64
	CumulativeKo      int64
	Total             int64
	AvgElapsedSeconds Optional[float64]
}

// DailyStat is one day of raw provisioning counters, the unit stores bucket from.
type DailyStat struct {
	Date                time.Time
	Company             Company
	Family              Family
	Product             Product
	Phase               ProvisioningPhase
	Ok                  int64
	Ko                  int64
	Total               int64
	ElapsedSecondsTotal float64
}

// StoreStatus describes the configured store.
type StoreStatus struct {
	Backend        string `json:"backend"`
	Connected      bool   `json:"connected"`
	SchemaVersion  int    `json:"schema_version"`
	CatalogEntries int64  `json:"catalog_entries"`
	DailyStatRows  int64  `json:"daily_stat_rows"`
	OldestStatDate string `json:"oldest_stat_date,omitempty"`
	NewestStatDate string `json:"newest_stat_date,omitempty"`
}
