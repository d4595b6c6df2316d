// Package outwriter has output and writer logic.
package outwriter

import (
	"io"
	"time"

	"github.com/huangsam/provstats/internal/contract"
	"github.com/huangsam/provstats/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteStatistics prints statistics buckets using the configured output format.
func (ow *OutWriter) WriteStatistics(shape schema.StatisticsShape, q schema.ResolvedQuery, rows []schema.StatisticsRow, cfg *contract.Config, duration time.Duration) error {
	return PrintStatisticsResults(shape, q, rows, cfg, duration)
}

// WriteHierarchy prints catalog entries using the configured output format.
func (ow *OutWriter) WriteHierarchy(items []schema.HierarchyItem, cfg *contract.Config) error {
	return PrintHierarchyResults(items, cfg)
}

// WriteProductNames prints product names using the configured output format.
func (ow *OutWriter) WriteProductNames(names []string, cfg *contract.Config) error {
	return PrintProductNames(names, cfg)
}

// WritePermissions prints the caller's permissions using the configured output format.
func (ow *OutWriter) WritePermissions(perms []schema.PermissionEntry, cfg *contract.Config) error {
	return PrintPermissions(perms, cfg)
}

// WriteStoreStatus prints the store status to w.
func (ow *OutWriter) WriteStoreStatus(w io.Writer, status schema.StoreStatus, cfg *contract.Config) error {
	return WriteStoreStatus(w, status, cfg)
}
