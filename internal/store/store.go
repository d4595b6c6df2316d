// Package store provides the catalog and statistics backends.
package store

import (
	"context"
	"fmt"
	"io"

	"github.com/huangsam/provstats/internal/contract"
	"github.com/huangsam/provstats/schema"
)

// Open returns the store for backend. The memory backend ignores connStr.
func Open(backend schema.DatabaseBackend, connStr string) (contract.Store, error) {
	switch backend {
	case schema.MemoryBackend, "":
		return NewMemoryStore(nil), nil
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
		return NewSQLStore(backend, connStr)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s. Must be memory, sqlite, mysql, or postgresql", backend)
	}
}

// Seeder is implemented by stores that can be loaded with demo data.
type Seeder interface {
	Seed(ctx context.Context, catalog []schema.HierarchyItem, r schema.DateRange) (int64, error)
	Clear(ctx context.Context) error
}

// AsSeeder returns s as a Seeder, or an error naming the backend when it cannot be seeded.
func AsSeeder(s contract.Store) (Seeder, error) {
	seeder, ok := s.(Seeder)
	if !ok {
		return nil, fmt.Errorf("store backend %T cannot be seeded or cleared; use sqlite, mysql, or postgresql", s)
	}
	return seeder, nil
}

// PrintStoreStatus writes status information to w.
func PrintStoreStatus(w io.Writer, status schema.StoreStatus) {
	_, _ = fmt.Fprintf(w, "Store Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	if status.SchemaVersion > 0 {
		_, _ = fmt.Fprintf(w, "Schema Version: %d\n", status.SchemaVersion)
	}
	_, _ = fmt.Fprintf(w, "Catalog Entries: %d\n", status.CatalogEntries)
	_, _ = fmt.Fprintf(w, "Daily Statistic Rows: %d\n", status.DailyStatRows)
	if status.DailyStatRows > 0 {
		_, _ = fmt.Fprintf(w, "Oldest Statistic: %s\n", status.OldestStatDate)
		_, _ = fmt.Fprintf(w, "Newest Statistic: %s\n", status.NewestStatDate)
	}
}
