package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/golang-migrate/migrate/v4"
	"github.com/huangsam/provstats/internal/contract"
	"github.com/huangsam/provstats/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// Table names for the provisioning data.
const (
	catalogTable    = "provstats_catalog"
	dailyStatsTable = "provstats_daily_stats"
)

// SQLStore serves the catalog and statistics from a relational database.
type SQLStore struct {
	db       *sql.DB
	backend  schema.DatabaseBackend
	migrator *migrate.Migrate
}

var _ contract.Store = &SQLStore{} // Compile-time check

// openDB opens and pings the database of backend.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	var db *sql.DB
	var err error

	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetDBFilePath()
		}
		db, err = sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		db, err = sql.Open("mysql", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		db, err = sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	default:
		return nil, fmt.Errorf("unsupported SQL backend: %s", backend)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w. Check that the server is running and connection parameters are valid", backend, err)
	}
	return db, nil
}

// NewSQLStore opens the database of backend and migrates it to the latest schema.
func NewSQLStore(backend schema.DatabaseBackend, connStr string) (*SQLStore, error) {
	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}
	m, err := newMigrator(db, backend)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := applyMigrations(m, -1); err != nil {
		_, _ = m.Close()
		_ = db.Close()
		return nil, err
	}
	return &SQLStore{db: db, backend: backend, migrator: m}, nil
}

// newSQLStoreWithDB wraps an already migrated database.
func newSQLStoreWithDB(db *sql.DB, backend schema.DatabaseBackend) *SQLStore {
	return &SQLStore{db: db, backend: backend}
}

// placeholder returns the n-th (1-based) bind parameter for the backend.
func (ss *SQLStore) placeholder(n int) string {
	if ss.backend == schema.PostgreSQLBackend {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// placeholders returns n comma-separated bind parameters.
func (ss *SQLStore) placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = ss.placeholder(i + 1)
	}
	return strings.Join(parts, ", ")
}

// GetHierarchy implements contract.HierarchyStore.
func (ss *SQLStore) GetHierarchy(ctx context.Context, company schema.Optional[schema.Company], family schema.Optional[schema.Family], scope *schema.AccessScope) ([]schema.HierarchyItem, error) {
	var where []string
	var args []any
	if c, ok := company.Get(); ok {
		args = append(args, int(c))
		where = append(where, "company = "+ss.placeholder(len(args)))
	}
	if f, ok := family.Get(); ok {
		args = append(args, int(f))
		where = append(where, "family = "+ss.placeholder(len(args)))
	}

	items, err := ss.queryCatalog(ctx, where, args)
	if err != nil {
		return nil, err
	}
	if scope != nil {
		items = scope.Filter(items)
	}
	return items, nil
}

// GetHierarchyForProduct implements contract.HierarchyStore.
func (ss *SQLStore) GetHierarchyForProduct(ctx context.Context, product schema.Product, scope schema.AccessScope) ([]schema.HierarchyItem, error) {
	items, err := ss.queryCatalog(ctx, []string{"product = " + ss.placeholder(1)}, []any{int(product)})
	if err != nil {
		return nil, err
	}
	return scope.Filter(items), nil
}

func (ss *SQLStore) queryCatalog(ctx context.Context, where []string, args []any) ([]schema.HierarchyItem, error) {
	query := fmt.Sprintf("SELECT company, family, product FROM %s", quoteTableName(catalogTable, ss.backend))
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY company, family, product"

	rows, err := ss.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []schema.HierarchyItem
	for rows.Next() {
		var company, family, product int
		if err := rows.Scan(&company, &family, &product); err != nil {
			return nil, fmt.Errorf("failed to scan catalog entry: %w", err)
		}
		items = append(items, schema.HierarchyItem{
			Company: schema.Company(company),
			Family:  schema.Family(family),
			Product: schema.Product(product),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating catalog: %w", err)
	}
	return items, nil
}

// QueryStatistics implements contract.StatisticsStore. Daily rows are read
// from the database and bucketed in process.
func (ss *SQLStore) QueryStatistics(ctx context.Context, q schema.ResolvedQuery, scope schema.AccessScope) ([]schema.StatisticsRow, error) {
	if !scope.Allows(q.Hierarchy()) {
		return BucketStats(nil, q), nil
	}

	args := []any{int(q.Company), int(q.Family), int(q.Product), formatDate(q.Range.From), formatDate(q.Range.To)}
	query := fmt.Sprintf(`SELECT stat_date, phase, ok, ko, total, elapsed_seconds_total FROM %s
		WHERE company = %s AND family = %s AND product = %s AND stat_date >= %s AND stat_date <= %s`,
		quoteTableName(dailyStatsTable, ss.backend),
		ss.placeholder(1), ss.placeholder(2), ss.placeholder(3), ss.placeholder(4), ss.placeholder(5))
	if phase, ok := q.Phase.Get(); ok {
		args = append(args, int(phase))
		query += " AND phase = " + ss.placeholder(len(args))
	}
	query += " ORDER BY stat_date, phase"

	rows, err := ss.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily statistics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var daily []schema.DailyStat
	for rows.Next() {
		var dateStr string
		var phase int
		d := schema.DailyStat{Company: q.Company, Family: q.Family, Product: q.Product}
		if err := rows.Scan(&dateStr, &phase, &d.Ok, &d.Ko, &d.Total, &d.ElapsedSecondsTotal); err != nil {
			return nil, fmt.Errorf("failed to scan daily statistics: %w", err)
		}
		d.Date, err = schema.ParseDate(strings.TrimSpace(dateStr))
		if err != nil {
			return nil, fmt.Errorf("failed to parse stat_date %q: %w", dateStr, err)
		}
		d.Phase = schema.ProvisioningPhase(phase)
		daily = append(daily, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily statistics: %w", err)
	}
	return BucketStats(daily, q), nil
}

// Seed loads catalog and the synthetic statistics of r in one transaction.
// Existing daily rows for the same key are replaced. It returns the number
// of daily rows written.
func (ss *SQLStore) Seed(ctx context.Context, catalog []schema.HierarchyItem, r schema.DateRange) (int64, error) {
	tx, err := ss.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	catalogStmt, err := tx.PrepareContext(ctx, ss.insertCatalogQuery())
	if err != nil {
		return 0, fmt.Errorf("failed to prepare catalog insert: %w", err)
	}
	defer func() { _ = catalogStmt.Close() }()
	for _, item := range catalog {
		if _, err := catalogStmt.ExecContext(ctx, int(item.Company), int(item.Family), int(item.Product)); err != nil {
			return 0, fmt.Errorf("failed to insert catalog entry %s/%s/%s: %w", item.Company, item.Family, item.Product, err)
		}
	}

	statStmt, err := tx.PrepareContext(ctx, ss.upsertDailyStatQuery())
	if err != nil {
		return 0, fmt.Errorf("failed to prepare daily statistics upsert: %w", err)
	}
	defer func() { _ = statStmt.Close() }()

	var written int64
	for _, d := range SyntheticDailyStats(catalog, r) {
		_, err := statStmt.ExecContext(ctx,
			int(d.Company), int(d.Family), int(d.Product), formatDate(d.Date), int(d.Phase),
			d.Ok, d.Ko, d.Total, d.ElapsedSecondsTotal)
		if err != nil {
			return 0, fmt.Errorf("failed to upsert daily statistics for %s: %w", formatDate(d.Date), err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit seed transaction: %w", err)
	}
	return written, nil
}

func (ss *SQLStore) insertCatalogQuery() string {
	table := quoteTableName(catalogTable, ss.backend)
	switch ss.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("INSERT IGNORE INTO %s (company, family, product) VALUES (?, ?, ?)", table)
	case schema.PostgreSQLBackend:
		return fmt.Sprintf("INSERT INTO %s (company, family, product) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING", table)
	default: // SQLite
		return fmt.Sprintf("INSERT OR IGNORE INTO %s (company, family, product) VALUES (?, ?, ?)", table)
	}
}

func (ss *SQLStore) upsertDailyStatQuery() string {
	table := quoteTableName(dailyStatsTable, ss.backend)
	columns := "company, family, product, stat_date, phase, ok, ko, total, elapsed_seconds_total"
	switch ss.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) AS new
			ON DUPLICATE KEY UPDATE ok = new.ok, ko = new.ko, total = new.total, elapsed_seconds_total = new.elapsed_seconds_total`,
			table, columns, ss.placeholders(9))
	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)
			ON CONFLICT (company, family, product, stat_date, phase) DO UPDATE SET ok = EXCLUDED.ok, ko = EXCLUDED.ko, total = EXCLUDED.total, elapsed_seconds_total = EXCLUDED.elapsed_seconds_total`,
			table, columns, ss.placeholders(9))
	default: // SQLite
		return fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s)", table, columns, ss.placeholders(9))
	}
}

// Clear deletes every catalog entry and daily row, keeping the schema.
func (ss *SQLStore) Clear(ctx context.Context) error {
	for _, table := range []string{dailyStatsTable, catalogTable} {
		query := fmt.Sprintf("DELETE FROM %s", quoteTableName(table, ss.backend))
		if _, err := ss.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
	}
	return nil
}

// Ping implements contract.Store.
func (ss *SQLStore) Ping(ctx context.Context) error {
	return ss.db.PingContext(ctx)
}

// GetStatus implements contract.Store.
func (ss *SQLStore) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	status := schema.StoreStatus{Backend: string(ss.backend)}
	if err := ss.db.PingContext(ctx); err != nil {
		return status, nil
	}
	status.Connected = true

	if ss.migrator != nil {
		v, err := currentVersion(ss.migrator)
		if err != nil {
			return status, err
		}
		status.SchemaVersion = int(v)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(catalogTable, ss.backend))
	if err := ss.db.QueryRowContext(ctx, countQuery).Scan(&status.CatalogEntries); err != nil {
		return status, fmt.Errorf("failed to count catalog entries: %w", err)
	}

	statsQuery := fmt.Sprintf("SELECT COUNT(*), MIN(stat_date), MAX(stat_date) FROM %s", quoteTableName(dailyStatsTable, ss.backend))
	var oldest, newest sql.NullString
	if err := ss.db.QueryRowContext(ctx, statsQuery).Scan(&status.DailyStatRows, &oldest, &newest); err != nil {
		return status, fmt.Errorf("failed to summarize daily statistics: %w", err)
	}
	status.OldestStatDate = strings.TrimSpace(oldest.String)
	status.NewestStatDate = strings.TrimSpace(newest.String)
	return status, nil
}

// Close implements contract.Store.
func (ss *SQLStore) Close() error {
	if ss.migrator != nil {
		_, _ = ss.migrator.Close()
	}
	return ss.db.Close()
}

// quoteTableName quotes a table name for the backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	if backend == schema.MySQLBackend {
		return "`" + name + "`"
	}
	return `"` + name + `"`
}

// formatDate renders a date the way every backend stores stat_date.
func formatDate(t time.Time) string {
	return t.Format(schema.DateLayout)
}
