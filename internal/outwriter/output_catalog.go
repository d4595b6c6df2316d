package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/huangsam/provstats/internal/contract"
	"github.com/huangsam/provstats/internal/store"
	"github.com/huangsam/provstats/schema"
	"github.com/olekukonko/tablewriter"
)

// PrintHierarchyResults outputs catalog entries to the configured destination.
func PrintHierarchyResults(items []schema.HierarchyItem, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteHierarchyResults(w, items, cfg)
	}, "Wrote hierarchy")
}

// WriteHierarchyResults writes catalog entries in the configured format.
func WriteHierarchyResults(w io.Writer, items []schema.HierarchyItem, cfg *contract.Config) error {
	if items == nil {
		items = []schema.HierarchyItem{}
	}
	header := []string{"company", "family", "product"}
	rows := make([][]string, len(items))
	for i, item := range items {
		rows[i] = []string{item.Company.String(), item.Family.String(), item.Product.String()}
	}
	return writeListing(w, cfg, items, header, rows)
}

// PrintProductNames outputs product names to the configured destination.
func PrintProductNames(names []string, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteProductNames(w, names, cfg)
	}, "Wrote product names")
}

// WriteProductNames writes product names in the configured format.
func WriteProductNames(w io.Writer, names []string, cfg *contract.Config) error {
	if names == nil {
		names = []string{}
	}
	rows := make([][]string, len(names))
	for i, name := range names {
		rows[i] = []string{name}
	}
	return writeListing(w, cfg, names, []string{"product"}, rows)
}

// PrintPermissions outputs the caller's permissions to the configured destination.
func PrintPermissions(perms []schema.PermissionEntry, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WritePermissions(w, perms, cfg)
	}, "Wrote permissions")
}

// WritePermissions writes permission entries. An empty list means unrestricted.
func WritePermissions(w io.Writer, perms []schema.PermissionEntry, cfg *contract.Config) error {
	if len(perms) == 0 && (cfg.Output == schema.TextOut || cfg.Output == "") {
		_, err := fmt.Fprintln(w, "Unrestricted: every company, family and product is visible.")
		return err
	}
	if perms == nil {
		perms = []schema.PermissionEntry{}
	}
	wildcard := func(s string) string {
		if s == "" {
			return "*"
		}
		return s
	}
	rows := make([][]string, len(perms))
	for i, p := range perms {
		rows[i] = []string{wildcard(p.Company), wildcard(p.Family), wildcard(p.Product)}
	}
	return writeListing(w, cfg, perms, []string{"company", "family", "product"}, rows)
}

// WriteStoreStatus writes the store status as JSON or text.
func WriteStoreStatus(w io.Writer, status schema.StoreStatus, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		return writeJSON(w, status)
	}
	store.PrintStoreStatus(w, status)
	return nil
}

// writeListing renders a flat listing: data as JSON, or rows as CSV or a table.
func writeListing(w io.Writer, cfg *contract.Config, data any, header []string, rows [][]string) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, data)
	case schema.CSVOut:
		return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
			return cw.WriteAll(rows)
		})
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is only supported for statistics")
	default:
		table := tablewriter.NewWriter(w)
		defer func() { _ = table.Close() }()
		table.Header(header)
		if err := table.Bulk(rows); err != nil {
			return err
		}
		return table.Render()
	}
}
