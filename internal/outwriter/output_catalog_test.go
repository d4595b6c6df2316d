package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/huangsam/provstats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var firewallHierarchy = []schema.HierarchyItem{
	{Company: schema.SkyLink, Family: schema.NetworkServices, Product: schema.ManagedFirewall},
	{Company: schema.NetWave, Family: schema.NetworkServices, Product: schema.ManagedFirewall},
}

func TestWriteHierarchyResults(t *testing.T) {
	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteHierarchyResults(&buf, firewallHierarchy, textConfig(schema.TextOut)))
		out := buf.String()
		assert.Contains(t, out, "SkyLink")
		assert.Contains(t, out, "NetWave")
		assert.Contains(t, out, "ManagedFirewall")
	})

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteHierarchyResults(&buf, firewallHierarchy, textConfig(schema.CSVOut)))
		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		assert.Equal(t, [][]string{
			{"company", "family", "product"},
			{"SkyLink", "NetworkServices", "ManagedFirewall"},
			{"NetWave", "NetworkServices", "ManagedFirewall"},
		}, records)
	})

	t.Run("json empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteHierarchyResults(&buf, nil, textConfig(schema.JSONOut)))
		assert.JSONEq(t, "[]", buf.String())
	})

	t.Run("parquet unsupported", func(t *testing.T) {
		var buf bytes.Buffer
		assert.Error(t, WriteHierarchyResults(&buf, firewallHierarchy, textConfig(schema.ParquetOut)))
	})
}

func TestWriteProductNames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteProductNames(&buf, []string{"ManagedFirewall", "ObjectStorage"}, textConfig(schema.JSONOut)))

	var names []string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &names))
	assert.Equal(t, []string{"ManagedFirewall", "ObjectStorage"}, names)
}

func TestWritePermissions(t *testing.T) {
	tests := []struct {
		name     string
		perms    []schema.PermissionEntry
		output   schema.OutputMode
		contains []string
	}{
		{
			name:     "unrestricted text",
			output:   schema.TextOut,
			contains: []string{"Unrestricted"},
		},
		{
			name:     "wildcards in table",
			perms:    []schema.PermissionEntry{{Company: "SkyLink"}},
			output:   schema.TextOut,
			contains: []string{"SkyLink", "*"},
		},
		{
			name:     "csv",
			perms:    []schema.PermissionEntry{{Company: "NetWave", Product: "ManagedFirewall"}},
			output:   schema.CSVOut,
			contains: []string{"company,family,product", "NetWave,*,ManagedFirewall"},
		},
		{
			name:     "unrestricted json",
			output:   schema.JSONOut,
			contains: []string{"[]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WritePermissions(&buf, tt.perms, textConfig(tt.output)))
			for _, want := range tt.contains {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestWriteStoreStatus(t *testing.T) {
	status := schema.StoreStatus{Backend: "sqlite", Connected: true, SchemaVersion: 2, CatalogEntries: 13}

	var text bytes.Buffer
	require.NoError(t, NewOutWriter().WriteStoreStatus(&text, status, textConfig(schema.TextOut)))
	assert.Contains(t, text.String(), "Store Backend: sqlite")
	assert.Contains(t, text.String(), "Schema Version: 2")

	var js bytes.Buffer
	require.NoError(t, WriteStoreStatus(&js, status, textConfig(schema.JSONOut)))
	var decoded schema.StoreStatus
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, status, decoded)
}
