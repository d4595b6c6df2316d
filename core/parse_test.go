package core

import (
	"testing"

	"github.com/huangsam/provstats/internal/contract"
	"github.com/huangsam/provstats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() schema.StatisticsRequest {
	return schema.StatisticsRequest{
		QueryDateFrom:    "2025-01-01",
		QueryDateTo:      "2025-01-31",
		Product:          "ObjectStorage",
		DataPartitioning: "Day",
	}
}

func TestParseInputs(t *testing.T) {
	parsed, err := ParseInputs(validRequest())
	require.NoError(t, err)

	assert.Equal(t, schema.ObjectStorage, parsed.Product)
	assert.Equal(t, schema.PartitionDay, parsed.Partitioning)
	assert.Equal(t, "2025-01-01..2025-01-31", parsed.Range.String())
	assert.False(t, parsed.Company.IsSet())
	assert.False(t, parsed.Family.IsSet())
	assert.False(t, parsed.Phase.IsSet())
}

func TestParseInputsOptionalLabels(t *testing.T) {
	req := validRequest()
	req.Company = " skylink "
	req.Family = "CLOUDSTORAGE"
	req.ProvisioningPhase = "Create"

	parsed, err := ParseInputs(req)
	require.NoError(t, err)
	assert.Equal(t, schema.Some(schema.SkyLink), parsed.Company)
	assert.Equal(t, schema.Some(schema.CloudStorage), parsed.Family)
	assert.Equal(t, schema.Some(schema.PhaseCreate), parsed.Phase)
}

func TestParseInputsErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*schema.StatisticsRequest)
		msg    string
	}{
		{
			name:   "missing from",
			mutate: func(r *schema.StatisticsRequest) { r.QueryDateFrom = "" },
			msg:    "queryDateFrom parameter is required. Expected format: 'yyyy-MM-dd'",
		},
		{
			name:   "blank to",
			mutate: func(r *schema.StatisticsRequest) { r.QueryDateTo = "   " },
			msg:    "queryDateTo parameter is required",
		},
		{
			name:   "missing product",
			mutate: func(r *schema.StatisticsRequest) { r.Product = "" },
			msg:    "product parameter is required",
		},
		{
			name:   "missing partitioning",
			mutate: func(r *schema.StatisticsRequest) { r.DataPartitioning = "" },
			msg:    "dataPartitioning parameter is required",
		},
		{
			name:   "date with time component",
			mutate: func(r *schema.StatisticsRequest) { r.QueryDateFrom = "2025-01-01T00:00:00" },
			msg:    "Invalid queryDateFrom format: '2025-01-01T00:00:00'",
		},
		{
			name:   "impossible date",
			mutate: func(r *schema.StatisticsRequest) { r.QueryDateTo = "2025-02-30" },
			msg:    "Invalid queryDateTo format: '2025-02-30'",
		},
		{
			name:   "reversed range",
			mutate: func(r *schema.StatisticsRequest) { r.QueryDateFrom = "2025-02-01" },
			msg:    "queryDateFrom cannot be after queryDateTo",
		},
		{
			name:   "unknown product",
			mutate: func(r *schema.StatisticsRequest) { r.Product = "Teleport" },
			msg:    "Invalid product value: 'Teleport'. Valid values are: FiberInternet1Gbps, BusinessEthernet",
		},
		{
			name:   "unknown partitioning",
			mutate: func(r *schema.StatisticsRequest) { r.DataPartitioning = "Week" },
			msg:    "Invalid dataPartitioning value: 'Week'. Valid values are: Year, Month, Day",
		},
		{
			name:   "unknown company",
			mutate: func(r *schema.StatisticsRequest) { r.Company = "Acme" },
			msg:    "Invalid company value: 'Acme'",
		},
		{
			name:   "unknown phase",
			mutate: func(r *schema.StatisticsRequest) { r.ProvisioningPhase = "Launch" },
			msg:    "Invalid provisioningPhase value: 'Launch'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			_, err := ParseInputs(req)
			require.Error(t, err)
			assert.Equal(t, contract.InvalidArgument, contract.KindOf(err))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestParseCompanyFamily(t *testing.T) {
	c, f, err := ParseCompanyFamily("", "")
	require.NoError(t, err)
	assert.False(t, c.IsSet())
	assert.False(t, f.IsSet())

	c, f, err = ParseCompanyFamily("NetWave", "Connectivity")
	require.NoError(t, err)
	assert.Equal(t, schema.Some(schema.NetWave), c)
	assert.Equal(t, schema.Some(schema.Connectivity), f)

	_, _, err = ParseCompanyFamily("NetWave", "Satellite")
	assert.Equal(t, contract.InvalidArgument, contract.KindOf(err))
}
