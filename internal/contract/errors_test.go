package contract

import (
	"errors"
	"testing"

	crdb "github.com/cockroachdb/errors"
	"github.com/huangsam/provstats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind ErrorKind
	}{
		{"invalid argument", NewInvalidArgument("bad %s", "input"), InvalidArgument},
		{"not found", NewHierarchyNotFound("ObjectStorage"), HierarchyNotFound},
		{"ambiguous", NewAmbiguousHierarchy("ManagedFirewall", nil), AmbiguousHierarchy},
		{"unprocessable", NewUnprocessable(MsgTooManyRows), UnprocessableQuery},
		{"upstream", WrapUpstream(errors.New("boom"), "statistics store"), UpstreamFailure},
		{"plain error", errors.New("plain"), UpstreamFailure},
		{"wrapped kind survives", crdb.Wrap(NewInvalidArgument("x"), "outer"), InvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.err))
		})
	}
}

func TestNewAmbiguousHierarchy(t *testing.T) {
	candidates := []schema.HierarchyItem{
		{Company: schema.NetWave, Family: schema.NetworkServices, Product: schema.ManagedFirewall},
		{Company: schema.SkyLink, Family: schema.NetworkServices, Product: schema.ManagedFirewall},
	}
	err := NewAmbiguousHierarchy("ManagedFirewall", candidates)

	qe, ok := AsQueryError(err)
	require.True(t, ok)
	assert.Len(t, qe.Candidates, 2)
	assert.Contains(t, err.Error(), "Ambiguous product hierarchy for product value: 'ManagedFirewall'")
	assert.Contains(t, err.Error(), `"company":"SkyLink"`)

	described := Describe(err)
	assert.Contains(t, described, "AmbiguousHierarchy: ")
	assert.Contains(t, described, "HINT: resupply company and family")
}

func TestWrapUpstream(t *testing.T) {
	assert.NoError(t, WrapUpstream(nil, "ignored"))

	cause := errors.New("connection refused")
	err := WrapUpstream(cause, "failed to load %s", "catalog")
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "UpstreamFailure: failed to load catalog: connection refused", Describe(err))
}
