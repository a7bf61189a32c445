package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestParseEnumsFallBackToDefault(t *testing.T) {
	assert.Equal(t, BasisAttendance, ParseBasis("attendance"))
	assert.Equal(t, BasisAll, ParseBasis("events"))
	assert.Equal(t, BasisAll, ParseBasis(""))

	assert.Equal(t, ScopeTop5, ParseScope("top5"))
	assert.Equal(t, ScopeTop10, ParseScope("top10_att"))
	assert.Equal(t, ScopeAll, ParseScope("top7"))

	assert.Equal(t, "", ParseWeek("all"))
	assert.Equal(t, "W3", ParseWeek(" W3 "))
}

func TestScopeLimit(t *testing.T) {
	assert.Equal(t, 0, ScopeAll.Limit())
	assert.Equal(t, 3, ScopeTop3.Limit())
	assert.Equal(t, 5, ScopeTop5.Limit())
	assert.Equal(t, 10, ScopeTop10.Limit())
}

func TestControllerSetMergesOnlyProvidedDimensions(t *testing.T) {
	c := NewController()
	c.Set(FilterPatch{Week: strPtr("W2")})
	c.Set(FilterPatch{Scope: strPtr("top3")})

	got := c.Get()
	assert.Equal(t, FilterState{Week: "W2", Basis: BasisAll, Scope: ScopeTop3}, got)

	c.Set(FilterPatch{Basis: strPtr("bogus")})
	assert.Equal(t, BasisAll, c.Get().Basis)
	assert.Equal(t, "W2", c.Get().Week)
}

func TestControllerResetIsIdempotent(t *testing.T) {
	c := NewController()
	c.Set(FilterPatch{Week: strPtr("W9"), Basis: strPtr("attendance"), Scope: strPtr("top10")})

	c.Reset()
	first := c.Get()
	c.Reset()
	require.Equal(t, first, c.Get())
	assert.Equal(t, DefaultFilterState(), first)
}
