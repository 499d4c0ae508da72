package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAbsAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1234,56", 1234.56},
		{"-1234,56", 1234.56},
		{"1.234,56", 1234.56},
		{"R$ 1.234.567,89", 1234567.89},
		{"1,234.56", 1234.56},
		{"-10.5", 10.5},
		{"1.234.567", 1234567},
		{"1,234,567", 1234567},
		{"  42 ", 42},
		{"0", 0},
	}
	for _, tc := range cases {
		got := ParseAbsAmount(tc.in)
		require.NotNil(t, got, tc.in)
		assert.InDelta(t, tc.want, *got, 1e-9, tc.in)
		assert.GreaterOrEqual(t, *got, 0.0, tc.in)
	}

	for _, bad := range []string{"", "   ", "abc", "-", ",", "."} {
		assert.Nil(t, ParseAbsAmount(bad), bad)
	}
}

func TestParseRevenueFlag(t *testing.T) {
	for _, v := range []string{"Sim", "SIM", " sim ", "yes", "true"} {
		assert.True(t, ParseRevenueFlag(v), v)
	}
	for _, v := range []string{"Não", "nao", "no", "", "talvez", "false"} {
		assert.False(t, ParseRevenueFlag(v), v)
	}
}

func TestParseRevenueFlagIdempotent(t *testing.T) {
	for _, v := range []string{"Sim", "Não", "", "x"} {
		once := ParseRevenueFlag(v)
		assert.Equal(t, once, ParseRevenueFlag(boolText(once)), v)
	}
}

func boolText(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func TestBrandRules(t *testing.T) {
	for _, b := range []string{"?", "METALIKA", "MTK CD SP", "PAPAIZ SOR", "YALE"} {
		assert.True(t, IsDeniedBrand(b), b)
	}
	assert.False(t, IsDeniedBrand("PAPAIZ"))
	assert.False(t, IsDeniedBrand("yale"), "deny-set matches the exported spelling")
	assert.Equal(t, "SILVANA", CanonicalBrand("SILVANA CDSP"))
	assert.Equal(t, "VAULT", CanonicalBrand("VAULT"))
}

func TestFillSentinel(t *testing.T) {
	assert.Equal(t, "Unknown", FillSentinel(ColSalesChannel, ""))
	assert.Equal(t, "No Order", FillSentinel(ColCustomerOrder, " "))
	assert.Equal(t, "Not Informed", FillSentinel(ColWarehouse, ""))
	assert.Equal(t, "No Shipment", FillSentinel(ColShipmentNumber, ""))
	assert.Equal(t, "VAREJO", FillSentinel(ColSalesChannel, "VAREJO"))
	assert.Equal(t, "", FillSentinel(ColBrand, ""))
}
