package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeColumnName(t *testing.T) {
	cases := map[string]string{
		"Cod Estab":         "cod_estab",
		"Dt Aprov. Credito": "dt_aprov_credito",
		"Dt Emis NF":        "dt_emis_nf",
		"Vl Net Livro":      "vl_net_livro",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeColumnName(in), in)
	}
}

func TestExpectedSchemaHasEveryCanonicalColumn(t *testing.T) {
	require.Len(t, ExpectedSchema, 25)
	seen := map[string]bool{}
	for _, f := range ExpectedSchema {
		seen[f.Column()] = true
	}
	for col := range stringSetters {
		assert.True(t, seen[col], col)
	}
	for col := range dateSetters {
		assert.True(t, seen[col], col)
	}
	assert.True(t, seen[ColRevenue])
	assert.True(t, seen[ColQuantity])
	assert.True(t, seen[ColNetValue])
}

func TestValidateSchemaIntersection(t *testing.T) {
	headers := []string{"Extra", "Marca", "Cod Estab", "Vl Net Livro", "Item", "Marca"}
	v := ValidateSchema(headers)

	require.Equal(t, SchemaValid, v.Kind)
	// schema order, not upload order
	assert.Equal(t, []string{"cod_estab", "item", "vl_net_livro", "marca"}, v.Names())
	assert.Equal(t, 1, v.Columns[3].Index, "first duplicate wins")
	assert.ElementsMatch(t, []string{"tipo_oper", "dt_emis_nf"}, v.MissingRequired)
}

func TestValidateSchemaNoMatch(t *testing.T) {
	v := ValidateSchema([]string{"foo", "bar", "marca"})
	assert.Equal(t, SchemaNoMatch, v.Kind)
	assert.Empty(t, v.Columns)
	assert.Equal(t, "no_match", v.Kind.String())
}
