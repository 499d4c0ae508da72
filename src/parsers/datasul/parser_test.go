package datasul

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func latin1(t *testing.T, s string) []byte {
	t.Helper()
	b, err := charmap.ISO8859_1.NewEncoder().String(s)
	require.NoError(t, err)
	return []byte(b)
}

func TestParseDecodesLatin1(t *testing.T) {
	input := "Cod Estab;Razao Social;Receita;Vl Net Livro\n" +
		"1;\"CONSTRUÇÃO; LTDA\";Não;1.234,56\n" +
		"\n" +
		"2;Loja São Paulo;Sim;-10,00\n"

	table, err := NewParser().Parse(bytes.NewReader(latin1(t, input)))
	require.NoError(t, err)

	assert.Equal(t, []string{"Cod Estab", "Razao Social", "Receita", "Vl Net Livro"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "CONSTRUÇÃO; LTDA", table.Rows[0][1])
	assert.Equal(t, "Não", table.Rows[0][2])
	assert.Equal(t, "Loja São Paulo", table.Rows[1][1])
}

func TestParseKeepsRaggedRows(t *testing.T) {
	table, err := NewParser().Parse(strings.NewReader("A;B;C\n1;2\n1;2;3;4\n"))
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Len(t, table.Rows[0], 2)
	assert.Len(t, table.Rows[1], 4)
	assert.Equal(t, "", table.Cell(0, 2))
	assert.Equal(t, "4", table.Cell(1, 3))
}

func TestParseEmptyFile(t *testing.T) {
	_, err := NewParser().Parse(strings.NewReader(""))
	assert.Error(t, err)
}

func TestParseStripsHeaderWhitespace(t *testing.T) {
	table, err := NewParser().Parse(strings.NewReader(" Marca ; Tipo Oper\nPAPAIZ;1 - Receita\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Marca", "Tipo Oper"}, table.Headers)
}
