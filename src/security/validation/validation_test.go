package validation

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateClientContentType(t *testing.T) {
	assert.NoError(t, ValidateClientContentType("text/csv; charset=ISO-8859-1"))
	assert.NoError(t, ValidateClientContentType(""))
	assert.ErrorIs(t, ValidateClientContentType("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"), ErrValidationFailed)
	assert.ErrorIs(t, ValidateClientContentType("image/png"), ErrValidationFailed)
}

func TestValidateFilename(t *testing.T) {
	assert.NoError(t, ValidateFilename("ESFT0100.CSV"))
	assert.NoError(t, ValidateFilename("extract.txt"))
	assert.ErrorIs(t, ValidateFilename("extract.xlsx"), ErrValidationFailed)
	assert.ErrorIs(t, ValidateFilename("  "), ErrValidationFailed)
}

func TestValidateFileContentAcceptsLatin1(t *testing.T) {
	// "Descrição" encoded as ISO-8859-1
	content := []byte("Marca;Descri\xe7\xe3o\nPAPAIZ;Cadeado\n")
	r := bytes.NewReader(content)

	_, err := ValidateFileContentByMagicBytes(r)
	require.NoError(t, err)

	// reader was rewound
	first := make([]byte, 5)
	_, err = r.Read(first)
	require.NoError(t, err)
	assert.Equal(t, "Marca", string(first))
}

func TestValidateFileContentRejectsBinaryAndEmpty(t *testing.T) {
	_, err := ValidateFileContentByMagicBytes(bytes.NewReader([]byte{'a', 0, 'b'}))
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = ValidateFileContentByMagicBytes(bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrValidationFailed)

	// PNG signature sniffs as image/png
	_, err = ValidateFileContentByMagicBytes(bytes.NewReader([]byte("\x89PNG\r\n\x1a\nrest")))
	assert.Error(t, err)
}

func TestValidateFloatString(t *testing.T) {
	v, err := ValidateFloatString("0.25", "cutoff", false, 0, 1e12)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, v, 1e-9)

	v, err = ValidateFloatString("", "cutoff", false, 0, 1e12)
	require.NoError(t, err)
	assert.Zero(t, v)

	_, err = ValidateFloatString("-1", "cutoff", false, 0, 1e12)
	assert.ErrorIs(t, err, ErrValidationFailed)
	_, err = ValidateFloatString("NaN", "cutoff", false, 0, 1e12)
	assert.ErrorIs(t, err, ErrValidationFailed)
	_, err = ValidateFloatString("abc", "cutoff", false, 0, 1e12)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestValidateIntString(t *testing.T) {
	v, err := ValidateIntString("7", "employees", false, 1, 1000)
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = ValidateIntString("0", "employees", false, 1, 1000)
	assert.ErrorIs(t, err, ErrValidationFailed)
	_, err = ValidateIntString("1.5", "employees", false, 1, 1000)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestValidateDateRange(t *testing.T) {
	from, to, err := ValidateDateRange("2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, 31, to.Day())

	_, _, err = ValidateDateRange("2024-02-01", "2024-01-31")
	assert.ErrorIs(t, err, ErrValidationFailed)
	_, _, err = ValidateDateRange("2024-02-30", "2024-03-01")
	assert.ErrorIs(t, err, ErrValidationFailed)
	_, _, err = ValidateDateRange("01/02/2024", "2024-03-01")
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestValidateBrand(t *testing.T) {
	assert.NoError(t, ValidateBrand("PAPAIZ"))
	assert.ErrorIs(t, ValidateBrand(""), ErrValidationFailed)
	assert.ErrorIs(t, ValidateBrand(strings.Repeat("X", MaxBrandLength+1)), ErrValidationFailed)
	assert.ErrorIs(t, ValidateBrand("<script>alert(1)</script>"), ErrValidationFailed)
}

func TestSanitizers(t *testing.T) {
	assert.Equal(t, "PAPAIZ", SanitizeBrandKey("  <b>papaiz</b>\x07 "))
	assert.Equal(t, "'=SUM(A1:A2)", SanitizeForFormulaInjection("=SUM(A1:A2)"))
	assert.Equal(t, "'-10", SanitizeForFormulaInjection("-10"))
	assert.Equal(t, "UDINESE", SanitizeForFormulaInjection("UDINESE"))
	assert.Equal(t, "", SanitizeForFormulaInjection(""))
}
