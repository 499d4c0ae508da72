package parsers

import (
	"fmt"
	"io"
	"strings"

	"github.com/username/faturamento/backend/src/models"
	"github.com/username/faturamento/backend/src/parsers/datasul"
)

// Parser turns an uploaded extract into a raw text table.
type Parser interface {
	Parse(r io.Reader) (*models.RawTable, error)
}

// DefaultSource is the ERP extract the dashboard was built around.
const DefaultSource = "datasul"

// GetParser returns the parser for a source name. An empty name selects DefaultSource.
func GetParser(source string) (Parser, error) {
	switch strings.ToLower(strings.TrimSpace(source)) {
	case "", DefaultSource, "esft0100":
		return datasul.NewParser(), nil
	default:
		return nil, fmt.Errorf("unsupported source: %s", source)
	}
}
