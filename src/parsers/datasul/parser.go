// Package datasul reads the ESFT0100 invoicing extract exported by the ERP.
package datasul

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/username/faturamento/backend/src/models"
	"golang.org/x/text/encoding/charmap"
)

const (
	Separator = ';'
	Quote     = '"'
)

// ExtractParser decodes ISO-8859-1, semicolon-separated files.
type ExtractParser struct{}

func NewParser() *ExtractParser {
	return &ExtractParser{}
}

// Parse reads the header row and every data row as text. Short and long rows
// are kept as-is; blank lines are skipped.
func (p *ExtractParser) Parse(file io.Reader) (*models.RawTable, error) {
	decoded := charmap.ISO8859_1.NewDecoder().Reader(file)

	reader := csv.NewReader(decoded)
	reader.Comma = Separator
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("datasul parser: file has no header row")
		}
		return nil, fmt.Errorf("datasul parser: failed to read CSV header: %w", err)
	}

	table := &models.RawTable{Headers: make([]string, len(header))}
	for i, h := range header {
		table.Headers[i] = cleanHeader(h)
	}

	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("datasul parser: failed to read record near line %d: %w", line, err)
		}
		if isBlank(record) {
			continue
		}
		table.Rows = append(table.Rows, record)
	}
	return table, nil
}

func cleanHeader(h string) string {
	h = strings.TrimPrefix(h, "\u00ef\u00bb\u00bf") // UTF-8 BOM seen through Latin-1
	return strings.TrimSpace(h)
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
