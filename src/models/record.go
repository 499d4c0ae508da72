package models

import (
	"strings"
	"time"
)

// DateFormat is the layout used for dates crossing the API boundary.
const DateFormat = "2006-01-02"

// RawTable is the uploaded extract as text, before any normalization.
// Rows may be shorter or longer than Headers.
type RawTable struct {
	Headers []string
	Rows    [][]string
}

// Cell returns the trimmed value at row/col, or "" when the row is short.
func (t *RawTable) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return strings.TrimSpace(t.Rows[row][col])
}

// CanonicalRecord is one normalized transaction line of the extract.
// Nil dates and amounts mean the source cell was empty or unparseable.
type CanonicalRecord struct {
	EstablishmentCode string     `json:"cod_estab"`
	CompanyName       string     `json:"razao_social"`
	City              string     `json:"cidade"`
	State             string     `json:"estado"`
	SalesChannel      string     `json:"canal_venda_cliente"`
	ImplantedAt       *time.Time `json:"dt_implant_ped"`
	CustomerOrder     string     `json:"ped_cliente"`
	ERPOrder          string     `json:"ped_datasul"`
	OperationType     string     `json:"tipo_oper"`
	Series            string     `json:"serie"`
	Invoice           string     `json:"nota_fiscal"`
	TaxNature         string     `json:"natureza"`
	EmittedAt         *time.Time `json:"dt_emis_nf"`
	ShippedAt         *time.Time `json:"dt_embarque"`
	CreditApprovedAt  *time.Time `json:"dt_aprov_credito"`
	Revenue           bool       `json:"receita"`
	Item              string     `json:"item"`
	ItemDescription   string     `json:"desc_item"`
	Warehouse         string     `json:"deposito"`
	Quantity          *float64   `json:"quantidade"`
	NetValue          *float64   `json:"vl_net_livro"`
	ShipmentNumber    string     `json:"nro_embarque"`
	Brand             string     `json:"marca"`
	DeliveredAt       *time.Time `json:"dt_entrega"`
	OrderStatus       string     `json:"situacao_ped"`
}

// NetValueOrZero treats a missing value as zero.
func (r *CanonicalRecord) NetValueOrZero() float64 {
	if r.NetValue == nil {
		return 0
	}
	return *r.NetValue
}

// QuantityOrZero treats a missing quantity as zero.
func (r *CanonicalRecord) QuantityOrZero() float64 {
	if r.Quantity == nil {
		return 0
	}
	return *r.Quantity
}

// Dataset is the canonical table plus the normalized columns the upload carried.
type Dataset struct {
	Columns []string          `json:"columns"`
	Records []CanonicalRecord `json:"records"`
}

// HasColumn reports whether the upload that produced the dataset had the column.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

func (d *Dataset) EmissionBounds() (first, last *time.Time) {
	return EmissionBounds(d.Records)
}

// EmissionBounds returns the earliest and latest emission dates, or nils when none exist.
func EmissionBounds(records []CanonicalRecord) (first, last *time.Time) {
	for i := range records {
		t := records[i].EmittedAt
		if t == nil {
			continue
		}
		if first == nil || t.Before(*first) {
			first = t
		}
		if last == nil || t.After(*last) {
			last = t
		}
	}
	return first, last
}

// ParseStats counts cells that degraded to missing during normalization.
type ParseStats struct {
	UnparsedDates   int `json:"unparsed_dates"`
	UnparsedAmounts int `json:"unparsed_amounts"`
	DroppedRows     int `json:"dropped_rows"`
}

// IngestionSummary describes one successful upload.
type IngestionSummary struct {
	ID               string     `json:"id"`
	Filename         string     `json:"filename"`
	FileSize         int64      `json:"file_size"`
	RecordCount      int        `json:"record_count"`
	MatchedColumns   []string   `json:"matched_columns"`
	MissingRequired  []string   `json:"missing_required,omitempty"`
	Stats            ParseStats `json:"stats"`
	LastEmissionDate *time.Time `json:"last_emission_date,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// DatasetInfo describes the current snapshot without shipping its records.
type DatasetInfo struct {
	Columns       []string   `json:"columns"`
	RecordCount   int        `json:"record_count"`
	FirstEmission *time.Time `json:"first_emission,omitempty"`
	LastEmission  *time.Time `json:"last_emission,omitempty"`
	// Invoice bounds are the default reporting period.
	FirstInvoice *time.Time `json:"first_invoice,omitempty"`
	LastInvoice  *time.Time `json:"last_invoice,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
