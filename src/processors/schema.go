package processors

import (
	"errors"
	"strings"
)

// ErrSchemaMismatch means none of the expected headers were found in the upload.
var ErrSchemaMismatch = errors.New("no expected column found in upload")

// Normalized column names of the extract.
const (
	ColEstablishmentCode = "cod_estab"
	ColCompanyName       = "razao_social"
	ColCity              = "cidade"
	ColState             = "estado"
	ColSalesChannel      = "canal_venda_cliente"
	ColImplantedAt       = "dt_implant_ped"
	ColCustomerOrder     = "ped_cliente"
	ColERPOrder          = "ped_datasul"
	ColOperationType     = "tipo_oper"
	ColSeries            = "serie"
	ColInvoice           = "nota_fiscal"
	ColTaxNature         = "natureza"
	ColEmittedAt         = "dt_emis_nf"
	ColShippedAt         = "dt_embarque"
	ColCreditApprovedAt  = "dt_aprov_credito"
	ColRevenue           = "receita"
	ColItem              = "item"
	ColItemDescription   = "desc_item"
	ColWarehouse         = "deposito"
	ColQuantity          = "quantidade"
	ColNetValue          = "vl_net_livro"
	ColShipmentNumber    = "nro_embarque"
	ColBrand             = "marca"
	ColDeliveredAt       = "dt_entrega"
	ColOrderStatus       = "situacao_ped"
)

// Field is one declared column of the extract.
type Field struct {
	Header   string
	Required bool
}

// Column is the normalized identifier for the header.
func (f Field) Column() string {
	return NormalizeColumnName(f.Header)
}

// ExpectedSchema lists the extract headers in export order. Required fields
// are the ones the revenue engine cannot work without; their absence is
// reported but does not fail ingestion.
var ExpectedSchema = []Field{
	{Header: "Cod Estab"},
	{Header: "Razao Social"},
	{Header: "Cidade"},
	{Header: "Estado"},
	{Header: "Canal Venda Cliente"},
	{Header: "Dt Implant Ped"},
	{Header: "Ped Cliente"},
	{Header: "Ped Datasul"},
	{Header: "Tipo Oper", Required: true},
	{Header: "Serie"},
	{Header: "Nota Fiscal"},
	{Header: "Natureza"},
	{Header: "Dt Emis NF", Required: true},
	{Header: "Dt Embarque"},
	{Header: "Dt Aprov. Credito"},
	{Header: "Receita"},
	{Header: "Item"},
	{Header: "Desc Item"},
	{Header: "Deposito"},
	{Header: "Quantidade"},
	{Header: "Vl Net Livro", Required: true},
	{Header: "Nro Embarque"},
	{Header: "Marca", Required: true},
	{Header: "Dt Entrega"},
	{Header: "Situacao Ped"},
}

// NormalizeColumnName lowercases, turns spaces into underscores and drops periods.
func NormalizeColumnName(header string) string {
	name := strings.ToLower(header)
	name = strings.ReplaceAll(name, " ", "_")
	return strings.ReplaceAll(name, ".", "")
}

type SchemaResultKind int

const (
	SchemaNoMatch SchemaResultKind = iota
	SchemaValid
)

func (k SchemaResultKind) String() string {
	if k == SchemaValid {
		return "valid"
	}
	return "no_match"
}

// MatchedColumn ties an expected field to its position in the uploaded header row.
type MatchedColumn struct {
	Header string
	Name   string
	Index  int
}

// SchemaValidation is Valid(Columns) or NoMatch. MissingRequired is only
// meaningful for a valid result.
type SchemaValidation struct {
	Kind            SchemaResultKind
	Columns         []MatchedColumn
	MissingRequired []string
}

// Names returns the normalized names of the matched columns, in schema order.
func (v SchemaValidation) Names() []string {
	names := make([]string, len(v.Columns))
	for i, c := range v.Columns {
		names[i] = c.Name
	}
	return names
}

// ValidateSchema intersects the uploaded headers with ExpectedSchema.
// Headers are compared exactly after trimming; the first duplicate wins.
// Unknown headers are ignored.
func ValidateSchema(headers []string) SchemaValidation {
	positions := make(map[string]int, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if _, seen := positions[h]; !seen {
			positions[h] = i
		}
	}

	var result SchemaValidation
	for _, field := range ExpectedSchema {
		idx, ok := positions[field.Header]
		if !ok {
			if field.Required {
				result.MissingRequired = append(result.MissingRequired, field.Column())
			}
			continue
		}
		result.Columns = append(result.Columns, MatchedColumn{Header: field.Header, Name: field.Column(), Index: idx})
	}

	if len(result.Columns) == 0 {
		return SchemaValidation{Kind: SchemaNoMatch}
	}
	result.Kind = SchemaValid
	return result
}
