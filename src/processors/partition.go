package processors

import (
	"strings"

	"github.com/username/faturamento/backend/src/models"
)

// InvoiceOperations are the revenue-generating operation types.
var InvoiceOperations = map[string]struct{}{
	"1 - Receita":                 {},
	"20 - Receita Revenda":        {},
	"2 - Receita Export":          {},
	"3 - Receita Rem Vend Futura": {},
	"18 - Venda a ordem":          {},
}

const (
	// ReturnOperation marks sales returns.
	ReturnOperation = "5 - Dev Venda"
	// UntrackedReturnBrand has its returns ignored.
	UntrackedReturnBrand = "YALE"
)

// ExcludedAnalysisBrands never appear in revenue or return analysis.
var ExcludedAnalysisBrands = map[string]struct{}{
	"PORTO FELIZ": {},
	"METALIKA":    {},
	"YALE":        {},
}

// TrackedBrands are the brands shown in per-brand series and productivity.
var TrackedBrands = []string{"PAPAIZ", "LA FONTE", "SILVANA", "VAULT"}

// Partition splits records into invoice and return lines. Both outputs carry
// upper-cased brands with ExcludedAnalysisBrands removed; the input is not modified.
func Partition(records []models.CanonicalRecord) (invoices, returns []models.CanonicalRecord) {
	for _, rec := range records {
		_, isInvoice := InvoiceOperations[rec.OperationType]
		isReturn := rec.OperationType == ReturnOperation && rec.Brand != UntrackedReturnBrand
		if !isInvoice && !isReturn {
			continue
		}
		rec.Brand = strings.ToUpper(rec.Brand)
		if _, excluded := ExcludedAnalysisBrands[rec.Brand]; excluded {
			continue
		}
		if isInvoice {
			invoices = append(invoices, rec)
		} else {
			returns = append(returns, rec)
		}
	}
	return invoices, returns
}

// FilterByEmission keeps records whose emission date is inside the closed range.
func FilterByEmission(records []models.CanonicalRecord, r models.DateRange) []models.CanonicalRecord {
	out := make([]models.CanonicalRecord, 0, len(records))
	for _, rec := range records {
		if r.Contains(rec.EmittedAt) {
			out = append(out, rec)
		}
	}
	return out
}

// FilterBrands keeps records whose brand is in the list; an empty list keeps all.
func FilterBrands(records []models.CanonicalRecord, brands []string) []models.CanonicalRecord {
	if len(brands) == 0 {
		return records
	}
	allowed := toSet(brands, strings.ToUpper)
	out := make([]models.CanonicalRecord, 0, len(records))
	for _, rec := range records {
		if _, ok := allowed[rec.Brand]; ok {
			out = append(out, rec)
		}
	}
	return out
}

// FilterChannels keeps records whose sales channel is in the list; an empty list keeps all.
func FilterChannels(records []models.CanonicalRecord, channels []string) []models.CanonicalRecord {
	if len(channels) == 0 {
		return records
	}
	allowed := toSet(channels, strings.TrimSpace)
	out := make([]models.CanonicalRecord, 0, len(records))
	for _, rec := range records {
		if _, ok := allowed[rec.SalesChannel]; ok {
			out = append(out, rec)
		}
	}
	return out
}

func toSet(values []string, norm func(string) string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[norm(strings.TrimSpace(v))] = struct{}{}
	}
	return set
}
