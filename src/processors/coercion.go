package processors

import (
	"math"
	"strconv"
	"strings"
)

// CategoricalSentinels fill empty cells of these columns when the column is present.
var CategoricalSentinels = map[string]string{
	ColSalesChannel:   "Unknown",
	ColCustomerOrder:  "No Order",
	ColWarehouse:      "Not Informed",
	ColShipmentNumber: "No Shipment",
}

// DeniedBrands are dropped at ingestion.
var DeniedBrands = map[string]struct{}{
	"?":          {},
	"METALIKA":   {},
	"MTK CD SP":  {},
	"PAPAIZ SOR": {},
	"YALE":       {},
}

// BrandRenames merges denormalized brand names into their canonical form.
var BrandRenames = map[string]string{
	"SILVANA CDSP": "SILVANA",
}

// IsDeniedBrand reports whether rows of the brand are discarded at ingestion.
// The comparison is exact, as exported by the ERP.
func IsDeniedBrand(brand string) bool {
	_, denied := DeniedBrands[brand]
	return denied
}

// CanonicalBrand applies BrandRenames.
func CanonicalBrand(brand string) string {
	if renamed, ok := BrandRenames[brand]; ok {
		return renamed
	}
	return brand
}

// FillSentinel returns the sentinel for an empty value of a categorical column.
func FillSentinel(column, value string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	if sentinel, ok := CategoricalSentinels[column]; ok {
		return sentinel
	}
	return value
}

// ParseRevenueFlag maps the revenue column onto a bool. Only explicit
// affirmative values are true; negatives, unknown text and empty cells are false.
// It is idempotent over its own output ("true"/"false").
func ParseRevenueFlag(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "sim", "yes", "true", "1":
		return true
	default:
		return false
	}
}

// ParseAbsAmount parses a monetary or quantity cell and returns its absolute
// value. Currency symbols, spaces and signs are dropped. When both ',' and '.'
// appear the rightmost is the decimal separator; a single ',' is decimal;
// repeated separators of one kind are thousands. Empty or unparseable cells
// return nil.
func ParseAbsAmount(raw string) *float64 {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return nil
	}

	lastDot := strings.LastIndexByte(cleaned, '.')
	lastComma := strings.LastIndexByte(cleaned, ',')
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(cleaned, ",") > 1 {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		} else {
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		}
	case strings.Count(cleaned, ".") > 1:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	v = math.Abs(v)
	return &v
}
