package processors

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/faturamento/backend/src/models"
)

// ErrInvalidParameters is returned for out-of-range analysis parameters.
var ErrInvalidParameters = errors.New("invalid analysis parameters")

const (
	DefaultEmployees = 5
	DefaultTopN      = 10
	TopPerBrand      = 5

	DefaultABCLimitA = 0.80
	DefaultABCLimitB = 0.95
	DefaultABCTopN   = 20
	// TotalLabel names the overall row in per-brand tables.
	TotalLabel = "Total"
)

// brandTopExclusions hides descriptions from a brand's own top list.
var brandTopExclusions = map[string]string{
	"PAPAIZ": "CADEADO CR",
}

// AnalyticsProcessor derives the invoice-side dashboard figures. Inputs are
// invoice records already restricted to the period.
type AnalyticsProcessor struct{}

func NewAnalyticsProcessor() *AnalyticsProcessor { return &AnalyticsProcessor{} }

// BrandSummary counts distinct invoices and SKUs and sums pieces per brand.
func (p *AnalyticsProcessor) BrandSummary(invoices []models.CanonicalRecord) []models.BrandSummary {
	type acc struct {
		invoices map[string]struct{}
		skus     map[string]struct{}
		pieces   decimal.Decimal
	}
	byBrand := make(map[string]*acc)
	for _, rec := range invoices {
		if rec.Brand == "" {
			continue
		}
		a, ok := byBrand[rec.Brand]
		if !ok {
			a = &acc{invoices: map[string]struct{}{}, skus: map[string]struct{}{}}
			byBrand[rec.Brand] = a
		}
		if rec.Invoice != "" {
			a.invoices[rec.Invoice] = struct{}{}
		}
		if rec.Item != "" {
			a.skus[rec.Item] = struct{}{}
		}
		a.pieces = a.pieces.Add(decimal.NewFromFloat(rec.QuantityOrZero()))
	}

	out := make([]models.BrandSummary, 0, len(byBrand))
	for _, brand := range sortedKeys(byBrand) {
		a := byBrand[brand]
		out = append(out, models.BrandSummary{
			Brand:    brand,
			Invoices: len(a.invoices),
			SKUs:     len(a.skus),
			Pieces:   a.pieces.InexactFloat64(),
		})
	}
	return out
}

// DailySeries sums invoiced value per emission day.
func (p *AnalyticsProcessor) DailySeries(invoices []models.CanonicalRecord) []models.DailyValue {
	sums := make(map[string]decimal.Decimal)
	for _, rec := range invoices {
		if rec.EmittedAt == nil {
			continue
		}
		day := rec.EmittedAt.Format(models.DateFormat)
		sums[day] = sums[day].Add(decimal.NewFromFloat(rec.NetValueOrZero()))
	}
	out := make([]models.DailyValue, 0, len(sums))
	for _, day := range sortedKeys(sums) {
		out = append(out, models.DailyValue{Date: day, Value: sums[day].InexactFloat64()})
	}
	return out
}

// DailyByBrand sums invoiced value per (day, brand) for the given brands.
func (p *AnalyticsProcessor) DailyByBrand(records []models.CanonicalRecord, brands []string) []models.BrandDailyValue {
	type key struct{ day, brand string }
	sums := make(map[key]decimal.Decimal)
	for _, rec := range FilterBrands(records, brands) {
		if rec.EmittedAt == nil || rec.Brand == "" {
			continue
		}
		k := key{rec.EmittedAt.Format(models.DateFormat), rec.Brand}
		sums[k] = sums[k].Add(decimal.NewFromFloat(rec.NetValueOrZero()))
	}
	keys := make([]key, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].day != keys[j].day {
			return keys[i].day < keys[j].day
		}
		return keys[i].brand < keys[j].brand
	})
	out := make([]models.BrandDailyValue, 0, len(keys))
	for _, k := range keys {
		out = append(out, models.BrandDailyValue{Date: k.day, Brand: k.brand, Value: sums[k].InexactFloat64()})
	}
	return out
}

// Productivity computes per-employee ratios. Line, piece and SKU ratios use
// the tracked brands only; shipment rates use every invoice in the period.
// All ratios are rounded up.
func (p *AnalyticsProcessor) Productivity(invoices []models.CanonicalRecord, period models.DateRange, employees int) (models.Productivity, error) {
	if employees < 1 {
		return models.Productivity{}, fmt.Errorf("%w: employees must be at least 1, got %d", ErrInvalidParameters, employees)
	}
	n := float64(employees)
	tracked := FilterBrands(invoices, TrackedBrands)

	result := models.Productivity{
		Employees:          employees,
		BusinessDays:       BusinessDays(period.Start, period.End),
		AvgSKUsPerShipment: ceilOrZero(avgDistinctItemsPerInvoice(tracked)),
		SKUsPerEmployee:    math.Ceil(float64(len(distinctItems(tracked))) / n),
		PiecesPerEmployee:  math.Ceil(sumQuantity(tracked) / n),
	}

	byBrand := groupByBrand(tracked)
	for _, brand := range sortedKeys(byBrand) {
		recs := byBrand[brand]
		lines := 0
		for _, rec := range recs {
			if rec.Item != "" {
				lines++
			}
		}
		result.ByBrand = append(result.ByBrand, models.BrandProductivity{
			Brand:               brand,
			SKULinesPerEmployee: math.Ceil(float64(lines) / n),
			PiecesPerEmployee:   math.Ceil(sumQuantity(recs) / n),
			AvgSKUsPerShipment:  ceilOrZero(avgDistinctItemsPerInvoice(recs)),
			SKUsPerEmployee:     math.Ceil(float64(len(distinctItems(recs))) / n),
		})
	}

	days := float64(result.BusinessDays)
	all := groupByBrand(invoices)
	for _, brand := range sortedKeys(all) {
		shipments := len(distinctInvoices(all[brand]))
		result.Shipments = append(result.Shipments, models.ShipmentRate{
			Brand:       brand,
			Shipments:   shipments,
			PerEmployee: math.Ceil(float64(shipments) / days / n),
		})
	}
	total := len(distinctInvoices(invoices))
	result.Shipments = append(result.Shipments, models.ShipmentRate{
		Brand:       TotalLabel,
		Shipments:   total,
		PerEmployee: math.Ceil(float64(total) / days / n),
	})
	return result, nil
}

// BusinessDays counts weekdays in [start, end), never less than 1.
func BusinessDays(start, end time.Time) int {
	s := dateOnly(start)
	e := dateOnly(end)
	days := 0
	for d := s; d.Before(e); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days++
		}
	}
	if days == 0 {
		return 1
	}
	return days
}

// TopSKUs ranks items by total quantity across all brands.
func (p *AnalyticsProcessor) TopSKUs(invoices []models.CanonicalRecord, limit int) []models.SKURank {
	ranked := rankItems(invoices, "")
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// TopSKUPerBrand returns the highest-quantity item of every brand.
func (p *AnalyticsProcessor) TopSKUPerBrand(invoices []models.CanonicalRecord) []models.SKURank {
	return p.TopNPerBrand(invoices, 1)
}

// TopNPerBrand returns up to limit items per brand, brands in name order.
func (p *AnalyticsProcessor) TopNPerBrand(invoices []models.CanonicalRecord, limit int) []models.SKURank {
	byBrand := groupByBrand(invoices)
	var out []models.SKURank
	for _, brand := range sortedKeys(byBrand) {
		ranked := rankItems(byBrand[brand], brand)
		if len(ranked) > limit {
			ranked = ranked[:limit]
		}
		out = append(out, ranked...)
	}
	return out
}

// BrandTopSKUs ranks one brand's items. Some brands hide specific product
// families from this list (see brandTopExclusions).
func (p *AnalyticsProcessor) BrandTopSKUs(invoices []models.CanonicalRecord, brand string, limit int) []models.SKURank {
	brand = strings.ToUpper(strings.TrimSpace(brand))
	recs := FilterBrands(invoices, []string{brand})
	if excluded, ok := brandTopExclusions[brand]; ok {
		kept := make([]models.CanonicalRecord, 0, len(recs))
		for _, rec := range recs {
			if !strings.Contains(rec.ItemDescription, excluded) {
				kept = append(kept, rec)
			}
		}
		recs = kept
	}
	ranked := rankItems(recs, brand)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// NormalizeABCParams fills zero values with defaults and validates the ranges:
// LimitA in [0.50, 0.90], LimitA < LimitB <= 1, TopN in [10, 100].
func NormalizeABCParams(params models.ABCParams) (models.ABCParams, error) {
	if params.LimitA == 0 {
		params.LimitA = DefaultABCLimitA
	}
	if params.LimitB == 0 {
		params.LimitB = DefaultABCLimitB
	}
	if params.TopN == 0 {
		params.TopN = DefaultABCTopN
	}
	if params.LimitA < 0.5 || params.LimitA > 0.9 {
		return params, fmt.Errorf("%w: limit A must be between 0.50 and 0.90, got %.2f", ErrInvalidParameters, params.LimitA)
	}
	if params.LimitB <= params.LimitA || params.LimitB > 1 {
		return params, fmt.Errorf("%w: limit B must be above limit A and at most 1, got %.2f", ErrInvalidParameters, params.LimitB)
	}
	if params.TopN < 10 || params.TopN > 100 {
		return params, fmt.Errorf("%w: top N must be between 10 and 100, got %d", ErrInvalidParameters, params.TopN)
	}
	return params, nil
}

// ABCCurve classifies a brand's items by cumulative quantity share.
func (p *AnalyticsProcessor) ABCCurve(invoices []models.CanonicalRecord, brand string, params models.ABCParams) (models.ABCCurve, error) {
	params, err := NormalizeABCParams(params)
	if err != nil {
		return models.ABCCurve{}, err
	}
	brand = strings.ToUpper(strings.TrimSpace(brand))
	curve := models.ABCCurve{Brand: brand, Params: params}

	type key struct{ item, desc string }
	sums := make(map[key]decimal.Decimal)
	for _, rec := range FilterBrands(invoices, []string{brand}) {
		if rec.Item == "" {
			continue
		}
		k := key{rec.Item, rec.ItemDescription}
		sums[k] = sums[k].Add(decimal.NewFromFloat(rec.QuantityOrZero()))
	}

	keys := make([]key, 0, len(sums))
	var total decimal.Decimal
	for k, v := range sums {
		keys = append(keys, k)
		total = total.Add(v)
	}
	sort.Slice(keys, func(i, j int) bool {
		if c := sums[keys[i]].Cmp(sums[keys[j]]); c != 0 {
			return c > 0
		}
		if keys[i].item != keys[j].item {
			return keys[i].item < keys[j].item
		}
		return keys[i].desc < keys[j].desc
	})

	var cumulative decimal.Decimal
	for i, k := range keys {
		if i >= params.TopN {
			break
		}
		qty := sums[k]
		cumulative = cumulative.Add(qty)
		share, cum := 0.0, 0.0
		if !total.IsZero() {
			share = qty.Div(total).InexactFloat64()
			cum = cumulative.Div(total).InexactFloat64()
		}
		curve.Entries = append(curve.Entries, models.ABCEntry{
			Item:            k.item,
			Description:     k.desc,
			Quantity:        qty.InexactFloat64(),
			Share:           share,
			CumulativeShare: cum,
			Class:           abcClass(cum, params),
		})
	}
	return curve, nil
}

func abcClass(cumulative float64, params models.ABCParams) string {
	switch {
	case cumulative <= params.LimitA:
		return "A"
	case cumulative <= params.LimitB:
		return "B"
	default:
		return "C"
	}
}

// rankItems sums quantity per item, keeping the first description seen, and
// sorts by quantity then item code.
func rankItems(records []models.CanonicalRecord, brand string) []models.SKURank {
	sums := make(map[string]decimal.Decimal)
	descs := make(map[string]string)
	for _, rec := range records {
		if rec.Item == "" {
			continue
		}
		sums[rec.Item] = sums[rec.Item].Add(decimal.NewFromFloat(rec.QuantityOrZero()))
		if _, ok := descs[rec.Item]; !ok || descs[rec.Item] == "" {
			descs[rec.Item] = rec.ItemDescription
		}
	}
	items := make([]string, 0, len(sums))
	for item := range sums {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if c := sums[items[i]].Cmp(sums[items[j]]); c != 0 {
			return c > 0
		}
		return items[i] < items[j]
	})
	out := make([]models.SKURank, 0, len(items))
	for _, item := range items {
		out = append(out, models.SKURank{
			Brand:       brand,
			Item:        item,
			Description: descs[item],
			Quantity:    sums[item].InexactFloat64(),
		})
	}
	return out
}

func groupByBrand(records []models.CanonicalRecord) map[string][]models.CanonicalRecord {
	out := make(map[string][]models.CanonicalRecord)
	for _, rec := range records {
		if rec.Brand == "" {
			continue
		}
		out[rec.Brand] = append(out[rec.Brand], rec)
	}
	return out
}

func distinctItems(records []models.CanonicalRecord) map[string]struct{} {
	set := make(map[string]struct{})
	for _, rec := range records {
		if rec.Item != "" {
			set[rec.Item] = struct{}{}
		}
	}
	return set
}

func distinctInvoices(records []models.CanonicalRecord) map[string]struct{} {
	set := make(map[string]struct{})
	for _, rec := range records {
		if rec.Invoice != "" {
			set[rec.Invoice] = struct{}{}
		}
	}
	return set
}

// avgDistinctItemsPerInvoice is the mean number of distinct items per invoice; NaN when there are none.
func avgDistinctItemsPerInvoice(records []models.CanonicalRecord) float64 {
	perInvoice := make(map[string]map[string]struct{})
	for _, rec := range records {
		if rec.Invoice == "" {
			continue
		}
		items, ok := perInvoice[rec.Invoice]
		if !ok {
			items = make(map[string]struct{})
			perInvoice[rec.Invoice] = items
		}
		if rec.Item != "" {
			items[rec.Item] = struct{}{}
		}
	}
	if len(perInvoice) == 0 {
		return math.NaN()
	}
	total := 0
	for _, items := range perInvoice {
		total += len(items)
	}
	return float64(total) / float64(len(perInvoice))
}

func sumQuantity(records []models.CanonicalRecord) float64 {
	var sum decimal.Decimal
	for _, rec := range records {
		sum = sum.Add(decimal.NewFromFloat(rec.QuantityOrZero()))
	}
	return sum.InexactFloat64()
}

func ceilOrZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Ceil(v)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
