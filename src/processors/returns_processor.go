package processors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/username/faturamento/backend/src/models"
)

// ParseRevenueFlagFilter accepts all/yes/no and their Portuguese forms.
func ParseRevenueFlagFilter(raw string) (models.RevenueFlagFilter, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "all", "ambos", "both":
		return models.RevenueFlagAll, nil
	case "yes", "sim", "true":
		return models.RevenueFlagYes, nil
	case "no", "não", "nao", "false":
		return models.RevenueFlagNo, nil
	}
	return "", fmt.Errorf("%w: unknown revenue filter %q", ErrInvalidParameters, raw)
}

// ReturnsProcessor builds the returns view from return lines produced by Partition.
type ReturnsProcessor struct {
	analytics *AnalyticsProcessor
}

func NewReturnsProcessor(analytics *AnalyticsProcessor) *ReturnsProcessor {
	return &ReturnsProcessor{analytics: analytics}
}

// Build filters returns by period and revenue flag and aggregates them.
// The monthly series covers every return line regardless of the filter.
func (p *ReturnsProcessor) Build(returns []models.CanonicalRecord, filter models.ReturnsFilter) models.ReturnsView {
	if filter.Revenue == "" {
		filter.Revenue = models.RevenueFlagAll
	}
	filtered := filterRevenueFlag(FilterByEmission(returns, filter.Range), filter.Revenue)

	view := models.ReturnsView{
		Range:        filter.Range,
		Revenue:      filter.Revenue,
		TotalLines:   len(filtered),
		ByBrand:      returnsByBrand(filtered),
		ByChannel:    returnsByChannel(filtered),
		Monthly:      monthlyByBrand(returns),
		DailyByBrand: p.analytics.DailyByBrand(filtered, nil),
		Lines:        make([]models.ReturnLine, 0, len(filtered)),
	}

	var total decimal.Decimal
	for _, rec := range filtered {
		total = total.Add(decimal.NewFromFloat(rec.NetValueOrZero()))
		date := ""
		if rec.EmittedAt != nil {
			date = rec.EmittedAt.Format(models.DateFormat)
		}
		view.Lines = append(view.Lines, models.ReturnLine{
			CompanyName: rec.CompanyName,
			Item:        rec.Item,
			Quantity:    rec.QuantityOrZero(),
			Value:       rec.NetValueOrZero(),
			Brand:       rec.Brand,
			Date:        date,
		})
	}
	view.TotalValue = total.InexactFloat64()
	sort.SliceStable(view.Lines, func(i, j int) bool { return view.Lines[i].Date < view.Lines[j].Date })

	if filter.Brand != "" {
		view.TopItems = p.analytics.TopSKUs(FilterBrands(filtered, []string{filter.Brand}), DefaultTopN)
		for i := range view.TopItems {
			view.TopItems[i].Brand = strings.ToUpper(strings.TrimSpace(filter.Brand))
		}
	}
	return view
}

func filterRevenueFlag(records []models.CanonicalRecord, flag models.RevenueFlagFilter) []models.CanonicalRecord {
	if flag == models.RevenueFlagAll {
		return records
	}
	want := flag == models.RevenueFlagYes
	out := make([]models.CanonicalRecord, 0, len(records))
	for _, rec := range records {
		if rec.Revenue == want {
			out = append(out, rec)
		}
	}
	return out
}

func returnsByBrand(records []models.CanonicalRecord) []models.BrandReturns {
	lines := make(map[string]int)
	values := make(map[string]decimal.Decimal)
	var total decimal.Decimal
	for _, rec := range records {
		if rec.Brand == "" {
			continue
		}
		v := decimal.NewFromFloat(rec.NetValueOrZero())
		lines[rec.Brand]++
		values[rec.Brand] = values[rec.Brand].Add(v)
		total = total.Add(v)
	}
	out := make([]models.BrandReturns, 0, len(values))
	for _, brand := range sortedKeys(values) {
		out = append(out, models.BrandReturns{
			Brand: brand,
			Lines: lines[brand],
			Value: values[brand].InexactFloat64(),
			Share: percentOf(values[brand], total),
		})
	}
	return out
}

func returnsByChannel(records []models.CanonicalRecord) []models.ChannelReturns {
	values := make(map[string]decimal.Decimal)
	for _, rec := range records {
		values[rec.SalesChannel] = values[rec.SalesChannel].Add(decimal.NewFromFloat(rec.NetValueOrZero()))
	}
	channels := sortedKeys(values)
	sort.SliceStable(channels, func(i, j int) bool {
		return values[channels[i]].Cmp(values[channels[j]]) > 0
	})
	out := make([]models.ChannelReturns, 0, len(channels))
	for _, ch := range channels {
		out = append(out, models.ChannelReturns{Channel: ch, Value: values[ch].InexactFloat64()})
	}
	return out
}

func monthlyByBrand(records []models.CanonicalRecord) []models.MonthlyBrandValue {
	type key struct{ month, brand string }
	sums := make(map[key]decimal.Decimal)
	for _, rec := range records {
		if rec.EmittedAt == nil || rec.Brand == "" {
			continue
		}
		k := key{rec.EmittedAt.Format("2006-01"), rec.Brand}
		sums[k] = sums[k].Add(decimal.NewFromFloat(rec.NetValueOrZero()))
	}
	keys := make([]key, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].month != keys[j].month {
			return keys[i].month < keys[j].month
		}
		return keys[i].brand < keys[j].brand
	})
	out := make([]models.MonthlyBrandValue, 0, len(keys))
	for _, k := range keys {
		out = append(out, models.MonthlyBrandValue{Month: k.month, Brand: k.brand, Value: sums[k].InexactFloat64()})
	}
	return out
}
