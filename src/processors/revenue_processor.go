package processors

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/username/faturamento/backend/src/models"
)

var hundred = decimal.NewFromInt(100)

// RevenueProcessor computes net revenue per brand and per (channel, brand).
// It only reads the adjustments it is given.
type RevenueProcessor struct{}

func NewRevenueProcessor() *RevenueProcessor { return &RevenueProcessor{} }

type channelBrand struct {
	channel string
	brand   string
}

// Compute partitions the records, restricts both sides to the emission range
// and reconciles them:
//
//	brand:   net = invoiced + cutoff initial - returned - cutoff final
//	channel: net = invoiced - returned
//
// Returns for brands that were not invoiced in the range are left out of the
// brand view and listed in DroppedReturnBrands. Brand and channel selections
// in the filter narrow the channel view only.
func (p *RevenueProcessor) Compute(records []models.CanonicalRecord, filter models.RevenueFilter, adjustments models.AdjustmentMap) models.NetRevenueResult {
	invoices, returns := Partition(records)
	invoices = FilterByEmission(invoices, filter.Range)
	returns = FilterByEmission(returns, filter.Range)

	result := models.NetRevenueResult{Range: filter.Range}

	invoicedByBrand := sumByBrand(invoices)
	returnedByBrand := sumByBrand(returns)

	brands := make([]string, 0, len(invoicedByBrand))
	for brand := range invoicedByBrand {
		brands = append(brands, brand)
	}
	sort.Strings(brands)

	var totalInvoiced, totalReturned, totalNet decimal.Decimal
	for _, brand := range brands {
		invoiced := invoicedByBrand[brand]
		returned := returnedByBrand[brand]
		adj := LookupAdjustment(adjustments, brand)
		initial := decimal.NewFromFloat(adj.Initial)
		final := decimal.NewFromFloat(adj.Final)
		net := invoiced.Add(initial).Sub(returned).Sub(final)

		result.ByBrand = append(result.ByBrand, models.BrandRevenue{
			Brand:         brand,
			GrossInvoiced: invoiced.InexactFloat64(),
			GrossReturned: returned.InexactFloat64(),
			CutoffInitial: adj.Initial,
			CutoffFinal:   adj.Final,
			Net:           net.InexactFloat64(),
		})
		totalInvoiced = totalInvoiced.Add(invoiced)
		totalReturned = totalReturned.Add(returned)
		totalNet = totalNet.Add(net)
	}

	for brand := range returnedByBrand {
		if _, ok := invoicedByBrand[brand]; !ok {
			result.DroppedReturnBrands = append(result.DroppedReturnBrands, brand)
		}
	}
	sort.Strings(result.DroppedReturnBrands)

	result.Totals = models.RevenueTotals{
		GrossInvoiced: totalInvoiced.InexactFloat64(),
		GrossReturned: totalReturned.InexactFloat64(),
		Net:           totalNet.InexactFloat64(),
		ReturnsPct:    percentOf(totalReturned, totalInvoiced),
	}

	result.ByChannel = computeByChannel(
		FilterChannels(FilterBrands(invoices, filter.Brands), filter.Channels),
		FilterChannels(FilterBrands(returns, filter.Brands), filter.Channels),
	)
	return result
}

// LookupAdjustment returns the cutoff for a brand after applying BrandRenames;
// brands without an entry get zeros.
func LookupAdjustment(adjustments models.AdjustmentMap, brand string) models.BrandAdjustment {
	if adj, ok := adjustments[CanonicalBrand(brand)]; ok {
		return adj
	}
	return models.BrandAdjustment{}
}

func computeByChannel(invoices, returns []models.CanonicalRecord) []models.ChannelRevenue {
	invoiced := make(map[channelBrand]decimal.Decimal)
	returned := make(map[channelBrand]decimal.Decimal)
	for _, rec := range invoices {
		if rec.Brand == "" {
			continue
		}
		key := channelBrand{rec.SalesChannel, rec.Brand}
		invoiced[key] = invoiced[key].Add(decimal.NewFromFloat(rec.NetValueOrZero()))
	}
	for _, rec := range returns {
		if rec.Brand == "" {
			continue
		}
		key := channelBrand{rec.SalesChannel, rec.Brand}
		returned[key] = returned[key].Add(decimal.NewFromFloat(rec.NetValueOrZero()))
	}

	keys := make([]channelBrand, 0, len(invoiced))
	for k := range invoiced {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].channel != keys[j].channel {
			return keys[i].channel < keys[j].channel
		}
		return keys[i].brand < keys[j].brand
	})

	out := make([]models.ChannelRevenue, 0, len(keys))
	for _, k := range keys {
		inv := invoiced[k]
		ret := returned[k]
		out = append(out, models.ChannelRevenue{
			Channel:       k.channel,
			Brand:         k.brand,
			GrossInvoiced: inv.InexactFloat64(),
			GrossReturned: ret.InexactFloat64(),
			Net:           inv.Sub(ret).InexactFloat64(),
		})
	}
	return out
}

// sumByBrand totals net values per brand; records without a brand are not grouped.
func sumByBrand(records []models.CanonicalRecord) map[string]decimal.Decimal {
	sums := make(map[string]decimal.Decimal)
	for _, rec := range records {
		if rec.Brand == "" {
			continue
		}
		sums[rec.Brand] = sums[rec.Brand].Add(decimal.NewFromFloat(rec.NetValueOrZero()))
	}
	return sums
}

// percentOf returns part/whole*100 rounded to two places, or 0 for an empty whole.
func percentOf(part, whole decimal.Decimal) float64 {
	if whole.IsZero() {
		return 0
	}
	return part.Mul(hundred).Div(whole).Round(2).InexactFloat64()
}
