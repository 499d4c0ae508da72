package models

import "time"

// DateRange is a closed interval of calendar days.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls on a day in [Start, End]. Nil is never contained.
func (r DateRange) Contains(t *time.Time) bool {
	if t == nil {
		return false
	}
	day := truncateDay(*t)
	return !day.Before(truncateDay(r.Start)) && !day.After(truncateDay(r.End))
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// RevenueFilter carries the request-scoped selections for a revenue computation.
// Empty Brands or Channels select everything.
type RevenueFilter struct {
	Range    DateRange
	Brands   []string
	Channels []string
}

type BrandRevenue struct {
	Brand         string  `json:"brand"`
	GrossInvoiced float64 `json:"gross_invoiced"`
	GrossReturned float64 `json:"gross_returned"`
	CutoffInitial float64 `json:"cutoff_initial"`
	CutoffFinal   float64 `json:"cutoff_final"`
	Net           float64 `json:"net"`
}

type ChannelRevenue struct {
	Channel       string  `json:"channel"`
	Brand         string  `json:"brand"`
	GrossInvoiced float64 `json:"gross_invoiced"`
	GrossReturned float64 `json:"gross_returned"`
	Net           float64 `json:"net"`
}

type RevenueTotals struct {
	GrossInvoiced float64 `json:"gross_invoiced"`
	GrossReturned float64 `json:"gross_returned"`
	Net           float64 `json:"net"`
	ReturnsPct    float64 `json:"returns_pct"`
}

// NetRevenueResult is computed per request and never persisted.
// Brand-mode nets include cutoff, channel-mode nets do not, so the two need not reconcile.
type NetRevenueResult struct {
	Range               DateRange        `json:"range"`
	ByBrand             []BrandRevenue   `json:"by_brand"`
	ByChannel           []ChannelRevenue `json:"by_channel"`
	Totals              RevenueTotals    `json:"totals"`
	DroppedReturnBrands []string         `json:"dropped_return_brands,omitempty"`
}
