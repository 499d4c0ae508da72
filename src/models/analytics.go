package models

type BrandSummary struct {
	Brand    string  `json:"brand"`
	Invoices int     `json:"invoices"`
	SKUs     int     `json:"skus"`
	Pieces   float64 `json:"pieces"`
}

type DailyValue struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type BrandDailyValue struct {
	Date  string  `json:"date"`
	Brand string  `json:"brand"`
	Value float64 `json:"value"`
}

type BrandProductivity struct {
	Brand               string  `json:"brand"`
	SKULinesPerEmployee float64 `json:"sku_lines_per_employee"`
	PiecesPerEmployee   float64 `json:"pieces_per_employee"`
	AvgSKUsPerShipment  float64 `json:"avg_skus_per_shipment"`
	SKUsPerEmployee     float64 `json:"skus_per_employee"`
}

// ShipmentRate is invoices per business day per employee. Brand "Total" is the overall row.
type ShipmentRate struct {
	Brand       string  `json:"brand"`
	Shipments   int     `json:"shipments"`
	PerEmployee float64 `json:"per_employee"`
}

type Productivity struct {
	Employees          int                 `json:"employees"`
	BusinessDays       int                 `json:"business_days"`
	AvgSKUsPerShipment float64             `json:"avg_skus_per_shipment"`
	SKUsPerEmployee    float64             `json:"skus_per_employee"`
	PiecesPerEmployee  float64             `json:"pieces_per_employee"`
	ByBrand            []BrandProductivity `json:"by_brand"`
	Shipments          []ShipmentRate      `json:"shipments"`
}

type SKURank struct {
	Brand       string  `json:"brand,omitempty"`
	Item        string  `json:"item"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
}

// ABCParams bounds the cumulative-share classes and the number of rows returned.
type ABCParams struct {
	LimitA float64 `json:"limit_a"`
	LimitB float64 `json:"limit_b"`
	TopN   int     `json:"top_n"`
}

type ABCEntry struct {
	Item            string  `json:"item"`
	Description     string  `json:"description"`
	Quantity        float64 `json:"quantity"`
	Share           float64 `json:"share"`
	CumulativeShare float64 `json:"cumulative_share"`
	Class           string  `json:"class"`
}

type ABCCurve struct {
	Brand   string     `json:"brand"`
	Params  ABCParams  `json:"params"`
	Entries []ABCEntry `json:"entries"`
}

// Dashboard groups the invoice-side analytics for one period.
type Dashboard struct {
	Range          DateRange         `json:"range"`
	Summary        []BrandSummary    `json:"summary"`
	Daily          []DailyValue      `json:"daily"`
	DailyByBrand   []BrandDailyValue `json:"daily_by_brand"`
	Productivity   Productivity      `json:"productivity"`
	TopSKUs        []SKURank         `json:"top_skus"`
	TopSKUPerBrand []SKURank         `json:"top_sku_per_brand"`
	Top5PerBrand   []SKURank         `json:"top5_per_brand"`
}

// RevenueFlagFilter selects return lines by their revenue flag.
type RevenueFlagFilter string

const (
	RevenueFlagAll RevenueFlagFilter = "all"
	RevenueFlagYes RevenueFlagFilter = "yes"
	RevenueFlagNo  RevenueFlagFilter = "no"
)

type ReturnsFilter struct {
	Range   DateRange
	Revenue RevenueFlagFilter
	Brand   string
}

type BrandReturns struct {
	Brand string  `json:"brand"`
	Lines int     `json:"lines"`
	Value float64 `json:"value"`
	Share float64 `json:"share"`
}

type ChannelReturns struct {
	Channel string  `json:"channel"`
	Value   float64 `json:"value"`
}

type MonthlyBrandValue struct {
	Month string  `json:"month"`
	Brand string  `json:"brand"`
	Value float64 `json:"value"`
}

type ReturnLine struct {
	CompanyName string  `json:"company_name"`
	Item        string  `json:"item"`
	Quantity    float64 `json:"quantity"`
	Value       float64 `json:"value"`
	Brand       string  `json:"brand"`
	Date        string  `json:"date"`
}

type ReturnsView struct {
	Range        DateRange           `json:"range"`
	Revenue      RevenueFlagFilter   `json:"revenue"`
	TotalValue   float64             `json:"total_value"`
	TotalLines   int                 `json:"total_lines"`
	ByBrand      []BrandReturns      `json:"by_brand"`
	ByChannel    []ChannelReturns    `json:"by_channel"`
	Monthly      []MonthlyBrandValue `json:"monthly"`
	DailyByBrand []BrandDailyValue   `json:"daily_by_brand"`
	TopItems     []SKURank           `json:"top_items,omitempty"`
	Lines        []ReturnLine        `json:"lines"`
}
