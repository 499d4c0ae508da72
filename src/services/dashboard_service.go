package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/username/faturamento/backend/src/logger"
	"github.com/username/faturamento/backend/src/models"
	"github.com/username/faturamento/backend/src/processors"
	"golang.org/x/sync/errgroup"
)

type dashboardServiceImpl struct {
	store              *DatasetStore
	cutoffStore        *CutoffStore
	revenueProcessor   *processors.RevenueProcessor
	analyticsProcessor *processors.AnalyticsProcessor
	returnsProcessor   *processors.ReturnsProcessor
	reportCache        *ReportCache
}

func NewDashboardService(
	store *DatasetStore,
	cutoffStore *CutoffStore,
	revenueProcessor *processors.RevenueProcessor,
	analyticsProcessor *processors.AnalyticsProcessor,
	returnsProcessor *processors.ReturnsProcessor,
	reportCache *ReportCache,
) DashboardService {
	return &dashboardServiceImpl{
		store:              store,
		cutoffStore:        cutoffStore,
		revenueProcessor:   revenueProcessor,
		analyticsProcessor: analyticsProcessor,
		returnsProcessor:   returnsProcessor,
		reportCache:        reportCache,
	}
}

// CurrentDataset returns the memoized snapshot. The result is shared and must not be modified.
func (s *dashboardServiceImpl) CurrentDataset(ctx context.Context) (*models.Dataset, error) {
	if cached, found := s.reportCache.Get(ckCurrentDataset); found {
		return cached.(*models.Dataset), nil
	}
	generation := s.reportCache.Generation()
	start := time.Now()
	ds, err := s.store.Read()
	if err != nil {
		return nil, err
	}
	s.reportCache.SetIfCurrent(ckCurrentDataset, ds, generation)
	logger.FromContext(ctx).Info("Dataset loaded from snapshot", "records", len(ds.Records), "duration", time.Since(start))
	return ds, nil
}

func (s *dashboardServiceImpl) DatasetInfo(ctx context.Context) (*models.DatasetInfo, error) {
	ds, err := s.CurrentDataset(ctx)
	if err != nil {
		return nil, err
	}
	updated, err := s.store.ModTime()
	if err != nil {
		return nil, err
	}
	first, last := ds.EmissionBounds()
	invoices, _ := processors.Partition(ds.Records)
	firstInvoice, lastInvoice := models.EmissionBounds(invoices)
	return &models.DatasetInfo{
		Columns:       ds.Columns,
		RecordCount:   len(ds.Records),
		FirstEmission: first,
		LastEmission:  last,
		FirstInvoice:  firstInvoice,
		LastInvoice:   lastInvoice,
		UpdatedAt:     updated.UTC(),
	}, nil
}

// NetRevenue reads the cutoff file on every call, so hand edits to it apply
// without waiting for the cache to expire.
func (s *dashboardServiceImpl) NetRevenue(ctx context.Context, filter models.RevenueFilter) (*models.NetRevenueResult, error) {
	generation := s.reportCache.Generation()
	adjustments, err := s.cutoffStore.Load()
	if err != nil {
		return nil, err
	}
	cacheKey := fmt.Sprintf(ckNetRevenue, revenueSignature(filter)+"|"+adjustmentsSignature(adjustments))
	if cached, found := s.reportCache.Get(cacheKey); found {
		return cached.(*models.NetRevenueResult), nil
	}

	ds, err := s.CurrentDataset(ctx)
	if err != nil {
		return nil, err
	}

	result := s.revenueProcessor.Compute(ds.Records, filter, adjustments)
	if len(result.DroppedReturnBrands) > 0 {
		logger.FromContext(ctx).Info("Returns without invoicing left out of brand view", "brands", result.DroppedReturnBrands)
	}
	s.reportCache.SetIfCurrent(cacheKey, &result, generation)
	return &result, nil
}

// Dashboard assembles the invoice-side sections concurrently over the same period slice.
func (s *dashboardServiceImpl) Dashboard(ctx context.Context, period models.DateRange, employees int) (*models.Dashboard, error) {
	cacheKey := fmt.Sprintf(ckDashboard, fmt.Sprintf("%s|%d", rangeSignature(period), employees))
	if cached, found := s.reportCache.Get(cacheKey); found {
		return cached.(*models.Dashboard), nil
	}
	generation := s.reportCache.Generation()

	invoices, err := s.periodInvoices(ctx, period)
	if err != nil {
		return nil, err
	}

	dash := &models.Dashboard{Range: period}
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		dash.Summary = s.analyticsProcessor.BrandSummary(invoices)
		return nil
	})
	g.Go(func() error {
		dash.Daily = s.analyticsProcessor.DailySeries(invoices)
		dash.DailyByBrand = s.analyticsProcessor.DailyByBrand(invoices, processors.TrackedBrands)
		return nil
	})
	g.Go(func() error {
		var err error
		dash.Productivity, err = s.analyticsProcessor.Productivity(invoices, period, employees)
		return err
	})
	g.Go(func() error {
		dash.TopSKUs = s.analyticsProcessor.TopSKUs(invoices, processors.DefaultTopN)
		dash.TopSKUPerBrand = s.analyticsProcessor.TopSKUPerBrand(invoices)
		dash.Top5PerBrand = s.analyticsProcessor.TopNPerBrand(invoices, processors.TopPerBrand)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.reportCache.SetIfCurrent(cacheKey, dash, generation)
	return dash, nil
}

func (s *dashboardServiceImpl) BrandTopSKUs(ctx context.Context, brand string, period models.DateRange) ([]models.SKURank, error) {
	invoices, err := s.periodInvoices(ctx, period)
	if err != nil {
		return nil, err
	}
	return s.analyticsProcessor.BrandTopSKUs(invoices, brand, processors.DefaultTopN), nil
}

func (s *dashboardServiceImpl) ABCCurve(ctx context.Context, brand string, period models.DateRange, params models.ABCParams) (*models.ABCCurve, error) {
	invoices, err := s.periodInvoices(ctx, period)
	if err != nil {
		return nil, err
	}
	curve, err := s.analyticsProcessor.ABCCurve(invoices, brand, params)
	if err != nil {
		return nil, err
	}
	return &curve, nil
}

func (s *dashboardServiceImpl) Returns(ctx context.Context, filter models.ReturnsFilter) (*models.ReturnsView, error) {
	cacheKey := fmt.Sprintf(ckReturns, fmt.Sprintf("%s|%s|%s", rangeSignature(filter.Range), filter.Revenue, strings.ToUpper(filter.Brand)))
	if cached, found := s.reportCache.Get(cacheKey); found {
		return cached.(*models.ReturnsView), nil
	}
	generation := s.reportCache.Generation()

	ds, err := s.CurrentDataset(ctx)
	if err != nil {
		return nil, err
	}
	_, returns := processors.Partition(ds.Records)
	view := s.returnsProcessor.Build(returns, filter)
	s.reportCache.SetIfCurrent(cacheKey, &view, generation)
	return &view, nil
}

func (s *dashboardServiceImpl) Adjustments(ctx context.Context) (models.AdjustmentMap, error) {
	return s.cutoffStore.Load()
}

// SaveAdjustments persists the cutoff values and drops every memoized result that used them.
func (s *dashboardServiceImpl) SaveAdjustments(ctx context.Context, adjustments models.AdjustmentMap, changedBy string) (models.AdjustmentMap, error) {
	saved, err := s.cutoffStore.Save(ctx, adjustments, changedBy)
	if err != nil {
		return nil, err
	}
	s.reportCache.Flush()
	logger.FromContext(ctx).Info("Cutoff adjustments saved", "brands", len(saved), "changedBy", changedBy)
	return saved, nil
}

func (s *dashboardServiceImpl) periodInvoices(ctx context.Context, period models.DateRange) ([]models.CanonicalRecord, error) {
	ds, err := s.CurrentDataset(ctx)
	if err != nil {
		return nil, err
	}
	invoices, _ := processors.Partition(ds.Records)
	return processors.FilterByEmission(invoices, period), nil
}

func rangeSignature(r models.DateRange) string {
	return r.Start.Format(models.DateFormat) + ".." + r.End.Format(models.DateFormat)
}

func revenueSignature(f models.RevenueFilter) string {
	return rangeSignature(f.Range) + "|" + strings.ToUpper(strings.Join(f.Brands, ",")) + "|" + strings.Join(f.Channels, ",")
}

// adjustmentsSignature renders the map in key order with exact float formatting.
func adjustmentsSignature(adjustments models.AdjustmentMap) string {
	brands := make([]string, 0, len(adjustments))
	for brand := range adjustments {
		brands = append(brands, brand)
	}
	sort.Strings(brands)
	var b strings.Builder
	for _, brand := range brands {
		adj := adjustments[brand]
		b.WriteString(brand)
		b.WriteByte('=')
		b.WriteString(strconv.FormatFloat(adj.Initial, 'g', -1, 64))
		b.WriteByte('/')
		b.WriteString(strconv.FormatFloat(adj.Final, 'g', -1, 64))
		b.WriteByte(';')
	}
	return b.String()
}
