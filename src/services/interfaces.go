package services

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/username/faturamento/backend/src/models"
)

var (
	ErrParsingFailed      = errors.New("extract parsing failed")
	ErrPersistenceFailure = errors.New("persistence failed")
	ErrEmptyDataset       = errors.New("no dataset loaded")
)

const (
	ckCurrentDataset       = "dataset_current"
	ckNetRevenue           = "res_net_revenue_%s"
	ckDashboard            = "res_dashboard_%s"
	ckReturns              = "res_returns_%s"
	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

// UploadService ingests extracts and keeps their history.
type UploadService interface {
	// ProcessUpload parses, normalizes and persists one extract, replacing the current dataset.
	ProcessUpload(ctx context.Context, fileReader io.Reader, filename string, filesize int64) (*models.IngestionSummary, error)
	ListUploads(ctx context.Context, limit int) ([]models.IngestionSummary, error)
}

// DashboardService answers the read side over the current dataset and the cutoff store.
type DashboardService interface {
	CurrentDataset(ctx context.Context) (*models.Dataset, error)
	DatasetInfo(ctx context.Context) (*models.DatasetInfo, error)
	NetRevenue(ctx context.Context, filter models.RevenueFilter) (*models.NetRevenueResult, error)
	Dashboard(ctx context.Context, period models.DateRange, employees int) (*models.Dashboard, error)
	BrandTopSKUs(ctx context.Context, brand string, period models.DateRange) ([]models.SKURank, error)
	ABCCurve(ctx context.Context, brand string, period models.DateRange, params models.ABCParams) (*models.ABCCurve, error)
	Returns(ctx context.Context, filter models.ReturnsFilter) (*models.ReturnsView, error)
	Adjustments(ctx context.Context) (models.AdjustmentMap, error)
	SaveAdjustments(ctx context.Context, adjustments models.AdjustmentMap, changedBy string) (models.AdjustmentMap, error)
	ExportRevenue(ctx context.Context, filter models.RevenueFilter, w io.Writer) error
}
