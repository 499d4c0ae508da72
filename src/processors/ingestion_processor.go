package processors

import (
	"fmt"
	"time"

	"github.com/username/faturamento/backend/src/models"
)

// DateColumns are normalized when present in the upload.
var DateColumns = []string{ColImplantedAt, ColShippedAt, ColCreditApprovedAt, ColEmittedAt, ColDeliveredAt}

// IngestionResult is the canonical dataset produced from one raw table.
type IngestionResult struct {
	Dataset    models.Dataset
	Validation SchemaValidation
	Stats      models.ParseStats
}

// IngestionProcessor runs the normalization pipeline over a raw extract.
type IngestionProcessor struct{}

func NewIngestionProcessor() *IngestionProcessor { return &IngestionProcessor{} }

var stringSetters = map[string]func(*models.CanonicalRecord, string){
	ColEstablishmentCode: func(r *models.CanonicalRecord, v string) { r.EstablishmentCode = v },
	ColCompanyName:       func(r *models.CanonicalRecord, v string) { r.CompanyName = v },
	ColCity:              func(r *models.CanonicalRecord, v string) { r.City = v },
	ColState:             func(r *models.CanonicalRecord, v string) { r.State = v },
	ColSalesChannel:      func(r *models.CanonicalRecord, v string) { r.SalesChannel = v },
	ColCustomerOrder:     func(r *models.CanonicalRecord, v string) { r.CustomerOrder = v },
	ColERPOrder:          func(r *models.CanonicalRecord, v string) { r.ERPOrder = v },
	ColOperationType:     func(r *models.CanonicalRecord, v string) { r.OperationType = v },
	ColSeries:            func(r *models.CanonicalRecord, v string) { r.Series = v },
	ColInvoice:           func(r *models.CanonicalRecord, v string) { r.Invoice = v },
	ColTaxNature:         func(r *models.CanonicalRecord, v string) { r.TaxNature = v },
	ColItem:              func(r *models.CanonicalRecord, v string) { r.Item = v },
	ColItemDescription:   func(r *models.CanonicalRecord, v string) { r.ItemDescription = v },
	ColWarehouse:         func(r *models.CanonicalRecord, v string) { r.Warehouse = v },
	ColShipmentNumber:    func(r *models.CanonicalRecord, v string) { r.ShipmentNumber = v },
	ColBrand:             func(r *models.CanonicalRecord, v string) { r.Brand = v },
	ColOrderStatus:       func(r *models.CanonicalRecord, v string) { r.OrderStatus = v },
}

var dateSetters = map[string]func(*models.CanonicalRecord, *time.Time){
	ColImplantedAt:      func(r *models.CanonicalRecord, t *time.Time) { r.ImplantedAt = t },
	ColShippedAt:        func(r *models.CanonicalRecord, t *time.Time) { r.ShippedAt = t },
	ColCreditApprovedAt: func(r *models.CanonicalRecord, t *time.Time) { r.CreditApprovedAt = t },
	ColEmittedAt:        func(r *models.CanonicalRecord, t *time.Time) { r.EmittedAt = t },
	ColDeliveredAt:      func(r *models.CanonicalRecord, t *time.Time) { r.DeliveredAt = t },
}

// Process validates the header row, projects the table onto the known
// columns and normalizes every cell. It only fails when no expected column
// is present; bad cells become missing values and are counted in Stats.
func (p *IngestionProcessor) Process(table *models.RawTable) (*IngestionResult, error) {
	if table == nil {
		return nil, fmt.Errorf("%w: empty table", ErrSchemaMismatch)
	}
	validation := ValidateSchema(table.Headers)
	if validation.Kind == SchemaNoMatch {
		return nil, ErrSchemaMismatch
	}

	n := len(table.Rows)
	columns := make(map[string][]string, len(validation.Columns))
	for _, mc := range validation.Columns {
		values := make([]string, n)
		for row := 0; row < n; row++ {
			values[row] = table.Cell(row, mc.Index)
		}
		columns[mc.Name] = values
	}
	present := validation.Names()
	stats := models.ParseStats{}

	dates := make(map[string][]*time.Time, len(DateColumns))
	for _, col := range DateColumns {
		values, ok := columns[col]
		if !ok {
			continue
		}
		res := NormalizeDateColumn(values)
		dates[col] = res.Values
		stats.UnparsedDates += res.Unparsed
	}

	if dates[ColCreditApprovedAt] != nil && dates[ColImplantedAt] != nil {
		FillCascade(dates[ColCreditApprovedAt], dates[ColImplantedAt])
	}
	if dates[ColDeliveredAt] != nil || dates[ColCreditApprovedAt] != nil || dates[ColImplantedAt] != nil {
		if dates[ColDeliveredAt] == nil {
			dates[ColDeliveredAt] = make([]*time.Time, n)
			present = append(present, ColDeliveredAt)
		}
		FillCascade(dates[ColDeliveredAt], dates[ColCreditApprovedAt], dates[ColImplantedAt])
	}
	if dates[ColEmittedAt] != nil && dates[ColShippedAt] != nil {
		FillCascade(dates[ColEmittedAt], dates[ColShippedAt])
	}

	records := make([]models.CanonicalRecord, 0, n)
	for row := 0; row < n; row++ {
		var rec models.CanonicalRecord
		for col, values := range columns {
			if set, ok := stringSetters[col]; ok {
				set(&rec, FillSentinel(col, values[row]))
			}
		}
		for col, values := range dates {
			dateSetters[col](&rec, values[row])
		}
		if values, ok := columns[ColRevenue]; ok {
			rec.Revenue = ParseRevenueFlag(values[row])
		}
		if values, ok := columns[ColNetValue]; ok {
			rec.NetValue = ParseAbsAmount(values[row])
			if rec.NetValue == nil && values[row] != "" {
				stats.UnparsedAmounts++
			}
		}
		if values, ok := columns[ColQuantity]; ok {
			rec.Quantity = ParseAbsAmount(values[row])
			if rec.Quantity == nil && values[row] != "" {
				stats.UnparsedAmounts++
			}
		}

		if IsDeniedBrand(rec.Brand) {
			stats.DroppedRows++
			continue
		}
		rec.Brand = CanonicalBrand(rec.Brand)
		records = append(records, rec)
	}

	return &IngestionResult{
		Dataset:    models.Dataset{Columns: present, Records: records},
		Validation: validation,
		Stats:      stats,
	}, nil
}
