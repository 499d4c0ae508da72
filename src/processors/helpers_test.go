package processors

import (
	"time"

	"github.com/username/faturamento/backend/src/models"
)

func f64(v float64) *float64 { return &v }

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func period(start, end *time.Time) models.DateRange {
	return models.DateRange{Start: *start, End: *end}
}

func invoice(brand, channel string, value float64, emitted *time.Time) models.CanonicalRecord {
	return models.CanonicalRecord{
		OperationType: "1 - Receita",
		Brand:         brand,
		SalesChannel:  channel,
		NetValue:      f64(value),
		EmittedAt:     emitted,
	}
}

func returned(brand, channel string, value float64, emitted *time.Time) models.CanonicalRecord {
	return models.CanonicalRecord{
		OperationType: ReturnOperation,
		Brand:         brand,
		SalesChannel:  channel,
		NetValue:      f64(value),
		EmittedAt:     emitted,
	}
}

func line(brand, invoiceNo, item, desc string, qty float64) models.CanonicalRecord {
	return models.CanonicalRecord{
		OperationType:   "1 - Receita",
		Brand:           brand,
		Invoice:         invoiceNo,
		Item:            item,
		ItemDescription: desc,
		Quantity:        f64(qty),
		NetValue:        f64(qty * 10),
		EmittedAt:       day(2024, time.March, 4),
	}
}
