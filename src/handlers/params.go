package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/username/faturamento/backend/src/models"
	"github.com/username/faturamento/backend/src/security/validation"
	"github.com/username/faturamento/backend/src/services"
)

// resolvePeriod reads start/end. When both are absent the period spans the
// emission dates of the dataset's invoice lines.
func resolvePeriod(ctx context.Context, r *http.Request, svc services.DashboardService) (models.DateRange, error) {
	q := r.URL.Query()
	start, end := q.Get("start"), q.Get("end")

	if start == "" && end == "" {
		info, err := svc.DatasetInfo(ctx)
		if err != nil {
			return models.DateRange{}, err
		}
		if info.FirstInvoice == nil || info.LastInvoice == nil {
			return models.DateRange{}, fmt.Errorf("%w: dataset has no dated invoices, start and end are required", validation.ErrValidationFailed)
		}
		return models.DateRange{Start: *info.FirstInvoice, End: *info.LastInvoice}, nil
	}

	from, to, err := validation.ValidateDateRange(start, end)
	if err != nil {
		return models.DateRange{}, err
	}
	return models.DateRange{Start: from, End: to}, nil
}

// queryList collects repeated and comma-separated values of a parameter.
func queryList(r *http.Request, key string) []string {
	var out []string
	for _, raw := range r.URL.Query()[key] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}
