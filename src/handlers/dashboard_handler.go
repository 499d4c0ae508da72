package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/username/faturamento/backend/src/logger"
	"github.com/username/faturamento/backend/src/models"
	"github.com/username/faturamento/backend/src/processors"
	"github.com/username/faturamento/backend/src/security/validation"
	"github.com/username/faturamento/backend/src/services"
	"github.com/username/faturamento/backend/src/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type DashboardHandler struct {
	dashboardService services.DashboardService
	defaultEmployees int
}

func NewDashboardHandler(service services.DashboardService, defaultEmployees int) *DashboardHandler {
	if defaultEmployees < 1 {
		defaultEmployees = processors.DefaultEmployees
	}
	return &DashboardHandler{dashboardService: service, defaultEmployees: defaultEmployees}
}

func (h *DashboardHandler) HandleDatasetInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.dashboardService.DatasetInfo(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if info.RecordCount == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	utils.WriteJSON(w, http.StatusOK, info)
}

func (h *DashboardHandler) revenueFilter(r *http.Request) (models.RevenueFilter, error) {
	period, err := resolvePeriod(r.Context(), r, h.dashboardService)
	if err != nil {
		return models.RevenueFilter{}, err
	}
	return models.RevenueFilter{
		Range:    period,
		Brands:   queryList(r, "brand"),
		Channels: queryList(r, "channel"),
	}, nil
}

func (h *DashboardHandler) HandleNetRevenue(w http.ResponseWriter, r *http.Request) {
	filter, err := h.revenueFilter(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	result, err := h.dashboardService.NetRevenue(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSONWithETag(w, r, result)
}

func (h *DashboardHandler) HandleGetCutoff(w http.ResponseWriter, r *http.Request) {
	adjustments, err := h.dashboardService.Adjustments(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, adjustments)
}

func (h *DashboardHandler) HandlePutCutoff(w http.ResponseWriter, r *http.Request) {
	var adjustments models.AdjustmentMap
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64*1024)).Decode(&adjustments); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	operator, _ := GetOperatorFromContext(r.Context())

	saved, err := h.dashboardService.SaveAdjustments(r.Context(), adjustments, operator)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, saved)
}

func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	period, err := resolvePeriod(r.Context(), r, h.dashboardService)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	employees := h.defaultEmployees
	if raw := r.URL.Query().Get("employees"); raw != "" {
		if employees, err = validation.ValidateIntString(raw, "employees", false, 1, 10000); err != nil {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	dash, err := h.dashboardService.Dashboard(r.Context(), period, employees)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSONWithETag(w, r, dash)
}

func (h *DashboardHandler) HandleBrandTopSKUs(w http.ResponseWriter, r *http.Request) {
	brand := chi.URLParam(r, "brand")
	if err := validation.ValidateBrand(brand); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	period, err := resolvePeriod(r.Context(), r, h.dashboardService)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	top, err := h.dashboardService.BrandTopSKUs(r.Context(), brand, period)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if top == nil {
		top = []models.SKURank{}
	}
	utils.WriteJSON(w, http.StatusOK, top)
}

func (h *DashboardHandler) HandleABCCurve(w http.ResponseWriter, r *http.Request) {
	brand := chi.URLParam(r, "brand")
	if err := validation.ValidateBrand(brand); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	period, err := resolvePeriod(r.Context(), r, h.dashboardService)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	q := r.URL.Query()
	var params models.ABCParams
	if params.LimitA, err = validation.ValidateFloatString(q.Get("limit_a"), "limit_a", false, 0, 1); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if params.LimitB, err = validation.ValidateFloatString(q.Get("limit_b"), "limit_b", false, 0, 1); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if params.TopN, err = validation.ValidateIntString(q.Get("top_n"), "top_n", false, 0, 1000); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	curve, err := h.dashboardService.ABCCurve(r.Context(), brand, period, params)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, curve)
}

func (h *DashboardHandler) HandleReturns(w http.ResponseWriter, r *http.Request) {
	period, err := resolvePeriod(r.Context(), r, h.dashboardService)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	flag, err := processors.ParseRevenueFlagFilter(r.URL.Query().Get("revenue"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	brand := r.URL.Query().Get("brand")
	if brand != "" {
		if err := validation.ValidateBrand(brand); err != nil {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	view, err := h.dashboardService.Returns(r.Context(), models.ReturnsFilter{Range: period, Revenue: flag, Brand: brand})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSONWithETag(w, r, view)
}

func (h *DashboardHandler) HandleExportRevenue(w http.ResponseWriter, r *http.Request) {
	filter, err := h.revenueFilter(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	// Buffered so a failure can still be reported as JSON.
	var buf bytes.Buffer
	if err := h.dashboardService.ExportRevenue(r.Context(), filter, &buf); err != nil {
		writeServiceError(w, r, err)
		return
	}

	filename := fmt.Sprintf("faturamento_%s_%s.xlsx",
		filter.Range.Start.Format(models.DateFormat), filter.Range.End.Format(models.DateFormat))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := buf.WriteTo(w); err != nil {
		logger.FromContext(r.Context()).Error("Error writing export response", "error", err)
	}
}
