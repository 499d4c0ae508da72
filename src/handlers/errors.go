package handlers

import (
	"errors"
	"net/http"

	"github.com/username/faturamento/backend/src/logger"
	"github.com/username/faturamento/backend/src/processors"
	"github.com/username/faturamento/backend/src/security/validation"
	"github.com/username/faturamento/backend/src/services"
	"github.com/username/faturamento/backend/src/utils"
)

// writeServiceError maps domain errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	ctxLogger := logger.FromContext(r.Context())

	switch {
	case errors.Is(err, processors.ErrSchemaMismatch):
		utils.SendJSONError(w, "The file does not contain any expected column", http.StatusUnprocessableEntity)
	case errors.Is(err, services.ErrEmptyDataset):
		utils.SendJSONError(w, "No dataset loaded. Upload an extract first.", http.StatusNotFound)
	case errors.Is(err, services.ErrParsingFailed),
		errors.Is(err, validation.ErrValidationFailed),
		errors.Is(err, processors.ErrInvalidParameters):
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrPersistenceFailure):
		ctxLogger.Error("Persistence failure", "path", r.URL.Path, "error", err)
		utils.SendJSONError(w, "Failed to save data", http.StatusInternalServerError)
	default:
		ctxLogger.Error("Unexpected error", "path", r.URL.Path, "error", err)
		utils.SendJSONError(w, "Internal server error", http.StatusInternalServerError)
	}
}
