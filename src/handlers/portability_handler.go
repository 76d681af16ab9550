// backend/src/handlers/portability_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/username/tallytrace/backend/src/config"
	"github.com/username/tallytrace/backend/src/logger"
	"github.com/username/tallytrace/backend/src/portability"
	"github.com/username/tallytrace/backend/src/security/validation"
	"github.com/username/tallytrace/backend/src/services"
	"github.com/username/tallytrace/backend/src/utils"
)

type PortabilityHandler struct {
	portabilityService services.PortabilityService
}

func NewPortabilityHandler(service services.PortabilityService) *PortabilityHandler {
	return &PortabilityHandler{portabilityService: service}
}

// HandleExportJSON downloads the scoped entity's whole book as one JSON
// document.
func (h *PortabilityHandler) HandleExportJSON(w http.ResponseWriter, r *http.Request) {
	entityID := EntityIDFromRequest(r)
	bundle, err := h.portabilityService.ExportJSON(entityID)
	if errors.Is(err, services.ErrNotFound) {
		utils.SendJSONError(w, fmt.Sprintf("entity %d not found", entityID), http.StatusNotFound)
		return
	}
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error exporting entity %d: %v", entityID, err), http.StatusInternalServerError)
		return
	}

	filename := portability.JSONFilename(entityID, time.Now())
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := json.NewEncoder(w).Encode(bundle); err != nil {
		logger.L.Error("Error encoding JSON export", "entityID", entityID, "error", err)
	}
}

// HandleExportCSV downloads one portable table as CSV. The table query
// parameter is required.
func (h *PortabilityHandler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	entityID := EntityIDFromRequest(r)
	table := r.URL.Query().Get("table")
	if table == "" {
		utils.SendJSONError(w, fmt.Sprintf("query parameter \"table\" is required, one of: %v", portability.PortableTables), http.StatusBadRequest)
		return
	}

	data, err := h.portabilityService.ExportTableCSV(entityID, table)
	if errors.Is(err, services.ErrUnknownTable) {
		utils.SendJSONError(w, fmt.Sprintf("unknown table %q, one of: %v", table, portability.PortableTables), http.StatusBadRequest)
		return
	}
	if errors.Is(err, services.ErrNotFound) {
		utils.SendJSONError(w, fmt.Sprintf("entity %d not found", entityID), http.StatusNotFound)
		return
	}
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error exporting table %q for entity %d: %v", table, entityID, err), http.StatusInternalServerError)
		return
	}

	filename := portability.CSVFilename(entityID, table, time.Now())
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(data); err != nil {
		logger.L.Error("Error writing CSV export", "entityID", entityID, "table", table, "error", err)
	}
}

// HandleExportZIP downloads every portable table as a ZIP of CSVs.
func (h *PortabilityHandler) HandleExportZIP(w http.ResponseWriter, r *http.Request) {
	entityID := EntityIDFromRequest(r)
	data, err := h.portabilityService.ExportZIP(entityID)
	if errors.Is(err, services.ErrNotFound) {
		utils.SendJSONError(w, fmt.Sprintf("entity %d not found", entityID), http.StatusNotFound)
		return
	}
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error exporting entity %d: %v", entityID, err), http.StatusInternalServerError)
		return
	}

	filename := portability.ZIPFilename(entityID, time.Now())
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(data); err != nil {
		logger.L.Error("Error writing ZIP export", "entityID", entityID, "error", err)
	}
}

// HandleImportTransactions accepts a transactions CSV in the export format
// and loads it into the scoped entity, skipping rows already imported.
func (h *PortabilityHandler) HandleImportTransactions(w http.ResponseWriter, r *http.Request) {
	entityID := EntityIDFromRequest(r)

	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "entityID", entityID, "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		logger.L.Warn("Failed to retrieve file from request", "entityID", entityID, "error", err)
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		logger.L.Warn("Uploaded file header reports size too large", "entityID", entityID, "fileSize", fileHeader.Size, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB (header check)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientContentType(clientContentType); err != nil {
		logger.L.Warn("Invalid client-declared file type", "entityID", entityID, "contentType", clientContentType, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	detectedContentType, err := validation.ValidateFileContentByMagicBytes(file)
	if err != nil {
		logger.L.Warn("Server-side file content validation failed", "entityID", entityID, "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	logger.L.Info("Import file content validated", "entityID", entityID, "filename", fileHeader.Filename, "clientType", clientContentType, "detectedType", detectedContentType)

	summary, err := h.portabilityService.ImportTransactionsCSV(file, entityID)
	if err != nil {
		if errors.Is(err, services.ErrImportFailed) {
			logger.L.Warn("Import rejected", "entityID", entityID, "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, fmt.Sprintf("Error parsing CSV file: %v", err), http.StatusBadRequest)
			return
		}
		logger.L.Error("Internal error importing transactions", "entityID", entityID, "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, "An internal error occurred while importing the file. Please try again later.", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
