package handlers

import (
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"rpsarena/internal/service"
)

// BackupHandler lets an admin download a database export
type BackupHandler struct {
	backupService *service.BackupService
}

// NewBackupHandler creates a new backup handler
func NewBackupHandler(backupService *service.BackupService) *BackupHandler {
	return &BackupHandler{backupService: backupService}
}

// ExportDatabase exports the database to JSON for download
func (h *BackupHandler) ExportDatabase(w http.ResponseWriter, r *http.Request) {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("rpsarena_backup_%s.json", timestamp)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	// Export directly to response writer
	if _, err := h.backupService.Export(r.Context(), w); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to export database", "Error exporting database", err)
		return
	}

	if claims := GetAdminFromContext(r.Context()); claims != nil {
		log.WithField("admin", claims.Subject).Info("Database exported by admin")
	}
}
