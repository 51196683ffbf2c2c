package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Dosada05/club-system/middleware"
	"github.com/Dosada05/club-system/models"
	"github.com/Dosada05/club-system/services"
)

type BackupHandler struct {
	backupService services.BackupService
}

func NewBackupHandler(bs services.BackupService) *BackupHandler {
	return &BackupHandler{
		backupService: bs,
	}
}

func (h *BackupHandler) CreateBackup(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		user = "system"
	}

	backup, err := h.backupService.CreateBackup(r.Context(), user, models.BackupManual)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"backup": backup}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BackupHandler) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	backupID, err := getIDFromURL(r, "backupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.backupService.RestoreBackup(r.Context(), backupID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"restored": backupID}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BackupHandler) GetBackupHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.backupService.GetBackupHistory(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"backups": history}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BackupHandler) ExportCollection(w http.ResponseWriter, r *http.Request) {
	collection, err := getIDFromURL(r, "collection")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	raw, err := h.backupService.ExportCollection(r.Context(), collection)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename="+collection+".json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

func (h *BackupHandler) ImportCollection(w http.ResponseWriter, r *http.Request) {
	collection, err := getIDFromURL(r, "collection")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var payload json.RawMessage
	if err := readJSON(w, r, &payload); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.backupService.ImportCollection(r.Context(), collection, payload); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"imported": collection}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BackupHandler) GetSyncSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.backupService.GetSyncSettings(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"settings": settings}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BackupHandler) UpdateSyncSettings(w http.ResponseWriter, r *http.Request) {
	var settings models.SyncSettings
	if err := readJSON(w, r, &settings); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.backupService.UpdateSyncSettings(r.Context(), settings); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"settings": settings}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
