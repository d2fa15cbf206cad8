package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/placementcell/drivetrack/internal/apperror"
	"github.com/placementcell/drivetrack/internal/repository"
	"github.com/placementcell/drivetrack/internal/service"
)

// DriveHandler exposes the drive CRUD endpoints. All of them sit behind the
// auth gate.
type DriveHandler struct {
	drives *service.DriveService
	logger *slog.Logger
}

// NewDriveHandler creates a DriveHandler.
func NewDriveHandler(drives *service.DriveService, logger *slog.Logger) *DriveHandler {
	return &DriveHandler{drives: drives, logger: logger}
}

// HandleCreate stores a new drive.
//
// HTTP: POST /api/drives → 201 with the stored document.
func (h *DriveHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.DriveInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid JSON body",
		})
		return
	}

	drive, err := h.drives.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, drive)
}

// HandleList returns drives matching the optional query parameters.
//
// HTTP: GET /api/drives?companyName=&hrDetails=&coodName=&phoneNumber=&
//
//	status=&dateCreated=&dateUpdated=&totalParticipated=&totalPlaced=
func (h *DriveHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter, err := parseDriveFilter(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}

	drives, err := h.drives.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, drives)
}

// HandleGetByID returns a single drive.
//
// HTTP: GET /api/drives/{id} → 200, or 404 "Drive not found".
func (h *DriveHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	drive, err := h.drives.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, drive)
}

// HandleUpdate applies a partial update and returns the merged document.
//
// HTTP: PUT /api/drives/{id} → 200, 400 if the merged document is invalid,
// 404 if the id is unknown.
func (h *DriveHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch service.DrivePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid JSON body",
		})
		return
	}

	drive, err := h.drives.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, drive)
}

// HandleDelete removes a drive.
//
// HTTP: DELETE /api/drives/{id} → 200 with an acknowledgement message.
func (h *DriveHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.drives.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Drive deleted successfully",
	})
}

// parseDriveFilter builds the typed filter from the loosely-typed query
// string. Absent parameters stay absent; numeric parameters that fail to
// parse are a validation error rather than being silently dropped.
func parseDriveFilter(q url.Values) (repository.DriveFilter, error) {
	filter := repository.DriveFilter{
		CompanyName: q.Get("companyName"),
		HRDetail:    q.Get("hrDetails"),
		CoodName:    q.Get("coodName"),
		PhoneNumber: q.Get("phoneNumber"),
		DateCreated: q.Get("dateCreated"),
		DateUpdated: q.Get("dateUpdated"),
	}

	for _, p := range []struct {
		name string
		dst  **int
	}{
		{"status", &filter.Status},
		{"totalParticipated", &filter.TotalParticipated},
		{"totalPlaced", &filter.TotalPlaced},
	} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return repository.DriveFilter{}, apperror.ValidationFailed(p.name,
				fmt.Sprintf("%s must be a number", p.name))
		}
		*p.dst = &n
	}

	return filter, nil
}
