package handler

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/placementcell/drivetrack/internal/apperror"
)

// LegacyDriveHandler serves the legacy spreadsheet import: drives that
// predate this service live in a published Google Sheet, exposed as CSV.
// The handler fetches the sheet and returns its rows as JSON objects keyed
// by the header row. Read-only glue; nothing is written to the store.
type LegacyDriveHandler struct {
	sheetURL string
	client   *http.Client
	logger   *slog.Logger
}

// NewLegacyDriveHandler creates a LegacyDriveHandler for the given
// published-CSV URL.
func NewLegacyDriveHandler(sheetURL string, logger *slog.Logger) *LegacyDriveHandler {
	return &LegacyDriveHandler{
		sheetURL: sheetURL,
		client:   &http.Client{Timeout: 15 * time.Second},
		logger:   logger,
	}
}

// HandleList fetches and parses the sheet.
//
// HTTP: GET /api/legacy/drives → 200 with an array of row objects.
func (h *LegacyDriveHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	rows, err := h.fetch(r)
	if err != nil {
		h.logger.Error("legacy drive import failed", slog.String("error", err.Error()))
		writeError(w, apperror.Internal("Error fetching drives", err))
		return
	}

	writeJSON(w, http.StatusOK, rows)
}

func (h *LegacyDriveHandler) fetch(r *http.Request) ([]map[string]string, error) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, h.sheetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building sheet request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching sheet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching sheet: unexpected status %d", resp.StatusCode)
	}

	return parseCSVRows(resp.Body)
}

// parseCSVRows reads a CSV stream whose first record is the header and maps
// each following record to a header-keyed object. Short rows leave their
// trailing columns absent.
func parseCSVRows(body io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(body)
	reader.FieldsPerRecord = -1 // sheets pad rows unevenly

	header, err := reader.Read()
	if err == io.EOF {
		return []map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading sheet header: %w", err)
	}

	rows := []map[string]string{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading sheet row: %w", err)
		}

		row := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}
