package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/scrypster/lifegraph/internal/importer"
)

// maxImportBytes caps CSV uploads at 5 MB.
const maxImportBytes = 5 << 20

// ImportCSV handles POST /api/import/csv. Accepts either a multipart form
// with a "file" field or a raw CSV body.
func (h *API) ImportCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)

	var body io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxImportBytes); err != nil {
			respondError(w, http.StatusBadRequest, "invalid multipart form", err)
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			respondError(w, http.StatusBadRequest, "multipart form is missing the file field", err)
			return
		}
		defer file.Close()
		body = file
	}

	result, err := importer.ImportCSV(r.Context(), body, h.store)
	if err != nil {
		respondError(w, http.StatusBadRequest, "CSV import failed", err)
		return
	}

	if result.Created > 0 {
		h.broadcast(NewActivity("people_imported", ""))
	}
	respondJSON(w, http.StatusOK, result)
}
