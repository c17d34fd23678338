package handlers

import (
	"bytes"
	"log"
	"net/http"
	"strings"
	"traffic-signal-sim/internal/adapters/report"
)

// Chart renders one comparison chart of a stored batch.
// Route: GET /charts/{metric}.{svg|png}?batch=ID
func (h *ExperimentHandler) Chart(w http.ResponseWriter, r *http.Request) {
	if !allowOnly(w, r, http.MethodGet) {
		return
	}

	name, ext, _ := strings.Cut(r.PathValue("file"), ".")
	metric, err := report.ParseMetric(name)
	if err != nil {
		writeError(w, r, http.StatusNotFound, "unknown chart")
		return
	}
	format, err := report.ParseFormat(ext)
	if err != nil {
		writeError(w, r, http.StatusNotFound, "unknown chart")
		return
	}

	batchID := strings.TrimSpace(r.URL.Query().Get("batch"))
	if batchID == "" {
		writeError(w, r, http.StatusBadRequest, "batch is required")
		return
	}

	results, err := h.Repo.ListBatch(r.Context(), batchID)
	if err != nil {
		log.Printf("chart list batch failed: batch=%s err=%v", batchID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	if len(results) == 0 {
		writeError(w, r, http.StatusNotFound, "batch not found")
		return
	}

	var buf bytes.Buffer
	if err := report.RenderChart(&buf, metric, format, results); err != nil {
		log.Printf("render chart failed: batch=%s err=%v", batchID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("write chart failed: %v", err)
	}
}
