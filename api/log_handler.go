package api

import (
	"net/http"

	"github.com/logmux/logmux-core/schema"
	"github.com/logmux/logmux-core/service"
)

// LogHandler wires the logging service endpoints.
type LogHandler struct {
	svc *service.Service
}

// handle serves POST /logs (ingest) and POST /logs/query. Returns false when
// the request is not a log route.
func (h LogHandler) handle(w http.ResponseWriter, r *http.Request) bool {
	switch r.URL.Path {
	case "/logs":
		if r.Method != http.MethodPost {
			return false
		}
		var entry schema.LogEntry
		if err := decodeJSON(r, &entry); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"code": "bad_request", "message": err.Error()})
			return true
		}
		id, err := h.svc.Log(r.Context(), &entry)
		if err != nil {
			writeServiceError(w, err)
			return true
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": id})
		return true

	case "/logs/query":
		if r.Method != http.MethodPost {
			return false
		}
		var params service.QueryParams
		if err := decodeJSON(r, &params); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"code": "bad_request", "message": err.Error()})
			return true
		}
		result, err := h.svc.Query(r.Context(), params)
		if err != nil {
			writeServiceError(w, err)
			return true
		}
		writeJSON(w, http.StatusOK, result)
		return true
	}
	return false
}
