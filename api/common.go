package api

import (
	"encoding/json"
	"net/http"

	"github.com/logmux/logmux-core/muxerr"
)

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err muxerr.MuxError) {
	writeJSON(w, status, map[string]string{"code": err.Code, "message": err.Message})
}

// writeServiceError maps typed error codes to HTTP statuses. Anything without
// a MuxError in its chain is reported as a generic connector failure.
func writeServiceError(w http.ResponseWriter, err error) {
	if me := muxerr.As(err); me != nil {
		status := http.StatusBadGateway
		switch me.Code {
		case muxerr.CodeValidation, muxerr.CodeBadCursor:
			status = http.StatusBadRequest
		case muxerr.CodeNotFound:
			status = http.StatusNotFound
		case muxerr.CodeNotImplemented:
			status = http.StatusNotImplemented
		}
		writeError(w, status, *me)
		return
	}
	writeError(w, http.StatusBadGateway, muxerr.New(muxerr.CodeConnector, err.Error(), nil))
}
