package respond

import (
	"encoding/json"
	"net/http"

	"github.com/wb-go/wbf/zlog"
)

type response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, body response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to encode response")
	}
}

// OK writes a 200 response.
func OK(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, response{Success: true, Data: data})
}

// Accepted writes a 202 response; admission is acceptance, not delivery.
func Accepted(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusAccepted, response{Success: true, Data: data})
}

// Fail writes an error response.
func Fail(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, response{Success: false, Error: err.Error()})
}
