// Package respond writes the {status, message} response envelope every
// endpoint of the API uses.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Envelope carries the extra payload fields of a response.
type Envelope map[string]interface{}

// Success writes a Success envelope with the given message and payload fields.
func Success(w http.ResponseWriter, code int, message string, extra Envelope) {
	writeJSON(w, code, "Success", message, extra)
}

// Error writes an Error envelope with the given message.
func Error(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, "Error", message, nil)
}

func writeJSON(w http.ResponseWriter, code int, status, message string, extra Envelope) {
	body := Envelope{
		"status":  status,
		"message": message,
	}
	for k, v := range extra {
		body[k] = v
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response body")
	}
}
