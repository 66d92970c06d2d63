package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

func readJSON(body io.Reader, dest any) error {
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// writeRejection maps a typed rejection onto its HTTP status; anything
// else is an internal failure.
func writeRejection(w http.ResponseWriter, err error) {
	var rejection *Rejection
	if errors.As(err, &rejection) {
		writeJSON(w, rejection.Status(), map[string]string{
			"error": rejection.Message,
			"kind":  string(rejection.Kind),
		})
		return
	}
	writeError(w, http.StatusInternalServerError, "internal error")
}
