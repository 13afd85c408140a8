package api

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

// writeViolations reports field-scoped validation failures. 422 keeps these
// apart from malformed-body 400s: the request parsed fine, the content did not.
func writeViolations(w http.ResponseWriter, violations map[string]string) {
	writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
		Error:      "validation_failed",
		Violations: violations,
	})
}
