package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/baladhub/balad-backend/pkg/apierr"
)

// Envelope is the uniform response shape. Optional fields are omitted when
// unset; callers rely on their absence, so the shape is not normalized across
// operations (getOne has no message, deleteOne has no data).
type Envelope struct {
	Success         bool   `json:"success"`
	Message         string `json:"message,omitempty"`
	CompleteProfile *bool  `json:"completeProfile,omitempty"`
	Pagination      any    `json:"pagination,omitempty"`
	Data            any    `json:"data,omitempty"`
	Token           string `json:"token,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteEnvelope writes an Envelope with the given status code
func WriteEnvelope(w http.ResponseWriter, status int, env Envelope) error {
	return WriteJSON(w, status, env)
}

// WriteSuccess writes a 200 envelope carrying only data
func WriteSuccess(w http.ResponseWriter, data interface{}) error {
	return WriteEnvelope(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// WriteAPIError renders any error as a failure envelope. Typed API errors keep
// their status and message; everything else becomes an opaque 500.
func WriteAPIError(w http.ResponseWriter, err error) {
	apiErr := apierr.From(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	json.NewEncoder(w).Encode(Envelope{Success: false, Message: apiErr.Message})
}

// WriteBadRequest writes a 400 failure envelope
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteAPIError(w, apierr.Validation(message))
}

// WriteNotFound writes a 404 failure envelope
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteAPIError(w, apierr.NotFound(message))
}

