package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

func init() {
	Validate = validator.New(validator.WithRequiredStructEnabled())
}

func writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

func readJSON(w http.ResponseWriter, r *http.Request, data any) error {
	maxBytes := 1_048_578 //1mb
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(data)
}

func writeJSONError(w http.ResponseWriter, status int, message string) error {
	type envelope struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}

	return writeJSON(w, status, &envelope{
		Status:  "error",
		Message: message,
	})
}

// jsonResponse wraps successful payloads in the transport envelope.
func (app *application) jsonResponse(w http.ResponseWriter, status int, data any) error {
	type envelope struct {
		Status  string `json:"status"`
		Payload any    `json:"payload"`
	}
	return writeJSON(w, status, &envelope{Status: "success", Payload: data})
}

// cartResponse is the mutation envelope: {status, cart}.
func (app *application) cartResponse(w http.ResponseWriter, status int, cart any) error {
	type envelope struct {
		Status string `json:"status"`
		Cart   any    `json:"cart"`
	}
	return writeJSON(w, status, &envelope{Status: "success", Cart: cart})
}
