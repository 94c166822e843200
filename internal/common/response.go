package common

import (
	"encoding/json"
	"net/http"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

// Envelope is the success body shape: {data, message}.
type Envelope struct {
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorResponse{Message: message})
}

// RespondWithData writes payload inside the standard envelope.
func RespondWithData(w http.ResponseWriter, code int, data interface{}, message string) {
	RespondWithJSON(w, code, Envelope{Data: data, Message: message})
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// RespondWithErr writes err with the status HTTPStatusFromError picks for
// it. Server errors are reported without their cause.
func RespondWithErr(w http.ResponseWriter, err error) {
	status := HTTPStatusFromError(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = "Internal server error"
	}
	RespondWithError(w, status, message)
}
