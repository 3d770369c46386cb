package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Body is the envelope every endpoint returns so clients can always read
// success and a human message.
type Body struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
}

// JSON writes the envelope with the given status code.
func JSON(w http.ResponseWriter, status int, body Body) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Error sending response", "error", err)
	}
}

// OK writes a successful response.
func OK(w http.ResponseWriter, data interface{}, message string) {
	JSON(w, http.StatusOK, Body{Success: true, Data: data, Message: message})
}

// Rejected writes a structured refusal. The transport still answers 200 so
// clients render the reason instead of a generic failure page.
func Rejected(w http.ResponseWriter, message string) {
	JSON(w, http.StatusOK, Body{Success: false, Message: message})
}

// Error writes a failure with the given status code.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Body{Success: false, Message: message})
}
