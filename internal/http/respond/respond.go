package respond

import (
	"encoding/json"
	"log"
	"net/http"
)

// Envelope is the body written for failures and bare acknowledgements.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// JSON writes payload as the response body with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("respond: encode payload failed: %v", err)
	}
}

// Error writes a {success:false, message} envelope.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Success: false, Message: message})
}

// OK writes a {success:true, message} envelope.
func OK(w http.ResponseWriter, message string) {
	JSON(w, http.StatusOK, Envelope{Success: true, Message: message})
}
