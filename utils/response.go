package utils

import (
	"encoding/json"
	"net/http"

	"iap-backoffice/models"
)

func SendErrorResponse(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.APIResponse{
		Status:  "error",
		Message: message,
	})
}

func SendSuccessResponse(w http.ResponseWriter, response models.APIResponse) {
	if response.Status == "" {
		response.Status = "success"
	}
	writeJSON(w, http.StatusOK, response)
}

// SendJSON writes v as-is, without the status envelope.
func SendJSON(w http.ResponseWriter, status int, v interface{}) {
	writeJSON(w, status, v)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
