package models

type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// TrackResponse is returned when a tracking job is queued for a receipt.
type TrackResponse struct {
	ReceiptUUID string `json:"receipt_uuid"`
	JobID       string `json:"job_id"`
}
