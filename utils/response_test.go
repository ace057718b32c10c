package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iap-backoffice/models"
)

func TestSendErrorResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	SendErrorResponse(rec, http.StatusNotFound, "receipt not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp models.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "receipt not found", resp.Message)
}

func TestSendSuccessResponseDefaultsStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	SendSuccessResponse(rec, models.APIResponse{Data: map[string]int{"count": 1}})

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp["status"])
	assert.Equal(t, float64(1), resp["data"].(map[string]interface{})["count"])
}
