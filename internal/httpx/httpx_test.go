package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError_DefaultMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, NotFound, "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_found", body.Code)
	assert.Equal(t, "Ressource introuvable.", body.Message)
	assert.Empty(t, body.Error)
}

func TestWriteErrorDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteErrorDetail(rec, UploadFailed, "", "too big")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "upload_error", body.Code)
	assert.Equal(t, "too big", body.Error)
}

func TestKinds_StatusAndCode(t *testing.T) {
	tests := []struct {
		kind   Kind
		status int
		code   string
	}{
		{Validation, 400, "validation_error"},
		{InvalidID, 400, "invalid_id"},
		{Unauthorized, 401, "unauthorized"},
		{InvalidToken, 400, "invalid_token"},
		{InvalidCredentials, 400, "invalid_credentials"},
		{NotFound, 404, "not_found"},
		{Conflict, 400, "conflict"},
		{UploadFailed, 500, "upload_error"},
		{RateLimited, 429, "rate_limited"},
		{Internal, 500, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.kind.Status())
			assert.Equal(t, tt.code, tt.kind.Code())
		})
	}
}
