package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestOKFlattensEmbeddedEnvelope(t *testing.T) {
	payload := struct {
		Envelope
		Count int `json:"count"`
	}{Envelope: Success("done"), Count: 3}

	rec := httptest.NewRecorder()
	OK(rec, payload)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "done", body["message"])
	assert.Equal(t, float64(3), body["count"])
	assert.NotContains(t, body, "error")
}

func TestErrorHelpers(t *testing.T) {
	cases := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
		detail string
	}{
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "no file") }, http.StatusBadRequest, ""},
		{"unauthorized", func(w http.ResponseWriter) { Unauthorized(w, "no token") }, http.StatusUnauthorized, ""},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "missing") }, http.StatusNotFound, ""},
		{"provider", func(w http.ResponseWriter) { ProviderError(w, "upload failed", "quota exceeded") }, http.StatusInternalServerError, "quota exceeded"},
		{"internal", InternalError, http.StatusInternalServerError, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tc.write(rec)

			assert.Equal(t, tc.status, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["message"])
			if tc.detail == "" {
				assert.NotContains(t, body, "error")
			} else {
				assert.Equal(t, tc.detail, body["error"])
			}
		})
	}
}
