package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateETagStable(t *testing.T) {
	a, err := GenerateETag(map[string]int{"b": 2, "a": 1})
	require.NoError(t, err)
	b, err := GenerateETag(map[string]int{"a": 1, "b": 2})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestSendJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	SendJSONError(rec, "boom", http.StatusTeapot)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "boom", body["error"])
}

func TestWriteJSONWithETag(t *testing.T) {
	payload := map[string]string{"k": "v"}

	first := httptest.NewRecorder()
	WriteJSONWithETag(first, httptest.NewRequest(http.MethodGet, "/", nil), payload)
	require.Equal(t, http.StatusOK, first.Code)
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("If-None-Match", `"other", `+etag)
	second := httptest.NewRecorder()
	WriteJSONWithETag(second, req, payload)
	assert.Equal(t, http.StatusNotModified, second.Code)
	assert.Empty(t, second.Body.String())
}
