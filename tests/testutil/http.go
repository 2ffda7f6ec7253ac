package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Envelope mirrors the JSON wrapper every API response uses
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// APIClient sends JSON requests to an in-process handler
type APIClient struct {
	t       *testing.T
	handler http.Handler
	Token   string
}

// NewAPIClient wraps handler, usually a *gin.Engine
func NewAPIClient(t *testing.T, handler http.Handler) *APIClient {
	return &APIClient{t: t, handler: handler}
}

// Do sends method path with body encoded as JSON and returns the recorder
func (c *APIClient) Do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err, "marshal request body")
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	return rec
}

// DecodeEnvelope parses the response wrapper
func DecodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()

	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "decode response: %s", rec.Body.String())
	return env
}

// RequireData asserts status and a successful envelope, then decodes data into T
func RequireData[T any](t *testing.T, rec *httptest.ResponseRecorder, status int) T {
	t.Helper()

	require.Equal(t, status, rec.Code, rec.Body.String())
	env := DecodeEnvelope(t, rec)
	require.True(t, env.Success, rec.Body.String())

	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out), "decode data")
	return out
}

// AssertErrorCode asserts status and the error code carried by the envelope
func AssertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()

	assert.Equal(t, status, rec.Code, rec.Body.String())
	env := DecodeEnvelope(t, rec)
	assert.False(t, env.Success)
	if assert.NotNil(t, env.Error) {
		assert.Equal(t, code, env.Error.Code)
	}
}
