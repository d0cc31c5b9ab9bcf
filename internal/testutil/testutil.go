// Package testutil holds shared helpers for HTTP handler tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
)

// NewRequest creates a new HTTP request for testing. A non-nil body is
// JSON-encoded.
func NewRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	var r *http.Request
	if bodyBytes != nil {
		r = httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	return r
}

// RecordResponse is a decoded HTTP response for assertions.
type RecordResponse struct {
	Code   int
	Header http.Header
	Body   map[string]interface{}
}

// RecordHTTPResponse decodes the recorded response body as JSON.
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	bodyBytes, _ := io.ReadAll(result.Body)

	var bodyMap map[string]interface{}
	if len(bodyBytes) > 0 {
		json.NewDecoder(bytes.NewReader(bodyBytes)).Decode(&bodyMap)
	}

	return RecordResponse{
		Code:   result.StatusCode,
		Header: result.Header,
		Body:   bodyMap,
	}
}

// ErrorMessage digs the error message out of a decoded error response body.
func ErrorMessage(body map[string]interface{}) string {
	errBlock, ok := body["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	msg, _ := errBlock["message"].(string)
	return msg
}

// ErrorCode digs the error code out of a decoded error response body.
func ErrorCode(body map[string]interface{}) string {
	errBlock, ok := body["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	code, _ := errBlock["code"].(string)
	return code
}
