package mocks

import (
	"bytes"
	"io"
	"net/http"
	"sync"
)

// CapturedRequest is a request seen by MockHTTPClient with its body already read
type CapturedRequest struct {
	Method string
	URL    string
	Path   string
	Header http.Header
	Body   []byte
}

// MockHTTPClient is a mock implementation of ports.HTTPClient for testing
type MockHTTPClient struct {
	mu     sync.Mutex
	DoFunc func(req *http.Request) (*http.Response, error)
	Calls  []CapturedRequest
}

// NewMockHTTPClient creates a new mock HTTP client
func NewMockHTTPClient(doFunc func(req *http.Request) (*http.Response, error)) *MockHTTPClient {
	return &MockHTTPClient{DoFunc: doFunc}
}

// Do captures the request and delegates to DoFunc
func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		req.Body.Close()
		req.Body = io.NopCloser(bytes.NewReader(body))
	}

	m.mu.Lock()
	m.Calls = append(m.Calls, CapturedRequest{
		Method: req.Method,
		URL:    req.URL.String(),
		Path:   req.URL.EscapedPath(),
		Header: req.Header.Clone(),
		Body:   body,
	})
	doFunc := m.DoFunc
	m.mu.Unlock()

	if doFunc != nil {
		return doFunc(req)
	}
	return XMLResponse(http.StatusOK, ""), nil
}

// CallCount returns the number of requests seen so far
func (m *MockHTTPClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the most recent request
func (m *MockHTTPClient) LastCall() CapturedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return CapturedRequest{}
	}
	return m.Calls[len(m.Calls)-1]
}

// Reset clears captured calls
func (m *MockHTTPClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
}

// XMLResponse builds an *http.Response with an application/xml body
func XMLResponse(status int, body string) *http.Response {
	h := make(http.Header)
	h.Set("Content-Type", "application/xml")
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     h,
	}
}
