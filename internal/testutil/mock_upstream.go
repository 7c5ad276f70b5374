// Package testutil provides a mock upstream for the hierarchy proxy tests.
package testutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"time"
)

// MockResponse defines the behavior of a mocked upstream path.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockUpstream is a configurable stand-in for the hierarchy function, the
// cid endpoint and the image-serving service.
type MockUpstream struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	requests    map[string]int
	lastBody    []byte
	lastHeaders http.Header
	lastQuery   string
}

// NewMockUpstream starts a mock upstream server.
func NewMockUpstream() *MockUpstream {
	mock := &MockUpstream{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
		requests: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		mock.mu.Lock()
		mock.requests[r.URL.Path]++
		mock.lastBody = body
		mock.lastHeaders = r.Header.Clone()
		mock.lastQuery = r.URL.RawQuery
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}
		http.NotFound(w, r)
	}))

	return mock
}

// URL returns the mock server base URL.
func (m *MockUpstream) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockUpstream) Close() {
	m.server.Close()
}

// SetHandler sets a custom handler for a path.
func (m *MockUpstream) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a canned response for a path.
func (m *MockUpstream) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			select {
			case <-time.After(resp.Delay):
			case <-r.Context().Done():
				return
			}
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		status := resp.StatusCode
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		if resp.Body != "" {
			_, _ = w.Write([]byte(resp.Body))
		}
	})
}

// Requests returns how many requests hit path.
func (m *MockUpstream) Requests(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requests[path]
}

// TotalRequests returns the number of requests across all paths.
func (m *MockUpstream) TotalRequests() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, n := range m.requests {
		total += n
	}
	return total
}

// LastBody returns the body of the most recent request.
func (m *MockUpstream) LastBody() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]byte(nil), m.lastBody...)
}

// LastHeader returns a header of the most recent request.
func (m *MockUpstream) LastHeader(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastHeaders.Get(key)
}

// LastQuery returns the raw query of the most recent request.
func (m *MockUpstream) LastQuery() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastQuery
}

// LastQueryParam returns the decoded value of a query parameter of the most recent request.
func (m *MockUpstream) LastQueryParam(key string) string {
	values, err := url.ParseQuery(m.LastQuery())
	if err != nil {
		return ""
	}
	return values.Get(key)
}

// Reset clears request tracking.
func (m *MockUpstream) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = make(map[string]int)
	m.lastBody = nil
	m.lastHeaders = nil
	m.lastQuery = ""
}

// HierarchyBody renders a hierarchy payload with the given depth and one child per id.
func HierarchyBody(depth int, childIDs ...string) string {
	data := ""
	for i, id := range childIDs {
		if i > 0 {
			data += ","
		}
		data += fmt.Sprintf(`"%s":{"name":"child %s"}`, id, id)
	}
	return fmt.Sprintf(`{"depth":%d,"data":{%s}}`, depth, data)
}

// NewHierarchyResponse creates a 200 JSON response with body.
func NewHierarchyResponse(body string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
	}
}

// NewServerErrorResponse creates a 500 response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error":{"status":"INTERNAL","message":"INTERNAL"}}`,
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
	}
}

// NewServingURLResponse creates an image-service response carrying url.
func NewServingURLResponse(url string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       url,
		Headers:    map[string]string{"Content-Type": "text/plain; charset=utf-8"},
	}
}
