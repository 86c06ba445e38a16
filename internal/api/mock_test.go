package api

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"

	fhttp "github.com/bogdanfinn/fhttp"
)

// MockResponseBody is a ReadCloser that simulates reading response data
type MockResponseBody struct {
	data   []byte
	pos    int
	err    error
	closed atomic.Bool
}

// NewMockResponseBody creates a new MockResponseBody with the given data
func NewMockResponseBody(data []byte) *MockResponseBody {
	return &MockResponseBody{data: data, pos: 0}
}

// NewFailingResponseBody returns data, then err instead of io.EOF
func NewFailingResponseBody(data []byte, err error) *MockResponseBody {
	return &MockResponseBody{data: data, err: err}
}

// Read implements the io.Reader interface
func (m *MockResponseBody) Read(p []byte) (n int, err error) {
	if m.closed.Load() {
		return 0, errors.New("read on closed body")
	}
	if m.pos >= len(m.data) {
		if m.err != nil {
			return 0, m.err
		}
		return 0, io.EOF
	}
	n = copy(p, m.data[m.pos:])
	m.pos += n
	return n, nil
}

// Close implements the io.Closer interface
func (m *MockResponseBody) Close() error {
	m.closed.Store(true)
	return nil
}

// MockHttpClient is a Doer returning a canned response. It drains the
// request body like a real transport and records what was sent.
type MockHttpClient struct {
	Response *fhttp.Response
	Err      error

	mu          sync.Mutex
	LastRequest *fhttp.Request
	LastBody    []byte
	Calls       int
}

// Do implements the Doer interface
func (m *MockHttpClient) Do(req *fhttp.Request) (*fhttp.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls++
	m.LastRequest = req
	if req.Body != nil {
		m.LastBody, _ = io.ReadAll(req.Body)
	}
	return m.Response, m.Err
}

// NewMockHttpClient creates a new MockHttpClient with a successful response
func NewMockHttpClient(body []byte, statusCode int) *MockHttpClient {
	return &MockHttpClient{
		Response: &fhttp.Response{
			StatusCode: statusCode,
			Body:       NewMockResponseBody(body),
			Header:     make(fhttp.Header),
		},
	}
}

// NewMockHttpClientWithError creates a new MockHttpClient that returns an error
func NewMockHttpClientWithError(err error) *MockHttpClient {
	return &MockHttpClient{
		Response: nil,
		Err:      err,
	}
}

// newTestClient builds a Client around mock
func newTestClient(mock Doer, opts ...ClientOption) *Client {
	client, err := NewClient(append([]ClientOption{WithHTTPClient(mock)}, opts...)...)
	if err != nil {
		panic(err)
	}
	return client
}
