package feed

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// topologyHandler serves a swappable document body.
type topologyHandler struct {
	mutex  *sync.Mutex
	body   string
	status int
}

func newTopologyHandler(body string) *topologyHandler {
	return &topologyHandler{mutex: &sync.Mutex{}, body: body, status: http.StatusOK}
}

func (h *topologyHandler) Set(body string, status int) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.body = body
	h.status = status
}

func (h *topologyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mutex.Lock()
	body, status := h.body, h.status
	h.mutex.Unlock()
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func TestHTTPSource(t *testing.T) {
	assert := require.New(t)

	handler := newTopologyHandler(testDocJSON)
	server := httptest.NewServer(handler)
	defer server.Close()

	recorder := newSinkRecorder()
	src := NewHTTPSource(HTTPParameters{
		Endpoint: server.URL,
		Interval: 20 * time.Millisecond,
		Timeout:  time.Second,
	})
	assert.NoError(src.Start(recorder.Sink))
	assert.Equal(int64(1), recorder.Wait(t, time.Second).Revision)

	// Unchanged body, then an error response. Neither delivers.
	recorder.WaitNone(t, 100*time.Millisecond)
	handler.Set("gone fishing", http.StatusServiceUnavailable)
	recorder.WaitNone(t, 100*time.Millisecond)

	handler.Set(testDocUpdatedJSON, http.StatusOK)
	doc := recorder.Wait(t, time.Second)
	assert.Equal(int64(2), doc.Revision)
	assert.Len(doc.Nodes, 2)

	assert.NoError(src.Stop())
}

func TestHTTPSourceUnreachableStart(t *testing.T) {
	assert := require.New(t)

	handler := newTopologyHandler(testDocJSON)
	server := httptest.NewServer(handler)
	server.Close()

	// A dead service is not a configuration error. Delivery would begin
	// when the service answers; here we just verify Start and Stop.
	recorder := newSinkRecorder()
	src := NewHTTPSource(HTTPParameters{
		Endpoint: server.URL,
		Interval: 20 * time.Millisecond,
		Timeout:  100 * time.Millisecond,
	})
	assert.NoError(src.Start(recorder.Sink))
	recorder.WaitNone(t, 100*time.Millisecond)
	assert.NoError(src.Stop())
}

func TestHTTPSourceBrokenConfig(t *testing.T) {
	assert := require.New(t)

	src := NewHTTPSource(HTTPParameters{Interval: time.Minute, Timeout: time.Second})
	assert.Error(src.Start(newSinkRecorder().Sink), "Empty URI should fail")
	assert.Error(src.Stop(), "Stop before start should fail")
}

func TestHTTPSourceMalformedDocument(t *testing.T) {
	assert := require.New(t)

	handler := newTopologyHandler(`{"name":"test","nodes":[{"status":"healthy"}]}`)
	server := httptest.NewServer(handler)
	defer server.Close()

	recorder := newSinkRecorder()
	src := NewHTTPSource(HTTPParameters{
		Endpoint: server.URL,
		Interval: 20 * time.Millisecond,
		Timeout:  time.Second,
	})
	assert.NoError(src.Start(recorder.Sink))
	recorder.WaitNone(t, 100*time.Millisecond)

	handler.Set(testDocJSON, http.StatusOK)
	assert.Equal(int64(1), recorder.Wait(t, time.Second).Revision)
	assert.NoError(src.Stop())
}
