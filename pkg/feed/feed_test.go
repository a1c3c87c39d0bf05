package feed

import (
	"sync"
	"testing"
	"time"

	"github.com/fjordlab/memtopo/pkg/topo"
)

const testDocJSON = `{
	"name": "test",
	"rev": 1,
	"nodes": [
		{ "hostname": "127.0.0.1", "status": "healthy", "ports": { "direct": 11211, "proxy": 11210 } }
	]
}`

const testDocUpdatedJSON = `{
	"name": "test",
	"rev": 2,
	"nodes": [
		{ "hostname": "127.0.0.1", "status": "healthy", "ports": { "direct": 11211, "proxy": 11210 } },
		{ "hostname": "127.0.0.2", "status": "healthy", "ports": { "direct": 11211, "proxy": 11210 } }
	]
}`

// sinkRecorder collects delivered documents so tests can wait for them.
type sinkRecorder struct {
	mutex *sync.Mutex
	docs  []*topo.Document
	ch    chan *topo.Document
}

func newSinkRecorder() *sinkRecorder {
	return &sinkRecorder{
		mutex: &sync.Mutex{},
		ch:    make(chan *topo.Document, 16),
	}
}

func (r *sinkRecorder) Sink(doc *topo.Document) {
	r.mutex.Lock()
	r.docs = append(r.docs, doc)
	r.mutex.Unlock()
	r.ch <- doc
}

func (r *sinkRecorder) Wait(t *testing.T, timeout time.Duration) *topo.Document {
	t.Helper()
	select {
	case doc := <-r.ch:
		return doc
	case <-time.After(timeout):
		t.Fatal("timed out waiting for a document")
		return nil
	}
}

func (r *sinkRecorder) WaitNone(t *testing.T, wait time.Duration) {
	t.Helper()
	select {
	case doc := <-r.ch:
		t.Fatalf("got unexpected document rev=%d", doc.Revision)
	case <-time.After(wait):
	}
}

func (r *sinkRecorder) Count() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.docs)
}
