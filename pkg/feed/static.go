package feed

import (
	"errors"
	"sync"

	"github.com/fjordlab/memtopo/pkg/topo"
)

// StaticSource serves a fixed document plus any updates pushed through
// Update. Used by tools and tests that drive topology changes by hand.
type StaticSource struct {
	mutex   *sync.Mutex
	sink    Sink
	doc     *topo.Document
	stopped bool
}

// NewStaticSource creates a static source. The document may be nil; the
// first delivery then happens on the first Update.
func NewStaticSource(doc *topo.Document) *StaticSource {
	return &StaticSource{
		mutex: &sync.Mutex{},
		doc:   doc,
	}
}

// Start delivers the current document (if any) and registers the sink.
func (s *StaticSource) Start(sink Sink) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.stopped {
		return errors.New("source is stopped")
	}
	if s.sink != nil {
		return errors.New("source already started")
	}
	s.sink = sink
	if s.doc != nil {
		sink(s.doc)
	}
	return nil
}

// Update delivers a new document. Before Start the document is held until a
// sink registers.
func (s *StaticSource) Update(doc *topo.Document) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.doc = doc
	if s.stopped || s.sink == nil {
		return
	}
	s.sink(doc)
}

// Stop ends delivery.
func (s *StaticSource) Stop() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.stopped = true
	return nil
}
