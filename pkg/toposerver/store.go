package toposerver

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/fjordlab/memtopo/pkg/topo"
)

var errStaleRevision = errors.New("stale revision")

// documentStore holds the currently published topology document. Writes are
// validated and must carry a higher revision than the stored document so a
// republished or reordered document can not roll the topology back.
type documentStore struct {
	mutex *sync.Mutex
	doc   *topo.Document
	buf   []byte
}

func newDocumentStore() *documentStore {
	return &documentStore{mutex: &sync.Mutex{}}
}

// Set validates and stores a document. The stored form is canonical JSON no
// matter which format the document was published in.
func (s *documentStore) Set(doc *topo.Document) error {
	if doc == nil {
		return fmt.Errorf("%w: no document", topo.ErrInvalidDocument)
	}
	if err := doc.Validate(); err != nil {
		return err
	}
	buf, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.doc != nil && doc.Revision <= s.doc.Revision {
		return fmt.Errorf("%w: revision %d is not newer than %d", errStaleRevision, doc.Revision, s.doc.Revision)
	}
	s.doc = doc
	s.buf = buf
	return nil
}

// Document returns the stored document, nil if nothing has been published.
func (s *documentStore) Document() *topo.Document {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.doc
}

// JSON returns the stored document as JSON, nil if nothing has been
// published.
func (s *documentStore) JSON() []byte {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.buf
}
