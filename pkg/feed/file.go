package feed

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/dgryski/go-farm"
	log "github.com/sirupsen/logrus"

	"github.com/fjordlab/memtopo/pkg/topo"
)

// FileParameters configures the file source.
// The struct uses annotations from Kong (https://github.com/alecthomas/kong)
type FileParameters struct {
	Path     string        `kong:"help='Topology document file (JSON or YAML)',type='existingfile'"`
	Interval time.Duration `kong:"help='Poll interval for document changes',default='10s'"`
}

// NewFileSource polls a document on disk and delivers it whenever the file
// content changes. The initial document is delivered during Start; a file
// that can not be read or parsed at that point fails Start.
func NewFileSource(params FileParameters) Source {
	return &fileSource{
		params: params,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

type fileSource struct {
	params      FileParameters
	sink        Sink
	fingerprint uint32
	started     atomic.Bool
	stopCh      chan struct{}
	doneCh      chan struct{}
}

func (f *fileSource) Start(sink Sink) error {
	if f.params.Path == "" {
		return errors.New("no topology file configured")
	}
	// Kong fills the default for the CLI case; this covers programmatic use.
	if f.params.Interval <= 0 {
		f.params.Interval = 10 * time.Second
	}
	// Read before flagging started; a failed Start must leave the source
	// in a state where Stop correctly reports it as not started.
	doc, fp, err := f.read()
	if err != nil {
		return err
	}
	if !f.started.CompareAndSwap(false, true) {
		return errors.New("source already started")
	}
	f.sink = sink
	f.fingerprint = fp
	sink(doc)
	go f.pollLoop()
	return nil
}

func (f *fileSource) Stop() error {
	if !f.started.Load() {
		return errors.New("source is not started")
	}
	close(f.stopCh)
	<-f.doneCh
	return nil
}

func (f *fileSource) read() (*topo.Document, uint32, error) {
	buf, err := os.ReadFile(f.params.Path)
	if err != nil {
		return nil, 0, err
	}
	fp := farm.Fingerprint32(buf)
	var doc *topo.Document
	switch filepath.Ext(f.params.Path) {
	case ".yaml", ".yml":
		doc, err = topo.LoadYAML(buf)
	default:
		doc, err = topo.Load(buf)
	}
	if err != nil {
		return nil, fp, err
	}
	return doc, fp, nil
}

func (f *fileSource) pollLoop() {
	defer close(f.doneCh)
	ticker := time.NewTicker(f.params.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-f.stopCh:
			return
		case <-ticker.C:
			doc, fp, err := f.read()
			if err != nil {
				log.WithError(err).WithField("path", f.params.Path).Warning("Skipping unreadable topology file")
				continue
			}
			if fp == f.fingerprint {
				continue
			}
			f.fingerprint = fp
			f.sink(doc)
		}
	}
}
