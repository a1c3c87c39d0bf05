package feed

//
//Copyright 2026 Fjordlab AS
//
//Licensed under the Apache License, Version 2.0 (the "License");
//you may not use this file except in compliance with the License.
//You may obtain a copy of the License at
//
//http://www.apache.org/licenses/LICENSE-2.0
//
//Unless required by applicable law or agreed to in writing, software
//distributed under the License is distributed on an "AS IS" BASIS,
//WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//See the License for the specific language governing permissions and
//limitations under the License.
//
import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/dgryski/go-farm"
	log "github.com/sirupsen/logrus"

	"github.com/fjordlab/memtopo/pkg/topo"
)

// HTTPParameters configures the polling HTTP source.
// The struct uses annotations from Kong (https://github.com/alecthomas/kong)
type HTTPParameters struct {
	Endpoint string        `kong:"help='URI serving the topology document'"`
	Interval time.Duration `kong:"help='Poll interval',default='10s'"`
	Timeout  time.Duration `kong:"help='Request timeout',default='5s'"`
}

// NewHTTPSource polls a configuration URI and delivers the document whenever
// the response body changes. An unreachable service during Start is not an
// error; delivery begins when the service first answers.
func NewHTTPSource(params HTTPParameters) Source {
	return &httpSource{
		params: params,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

type httpSource struct {
	params      HTTPParameters
	client      *http.Client
	sink        Sink
	fingerprint uint32
	started     atomic.Bool
	stopCh      chan struct{}
	doneCh      chan struct{}
}

func (h *httpSource) Start(sink Sink) error {
	if h.params.Endpoint == "" {
		return errors.New("no topology service URI configured")
	}
	// Kong fills the defaults for the CLI case; this covers programmatic use.
	if h.params.Interval <= 0 {
		h.params.Interval = 10 * time.Second
	}
	if h.params.Timeout <= 0 {
		h.params.Timeout = 5 * time.Second
	}
	if !h.started.CompareAndSwap(false, true) {
		return errors.New("source already started")
	}
	h.client = &http.Client{Timeout: h.params.Timeout}
	h.sink = sink
	h.poll()
	go h.pollLoop()
	return nil
}

func (h *httpSource) Stop() error {
	if !h.started.Load() {
		return errors.New("source is not started")
	}
	close(h.stopCh)
	<-h.doneCh
	return nil
}

func (h *httpSource) pollLoop() {
	defer close(h.doneCh)
	ticker := time.NewTicker(h.params.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-h.stopCh:
			return
		case <-ticker.C:
			h.poll()
		}
	}
}

func (h *httpSource) poll() {
	buf, err := h.fetch()
	if err != nil {
		log.WithError(err).WithField("endpoint", h.params.Endpoint).Warning("Topology service unavailable")
		return
	}
	fp := farm.Fingerprint32(buf)
	if fp == h.fingerprint {
		return
	}
	doc, err := topo.Load(buf)
	if err != nil {
		log.WithError(err).WithField("endpoint", h.params.Endpoint).Warning("Skipping malformed topology document")
		return
	}
	h.fingerprint = fp
	h.sink(doc)
}

func (h *httpSource) fetch() ([]byte, error) {
	resp, err := h.client.Get(h.params.Endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("topology service returned %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
