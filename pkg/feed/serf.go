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
	"log"
	"net"
	"os"
	"sort"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/hashicorp/serf/serf"

	"github.com/fjordlab/memtopo/pkg/toolbox"
	"github.com/fjordlab/memtopo/pkg/topo"
)

// Tags used on serf members. Cache nodes announce their data ports; pool
// clients join as observers and are excluded from the generated documents.
const (
	SerfRoleTag     = "role"
	SerfRoleNode    = "node"
	SerfRoleClient  = "client"
	SerfPortTag     = "data-port"
	SerfProxyTag    = "proxy-port"
	serfEventBuffer = 64
)

// SerfParameters configures the gossip membership source.
// The struct uses annotations from Kong (https://github.com/alecthomas/kong)
type SerfParameters struct {
	Endpoint    string `kong:"help='Endpoint for Serf',default=''"`
	JoinAddress string `kong:"help='Join address and port for the Serf cluster'"`
	NodeID      string `kong:"help='Node ID for the observer node'"`
	ClusterName string `kong:"help='Cluster name in generated documents',default='memtopo'"`
	DefaultPort int    `kong:"help='Data port for members without a port tag',default='11211'"`
	Verbose     bool   `kong:"help='Verbose logging for Serf'"`
}

// Final populates empty fields with default values
func (p *SerfParameters) Final() {
	if p.NodeID == "" {
		p.NodeID = toolbox.RandomID()
	}
	if p.Endpoint == "" {
		p.Endpoint = toolbox.RandomPublicEndpoint()
	}
}

// NewSerfSource joins a serf gossip cluster as a client member and turns the
// alive member set into topology documents. Every membership change produces
// a new document; members that leave or fail are dropped, not marked.
func NewSerfSource(params SerfParameters) Source {
	params.Final()
	return &serfSource{
		mutex:   &sync.Mutex{},
		params:  params,
		members: make(map[string]topo.NodeEntry),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

type serfSource struct {
	mutex    *sync.Mutex
	params   SerfParameters
	se       *serf.Serf
	sink     Sink
	members  map[string]topo.NodeEntry
	revision int64
	stopped  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func (s *serfSource) Start(sink Sink) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.se != nil {
		return errors.New("source already started")
	}
	if s.stopped {
		return errors.New("source is stopped")
	}
	if s.params.JoinAddress == "" {
		return errors.New("no serf join address configured")
	}
	s.sink = sink

	config := serf.DefaultConfig()
	config.NodeName = s.params.NodeID
	host, portStr, err := net.SplitHostPort(s.params.Endpoint)
	if err != nil {
		return err
	}
	port, err := strconv.ParseInt(portStr, 10, 32)
	if err != nil {
		return err
	}
	config.MemberlistConfig.BindAddr = host
	config.MemberlistConfig.BindPort = int(port)
	config.MemberlistConfig.AdvertiseAddr = host
	config.MemberlistConfig.AdvertisePort = int(port)

	// Dynamic membership, no state carried across restarts.
	config.SnapshotPath = ""
	config.Tags = map[string]string{SerfRoleTag: SerfRoleClient}

	eventCh := make(chan serf.Event, serfEventBuffer)
	config.EventCh = eventCh

	if s.params.Verbose {
		config.Logger = log.New(os.Stderr, "serf", log.LstdFlags)
	} else {
		mutedLogger := newMutedLogger()
		config.Logger = mutedLogger
		config.MemberlistConfig.Logger = mutedLogger
	}

	if s.se, err = serf.Create(config); err != nil {
		return err
	}
	if _, err := s.se.Join([]string{s.params.JoinAddress}, true); err != nil {
		s.se.Shutdown()
		s.se = nil
		return err
	}
	// Events between Create and here sit in the channel buffer.
	go s.eventLoop(eventCh)
	return nil
}

func (s *serfSource) Stop() error {
	s.mutex.Lock()
	se := s.se
	s.se = nil
	s.stopped = true
	s.mutex.Unlock()
	if se == nil {
		return errors.New("source is not started")
	}
	// Stop the event loop before leaving so no documents are delivered
	// after Stop returns.
	close(s.stopCh)
	<-s.doneCh
	if err := se.Leave(); err != nil {
		logrus.WithError(err).Warning("Serf leave failed, shutting down anyway")
	}
	return se.Shutdown()
}

func (s *serfSource) eventLoop(events chan serf.Event) {
	defer close(s.doneCh)
	for {
		select {
		case <-s.stopCh:
			return
		case ev := <-events:
			e, ok := ev.(serf.MemberEvent)
			if !ok {
				continue
			}
			switch ev.EventType() {
			case serf.EventMemberJoin, serf.EventMemberUpdate:
				for _, m := range e.Members {
					s.upsertMember(m)
				}
			case serf.EventMemberLeave, serf.EventMemberFailed, serf.EventMemberReap:
				for _, m := range e.Members {
					s.removeMember(m)
				}
			default:
				continue
			}
			s.emit()
		}
	}
}

// memberEntry translates one serf member to a document node. Client members
// and the observer itself carry no data port and are skipped.
func (s *serfSource) memberEntry(m serf.Member) (topo.NodeEntry, bool) {
	if m.Name == s.params.NodeID || m.Tags[SerfRoleTag] == SerfRoleClient {
		return topo.NodeEntry{}, false
	}
	port := s.params.DefaultPort
	if v, err := strconv.Atoi(m.Tags[SerfPortTag]); err == nil {
		port = v
	}
	proxy := port
	if v, err := strconv.Atoi(m.Tags[SerfProxyTag]); err == nil {
		proxy = v
	}
	status := m.Status.String()
	if m.Status == serf.StatusAlive {
		status = topo.StatusHealthy
	}
	return topo.NodeEntry{
		Hostname: m.Addr.String(),
		Status:   status,
		Ports:    topo.Ports{Direct: port, Proxy: proxy},
	}, true
}

func (s *serfSource) upsertMember(m serf.Member) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	entry, ok := s.memberEntry(m)
	if !ok {
		return
	}
	s.members[m.Name] = entry
}

func (s *serfSource) removeMember(m serf.Member) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.members, m.Name)
}

// emit builds a document from the current member set. Nodes are sorted by
// hostname so identical membership always yields an identical document.
func (s *serfSource) emit() {
	s.mutex.Lock()
	s.revision++
	doc := &topo.Document{
		Name:     s.params.ClusterName,
		Revision: s.revision,
		Nodes:    make([]topo.NodeEntry, 0, len(s.members)),
	}
	for _, entry := range s.members {
		doc.Nodes = append(doc.Nodes, entry)
	}
	sink := s.sink
	s.mutex.Unlock()

	sort.Slice(doc.Nodes, func(i, j int) bool {
		return doc.Nodes[i].Hostname < doc.Nodes[j].Hostname
	})
	sink(doc)
}

type muteWriter struct {
}

func (m *muteWriter) Write(buf []byte) (int, error) {
	return len(buf), nil
}

// newMutedLogger returns a logger writing to the Big Bit Bucket In The
// Sky...or Cloud. Serf and memberlist are chatty and use the stdlib logger.
func newMutedLogger() *log.Logger {
	return log.New(&muteWriter{}, "sssh", log.LstdFlags)
}
