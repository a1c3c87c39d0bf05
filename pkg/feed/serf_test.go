package feed

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/serf/serf"
	"github.com/stretchr/testify/require"

	"github.com/fjordlab/memtopo/pkg/topo"
)

func newTestSerfSource(sink Sink) *serfSource {
	return &serfSource{
		mutex: &sync.Mutex{},
		params: SerfParameters{
			NodeID:      "self",
			ClusterName: "test",
			DefaultPort: 11211,
		},
		members: make(map[string]topo.NodeEntry),
		sink:    sink,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

func TestSerfMemberMapping(t *testing.T) {
	assert := require.New(t)

	src := newTestSerfSource(nil)

	entry, ok := src.memberEntry(serf.Member{
		Name:   "node-1",
		Addr:   net.ParseIP("192.168.1.10"),
		Status: serf.StatusAlive,
		Tags: map[string]string{
			SerfRoleTag:  SerfRoleNode,
			SerfPortTag:  "11300",
			SerfProxyTag: "11301",
		},
	})
	assert.True(ok)
	assert.Equal("192.168.1.10", entry.Hostname)
	assert.Equal(topo.StatusHealthy, entry.Status)
	assert.Equal(11300, entry.Ports.Direct)
	assert.Equal(11301, entry.Ports.Proxy)

	// No port tags: the default data port serves both.
	entry, ok = src.memberEntry(serf.Member{
		Name:   "node-2",
		Addr:   net.ParseIP("192.168.1.11"),
		Status: serf.StatusAlive,
	})
	assert.True(ok)
	assert.Equal(11211, entry.Ports.Direct)
	assert.Equal(11211, entry.Ports.Proxy)

	entry, ok = src.memberEntry(serf.Member{
		Name:   "node-3",
		Addr:   net.ParseIP("192.168.1.12"),
		Status: serf.StatusFailed,
	})
	assert.True(ok)
	assert.NotEqual(topo.StatusHealthy, entry.Status)
	assert.False(entry.Healthy())

	_, ok = src.memberEntry(serf.Member{
		Name:   "client-1",
		Addr:   net.ParseIP("192.168.1.13"),
		Status: serf.StatusAlive,
		Tags:   map[string]string{SerfRoleTag: SerfRoleClient},
	})
	assert.False(ok, "Client members should not appear in documents")

	_, ok = src.memberEntry(serf.Member{
		Name:   "self",
		Addr:   net.ParseIP("192.168.1.14"),
		Status: serf.StatusAlive,
	})
	assert.False(ok, "The observer itself should not appear in documents")
}

func TestSerfEmit(t *testing.T) {
	assert := require.New(t)

	recorder := newSinkRecorder()
	src := newTestSerfSource(recorder.Sink)

	src.upsertMember(serf.Member{Name: "b", Addr: net.ParseIP("10.0.0.2"), Status: serf.StatusAlive})
	src.upsertMember(serf.Member{Name: "a", Addr: net.ParseIP("10.0.0.1"), Status: serf.StatusAlive})
	src.emit()

	doc := recorder.Wait(t, time.Second)
	assert.Equal("test", doc.Name)
	assert.Equal(int64(1), doc.Revision)
	assert.Len(doc.Nodes, 2)
	assert.Equal("10.0.0.1", doc.Nodes[0].Hostname, "Nodes should be sorted by hostname")
	assert.Equal("10.0.0.2", doc.Nodes[1].Hostname)
	assert.NoError(doc.Validate())

	src.removeMember(serf.Member{Name: "a"})
	src.emit()
	doc = recorder.Wait(t, time.Second)
	assert.Equal(int64(2), doc.Revision)
	assert.Len(doc.Nodes, 1)
	assert.Equal("10.0.0.2", doc.Nodes[0].Hostname)
}

func TestSerfParametersFinal(t *testing.T) {
	assert := require.New(t)

	p := &SerfParameters{}
	p.Final()
	assert.NotEmpty(p.NodeID)
	assert.Contains(p.Endpoint, ":")
}

func TestSerfSourceBrokenConfig(t *testing.T) {
	assert := require.New(t)

	src := NewSerfSource(SerfParameters{})
	assert.Error(src.Start(newSinkRecorder().Sink), "Missing join address should fail")
	assert.Error(src.Stop(), "Stop before start should fail")
}
