package pool

import (
	"context"
	"testing"
	"time"

	"github.com/fjordlab/memtopo/pkg/feed"
	"github.com/fjordlab/memtopo/pkg/transport"
	"github.com/stretchr/testify/require"
)

func TestEndpointMonitor(t *testing.T) {
	assert := require.New(t)

	src := feed.NewStaticSource(plainDoc(1, "a", "b"))
	p := New(testConfig(newCountingDialer(), newRecordingSink()), src)
	assert.NoError(p.Start(context.Background()))

	m, err := StartEndpointMonitor("monitortest", p)
	assert.NoError(err)
	assert.ElementsMatch([]string{"a:11211", "b:11211"}, transport.ClusterEndpoints("monitortest"))

	src.Update(plainDoc(2, "c"))
	assert.Eventually(func() bool {
		eps := transport.ClusterEndpoints("monitortest")
		return len(eps) == 1 && eps[0] == "c:11211"
	}, time.Second, 5*time.Millisecond)

	m.Stop()
	assert.Nil(transport.ClusterEndpoints("monitortest"))

	// The pool keeps running after the monitor stops.
	src.Update(plainDoc(3, "d"))
	assert.Eventually(func() bool {
		return p.Generation() == 3
	}, time.Second, 5*time.Millisecond)

	assert.NoError(p.Shutdown())
	_, err = StartEndpointMonitor("monitortest", p)
	assert.ErrorIs(err, ErrPoolClosed)
}

func TestEndpointMonitorShutdown(t *testing.T) {
	assert := require.New(t)

	src := feed.NewStaticSource(plainDoc(1, "a"))
	p := New(testConfig(newCountingDialer(), newRecordingSink()), src)
	assert.NoError(p.Start(context.Background()))

	m, err := StartEndpointMonitor("monitorshutdown", p)
	assert.NoError(err)
	assert.Equal([]string{"a:11211"}, transport.ClusterEndpoints("monitorshutdown"))

	// Shutdown closes the update feed; Stop must still clean up.
	assert.NoError(p.Shutdown())
	m.Stop()
	assert.Nil(transport.ClusterEndpoints("monitorshutdown"))
}
