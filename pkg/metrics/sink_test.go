package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSinkFromString(t *testing.T) {
	assert := require.New(t)

	sink := NewSinkFromString(NoSink, "client1")
	_, ok := sink.(*blackHoleSink)
	assert.True(ok)

	sink = NewSinkFromString("something-else", "client1")
	_, ok = sink.(*blackHoleSink)
	assert.True(ok)

	sink = NewSinkFromString(PrometheusSink, "client1")
	_, ok = sink.(*prometheusSink)
	assert.True(ok)

	// Repeated construction reuses the registered metrics
	again := NewSinkFromString(PrometheusSink, "client2")
	assert.Equal(sink, again)

	for _, s := range []Sink{NewBlackHoleSink(), sink} {
		s.SetNodeCount(3)
		s.SetShardCount(1024)
		s.SetGeneration(2)
		s.Reconcile(OutcomeApplied)
		s.Reconcile(OutcomeRejected)
		s.LookupError(LookupNoNodes)
		s.LookupError(LookupUnhealthyOwner)
	}
}
