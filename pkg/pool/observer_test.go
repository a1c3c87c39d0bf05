package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUpdateFeed(t *testing.T) {
	assert := require.New(t)

	feed := newUpdateFeed()
	ch := feed.Observe()
	assert.NotNil(ch)

	feed.publish(Update{Generation: 1})
	assert.Equal(uint64(1), (<-ch).Generation)

	// A reader that falls behind loses the oldest updates, never the
	// newest one.
	for i := uint64(2); i <= 20; i++ {
		feed.publish(Update{Generation: i})
	}
	last := uint64(0)
	for len(ch) > 0 {
		last = (<-ch).Generation
	}
	assert.Equal(uint64(20), last)

	feed.Unobserve(ch)
	_, open := <-ch
	assert.False(open, "Unobserve closes the channel")

	// Unknown channels are ignored.
	feed.Unobserve(make(chan Update))
}

func TestUpdateFeedShutdown(t *testing.T) {
	assert := require.New(t)

	feed := newUpdateFeed()
	ch1 := feed.Observe()
	ch2 := feed.Observe()
	feed.publish(Update{Generation: 1})
	feed.shutdown()

	u, open := <-ch1
	assert.True(open, "The published update is still readable")
	assert.Equal(uint64(1), u.Generation)
	_, open = <-ch1
	assert.False(open)
	<-ch2
	_, open = <-ch2
	assert.False(open)

	assert.Nil(feed.Observe(), "No observers after shutdown")
	feed.publish(Update{Generation: 2})
}
