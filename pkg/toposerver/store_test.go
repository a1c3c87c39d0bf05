package toposerver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fjordlab/memtopo/pkg/topo"
)

func testDoc(rev int64, hostnames ...string) *topo.Document {
	doc := &topo.Document{Name: "test", Revision: rev}
	for _, h := range hostnames {
		doc.Nodes = append(doc.Nodes, topo.NodeEntry{
			Hostname: h,
			Status:   topo.StatusHealthy,
			Ports:    topo.Ports{Direct: 11211, Proxy: 11210},
		})
	}
	return doc
}

func TestDocumentStore(t *testing.T) {
	assert := require.New(t)

	store := newDocumentStore()
	assert.Nil(store.Document())
	assert.Nil(store.JSON())

	assert.NoError(store.Set(testDoc(2, "a")))
	assert.NotNil(store.JSON())
	assert.Equal(int64(2), store.Document().Revision)

	// Same and lower revisions are rejected, the stored document stays
	assert.ErrorIs(store.Set(testDoc(2, "b")), errStaleRevision)
	assert.ErrorIs(store.Set(testDoc(1, "b")), errStaleRevision)
	assert.Equal("a", store.Document().Nodes[0].Hostname)

	assert.NoError(store.Set(testDoc(3, "b")))
	assert.Equal("b", store.Document().Nodes[0].Hostname)
}

func TestDocumentStoreRejectsInvalid(t *testing.T) {
	assert := require.New(t)

	store := newDocumentStore()
	assert.Error(store.Set(nil))

	doc := testDoc(1, "a")
	doc.Nodes[0].Hostname = ""
	assert.ErrorIs(store.Set(doc), topo.ErrInvalidDocument)
	assert.Nil(store.Document())
}

func TestDocProducer(t *testing.T) {
	assert := require.New(t)

	p := newDocProducer()

	// No subscribers is fine
	p.Send(testDoc(1, "a"))

	ch := p.Messages()
	go p.Send(testDoc(2, "a"))
	doc := <-ch
	assert.Equal(int64(2), doc.Revision)

	p.Done(ch)
	p.Send(testDoc(3, "a"))
	select {
	case doc := <-ch:
		assert.Nil(doc, "no document expected after Done")
	default:
	}
}

func TestDocProducerDropsSlowClient(t *testing.T) {
	assert := require.New(t)

	p := newDocProducer()
	slow := p.Messages()

	// Nobody reads the channel so the send times out and closes it
	p.Send(testDoc(1, "a"))
	_, open := <-slow
	assert.False(open)

	// The next send must not touch the dropped channel
	p.Send(testDoc(2, "a"))
}
