package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fjordlab/memtopo/pkg/topo"
)

func TestStaticSource(t *testing.T) {
	assert := require.New(t)

	doc, err := topo.Load([]byte(testDocJSON))
	assert.NoError(err)

	recorder := newSinkRecorder()
	src := NewStaticSource(doc)
	assert.NoError(src.Start(recorder.Sink))
	assert.Equal(int64(1), recorder.Wait(t, time.Second).Revision)

	assert.Error(src.Start(recorder.Sink), "Double start should fail")

	updated, err := topo.Load([]byte(testDocUpdatedJSON))
	assert.NoError(err)
	src.Update(updated)
	assert.Equal(int64(2), recorder.Wait(t, time.Second).Revision)

	assert.NoError(src.Stop())
	src.Update(doc)
	recorder.WaitNone(t, 50*time.Millisecond)

	assert.Error(src.Start(recorder.Sink), "Start after stop should fail")
}

func TestStaticSourceNilDocument(t *testing.T) {
	assert := require.New(t)

	recorder := newSinkRecorder()
	src := NewStaticSource(nil)
	assert.NoError(src.Start(recorder.Sink))
	recorder.WaitNone(t, 50*time.Millisecond)

	doc, err := topo.Load([]byte(testDocJSON))
	assert.NoError(err)
	src.Update(doc)
	assert.Equal(int64(1), recorder.Wait(t, time.Second).Revision)
	assert.NoError(src.Stop())
}

func TestStaticSourceHoldsUpdateUntilStart(t *testing.T) {
	assert := require.New(t)

	doc, err := topo.Load([]byte(testDocUpdatedJSON))
	assert.NoError(err)

	recorder := newSinkRecorder()
	src := NewStaticSource(nil)
	src.Update(doc)
	assert.NoError(src.Start(recorder.Sink))
	assert.Equal(int64(2), recorder.Wait(t, time.Second).Revision)
	assert.NoError(src.Stop())
}
