package feed

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFileSource(t *testing.T) {
	assert := require.New(t)

	path := filepath.Join(t.TempDir(), "topology.json")
	assert.NoError(os.WriteFile(path, []byte(testDocJSON), 0600))

	recorder := newSinkRecorder()
	src := NewFileSource(FileParameters{Path: path, Interval: 20 * time.Millisecond})
	assert.NoError(src.Start(recorder.Sink))
	assert.Equal(int64(1), recorder.Wait(t, time.Second).Revision)

	assert.Error(src.Start(recorder.Sink), "Double start should fail")

	// The same bytes must not trigger a second delivery.
	assert.NoError(os.WriteFile(path, []byte(testDocJSON), 0600))
	recorder.WaitNone(t, 100*time.Millisecond)

	assert.NoError(os.WriteFile(path, []byte(testDocUpdatedJSON), 0600))
	doc := recorder.Wait(t, time.Second)
	assert.Equal(int64(2), doc.Revision)
	assert.Len(doc.Nodes, 2)

	assert.NoError(src.Stop())
}

func TestFileSourceYAML(t *testing.T) {
	assert := require.New(t)

	const docYAML = `name: test
rev: 3
nodes:
  - hostname: 127.0.0.1
    status: healthy
    ports:
      direct: 11211
      proxy: 11210
`
	path := filepath.Join(t.TempDir(), "topology.yaml")
	assert.NoError(os.WriteFile(path, []byte(docYAML), 0600))

	recorder := newSinkRecorder()
	src := NewFileSource(FileParameters{Path: path, Interval: time.Minute})
	assert.NoError(src.Start(recorder.Sink))
	assert.Equal(int64(3), recorder.Wait(t, time.Second).Revision)
	assert.NoError(src.Stop())
}

func TestFileSourceBrokenConfig(t *testing.T) {
	assert := require.New(t)

	recorder := newSinkRecorder()
	src := NewFileSource(FileParameters{Interval: time.Minute})
	assert.Error(src.Start(recorder.Sink), "Empty path should fail")
	assert.Error(src.Stop(), "Stop before start should fail")

	path := filepath.Join(t.TempDir(), "broken.json")
	assert.NoError(os.WriteFile(path, []byte("not a document"), 0600))
	src = NewFileSource(FileParameters{Path: path, Interval: time.Minute})
	assert.Error(src.Start(recorder.Sink), "Malformed document should fail Start")
	assert.Error(src.Stop(), "Stop after failed start should fail")

	src = NewFileSource(FileParameters{Path: filepath.Join(t.TempDir(), "missing.json"), Interval: time.Minute})
	assert.Error(src.Start(recorder.Sink), "Missing file should fail Start")
}

func TestFileSourceUnreadableUpdate(t *testing.T) {
	assert := require.New(t)

	path := filepath.Join(t.TempDir(), "topology.json")
	assert.NoError(os.WriteFile(path, []byte(testDocJSON), 0600))

	recorder := newSinkRecorder()
	src := NewFileSource(FileParameters{Path: path, Interval: 20 * time.Millisecond})
	assert.NoError(src.Start(recorder.Sink))
	recorder.Wait(t, time.Second)

	// A malformed rewrite is skipped; the next valid version is delivered.
	assert.NoError(os.WriteFile(path, []byte("{broken"), 0600))
	recorder.WaitNone(t, 100*time.Millisecond)

	assert.NoError(os.WriteFile(path, []byte(testDocUpdatedJSON), 0600))
	assert.Equal(int64(2), recorder.Wait(t, time.Second).Revision)
	assert.NoError(src.Stop())
}
