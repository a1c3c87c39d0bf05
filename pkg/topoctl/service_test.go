package topoctl

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fjordlab/memtopo/pkg/topo"
)

func TestTopologyURL(t *testing.T) {
	assert := require.New(t)

	assert.Equal("http://localhost:9998/topology", topologyURL("localhost:9998"))
	assert.Equal("http://localhost:9998/topology", topologyURL("http://localhost:9998"))
	assert.Equal("https://example.com/topology", topologyURL("https://example.com"))
}

func TestWebsocketURL(t *testing.T) {
	assert := require.New(t)

	assert.Equal("ws://localhost:9998/topologyws", websocketURL("localhost:9998"))
	assert.Equal("ws://localhost:9998/topologyws", websocketURL("http://localhost:9998"))
	assert.Equal("wss://example.com/topologyws", websocketURL("https://example.com"))
	assert.Equal("ws://localhost:9998/topologyws", websocketURL("ws://localhost:9998"))
}

func TestFetchDocument(t *testing.T) {
	assert := require.New(t)

	doc := &topo.Document{
		Name:     "test",
		Revision: 4,
		Nodes: []topo.NodeEntry{
			{Hostname: "a", Status: topo.StatusHealthy, Ports: topo.Ports{Direct: 11211, Proxy: 11210}},
		},
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/topology" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(doc)
	}))
	defer ts.Close()

	params := ServerParameters{Name: "test", Endpoint: ts.URL}
	got := fetchDocument(params)
	assert.NotNil(got)
	assert.Equal(int64(4), got.Revision)
	assert.Len(got.Nodes, 1)

	// Errors are reported as nil documents
	assert.Nil(fetchDocument(ServerParameters{Name: "test", Endpoint: ts.URL + "/missing"}))
	assert.Nil(fetchDocument(ServerParameters{Name: "test", Endpoint: "localhost:1"}))
}
