package topoctl

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fjordlab/memtopo/pkg/feed"
	"github.com/fjordlab/memtopo/pkg/topo"
)

const httpTimeout = 10 * time.Second

// resolveEndpoint finds the topology server endpoint. When no endpoint is
// given on the command line the server is located with zeroconf.
func resolveEndpoint(params ServerParameters) string {
	if params.Endpoint == "" && params.Zeroconf {
		if params.Name == "" {
			fmt.Fprintf(os.Stderr, "Needs a cluster name if zeroconf is to be used for discovery")
			return ""
		}
		ep, err := feed.ZeroconfLookup(params.Name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Zeroconf lookup error when searching for cluster %s: %v\n", params.Name, err)
			return ""
		}
		params.Endpoint = ep
	}

	if params.Endpoint == "" {
		fmt.Fprintf(os.Stderr, "Need an endpoint for the topology server")
		return ""
	}
	return params.Endpoint
}

// fetchDocument retrieves the current topology document from the server.
// Errors are reported on stderr and nil is returned, matching the command
// convention of returning errStd.
func fetchDocument(params ServerParameters) *topo.Document {
	ep := resolveEndpoint(params)
	if ep == "" {
		return nil
	}

	client := &http.Client{Timeout: httpTimeout}
	res, err := client.Get(topologyURL(ep))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not fetch the topology from %s. Is the server available? : %v\n", ep, err)
		return nil
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Topology server at %s returned %s\n", ep, res.Status)
		return nil
	}
	buf, err := io.ReadAll(res.Body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading the topology from %s: %v\n", ep, err)
		return nil
	}
	doc, err := topo.Load(buf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Malformed topology document from %s: %v\n", ep, err)
		return nil
	}
	return doc
}

// topologyURL builds the document URL from a bare host:port or a full URL.
func topologyURL(endpoint string) string {
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "http://" + endpoint
	}
	return endpoint + "/topology"
}

// websocketURL builds the streaming URL from a bare host:port or a full URL.
func websocketURL(endpoint string) string {
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		endpoint = "wss://" + strings.TrimPrefix(endpoint, "https://")
	case strings.HasPrefix(endpoint, "http://"):
		endpoint = "ws://" + strings.TrimPrefix(endpoint, "http://")
	case strings.HasPrefix(endpoint, "ws://"), strings.HasPrefix(endpoint, "wss://"):
	default:
		endpoint = "ws://" + endpoint
	}
	return endpoint + "/topologyws"
}
