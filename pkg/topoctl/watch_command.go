package topoctl

import (
	"fmt"
	"os"

	gotoolbox "github.com/lab5e/gotoolbox/toolbox"

	"github.com/fjordlab/memtopo/pkg/feed"
	"github.com/fjordlab/memtopo/pkg/topo"
)

// WatchCommand is the subcommand that follows topology updates
type WatchCommand struct {
	Live bool `kong:"help='Clear the screen between updates',default='false'"`
}

// Run streams documents from the server's websocket until interrupted
func (c *WatchCommand) Run(args RunContext) error {
	ep := resolveEndpoint(args.TopologyServer())
	if ep == "" {
		return errStd
	}

	docs := make(chan *topo.Document, 8)
	src := feed.NewWebsocketSource(feed.WebsocketParameters{Endpoint: websocketURL(ep)})
	if err := src.Start(func(doc *topo.Document) {
		docs <- doc
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Unable to watch the topology server: %v\n", err)
		return errStd
	}

	// The source never delivers after Stop returns, so the channel close
	// below can not race a send.
	go func() {
		gotoolbox.WaitForSignal()
		src.Stop()
		close(docs)
	}()

	fmt.Printf("Watching topology for cluster '%s'. Press Ctrl+C to stop.\n", args.TopologyServer().Name)
	for doc := range docs {
		if c.Live {
			fmt.Print("\033c")
		}
		printDocument(doc)
	}
	return nil
}

func printDocument(doc *topo.Document) {
	fmt.Printf("Topology '%s' revision %d\n", doc.Name, doc.Revision)
	fmt.Printf("------------------------------------------------\n")
	for _, node := range doc.Nodes {
		fmt.Printf("Node: %s (%s)\n", node.Hostname, node.Status)
		fmt.Printf("  |- direct -> %s:%d\n", node.Hostname, node.Ports.Direct)
		fmt.Printf("  \\- proxy -> %s:%d\n", node.Hostname, node.Ports.Proxy)
		fmt.Println()
	}
	if doc.HasShardMap() {
		m := doc.ShardMap
		fmt.Printf("Shard map: %d shards on %d servers (%s)\n", len(m.VBucketMap), len(m.ServerList), m.HashAlgorithm)
	}
}
