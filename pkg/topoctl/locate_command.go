package topoctl

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fjordlab/memtopo/pkg/feed"
	"github.com/fjordlab/memtopo/pkg/pool"
	"github.com/fjordlab/memtopo/pkg/topo"
	"github.com/fjordlab/memtopo/pkg/transport"
)

// LocateCommand is the subcommand that routes keys through the topology
type LocateCommand struct {
	Keys   []string `kong:"arg,help='Keys to locate'"`
	Policy string   `kong:"help='Port policy for plain node lists',enum='direct,proxy',default='direct'"`
}

// Run shows the owning node for each key. The routing table is built from
// the server's current document the same way a client would build it.
func (c *LocateCommand) Run(args RunContext) error {
	doc := fetchDocument(args.TopologyServer())
	if doc == nil {
		return errStd
	}

	p := pool.New(pool.Config{
		Name:       args.TopologyServer().Name,
		PortPolicy: topo.PortPolicy(c.Policy),
		Dialer:     transport.NewNopDialer(),
	}, feed.NewStaticSource(doc))

	ctx, done := context.WithTimeout(context.Background(), time.Second)
	defer done()
	if err := p.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Unable to build a routing table from the document: %v\n", err)
		return errStd
	}
	defer p.Shutdown()

	table := tabwriter.NewWriter(os.Stdout, 1, 3, 1, ' ', 0)
	table.Write([]byte("Key\tNode\n"))
	for _, key := range c.Keys {
		node, err := p.Locate(key)
		if err != nil {
			table.Write([]byte(fmt.Sprintf("%s\t(%v)\n", key, err)))
			continue
		}
		table.Write([]byte(fmt.Sprintf("%s\t%s\n", key, node.Endpoint())))
	}
	table.Flush()
	fmt.Printf("\nDocument: %s\n", doc.String())
	return nil
}
