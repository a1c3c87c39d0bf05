package topoctl

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fjordlab/memtopo/pkg/topo"
)

// NodesCommand is the subcommand to list the nodes in the topology
type NodesCommand struct {
	Policy string `kong:"help='Port policy for the endpoint column',enum='direct,proxy',default='direct'"`
}

// Run executes the nodes command
func (c *NodesCommand) Run(args RunContext) error {
	doc := fetchDocument(args.TopologyServer())
	if doc == nil {
		return errStd
	}

	policy := topo.PortPolicy(c.Policy)
	table := tabwriter.NewWriter(os.Stdout, 1, 3, 1, ' ', 0)
	table.Write([]byte("\tHostname\tStatus\tEndpoint\n"))
	for _, n := range doc.Nodes {
		healthy := ""
		if n.Healthy() {
			healthy = "*"
		}
		port := n.Ports.Direct
		if policy == topo.PortProxy {
			port = n.Ports.Proxy
		}
		table.Write([]byte(fmt.Sprintf("%s\t%s\t%s\t%s:%d\n", healthy, n.Hostname, n.Status, n.Hostname, port)))
	}
	table.Flush()
	fmt.Printf("\nDocument: %s\n", doc.String())
	return nil
}
