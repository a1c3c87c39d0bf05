package topoctl

import (
	"fmt"
	"os"
	"time"

	"github.com/fjordlab/memtopo/pkg/feed"
	"github.com/fjordlab/memtopo/pkg/toolbox"
)

// DiscoverCommand is the subcommand that lists topology servers on the
// local network
type DiscoverCommand struct {
	Wait time.Duration `kong:"help='How long to wait for responses',default='1s'"`
}

// Run lists the topology servers registered in zeroconf
func (c *DiscoverCommand) Run(args RunContext) error {
	name := args.TopologyServer().Name
	if name == "" {
		fmt.Fprintf(os.Stderr, "Needs a cluster name for the discovery\n")
		return errStd
	}

	zr := toolbox.NewZeroconfRegistry(name)
	addrs, err := zr.Resolve(feed.ZeroconfTopologyKind, c.Wait)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Zeroconf lookup error when searching for cluster %s: %v\n", name, err)
		return errStd
	}
	if len(addrs) == 0 {
		fmt.Printf("No topology servers found for cluster '%s'\n", name)
		return nil
	}
	for _, addr := range addrs {
		fmt.Println(addr)
	}
	return nil
}
