package topoctl

import (
	"fmt"
	"os"
	"text/tabwriter"
)

// ShardsCommand is the subcommand that shows the shard distribution
type ShardsCommand struct {
}

// Run shows the shard distribution in the current topology
func (c *ShardsCommand) Run(args RunContext) error {
	doc := fetchDocument(args.TopologyServer())
	if doc == nil {
		return errStd
	}
	if !doc.HasShardMap() {
		fmt.Fprintf(os.Stderr, "The topology document has no shard map\n")
		return errStd
	}

	m := doc.ShardMap
	counts := make([]int, len(m.ServerList))
	unassigned := 0
	for _, s := range m.Shards() {
		if s.Owner < 0 {
			unassigned++
			continue
		}
		counts[s.Owner]++
	}

	total := len(m.VBucketMap)
	table := tabwriter.NewWriter(os.Stdout, 1, 3, 1, ' ', 0)
	table.Write([]byte("Server\tShards\tPercent\n"))
	for i, server := range m.ServerList {
		shardPct := float32(counts[i]) / float32(total) * 100.0
		table.Write([]byte(fmt.Sprintf("%s\t%d\t(%3.1f%%)\n", server, counts[i], shardPct)))
	}
	table.Flush()
	if unassigned > 0 {
		fmt.Printf("\n%d of %d shards have no owner\n", unassigned, total)
	}
	fmt.Printf("\nHash: %s    Total shards: %d\n", m.HashAlgorithm, total)
	return nil
}
