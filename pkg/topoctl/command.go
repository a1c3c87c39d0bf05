package topoctl

import "errors"

// CommandList contains all of the commands for the topoctl utility
type CommandList struct {
	Nodes    NodesCommand    `kong:"cmd,help='List the nodes in the topology'"`
	Shards   ShardsCommand   `kong:"cmd,help='Show the shard distribution'"`
	Locate   LocateCommand   `kong:"cmd,help='Show which node owns one or more keys'"`
	Watch    WatchCommand    `kong:"cmd,help='Follow topology updates as they are published'"`
	Discover DiscoverCommand `kong:"cmd,help='Find topology servers with zeroconf'"`
}

// ServerParameters holds the topology server configuration
type ServerParameters struct {
	Name     string `kong:"help='Cluster name',default='memtopo',short='n'"`
	Zeroconf bool   `kong:"help='Use zeroconf discovery for the topology server',default='true',short='z'"`
	Endpoint string `kong:"help='HTTP endpoint for the topology server',short='e'"`
}

// Parameters is the main parameter struct for the topoctl utility
type Parameters struct {
	Server   ServerParameters `kong:"embed"`
	Commands CommandList      `kong:"embed"`
}

// TopologyServer returns the topology server parameters
func (p *Parameters) TopologyServer() ServerParameters {
	return p.Server
}

// TopologyCommands returns the list of commands for the utility
func (p *Parameters) TopologyCommands() CommandList {
	return p.Commands
}

// We won't be using the errors returned from the commands in Kong so this is
// a placeholder error that we'll return on errors
var errStd = errors.New("error")
