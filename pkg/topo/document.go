package topo

//
//Copyright 2026 Fjordlab AS
//
//Licensed under the Apache License, Version 2.0 (the "License");
//you may not use this file except in compliance with the License.
//You may obtain a copy of the License at
//
//http://www.apache.org/licenses/LICENSE-2.0
//
//Unless required by applicable law or agreed to in writing, software
//distributed under the License is distributed on an "AS IS" BASIS,
//WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//See the License for the specific language governing permissions and
//limitations under the License.
//
import (
	"errors"
	"fmt"
	"net"
	"strconv"
)

// ErrInvalidDocument is wrapped by every validation failure. A document that
// fails validation must never replace a working routing state.
var ErrInvalidDocument = errors.New("invalid topology document")

// StatusHealthy is the only node status that makes a node routable. Documents
// may carry other status strings (draining, warmup and so on); they are kept
// in the document but excluded from endpoint resolution.
const StatusHealthy = "healthy"

// PortPolicy selects which of a node's advertised ports is used when the
// document does not carry a shard map.
type PortPolicy string

// The two supported port policies.
const (
	PortDirect PortPolicy = "direct"
	PortProxy  PortPolicy = "proxy"
)

// Ports holds the advertised listener ports for a single node.
type Ports struct {
	Direct int `json:"direct" yaml:"direct"`
	Proxy  int `json:"proxy" yaml:"proxy"`
}

// NodeEntry is one node in a topology document.
type NodeEntry struct {
	Hostname string `json:"hostname" yaml:"hostname"`
	Status   string `json:"status" yaml:"status"`
	Ports    Ports  `json:"ports" yaml:"ports"`
}

// Healthy returns true if the node may receive traffic.
func (n *NodeEntry) Healthy() bool {
	return n.Status == StatusHealthy
}

// ShardMap is the pre-partitioned keyspace description published by clusters
// that pin key ranges to nodes. The server list order is load-bearing: shard
// owner and replica values are indices into it, so it must be kept verbatim.
type ShardMap struct {
	HashAlgorithm string   `json:"hashAlgorithm" yaml:"hashAlgorithm"`
	ServerList    []string `json:"serverList" yaml:"serverList"`
	VBucketMap    [][]int  `json:"vBucketMap" yaml:"vBucketMap"`
}

// Shard is one keyspace partition. A shard is identified by its position in
// the shard array. Owner and Replicas index into the server list; an owner of
// -1 means the shard is currently unassigned.
type Shard struct {
	Owner    int
	Replicas []int
}

// Shards converts the raw integer arrays into shard values. The document must
// have passed Validate first; rows are not range checked here.
func (m *ShardMap) Shards() []Shard {
	shards := make([]Shard, len(m.VBucketMap))
	for i, row := range m.VBucketMap {
		shards[i].Owner = row[0]
		if len(row) > 1 {
			shards[i].Replicas = append([]int(nil), row[1:]...)
		}
	}
	return shards
}

// Document is a parsed topology description for one cluster. Two shapes are
// possible: a plain node list, or a node list plus a shard map. When the
// shard map is present it fully supersedes the node list for routing.
type Document struct {
	Name     string      `json:"name" yaml:"name"`
	Revision int64       `json:"rev" yaml:"rev"`
	Nodes    []NodeEntry `json:"nodes" yaml:"nodes"`
	ShardMap *ShardMap   `json:"vBucketServerMap,omitempty" yaml:"vBucketServerMap,omitempty"`
}

// HasShardMap returns true if routing should be shard based.
func (d *Document) HasShardMap() bool {
	return d.ShardMap != nil
}

func (d *Document) String() string {
	shards := 0
	if d.ShardMap != nil {
		shards = len(d.ShardMap.VBucketMap)
	}
	return fmt.Sprintf("%s rev=%d nodes=%d shards=%d", d.Name, d.Revision, len(d.Nodes), shards)
}

// Validate checks the structural invariants a document must satisfy before it
// may be reconciled. Hash algorithm names are checked by the locator, not
// here; this keeps the document package free of routing concerns.
func (d *Document) Validate() error {
	for i, n := range d.Nodes {
		if n.Hostname == "" {
			return fmt.Errorf("%w: node %d has no hostname", ErrInvalidDocument, i)
		}
	}
	if d.ShardMap == nil {
		return nil
	}
	m := d.ShardMap
	if m.HashAlgorithm == "" {
		return fmt.Errorf("%w: shard map has no hash algorithm", ErrInvalidDocument)
	}
	if len(m.ServerList) == 0 {
		return fmt.Errorf("%w: shard map has an empty server list", ErrInvalidDocument)
	}
	for i, s := range m.ServerList {
		host, port, err := net.SplitHostPort(s)
		if err != nil || host == "" {
			return fmt.Errorf("%w: server list entry %d (%q) is not host:port", ErrInvalidDocument, i, s)
		}
		if p, err := strconv.Atoi(port); err != nil || p <= 0 || p > 65535 {
			return fmt.Errorf("%w: server list entry %d (%q) has an invalid port", ErrInvalidDocument, i, s)
		}
	}
	if len(m.VBucketMap) == 0 {
		return fmt.Errorf("%w: shard map has no shards", ErrInvalidDocument)
	}
	for i, row := range m.VBucketMap {
		if len(row) == 0 {
			return fmt.Errorf("%w: shard %d is empty", ErrInvalidDocument, i)
		}
		for _, idx := range row {
			if idx < -1 || idx >= len(m.ServerList) {
				return fmt.Errorf("%w: shard %d references server %d, have %d servers",
					ErrInvalidDocument, i, idx, len(m.ServerList))
			}
		}
	}
	return nil
}

// HealthyEndpoints resolves the document's healthy nodes to host:port strings
// using the given port policy. Used for plain node list documents only; shard
// mapped documents take their endpoints from the server list verbatim.
func (d *Document) HealthyEndpoints(policy PortPolicy) ([]string, error) {
	var endpoints []string
	for i, n := range d.Nodes {
		if !n.Healthy() {
			continue
		}
		port := 0
		switch policy {
		case PortDirect:
			port = n.Ports.Direct
		case PortProxy:
			port = n.Ports.Proxy
		default:
			return nil, fmt.Errorf("%w: unknown port policy %q", ErrInvalidDocument, policy)
		}
		if port <= 0 || port > 65535 {
			return nil, fmt.Errorf("%w: node %d (%s) has no usable %s port",
				ErrInvalidDocument, i, n.Hostname, policy)
		}
		endpoints = append(endpoints, net.JoinHostPort(n.Hostname, strconv.Itoa(port)))
	}
	return endpoints, nil
}
