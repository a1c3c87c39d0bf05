package pool

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
	"fmt"

	"github.com/fjordlab/memtopo/pkg/topo"
)

type shardLocator struct {
	shards []topo.Shard
	nodes  []*Node
	owners []*Node
	hash   KeyHash
}

// NewShardLocator builds the exact lookup router for a shard mapped topology.
// The node slice must be index aligned with the document's server list; shard
// owner values index into it. The hash algorithm is the one the document
// declares, an unknown name fails construction.
func NewShardLocator(shards []topo.Shard, nodes []*Node, algorithm string) (Locator, error) {
	hash, err := KeyHashByName(algorithm)
	if err != nil {
		return nil, err
	}
	if len(shards) == 0 {
		return nil, fmt.Errorf("%w: shard map has no shards", topo.ErrInvalidDocument)
	}
	// Owner nodes referenced by at least one shard, in server list order.
	// Replica indices are tracked on the shards but not routed to.
	referenced := make([]bool, len(nodes))
	for _, s := range shards {
		if s.Owner >= 0 && s.Owner < len(nodes) {
			referenced[s.Owner] = true
		}
	}
	owners := make([]*Node, 0, len(nodes))
	for i, used := range referenced {
		if used {
			owners = append(owners, nodes[i])
		}
	}
	return &shardLocator{
		shards: shards,
		nodes:  append([]*Node(nil), nodes...),
		owners: owners,
		hash:   hash,
	}, nil
}

func (s *shardLocator) Locate(key string) (*Node, error) {
	idx := int(s.hash(key) % uint32(len(s.shards)))
	shard := s.shards[idx]
	if shard.Owner < 0 || shard.Owner >= len(s.nodes) {
		return nil, fmt.Errorf("%w: shard %d has no owner", ErrUnhealthyOwner, idx)
	}
	node := s.nodes[shard.Owner]
	if node == nil || node.Closed() {
		return nil, fmt.Errorf("%w: shard %d owner %d is closed", ErrUnhealthyOwner, idx, shard.Owner)
	}
	return node, nil
}

func (s *shardLocator) Nodes() []*Node {
	return append([]*Node(nil), s.owners...)
}
