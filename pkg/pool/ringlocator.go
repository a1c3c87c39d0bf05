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
	"sort"
)

// DefaultRingPoints is the number of synthetic points each node contributes
// to the ring. More points give a more even key distribution at the cost of
// build time and memory.
const DefaultRingPoints = 160

type ringPoint struct {
	hash    uint32
	node    *Node
	replica int
}

type ringLocator struct {
	points []ringPoint
	nodes  []*Node
	hash   KeyHash
}

// NewRingLocator builds a consistent hash ring over the given nodes. Each
// node is placed on the ring pointsPerNode times by hashing "endpoint-i".
// Hash collisions between points are resolved by a stable ordering (hash,
// endpoint, replica) so two builds from the same node list are identical.
func NewRingLocator(nodes []*Node, pointsPerNode int, hash KeyHash) Locator {
	if pointsPerNode <= 0 {
		pointsPerNode = DefaultRingPoints
	}
	if hash == nil {
		hash = ringHash
	}
	points := make([]ringPoint, 0, len(nodes)*pointsPerNode)
	for _, node := range nodes {
		for i := 0; i < pointsPerNode; i++ {
			points = append(points, ringPoint{
				hash:    hash(fmt.Sprintf("%s-%d", node.Endpoint(), i)),
				node:    node,
				replica: i,
			})
		}
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].hash != points[j].hash {
			return points[i].hash < points[j].hash
		}
		if points[i].node.Endpoint() != points[j].node.Endpoint() {
			return points[i].node.Endpoint() < points[j].node.Endpoint()
		}
		return points[i].replica < points[j].replica
	})
	return &ringLocator{
		points: points,
		nodes:  append([]*Node(nil), nodes...),
		hash:   hash,
	}
}

func (r *ringLocator) Locate(key string) (*Node, error) {
	if len(r.points) == 0 {
		return nil, ErrNoNodes
	}
	h := r.hash(key)
	i := sort.Search(len(r.points), func(i int) bool {
		return r.points[i].hash >= h
	})
	if i == len(r.points) {
		i = 0
	}
	return r.points[i].node, nil
}

func (r *ringLocator) Nodes() []*Node {
	return append([]*Node(nil), r.nodes...)
}
