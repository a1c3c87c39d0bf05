package pool

import (
	"github.com/fjordlab/memtopo/pkg/transport"
)

// EndpointMonitor mirrors a pool's routing table into the gRPC resolver.
// While the monitor runs, clients can dial memtopo:///<name> and requests
// are spread round robin across the pool's current node set. Note that the
// endpoints track topology documents, not liveness; a node can be in the
// document while not answering so the client should handle failing
// endpoints gracefully.
type EndpointMonitor interface {
	// Stop halts the monitor and drops the cluster name from the resolver.
	Stop()
}

type endpointMonitor struct {
	pool    Pool
	cluster string
	updates <-chan Update
	done    chan struct{}
}

// StartEndpointMonitor publishes the pool's endpoints under the cluster
// name and keeps the resolver in sync with the pool's routing updates
// until Stop is called. Returns ErrPoolClosed if the pool has been shut
// down.
func StartEndpointMonitor(cluster string, p Pool) (EndpointMonitor, error) {
	updates := p.Observe()
	if updates == nil {
		return nil, ErrPoolClosed
	}
	m := &endpointMonitor{
		pool:    p,
		cluster: cluster,
		updates: updates,
		done:    make(chan struct{}),
	}
	// Seed from the current generation. The update feed only carries
	// generations published after Observe.
	generation := p.Generation()
	endpoints := make([]string, 0)
	for _, n := range p.Nodes() {
		endpoints = append(endpoints, n.Endpoint())
	}
	transport.SetClusterEndpoints(cluster, endpoints)
	go m.monitorLoop(generation)
	return m, nil
}

// monitorLoop runs until the update channel is closed by Unobserve or by
// the pool shutting down. A buffered update can predate the seeded
// snapshot so older generations are skipped.
func (m *endpointMonitor) monitorLoop(generation uint64) {
	defer close(m.done)
	for update := range m.updates {
		if update.Generation < generation {
			continue
		}
		generation = update.Generation
		transport.SetClusterEndpoints(m.cluster, update.Endpoints)
	}
}

func (m *endpointMonitor) Stop() {
	m.pool.Unobserve(m.updates)
	<-m.done
	transport.RemoveCluster(m.cluster)
}
