package transport

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
	"sync"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/resolver"
)

var resolverBuilder *routeResolverBuilder

func init() {
	resolverBuilder = &routeResolverBuilder{
		mutex:    &sync.RWMutex{},
		clusters: make(map[string][]resolver.Address),
		active:   make(map[string][]*routeResolver),
	}

	// This must be called during init -- see gRPC documentation
	resolver.Register(resolverBuilder)
}

// SchemaName is the schema used for connections that resolve through the
// routing table. Clients dial memtopo://[clustername] after the cluster's
// endpoints have been published with SetClusterEndpoints.
const SchemaName = "memtopo"

// GRPCServiceConfig is the default service config for clients dialing through
// the resolver. Requests are spread round robin across the cluster's nodes.
const GRPCServiceConfig = `{
	"loadBalancingPolicy": "round_robin"
}`

// SetClusterEndpoints replaces the endpoint list served for a cluster name.
// Live client connections resolving that name are updated immediately. Wire
// this to the routing pool's update feed.
func SetClusterEndpoints(cluster string, endpoints []string) {
	resolverBuilder.setEndpoints(cluster, endpoints)
}

// RemoveCluster drops a cluster name from the resolver. Existing connections
// keep their last known address set.
func RemoveCluster(cluster string) {
	resolverBuilder.remove(cluster)
}

// ClusterEndpoints returns the endpoint list currently published for a
// cluster name, or nil if the name is unknown. Useful for diagnostics.
func ClusterEndpoints(cluster string) []string {
	addrs := resolverBuilder.getAddresses(cluster)
	if addrs == nil {
		return nil
	}
	ret := make([]string, 0, len(addrs))
	for _, a := range addrs {
		ret = append(ret, a.Addr)
	}
	return ret
}

type routeResolverBuilder struct {
	mutex    *sync.RWMutex
	clusters map[string][]resolver.Address
	active   map[string][]*routeResolver
}

func (b *routeResolverBuilder) setEndpoints(cluster string, endpoints []string) {
	addrs := make([]resolver.Address, 0, len(endpoints))
	for _, ep := range endpoints {
		addrs = append(addrs, resolver.Address{Addr: ep})
	}
	b.mutex.Lock()
	b.clusters[cluster] = addrs
	live := append([]*routeResolver(nil), b.active[cluster]...)
	b.mutex.Unlock()

	for _, r := range live {
		if err := r.updateState(); err != nil {
			log.WithError(err).WithField("cluster", cluster).Error("couldn't push endpoints to resolver")
		}
	}
}

func (b *routeResolverBuilder) remove(cluster string) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	delete(b.clusters, cluster)
}

func (b *routeResolverBuilder) getAddresses(cluster string) []resolver.Address {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	ret, ok := b.clusters[cluster]
	if !ok {
		return nil
	}
	return ret
}

func (b *routeResolverBuilder) detach(r *routeResolver) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	live := b.active[r.cluster]
	for i, v := range live {
		if v == r {
			b.active[r.cluster] = append(live[:i], live[i+1:]...)
			return
		}
	}
}

func (b *routeResolverBuilder) Build(target resolver.Target, cc resolver.ClientConn, opts resolver.BuildOptions) (resolver.Resolver, error) {
	if target.URL.Scheme != SchemaName {
		return nil, fmt.Errorf("unsupported scheme: %s", target.URL.Scheme)
	}
	ret := &routeResolver{
		source:  b,
		cc:      cc,
		cluster: target.Endpoint(),
	}
	if err := ret.updateState(); err != nil {
		return nil, err
	}
	b.mutex.Lock()
	b.active[ret.cluster] = append(b.active[ret.cluster], ret)
	b.mutex.Unlock()
	return ret, nil
}

func (b *routeResolverBuilder) Scheme() string {
	return SchemaName
}

type routeResolver struct {
	source  *routeResolverBuilder
	cc      resolver.ClientConn
	cluster string
}

func (c *routeResolver) updateState() error {
	addrs := c.source.getAddresses(c.cluster)
	if addrs == nil {
		return fmt.Errorf("unknown cluster (%s) for resolver", c.cluster)
	}
	return c.cc.UpdateState(resolver.State{
		Addresses: addrs,
	})
}

func (c *routeResolver) ResolveNow(resolver.ResolveNowOptions) {
	if err := c.updateState(); err != nil {
		log.WithError(err).Error("couldn't re-resolve cluster endpoints")
	}
}

func (c *routeResolver) Close() {
	c.source.detach(c)
}
