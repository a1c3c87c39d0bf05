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
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"github.com/fjordlab/memtopo/pkg/feed"
	"github.com/fjordlab/memtopo/pkg/metrics"
	"github.com/fjordlab/memtopo/pkg/topo"
)

// Pool is the externally consumed routing surface. It consumes topology
// documents from a feed, reconciles them into routing state and answers key
// lookups against the latest published generation. Lookups never block on
// reconciliation.
type Pool interface {
	// Start registers the pool with the topology feed and blocks until the
	// first document has been applied. The context bounds the wait; a pool
	// that never receives a document fails with ErrNoTopology.
	Start(ctx context.Context) error

	// Locate returns the node owning the key in the current generation.
	Locate(key string) (*Node, error)

	// Nodes returns the nodes of the current generation. Empty until the
	// first document has been applied.
	Nodes() []*Node

	// Generation returns the current topology generation, starting at 1
	// for the first applied document.
	Generation() uint64

	// Observe returns a channel of routing state updates. The channel is
	// closed on shutdown.
	Observe() <-chan Update

	// Unobserve turns off observation for the channel
	Unobserve(<-chan Update)

	// Shutdown stops the topology feed and releases every node handle.
	// The pool can not be restarted. Shutdown is mandatory; a pool that is
	// dropped without it leaks its transport connections.
	Shutdown() error
}

// New creates a routing pool consuming documents from the source. Nothing
// happens until Start is called.
func New(config Config, source feed.Source) Pool {
	config.Final()
	return &pool{
		config:     config,
		source:     source,
		sink:       config.Sink,
		applyMutex: &sync.Mutex{},
		updates:    newUpdateFeed(),
		firstApply: make(chan struct{}),
	}
}

type pool struct {
	config     Config
	source     feed.Source
	sink       metrics.Sink
	ringHash   KeyHash
	state      atomic.Pointer[routingState]
	applyMutex *sync.Mutex
	updates    *updateFeed
	started    atomic.Bool
	closed     atomic.Bool
	firstApply chan struct{}
	firstOnce  sync.Once
	disposeWG  sync.WaitGroup
}

func (p *pool) Start(ctx context.Context) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}
	if !p.started.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: pool already started", ErrConfiguration)
	}
	if p.config.RingHash != "" {
		hash, err := KeyHashByName(p.config.RingHash)
		if err != nil {
			return fmt.Errorf("%w: ring hash: %v", ErrConfiguration, err)
		}
		p.ringHash = hash
	}
	if _, ok := ctx.Deadline(); !ok && p.config.StartTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.StartTimeout)
		defer cancel()
	}
	if err := p.source.Start(p.apply); err != nil {
		return fmt.Errorf("%w: topology feed: %v", ErrConfiguration, err)
	}
	select {
	case <-p.firstApply:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrNoTopology, ctx.Err())
	}
}

func (p *pool) Locate(key string) (*Node, error) {
	if p.closed.Load() {
		return nil, ErrPoolClosed
	}
	state := p.state.Load()
	if state == nil {
		p.sink.LookupError(metrics.LookupNoNodes)
		return nil, ErrNoNodes
	}
	node, err := state.locator.Locate(key)
	if err != nil {
		kind := metrics.LookupNoNodes
		if errors.Is(err, ErrUnhealthyOwner) {
			kind = metrics.LookupUnhealthyOwner
		}
		p.sink.LookupError(kind)
	}
	return node, err
}

func (p *pool) Nodes() []*Node {
	state := p.state.Load()
	if state == nil {
		return nil
	}
	return state.locator.Nodes()
}

func (p *pool) Generation() uint64 {
	state := p.state.Load()
	if state == nil {
		return 0
	}
	return state.generation
}

func (p *pool) Observe() <-chan Update {
	return p.updates.Observe()
}

func (p *pool) Unobserve(ch <-chan Update) {
	p.updates.Unobserve(ch)
}

func (p *pool) Shutdown() error {
	if !p.closed.CompareAndSwap(false, true) {
		return ErrPoolClosed
	}
	var err error
	if p.started.Load() {
		if err = p.source.Stop(); err != nil {
			log.WithError(err).Error("Topology feed did not stop cleanly")
		}
	}
	p.applyMutex.Lock()
	old := p.state.Swap(nil)
	p.applyMutex.Unlock()

	p.disposeWG.Wait()
	if old != nil {
		closeNodes(old.nodes)
	}
	p.updates.shutdown()
	log.WithField("name", p.config.Name).Info("Pool shut down")
	return err
}

// apply is the feed sink. Documents arrive serially; a document that fails
// validation or construction is rejected without touching the published
// state.
func (p *pool) apply(doc *topo.Document) {
	p.applyMutex.Lock()
	defer p.applyMutex.Unlock()
	if p.closed.Load() {
		return
	}
	state, err := p.buildState(doc)
	if err != nil {
		p.sink.Reconcile(metrics.OutcomeRejected)
		log.WithError(err).WithField("document", doc.String()).Error("Rejecting topology document")
		return
	}
	old := p.state.Swap(state)

	p.sink.Reconcile(metrics.OutcomeApplied)
	p.sink.SetGeneration(state.generation)
	p.sink.SetNodeCount(len(state.nodes))
	p.sink.SetShardCount(state.shards)

	update := Update{
		Generation: state.generation,
		Endpoints:  make([]string, 0, len(state.nodes)),
		Shards:     state.shards,
	}
	for _, n := range state.nodes {
		update.Endpoints = append(update.Endpoints, n.Endpoint())
	}
	p.updates.publish(update)
	p.firstOnce.Do(func() { close(p.firstApply) })

	if old != nil {
		p.disposeWG.Add(1)
		go func() {
			defer p.disposeWG.Done()
			closeNodes(old.nodes)
		}()
	}
	log.WithFields(log.Fields{
		"document":   doc.String(),
		"generation": state.generation,
		"nodes":      len(state.nodes),
		"shards":     state.shards,
	}).Info("Applied topology document")
}

// buildState does all the expensive work for a reconcile: validation,
// dialing and locator construction. Nothing it creates is visible to
// lookups until the caller swaps the state in.
func (p *pool) buildState(doc *topo.Document) (*routingState, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	var endpoints []string
	var shards []topo.Shard
	if doc.HasShardMap() {
		// Checked before dialing so a bad algorithm costs no connections.
		if _, err := KeyHashByName(doc.ShardMap.HashAlgorithm); err != nil {
			return nil, err
		}
		endpoints = doc.ShardMap.ServerList
		shards = doc.ShardMap.Shards()
	} else {
		eps, err := doc.HealthyEndpoints(p.config.PortPolicy)
		if err != nil {
			return nil, err
		}
		endpoints = eps
	}

	nodes, err := p.dialAll(endpoints)
	if err != nil {
		return nil, err
	}

	var locator Locator
	switch {
	case shards != nil:
		locator, err = NewShardLocator(shards, nodes, doc.ShardMap.HashAlgorithm)
	case p.config.LocatorFactory != nil:
		locator, err = p.config.LocatorFactory(nodes)
	default:
		locator = NewRingLocator(nodes, p.config.RingPoints, p.ringHash)
	}
	if err != nil {
		closeNodes(nodes)
		return nil, err
	}

	generation := uint64(1)
	if prev := p.state.Load(); prev != nil {
		generation = prev.generation + 1
	}
	return &routingState{
		generation: generation,
		nodes:      nodes,
		locator:    locator,
		shards:     len(shards),
	}, nil
}

// dialAll creates a fresh handle for every endpoint. Handles are never
// reused across generations, even for endpoints present in both the old and
// the new topology; a reconnect is cheaper than shared handle lifetimes.
func (p *pool) dialAll(endpoints []string) ([]*Node, error) {
	nodes := make([]*Node, 0, len(endpoints))
	for _, ep := range endpoints {
		conn, err := p.config.Dialer.Dial(context.Background(), ep)
		if err != nil {
			closeNodes(nodes)
			return nil, fmt.Errorf("%w: dialing %s: %v", topo.ErrInvalidDocument, ep, err)
		}
		nodes = append(nodes, newNode(ep, conn))
	}
	return nodes, nil
}

func closeNodes(nodes []*Node) {
	for _, n := range nodes {
		if err := n.Close(); err != nil {
			log.WithError(err).WithField("node", n.Endpoint()).Warning("Error closing node")
		}
	}
}
