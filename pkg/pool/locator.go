package pool

// Locator maps keys to nodes. A locator is immutable once built; the
// reconciler selects the implementation once per topology document and
// publishes it together with the node set it was built from. Locate must be
// deterministic for the lifetime of the locator.
type Locator interface {
	// Locate returns the node owning the key.
	Locate(key string) (*Node, error)

	// Nodes returns the distinct set of nodes the locator can return.
	Nodes() []*Node
}

// LocatorFactory overrides the default ring construction for documents
// without a shard map. Shard mapped documents always use the exact lookup
// locator; the hash algorithm is dictated by the document itself.
type LocatorFactory func(nodes []*Node) (Locator, error)

// routingState is one published topology generation. The locator only ever
// reports nodes from the paired slice; the two are replaced together in a
// single atomic swap.
type routingState struct {
	generation uint64
	nodes      []*Node
	locator    Locator
	shards     int
}
