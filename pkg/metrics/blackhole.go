package metrics

// NewBlackHoleSink creates a metrics sink that discards all metrics
func NewBlackHoleSink() Sink {
	return &blackHoleSink{}
}

type blackHoleSink struct {
}

func (b *blackHoleSink) SetNodeCount(nodes int) {
	// do nothing
}

func (b *blackHoleSink) SetShardCount(shards int) {
	// do nothing
}

func (b *blackHoleSink) SetGeneration(generation uint64) {
	// do nothing
}

func (b *blackHoleSink) Reconcile(outcome string) {
	// do nothing
}

func (b *blackHoleSink) LookupError(kind string) {
	// do nothing
}
