package pool

import "errors"

// Errors returned by the pool and its locators.
var (
	// ErrNoNodes is returned by lookups against an empty or not yet
	// published routing state.
	ErrNoNodes = errors.New("no nodes available")

	// ErrUnhealthyOwner is returned when a shard's owner does not resolve
	// to a live node. There is no fallback at this layer.
	ErrUnhealthyOwner = errors.New("shard owner is not available")

	// ErrPoolClosed is returned for operations on a pool after Shutdown.
	ErrPoolClosed = errors.New("pool is shut down")

	// ErrNoTopology is returned by Start when no document arrives within
	// the caller's deadline.
	ErrNoTopology = errors.New("no topology document received")

	// ErrConfiguration is returned by Start when the pool configuration
	// itself is unusable.
	ErrConfiguration = errors.New("invalid pool configuration")
)
