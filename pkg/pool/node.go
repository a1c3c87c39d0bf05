package pool

import (
	"sync/atomic"

	"github.com/fjordlab/memtopo/pkg/transport"
)

// Node is a handle to a single cache node. A node's identity is its endpoint.
// Handles are created by reconciliation and are never reused across topology
// generations; when a generation is replaced its handles are closed.
type Node struct {
	endpoint string
	conn     transport.Conn
	closed   atomic.Bool
}

func newNode(endpoint string, conn transport.Conn) *Node {
	return &Node{endpoint: endpoint, conn: conn}
}

// Endpoint returns the host:port the node was resolved to.
func (n *Node) Endpoint() string {
	return n.endpoint
}

// Conn returns the node's transport connection. The connection stays valid
// until the handle is closed; callers racing a topology change may see
// requests fail on their own transport.
func (n *Node) Conn() transport.Conn {
	return n.conn
}

// Close releases the node's transport resources. Safe to call twice.
func (n *Node) Close() error {
	if !n.closed.CompareAndSwap(false, true) {
		return nil
	}
	return n.conn.Close()
}

// Closed reports whether the handle has been released.
func (n *Node) Closed() bool {
	return n.closed.Load()
}

func (n *Node) String() string {
	return n.endpoint
}
