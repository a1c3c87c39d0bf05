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
import "context"

// Conn is a live connection to a single cache node. The routing layer treats
// it as an opaque resource; request framing and retries live behind it.
type Conn interface {
	// Endpoint returns the host:port the connection was dialed with.
	Endpoint() string

	// Close releases the connection. Close must be safe to call while
	// requests are in flight; they finish or fail on their own.
	Close() error
}

// Dialer produces connections for node handles. Implementations must not
// interpret the endpoint string beyond dialing it.
type Dialer interface {
	Dial(ctx context.Context, endpoint string) (Conn, error)
}

// NewNopDialer returns a dialer that produces inert connections. Used by
// tooling that only needs routing decisions, never node traffic.
func NewNopDialer() Dialer {
	return &nopDialer{}
}

type nopDialer struct {
}

type nopConn struct {
	endpoint string
}

func (d *nopDialer) Dial(ctx context.Context, endpoint string) (Conn, error) {
	return &nopConn{endpoint: endpoint}, nil
}

func (c *nopConn) Endpoint() string {
	return c.endpoint
}

func (c *nopConn) Close() error {
	return nil
}
