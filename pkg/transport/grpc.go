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
	"context"
	"errors"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
)

// ClientParam is a parameter struct for gRPC node connections.
type ClientParam struct {
	TLS                bool          `kong:"help='Enable TLS',default='false'"`
	CAFile             string        `kong:"help='CA certificate file',type='existingfile'"`
	ServerHostOverride string        `kong:"help='Host name override for certificate'"`
	ConnectTimeout     time.Duration `kong:"help='Dial timeout for node connections',default='5s'"`
	DeadTimeout        time.Duration `kong:"help='Keepalive timeout before a node is considered dead',default='20s'"`
}

// GetDialOpts returns dial options for a node connection based on the client
// parameters.
func GetDialOpts(config ClientParam) ([]grpc.DialOption, error) {
	opts := []grpc.DialOption{}
	if config.DeadTimeout > 0 {
		opts = append(opts, grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:    config.DeadTimeout,
			Timeout: config.DeadTimeout,
		}))
	}
	if !config.TLS {
		return append(opts, grpc.WithTransportCredentials(insecure.NewCredentials())), nil
	}

	if config.CAFile == "" {
		return nil, errors.New("missing CA file for TLS")
	}

	creds, err := credentials.NewClientTLSFromFile(config.CAFile, config.ServerHostOverride)
	if err != nil {
		return nil, err
	}
	return append(opts, grpc.WithTransportCredentials(creds)), nil
}

// NewGRPCDialer returns the production dialer. Connections are dialed
// non-blocking; the gRPC client establishes the transport in the background.
func NewGRPCDialer(config ClientParam) Dialer {
	return &grpcDialer{config: config}
}

type grpcDialer struct {
	config ClientParam
}

type grpcConn struct {
	endpoint string
	cc       *grpc.ClientConn
}

func (d *grpcDialer) Dial(ctx context.Context, endpoint string) (Conn, error) {
	opts, err := GetDialOpts(d.config)
	if err != nil {
		return nil, err
	}
	if d.config.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.ConnectTimeout)
		defer cancel()
	}
	cc, err := grpc.DialContext(ctx, endpoint, opts...)
	if err != nil {
		return nil, err
	}
	return &grpcConn{endpoint: endpoint, cc: cc}, nil
}

func (c *grpcConn) Endpoint() string {
	return c.endpoint
}

func (c *grpcConn) Close() error {
	return c.cc.Close()
}

// ClientConn exposes the underlying gRPC connection for callers that issue
// their own RPCs against a node.
func (c *grpcConn) ClientConn() *grpc.ClientConn {
	return c.cc
}
