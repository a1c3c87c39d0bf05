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
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/fjordlab/memtopo/pkg/metrics"
	"github.com/fjordlab/memtopo/pkg/toolbox"
	"github.com/fjordlab/memtopo/pkg/topo"
	"github.com/fjordlab/memtopo/pkg/transport"
)

// Config is the parameter struct for a routing pool. The defaults give a
// working pool for plain node list topologies over plaintext gRPC.
// The struct uses annotations from Kong (https://github.com/alecthomas/kong)
type Config struct {
	Name         string                `kong:"help='Cluster name used in logs and the resolver',default='memtopo'"`
	ClientID     string                `kong:"help='Client ID reported to metrics'"`
	PortPolicy   topo.PortPolicy       `kong:"help='Port selection policy for plain node lists',enum='direct,proxy',default='direct'"`
	RingPoints   int                   `kong:"help='Synthetic ring points per node',default='160'"`
	RingHash     string                `kong:"help='Hash for the ring locator (crc, fnv1a, ketama); empty for the built-in default'"`
	Metrics      string                `kong:"help='Metrics sink to use',enum='none,prometheus',default='none'"`
	StartTimeout time.Duration         `kong:"help='Max wait for the first topology document',default='30s'"`
	GRPC         transport.ClientParam `kong:"embed,prefix='grpc-'"`

	// These aren't parameters, they are set by the embedding application.
	Dialer         transport.Dialer `kong:"-"`
	LocatorFactory LocatorFactory   `kong:"-"`
	Sink           metrics.Sink     `kong:"-"`
}

// Final sets the defaults for the parameters that haven't got a sensible
// zero value. Called by New; safe to call more than once.
func (c *Config) Final() {
	if c.Name == "" {
		c.Name = "memtopo"
	}
	if c.ClientID == "" {
		c.ClientID = toolbox.RandomID()
	}
	if c.PortPolicy == "" {
		c.PortPolicy = topo.PortDirect
	}
	if c.RingPoints <= 0 {
		c.RingPoints = DefaultRingPoints
	}
	if c.StartTimeout <= 0 {
		c.StartTimeout = 30 * time.Second
	}
	if c.Dialer == nil {
		c.Dialer = transport.NewGRPCDialer(c.GRPC)
	}
	if c.Sink == nil {
		c.Sink = metrics.NewSinkFromString(c.Metrics, c.ClientID)
	}
	log.WithFields(log.Fields{
		"name":       c.Name,
		"clientID":   c.ClientID,
		"portPolicy": c.PortPolicy,
		"ringPoints": c.RingPoints,
	}).Debug("Pool configuration")
}
