package toolbox

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
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
)

// Zeroconf announcements for topology services. A service announces itself in
// mDNS on startup which makes it easy for clients on the same network segment
// to find a topology endpoint without configuration.
//
// This won't work in Kubernetes or AWS/GCP/Azure since they have no support
// for UDP broadcasts, and the zeroconf library doesn't handle loopback-only
// hosts. It uses the external IP address of the host when registering.

// An unofficial service name. Registering one with IANA would be The Proper
// Way but an underscore-prefixed private name works fine on a LAN.
const serviceString = "_memtopo._tcp"

const defaultDomain = "local."

var txtRecords = []string{"txtv=0", "name=memtopo topology service"}

// ZeroconfRegistry announces endpoints via mDNS/Zeroconf/Bonjour until
// Shutdown is called, and resolves endpoints other instances announce.
// Instances are named <cluster>_<kind>_<id> so one browse query serves every
// service kind in the cluster.
type ZeroconfRegistry struct {
	mutex       *sync.Mutex
	servers     map[string]*zeroconf.Server
	ClusterName string
}

// NewZeroconfRegistry creates a registry for the given cluster name.
func NewZeroconfRegistry(clusterName string) *ZeroconfRegistry {
	return &ZeroconfRegistry{
		mutex:       &sync.Mutex{},
		servers:     make(map[string]*zeroconf.Server),
		ClusterName: clusterName,
	}
}

// Register announces an endpoint. The kind and ID pair must be unique within
// the registry.
func (zr *ZeroconfRegistry) Register(kind string, id string, port int) error {
	zr.mutex.Lock()
	defer zr.mutex.Unlock()
	name := zr.instanceName(kind, id)
	if _, ok := zr.servers[name]; ok {
		return errors.New("entry is already registered")
	}
	server, err := zeroconf.Register(name, serviceString, defaultDomain, port, txtRecords, nil)
	if err != nil {
		return err
	}
	zr.servers[name] = server
	return nil
}

// Shutdown stops all announcements made through this registry.
func (zr *ZeroconfRegistry) Shutdown() {
	zr.mutex.Lock()
	defer zr.mutex.Unlock()
	for name, server := range zr.servers {
		server.Shutdown()
		delete(zr.servers, name)
	}
}

// Resolve returns every endpoint of the given kind announced in the cluster.
// It blocks for the full wait time to collect responses.
func (zr *ZeroconfRegistry) Resolve(kind string, waitTime time.Duration) ([]string, error) {
	var ret []string
	err := zr.browse(kind, waitTime, func(entry *zeroconf.ServiceEntry) bool {
		for _, addr := range entry.AddrIPv4 {
			ret = append(ret, fmt.Sprintf("%s:%d", addr, entry.Port))
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// ResolveFirst returns the first endpoint of the given kind that answers.
// Handy when any instance will do.
func (zr *ZeroconfRegistry) ResolveFirst(kind string, waitTime time.Duration) (string, error) {
	first := ""
	err := zr.browse(kind, waitTime, func(entry *zeroconf.ServiceEntry) bool {
		if len(entry.AddrIPv4) == 0 {
			return true
		}
		first = fmt.Sprintf("%s:%d", entry.AddrIPv4[0], entry.Port)
		return false
	})
	if err != nil {
		return "", err
	}
	if first == "" {
		return "", errors.New("timed out")
	}
	return first, nil
}

// browse queries the network for instances of the given kind and invokes the
// callback for each match. The callback returns false to stop early. The
// entries channel is closed by the resolver once the context is done, so the
// loop always terminates within the wait time.
func (zr *ZeroconfRegistry) browse(kind string, waitTime time.Duration, fn func(*zeroconf.ServiceEntry) bool) error {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), waitTime)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	if err := resolver.Browse(ctx, serviceString, defaultDomain, entries); err != nil {
		return err
	}

	prefix := zr.instanceName(kind, "")
	stopped := false
	for entry := range entries {
		if stopped || entry == nil || entry.Service != serviceString {
			continue
		}
		if !strings.HasPrefix(entry.Instance, prefix) {
			continue
		}
		if !fn(entry) {
			// Keep draining until the resolver closes the channel.
			stopped = true
			cancel()
		}
	}
	return nil
}

func (zr *ZeroconfRegistry) instanceName(kind string, id string) string {
	return fmt.Sprintf("%s_%s_%s", zr.ClusterName, kind, id)
}
