package feed

import (
	"errors"
	"fmt"
	"time"

	"github.com/fjordlab/memtopo/pkg/toolbox"
)

// ZeroconfTopologyKind is the zeroconf entry kind topology services register
// themselves under.
const ZeroconfTopologyKind = "topology"

// ZeroconfLookup does a lookup in zeroconf to find a topology service for the
// cluster. The service must announce itself via zeroconf for this to work.
func ZeroconfLookup(clusterName string) (string, error) {
	zr := toolbox.NewZeroconfRegistry(clusterName)
	return zr.ResolveFirst(ZeroconfTopologyKind, 1*time.Second)
}

// NewZeroconfSource resolves a topology service via zeroconf and polls it
// over HTTP. Resolution happens once, at Start.
func NewZeroconfSource(clusterName string, params HTTPParameters) Source {
	return &zeroconfSource{clusterName: clusterName, params: params}
}

type zeroconfSource struct {
	clusterName string
	params      HTTPParameters
	source      Source
}

func (z *zeroconfSource) Start(sink Sink) error {
	ep, err := ZeroconfLookup(z.clusterName)
	if err != nil {
		return fmt.Errorf("no topology service found for cluster %s: %w", z.clusterName, err)
	}
	z.params.Endpoint = fmt.Sprintf("http://%s/topology", ep)
	z.source = NewHTTPSource(z.params)
	return z.source.Start(sink)
}

func (z *zeroconfSource) Stop() error {
	if z.source == nil {
		return errors.New("source is not started")
	}
	return z.source.Stop()
}
