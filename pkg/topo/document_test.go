package topo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func plainDocument() *Document {
	return &Document{
		Name:     "cache",
		Revision: 1,
		Nodes: []NodeEntry{
			{Hostname: "n1.example.com", Status: StatusHealthy, Ports: Ports{Direct: 11211, Proxy: 11210}},
			{Hostname: "n2.example.com", Status: "draining", Ports: Ports{Direct: 11211, Proxy: 11210}},
			{Hostname: "n3.example.com", Status: StatusHealthy, Ports: Ports{Direct: 11211, Proxy: 11210}},
		},
	}
}

func shardedDocument() *Document {
	doc := plainDocument()
	doc.ShardMap = &ShardMap{
		HashAlgorithm: "crc",
		ServerList:    []string{"n1.example.com:11211", "n2.example.com:11211"},
		VBucketMap:    [][]int{{0, 1}, {1, 0}, {0}, {1, -1}},
	}
	return doc
}

func TestValidatePlainDocument(t *testing.T) {
	assert := require.New(t)
	assert.NoError(plainDocument().Validate())

	doc := plainDocument()
	doc.Nodes[1].Hostname = ""
	assert.ErrorIs(doc.Validate(), ErrInvalidDocument)

	// No nodes at all is a valid (empty) topology
	assert.NoError((&Document{Name: "empty"}).Validate())
}

func TestValidateShardMap(t *testing.T) {
	assert := require.New(t)
	assert.NoError(shardedDocument().Validate())

	doc := shardedDocument()
	doc.ShardMap.HashAlgorithm = ""
	assert.ErrorIs(doc.Validate(), ErrInvalidDocument)

	doc = shardedDocument()
	doc.ShardMap.ServerList = nil
	assert.ErrorIs(doc.Validate(), ErrInvalidDocument)

	doc = shardedDocument()
	doc.ShardMap.ServerList[0] = "no-port-here"
	assert.ErrorIs(doc.Validate(), ErrInvalidDocument)

	doc = shardedDocument()
	doc.ShardMap.ServerList[0] = "n1.example.com:notaport"
	assert.ErrorIs(doc.Validate(), ErrInvalidDocument)

	doc = shardedDocument()
	doc.ShardMap.VBucketMap = nil
	assert.ErrorIs(doc.Validate(), ErrInvalidDocument)

	doc = shardedDocument()
	doc.ShardMap.VBucketMap[2] = []int{}
	assert.ErrorIs(doc.Validate(), ErrInvalidDocument)

	// Owner index out of range
	doc = shardedDocument()
	doc.ShardMap.VBucketMap[0] = []int{2}
	assert.ErrorIs(doc.Validate(), ErrInvalidDocument)

	// -1 means unassigned and is legal for both owners and replicas
	doc = shardedDocument()
	doc.ShardMap.VBucketMap[0] = []int{-1, -1}
	assert.NoError(doc.Validate())

	doc = shardedDocument()
	doc.ShardMap.VBucketMap[0] = []int{-2}
	assert.ErrorIs(doc.Validate(), ErrInvalidDocument)
}

func TestShards(t *testing.T) {
	assert := require.New(t)
	shards := shardedDocument().ShardMap.Shards()
	assert.Len(shards, 4)
	assert.Equal(0, shards[0].Owner)
	assert.Equal([]int{1}, shards[0].Replicas)
	assert.Equal(1, shards[1].Owner)
	assert.Equal(0, shards[2].Owner)
	assert.Nil(shards[2].Replicas)
	assert.Equal([]int{-1}, shards[3].Replicas)
}

func TestHealthyEndpoints(t *testing.T) {
	assert := require.New(t)
	doc := plainDocument()

	eps, err := doc.HealthyEndpoints(PortDirect)
	assert.NoError(err)
	assert.Equal([]string{"n1.example.com:11211", "n3.example.com:11211"}, eps)

	eps, err = doc.HealthyEndpoints(PortProxy)
	assert.NoError(err)
	assert.Equal([]string{"n1.example.com:11210", "n3.example.com:11210"}, eps)

	_, err = doc.HealthyEndpoints(PortPolicy("carrier-pigeon"))
	assert.ErrorIs(err, ErrInvalidDocument)

	doc.Nodes[0].Ports.Direct = 0
	_, err = doc.HealthyEndpoints(PortDirect)
	assert.ErrorIs(err, ErrInvalidDocument)

	// Unhealthy nodes are skipped even if their ports are unusable
	doc = plainDocument()
	doc.Nodes[1].Ports = Ports{}
	eps, err = doc.HealthyEndpoints(PortDirect)
	assert.NoError(err)
	assert.Len(eps, 2)
}
