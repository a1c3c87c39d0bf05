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
	"crypto/md5"
	"fmt"
	"hash/crc32"
	"hash/fnv"
	"strings"

	"github.com/fjordlab/memtopo/pkg/topo"
)

// KeyHash maps a key to a 32 bit hash value.
type KeyHash func(key string) uint32

// The hash algorithm names a topology document may declare. The set is
// closed; servers and clients must agree on the key to shard mapping, so an
// unknown name is a configuration error and never falls back to a default.
const (
	HashCRC    = "crc"
	HashFNV1a  = "fnv1a"
	HashKetama = "ketama"
)

// KeyHashByName returns the named hash function.
func KeyHashByName(name string) (KeyHash, error) {
	switch strings.ToLower(name) {
	case HashCRC:
		return crcHash, nil
	case HashFNV1a:
		return fnv1aHash, nil
	case HashKetama:
		return ketamaHash, nil
	}
	return nil, fmt.Errorf("%w: unknown hash algorithm %q", topo.ErrInvalidDocument, name)
}

// crcHash folds CRC-32 (IEEE) down to 15 bits. This is the folding the shard
// map wire format was designed around; using the full checksum would disagree
// with the servers' placement.
func crcHash(key string) uint32 {
	return (crc32.ChecksumIEEE([]byte(key)) >> 16) & 0x7fff
}

func fnv1aHash(key string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(key))
	return h.Sum32()
}

// ketamaHash uses the first four bytes of the MD5 digest, little endian.
func ketamaHash(key string) uint32 {
	sum := md5.Sum([]byte(key))
	return uint32(sum[3])<<24 | uint32(sum[2])<<16 | uint32(sum[1])<<8 | uint32(sum[0])
}

// ringHash is the default point hash for the ring locator. Full 32 bit CRC
// for an even spread over the point space.
func ringHash(key string) uint32 {
	return crc32.ChecksumIEEE([]byte(key))
}
