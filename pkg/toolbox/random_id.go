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
	"crypto/rand"
	"encoding/hex"
	"fmt"
	prand "math/rand"
)

// idBytes is 8 random bytes, 16 hex characters. Long enough that a handful of
// clients and servers won't collide in practice.
const idBytes = 8

// RandomID returns a random ID suitable for client and instance identifiers.
func RandomID() string {
	buf := make([]byte, idBytes)
	if _, err := rand.Read(buf); err != nil {
		// IDs are labels, not secrets, so a pseudorandom fallback is fine.
		return fmt.Sprintf("%016x", prand.Uint64())
	}
	return hex.EncodeToString(buf)
}
