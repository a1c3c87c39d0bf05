package feed

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
import "github.com/fjordlab/memtopo/pkg/topo"

// Sink receives topology documents from a source. A source calls the sink
// serially, in delivery order; the consumer must not assume any particular
// goroutine.
type Sink func(doc *topo.Document)

// Source supplies topology documents to a routing pool. Start registers the
// sink and begins delivery; the first document is delivered as soon as the
// source has one. A Start error means the source is unusable (missing or
// broken configuration), not that the cluster is temporarily unreachable.
// After Stop returns no further sink calls are made.
type Source interface {
	Start(sink Sink) error
	Stop() error
}
