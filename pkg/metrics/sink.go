package metrics

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

// Reconcile outcomes reported through the sink.
const (
	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
)

// Lookup error kinds reported through the sink.
const (
	LookupNoNodes        = "no_nodes"
	LookupUnhealthyOwner = "unhealthy_owner"
)

// Sink receives routing metrics from the pool. Implement this interface to
// write to other kinds of systems.
type Sink interface {
	SetNodeCount(nodes int)
	SetShardCount(shards int)
	SetGeneration(generation uint64)
	Reconcile(outcome string)
	LookupError(kind string)
}

// The list of supported metrics sinks
const (
	PrometheusSink = "prometheus"
	NoSink         = "none"
)

// NewSinkFromString returns a named sink
func NewSinkFromString(name string, clientID string) Sink {
	switch name {
	case "prometheus":
		return NewPrometheusSink(clientID)
	default:
		return NewBlackHoleSink()
	}
}
