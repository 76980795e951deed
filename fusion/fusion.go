// Copyright 2025 PortMesh
// SPDX-License-Identifier: Apache-2.0
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package fusion merges two independently ranked result lists into one fused
// ranking using Reciprocal Rank Fusion (RRF). Consumers typically feed it a
// keyword ranking and a vector ranking obtained from two different ports.
package fusion

import (
	"sort"
)

// DefaultK is the standard RRF dampening constant. It keeps top ranks from
// dominating the fused score.
const DefaultK = 60

// Result is one ranked item. Score carries the producer's native score on
// input and the fused RRF score on output.
type Result struct {
	ID       string                 `json:"id"`
	Score    float64                `json:"score"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Payload  interface{}            `json:"payload,omitempty"`
}

// Option configures a fusion run.
type Option func(*options)

type options struct {
	k       int
	weightA float64
	weightB float64
}

// WithK overrides the RRF constant. Values < 1 fall back to DefaultK.
func WithK(k int) Option {
	return func(o *options) {
		if k >= 1 {
			o.k = k
		}
	}
}

// WithWeights sets the per-list score weights.
func WithWeights(weightA, weightB float64) Option {
	return func(o *options) {
		o.weightA = weightA
		o.weightB = weightB
	}
}

// fused is the per-ID accumulator. seq records first-seen order across both
// input lists and breaks score ties deterministically.
type fused struct {
	result Result
	score  float64
	seq    int
}

// Fuse merges listA and listB. Each occurrence contributes weight/(k+rank)
// with rank counted from 1; an ID present in both lists sums contributions.
// Metadata and payload follow a merge-keep policy: the first non-nil value
// wins and is kept if both occurrences carry one. No entry is dropped, even
// when it appears in only one list.
//
// The output is sorted by fused score descending; equal scores order by first
// appearance in the inputs (listA before listB). Inputs are never mutated and
// identical inputs always produce identical output.
func Fuse(listA, listB []Result, opts ...Option) []Result {
	o := options{k: DefaultK, weightA: 1.0, weightB: 1.0}
	for _, opt := range opts {
		opt(&o)
	}

	acc := make(map[string]*fused, len(listA)+len(listB))
	order := make([]string, 0, len(listA)+len(listB))

	accumulate := func(list []Result, weight float64) {
		for rank, r := range list {
			contribution := weight / float64(o.k+rank+1)
			f, ok := acc[r.ID]
			if !ok {
				f = &fused{
					result: Result{ID: r.ID, Metadata: r.Metadata, Payload: r.Payload},
					seq:    len(order),
				}
				acc[r.ID] = f
				order = append(order, r.ID)
			} else {
				// Merge-keep: first-seen non-nil wins.
				if f.result.Metadata == nil {
					f.result.Metadata = r.Metadata
				}
				if f.result.Payload == nil {
					f.result.Payload = r.Payload
				}
			}
			f.score += contribution
		}
	}

	accumulate(listA, o.weightA)
	accumulate(listB, o.weightB)

	merged := make([]*fused, 0, len(order))
	for _, id := range order {
		acc[id].result.Score = acc[id].score
		merged = append(merged, acc[id])
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].score != merged[j].score {
			return merged[i].score > merged[j].score
		}
		return merged[i].seq < merged[j].seq
	})

	out := make([]Result, len(merged))
	for i, f := range merged {
		out[i] = f.result
	}
	return out
}
