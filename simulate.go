/*
 * Copyright 2024 Dgraph Labs, Inc. and Contributors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package ivfcache

import (
	"fmt"

	"github.com/dgraph-io/ivfcache/z"
	"github.com/pkg/errors"
)

// Baseline is the cost of a sequence under an unbounded cache: every distinct
// cluster is read exactly once.
type Baseline struct {
	UniqueClusters uint64
	UniqueVectors  uint64
}

// NewBaseline computes the unavoidable reads of seq. Every id of seq must be
// part of w.
func NewBaseline(seq []ClusterID, w *Weights) (Baseline, error) {
	var b Baseline
	seen := make(map[ClusterID]struct{})
	for i, id := range seq {
		if _, ok := seen[id]; ok {
			continue
		}
		weight, err := w.Weight(id)
		if err != nil {
			return Baseline{}, errors.Wrapf(err, "access %d", i)
		}
		seen[id] = struct{}{}
		b.UniqueClusters++
		b.UniqueVectors += weight
	}
	return b, nil
}

// Result is the outcome of replaying one sequence through one policy.
type Result struct {
	// Policy describes the policy that produced the result.
	Policy      string
	Accesses    int
	Hits        uint64
	Misses      uint64
	VectorsRead uint64
	// ClustersAdmitted counts insertions into the resident set.
	ClustersAdmitted uint64
	// ClustersEvicted and VectorsEvicted count evictions and their weight.
	ClustersEvicted uint64
	VectorsEvicted  uint64
	// EvictedWeights is the distribution of the weights of evicted clusters.
	EvictedWeights *z.HistogramData
	Baseline
	// Fingerprint identifies the replayed sequence.
	Fingerprint uint64
	// Err is set by Sweep when the configuration could not be simulated.
	Err error
}

// HitRatio is Hits over all accesses, including the initial pinned reads.
func (r *Result) HitRatio() float64 {
	if r.Hits+r.Misses == 0 {
		return 0
	}
	return float64(r.Hits) / float64(r.Hits+r.Misses)
}

// ReadAmplification is VectorsRead over the unavoidable vector reads. A value
// of 1 means the policy did as well as an unbounded cache.
func (r *Result) ReadAmplification() float64 {
	if r.UniqueVectors == 0 {
		return 0
	}
	return float64(r.VectorsRead) / float64(r.UniqueVectors)
}

func (r *Result) String() string {
	if r.Err != nil {
		return fmt.Sprintf("%s: %v", r.Policy, r.Err)
	}
	return fmt.Sprintf("%s: hits=%d misses=%d vectors-read=%d unique-clusters=%d unique-vectors=%d",
		r.Policy, r.Hits, r.Misses, r.VectorsRead, r.UniqueClusters, r.UniqueVectors)
}

// EvictedWeightPercentile returns the bucket bound holding the p-th
// percentile of evicted cluster weights, or 0 without evictions.
func (r *Result) EvictedWeightPercentile(p float64) float64 {
	return r.EvictedWeights.Percentile(p)
}

// Run feeds seq through p, which must already be set up with w, one access at
// a time and in order. Neither seq nor w is modified. The sequence is checked
// against w before the first access, so an unknown id leaves p untouched.
func Run(p Policy, seq []ClusterID, w *Weights) (*Result, error) {
	base, err := NewBaseline(seq, w)
	if err != nil {
		return nil, err
	}
	for i, id := range seq {
		if err := p.Access(id); err != nil {
			return nil, errors.Wrapf(err, "%s: access %d", p, i)
		}
	}
	m := p.Metrics()
	return &Result{
		Policy:           p.String(),
		Accesses:         len(seq),
		Hits:             p.Hits(),
		Misses:           p.Misses(),
		VectorsRead:      p.VectorsRead(),
		ClustersAdmitted: m.ClustersAdmitted(),
		ClustersEvicted:  m.ClustersEvicted(),
		VectorsEvicted:   m.VectorsEvicted(),
		EvictedWeights:   m.EvictedWeights(),
		Baseline:         base,
		Fingerprint:      z.Fingerprint(seq),
	}, nil
}

// Sweep resets, sets up and runs every policy against the same sequence. A
// policy that fails does not stop the others: its Result carries the error
// instead of counters.
func Sweep(policies []Policy, seq []ClusterID, w *Weights) []*Result {
	results := make([]*Result, 0, len(policies))
	for _, p := range policies {
		p.Reset()
		if err := p.Setup(w); err != nil {
			results = append(results, &Result{Policy: p.String(), Err: err})
			continue
		}
		r, err := Run(p, seq, w)
		if err != nil {
			r = &Result{Policy: p.String(), Err: err}
		}
		results = append(results, r)
	}
	return results
}

// candidate is a resident cluster as seen by Clairvoyant. The "least"
// candidate is the best victim: the one whose next access is furthest away.
type candidate struct {
	id     ClusterID
	weight uint64
	next   int
}

func (c candidate) Less(other *candidate) bool {
	if c.next != other.next {
		return c.next > other.next
	}
	if c.weight != other.weight {
		return c.weight > other.weight
	}
	return c.id < other.id
}

// Clairvoyant replays seq through an offline policy that looks into the
// future and evicts the clusters whose next access is furthest away, heaviest
// first among ties. Clusters heavier than capacity are read but never
// admitted. With equal weights this is Belady's optimal policy; with variable
// weights it is a strong reference point rather than a proven minimum.
func Clairvoyant(capacity uint64, seq []ClusterID, w *Weights) (*Result, error) {
	base, err := NewBaseline(seq, w)
	if err != nil {
		return nil, err
	}

	// next[i] is the position of the following access to seq[i].
	never := len(seq)
	next := make([]int, len(seq))
	last := make(map[ClusterID]int)
	for i := len(seq) - 1; i >= 0; i-- {
		next[i] = never
		if j, ok := last[seq[i]]; ok {
			next[i] = j
		}
		last[seq[i]] = i
	}

	r := &Result{
		Policy:         fmt.Sprintf("clairvoyant(capacity=%d)", capacity),
		Accesses:       len(seq),
		EvictedWeights: z.NewHistogramData(evictedBounds),
		Baseline:       base,
		Fingerprint:    z.Fingerprint(seq),
	}
	// resident maps a cluster to its next access. Heap entries whose next
	// access no longer matches are stale and skipped.
	resident := make(map[ClusterID]int)
	var used uint64
	h := NewMinHeap[candidate]()
	for i, id := range seq {
		weight, _ := w.Weight(id)
		if _, ok := resident[id]; ok {
			r.Hits++
			resident[id] = next[i]
			h.Insert(&candidate{id: id, weight: weight, next: next[i]})
			continue
		}
		r.Misses++
		r.VectorsRead += weight
		if weight > capacity {
			continue
		}
		for used+weight > capacity {
			victim, _ := h.Extract()
			if n, ok := resident[victim.id]; !ok || n != victim.next {
				continue
			}
			delete(resident, victim.id)
			used -= victim.weight
			r.ClustersEvicted++
			r.VectorsEvicted += victim.weight
			r.EvictedWeights.Update(int64(victim.weight))
		}
		resident[id] = next[i]
		used += weight
		r.ClustersAdmitted++
		h.Insert(&candidate{id: id, weight: weight, next: next[i]})
	}
	return r, nil
}
