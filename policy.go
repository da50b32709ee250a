/*
 * Copyright 2019 Dgraph Labs, Inc. and Contributors
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
	"github.com/dgraph-io/ivfcache/z"
	"github.com/pkg/errors"
)

// Policy is the interface encapsulating admission/eviction behavior of a
// weight-bounded cluster cache. Implementations are not safe for concurrent
// use; callers must serialize access to an instance.
type Policy interface {
	// Setup binds the policy to a weight table. It must be called before
	// Access, and again after every Reset.
	Setup(w *Weights) error
	// Reset clears residency, counters and the weight table.
	Reset()
	// Access records one access to the cluster id.
	Access(id ClusterID) error
	// Capacity returns the maximum occupied weight.
	Capacity() uint64
	// Size returns the currently occupied weight.
	Size() uint64
	Hits() uint64
	Misses() uint64
	// VectorsRead returns the total weight charged on misses.
	VectorsRead() uint64
	// Resident returns the resident clusters, most recently used first where
	// the policy keeps an order.
	Resident() []ClusterID
	// Metrics returns the live counters of the instance.
	Metrics() *Metrics
	// String describes the policy and its parameters.
	String() string
}

// Kind selects one of the eviction policies.
type Kind string

const (
	// KindLRU evicts the least recently used cluster.
	KindLRU Kind = "lru"
	// KindPinned pins the heaviest clusters and runs LRU over the rest.
	KindPinned Kind = "pinned"
	// KindRandom evicts uniformly random clusters.
	KindRandom Kind = "random"
)

// Config describes a policy instance.
type Config struct {
	Kind Kind
	// Capacity is the maximum occupied weight, in vectors.
	Capacity uint64
	// PinCount is the number of heaviest clusters pinned by KindPinned.
	PinCount int
	// Seed seeds the eviction choices of KindRandom.
	Seed int64
}

const policyDefaults = `kind=lru; capacity=0; pincount=0; seed=0;`

// PolicyHelp documents the options accepted by ParseConfig.
var PolicyHelp = z.NewSuperFlagHelp(policyDefaults).
	Flag("kind", `Eviction policy: "lru", "pinned" or "random".`).
	Flag("capacity", "Cache capacity in vectors.").
	Flag("pincount", "Number of heaviest clusters to pin (pinned only).").
	Flag("seed", "Seed for eviction choices (random only).").
	String()

// ParseConfig parses an option string such as
// `kind=pinned; capacity=100000; pincount=8`.
func ParseConfig(opts string) (Config, error) {
	sf, err := z.NewSuperFlag(opts)
	if err == nil {
		err = sf.MergeAndCheckDefault(policyDefaults)
	}
	if err != nil {
		return Config{}, errors.Wrap(ErrConfiguration, err.Error())
	}
	capacity, err := sf.GetUint64("capacity")
	if err != nil {
		return Config{}, errors.Wrap(ErrConfiguration, err.Error())
	}
	pincount, err := sf.GetInt64("pincount")
	if err != nil {
		return Config{}, errors.Wrap(ErrConfiguration, err.Error())
	}
	seed, err := sf.GetInt64("seed")
	if err != nil {
		return Config{}, errors.Wrap(ErrConfiguration, err.Error())
	}
	return Config{
		Kind:     Kind(sf.GetString("kind")),
		Capacity: capacity,
		PinCount: int(pincount),
		Seed:     seed,
	}, nil
}

// NewPolicy builds the policy described by cfg.
func NewPolicy(cfg Config) (Policy, error) {
	if cfg.PinCount != 0 && cfg.Kind != KindPinned {
		return nil, configErrorf("pincount is only valid for %q policies, got %q", KindPinned, cfg.Kind)
	}
	switch cfg.Kind {
	case KindLRU:
		return NewRecencyCache(cfg.Capacity), nil
	case KindPinned:
		return NewPinnedRecencyCache(cfg.Capacity, cfg.PinCount)
	case KindRandom:
		return NewRandomEvictionCache(cfg.Capacity, cfg.Seed), nil
	default:
		return nil, configErrorf("unknown policy kind %q", cfg.Kind)
	}
}

// ParsePolicy is shorthand for ParseConfig followed by NewPolicy.
func ParsePolicy(opts string) (Policy, error) {
	cfg, err := ParseConfig(opts)
	if err != nil {
		return nil, err
	}
	return NewPolicy(cfg)
}
