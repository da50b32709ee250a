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

package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/dgraph-io/ivfcache"
	"github.com/dgraph-io/ivfcache/sim"
	"github.com/dgraph-io/ivfcache/z"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config is the matrix file read by `ivfsim run`: one workload replayed
// through every listed cache.
type Config struct {
	// Seed is the master seed. Synthetic inputs and random caches without an
	// explicit seed derive their own seeds from it.
	Seed    int64         `yaml:"seed"`
	Weights WeightsConfig `yaml:"weights"`
	Trace   TraceConfig   `yaml:"trace"`
	// Caches holds one policy option string per cache, see ivfcache.PolicyHelp.
	Caches []string `yaml:"caches"`
	// Clairvoyant lists capacities to replay through the offline reference.
	Clairvoyant []uint64 `yaml:"clairvoyant"`

	// dir resolves relative file names.
	dir string
}

// WeightsConfig either names a weight table file or describes a synthetic
// table of NList clusters weighing between Min and Max vectors.
type WeightsConfig struct {
	File  string `yaml:"file"`
	NList int    `yaml:"nlist"`
	Min   uint64 `yaml:"min"`
	Max   uint64 `yaml:"max"`
}

// TraceConfig either names a trace file or describes a synthetic stream of
// Queries queries probing NProbe clusters each.
type TraceConfig struct {
	File string `yaml:"file"`
	// PerQuery reads File as one query per line, listing its probed clusters.
	// Otherwise File holds one access per line.
	PerQuery bool `yaml:"per_query"`
	// Limit caps the number of accesses read from File. Zero reads it all.
	Limit uint64 `yaml:"limit"`

	// Source picks the synthetic generator: "probes" (default) draws NProbe
	// distinct clusters per query, "zipf" and "uniform" draw every access
	// independently.
	Source  string  `yaml:"source"`
	Queries int     `yaml:"queries"`
	NProbe  int     `yaml:"nprobe"`
	Skew    float64 `yaml:"skew"`
}

// Synthetic trace sources.
const (
	sourceProbes  = "probes"
	sourceZipf    = "zipf"
	sourceUniform = "uniform"
)

// ReadConfig loads the matrix file at path. Relative file names inside it
// are resolved against its directory.
func ReadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	return decodeConfig(bytes.NewReader(data), filepath.Dir(path))
}

func decodeConfig(r io.Reader, dir string) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, errors.Wrap(err, "parsing config")
	}
	c.dir = dir
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	if (c.Weights.File == "") == (c.Weights.NList == 0) {
		return errors.New("weights: exactly one of file and nlist must be set")
	}
	if (c.Trace.File == "") == (c.Trace.Queries == 0) {
		return errors.New("trace: exactly one of file and queries must be set")
	}
	if c.Trace.File == "" {
		if c.Trace.Skew == 0 {
			c.Trace.Skew = 1.1
		}
		if c.Trace.NProbe == 0 {
			c.Trace.NProbe = 1
		}
		switch c.Trace.Source {
		case "":
			c.Trace.Source = sourceProbes
		case sourceProbes, sourceZipf, sourceUniform:
		default:
			return errors.Errorf("trace: unknown source %q", c.Trace.Source)
		}
	}
	if len(c.Caches) == 0 && len(c.Clairvoyant) == 0 {
		return errors.New("no caches to simulate")
	}
	return nil
}

func (c *Config) path(name string) string {
	if filepath.IsAbs(name) || c.dir == "" {
		return name
	}
	return filepath.Join(c.dir, name)
}

// LoadWeights reads or generates the weight table.
func (c *Config) LoadWeights() (*ivfcache.Weights, error) {
	if c.Weights.File == "" {
		return sim.SyntheticWeights(z.Seed(c.Seed, "weights"),
			c.Weights.NList, c.Weights.Min, c.Weights.Max)
	}
	f, err := os.Open(c.path(c.Weights.File))
	if err != nil {
		return nil, errors.Wrap(err, "opening weights")
	}
	defer f.Close()
	return sim.ReadWeights(f)
}

// LoadTrace reads or generates the access sequence. Synthetic accesses are
// spread over the clusters of w.
func (c *Config) LoadTrace(w *ivfcache.Weights) ([]ivfcache.ClusterID, error) {
	if c.Trace.File != "" {
		return c.readTrace()
	}

	ids := w.IDs()
	seed := z.Seed(c.Seed, "trace")
	var (
		stream sim.Simulator
		err    error
	)
	switch c.Trace.Source {
	case sourceZipf:
		stream, err = sim.NewZipfian(seed, c.Trace.Skew, 1, uint64(len(ids)))
	case sourceUniform:
		stream, err = sim.NewUniform(seed, uint64(len(ids)))
	default:
		stream, err = sim.NewProbes(seed, len(ids), c.Trace.NProbe, c.Trace.Skew)
	}
	if err != nil {
		return nil, err
	}
	seq, err := sim.Collection(stream, uint64(c.Trace.Queries)*uint64(c.Trace.NProbe))
	if err != nil {
		return nil, err
	}
	for i, rank := range seq {
		seq[i] = ids[rank]
	}
	return seq, nil
}

func (c *Config) readTrace() ([]ivfcache.ClusterID, error) {
	f, err := os.Open(c.path(c.Trace.File))
	if err != nil {
		return nil, errors.Wrap(err, "opening trace")
	}
	defer f.Close()

	limit := c.Trace.Limit
	if limit == 0 {
		limit = ^uint64(0)
	}
	if !c.Trace.PerQuery {
		return sim.Collection(sim.NewReader(sim.ParseLine, f), limit)
	}
	queries, err := sim.ReadQueries(f)
	if err != nil {
		return nil, err
	}
	seq := sim.Flatten(queries)
	if uint64(len(seq)) > limit {
		seq = seq[:limit]
	}
	return seq, nil
}

// Policies builds one policy per cache entry. Entries that do not describe
// a valid policy are logged and skipped so the rest of the matrix still runs.
func (c *Config) Policies() []ivfcache.Policy {
	policies := make([]ivfcache.Policy, 0, len(c.Caches))
	for i, opts := range c.Caches {
		p, err := c.policy(opts)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"entry": i,
				"cache": opts,
			}).Warnf("Skipping cache: %v", err)
			continue
		}
		policies = append(policies, p)
	}
	return policies
}

func (c *Config) policy(opts string) (ivfcache.Policy, error) {
	cfg, err := ivfcache.ParseConfig(opts)
	if err != nil {
		return nil, err
	}
	if cfg.Kind == ivfcache.KindRandom {
		// ParseConfig validated opts already.
		sf, _ := z.NewSuperFlag(opts)
		if !sf.Has("seed") {
			cfg.Seed = z.Seed(c.Seed, opts)
		}
	}
	return ivfcache.NewPolicy(cfg)
}
