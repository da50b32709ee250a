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

// Package sim produces the inputs of a cache simulation: access sequences of
// cluster ids and the weight tables that go with them. Sequences come from
// seeded synthetic generators or from trace files.
package sim

import (
	"bufio"
	"io"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"github.com/dgraph-io/ivfcache"
	"github.com/pkg/errors"
)

var (
	// ErrDone is returned when the underlying stream is exhausted.
	ErrDone = errors.New("no more values in the Simulator")
	// errSkip is returned by parsers for lines that carry no access.
	errSkip = errors.New("skip line")
)

// Simulator is a stream of cluster accesses.
type Simulator func() (ivfcache.ClusterID, error)

// NewZipfian returns an endless stream of ids in [0, n) following a Zipf
// distribution with parameters s > 1 and v >= 1. Small ids are the hottest.
func NewZipfian(seed int64, s, v float64, n uint64) (Simulator, error) {
	if n == 0 {
		return nil, errors.New("zipfian stream needs at least one id")
	}
	if s <= 1 || v < 1 {
		return nil, errors.Errorf("invalid zipf parameters: s=%v v=%v", s, v)
	}
	z := rand.NewZipf(rand.New(rand.NewSource(seed)), s, v, n-1)
	return func() (ivfcache.ClusterID, error) {
		return ivfcache.ClusterID(z.Uint64()), nil
	}, nil
}

// NewUniform returns an endless stream of ids drawn uniformly from [0, n).
func NewUniform(seed int64, n uint64) (Simulator, error) {
	if n == 0 || n > math.MaxInt64 {
		return nil, errors.Errorf("invalid uniform range: n=%d", n)
	}
	m := int64(n)
	r := rand.New(rand.NewSource(seed))
	return func() (ivfcache.ClusterID, error) {
		return ivfcache.ClusterID(r.Int63n(m)), nil
	}, nil
}

// NewProbes models the cluster accesses of an IVF index: every query probes
// nprobe distinct clusters out of nlist, and the stream emits them query by
// query. Cluster popularity follows a Zipf distribution with parameter s > 1,
// spread over the ids by a seeded permutation so that hot clusters are not
// simply the low ids. When the drawn rank is already part of the query, the
// next free rank is taken instead.
func NewProbes(seed int64, nlist, nprobe int, s float64) (Simulator, error) {
	if nlist <= 0 || nprobe <= 0 || nprobe > nlist {
		return nil, errors.Errorf("invalid probe shape: nlist=%d nprobe=%d", nlist, nprobe)
	}
	if s <= 1 {
		return nil, errors.Errorf("zipf parameter must be > 1, got %v", s)
	}
	r := rand.New(rand.NewSource(seed))
	rank := r.Perm(nlist)
	z := rand.NewZipf(r, s, 1, uint64(nlist-1))

	query := make([]ivfcache.ClusterID, 0, nprobe)
	picked := make([]bool, nlist)
	var next int
	return func() (ivfcache.ClusterID, error) {
		if next == len(query) {
			clear(picked)
			query, next = query[:0], 0
			for len(query) < nprobe {
				k := int(z.Uint64())
				for picked[k] {
					k = (k + 1) % nlist
				}
				picked[k] = true
				query = append(query, ivfcache.ClusterID(rank[k]))
			}
		}
		id := query[next]
		next++
		return id, nil
	}, nil
}

// Parser turns one line of a trace into a cluster id. It receives the line
// and the error returned while reading it.
type Parser func(string, error) (ivfcache.ClusterID, error)

// NewReader returns a stream of the accesses of a trace read line by line.
func NewReader(parser Parser, file io.Reader) Simulator {
	b := bufio.NewReader(file)
	return func() (ivfcache.ClusterID, error) {
		for {
			id, err := parser(b.ReadString('\n'))
			if err == errSkip {
				continue
			}
			return id, err
		}
	}
}

// ParseLine parses traces holding one decimal cluster id per line. Blank
// lines and lines starting with '#' are skipped; both "\n" and "\r\n" line
// endings are accepted.
func ParseLine(line string, err error) (ivfcache.ClusterID, error) {
	if err != nil && err != io.EOF {
		return 0, err
	}
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		if err == io.EOF {
			return 0, ErrDone
		}
		return 0, errSkip
	}
	id, perr := strconv.ParseUint(line, 10, 64)
	if perr != nil {
		return 0, errors.Wrapf(perr, "bad cluster id %q", line)
	}
	return ivfcache.ClusterID(id), nil
}

// Collection reads up to size accesses from simulator. It stops early,
// without error, when the stream is exhausted.
func Collection(simulator Simulator, size uint64) ([]ivfcache.ClusterID, error) {
	collection := make([]ivfcache.ClusterID, 0, min(size, 1<<16))
	for uint64(len(collection)) < size {
		id, err := simulator()
		if err == ErrDone {
			break
		}
		if err != nil {
			return nil, err
		}
		collection = append(collection, id)
	}
	return collection, nil
}

// ReadQueries reads a per-query trace: every line lists the clusters probed
// by one query, as whitespace separated decimal ids. Blank lines and lines
// starting with '#' are skipped.
func ReadQueries(r io.Reader) ([][]ivfcache.ClusterID, error) {
	var queries [][]ivfcache.ClusterID
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), 16<<20)
	var lineNo int
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		query := make([]ivfcache.ClusterID, 0, len(fields))
		for _, f := range fields {
			id, err := strconv.ParseUint(f, 10, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: bad cluster id %q", lineNo, f)
			}
			query = append(query, ivfcache.ClusterID(id))
		}
		queries = append(queries, query)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading queries")
	}
	return queries, nil
}

// Flatten concatenates per-query probe lists into one access sequence, keeping
// the query order and the probe order within each query.
func Flatten(queries [][]ivfcache.ClusterID) []ivfcache.ClusterID {
	var n int
	for _, q := range queries {
		n += len(q)
	}
	seq := make([]ivfcache.ClusterID, 0, n)
	for _, q := range queries {
		seq = append(seq, q...)
	}
	return seq
}
