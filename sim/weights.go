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

package sim

import (
	"bufio"
	"io"
	"math/rand"
	"strconv"
	"strings"

	"github.com/dgraph-io/ivfcache"
	"github.com/pkg/errors"
)

// ReadWeights reads a weight table, one `<cluster id> <vector count>` pair
// per line. Blank lines and lines starting with '#' are ignored.
func ReadWeights(r io.Reader) (*ivfcache.Weights, error) {
	m := make(map[ivfcache.ClusterID]uint64)
	scanner := bufio.NewScanner(r)
	var lineNo int
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, errors.Errorf("line %d: want `<id> <weight>`, got %q", lineNo, line)
		}
		id, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: bad cluster id", lineNo)
		}
		weight, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: bad weight", lineNo)
		}
		if _, ok := m[ivfcache.ClusterID(id)]; ok {
			return nil, errors.Errorf("line %d: duplicate cluster %d", lineNo, id)
		}
		m[ivfcache.ClusterID(id)] = weight
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading weights")
	}
	return ivfcache.NewWeights(m)
}

// SyntheticWeights returns nlist clusters 0..nlist-1 with weights drawn
// uniformly from [lo, hi].
func SyntheticWeights(seed int64, nlist int, lo, hi uint64) (*ivfcache.Weights, error) {
	if nlist <= 0 || lo == 0 || hi < lo {
		return nil, errors.Errorf("invalid synthetic weights: nlist=%d range=[%d, %d]", nlist, lo, hi)
	}
	r := rand.New(rand.NewSource(seed))
	m := make(map[ivfcache.ClusterID]uint64, nlist)
	for i := 0; i < nlist; i++ {
		m[ivfcache.ClusterID(i)] = lo + uint64(r.Int63n(int64(hi-lo+1)))
	}
	return ivfcache.NewWeights(m)
}
