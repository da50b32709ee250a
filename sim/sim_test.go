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

package sim

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dgraph-io/ivfcache"
	"github.com/stretchr/testify/require"
)

func newZipfian(t *testing.T, seed int64, s, v float64, n uint64) Simulator {
	t.Helper()
	z, err := NewZipfian(seed, s, v, n)
	require.NoError(t, err)
	return z
}

func newUniform(t *testing.T, seed int64, n uint64) Simulator {
	t.Helper()
	u, err := NewUniform(seed, n)
	require.NoError(t, err)
	return u
}

func TestZipfian(t *testing.T) {
	s := newZipfian(t, 1, 1.25, 2, 100)
	counts := make(map[ivfcache.ClusterID]int)
	for i := 0; i < 10000; i++ {
		id, err := s()
		if err != nil {
			t.Fatal(err)
		}
		if id >= 100 {
			t.Fatalf("id %d out of range", id)
		}
		counts[id]++
	}
	if counts[0] <= counts[99] {
		t.Fatal("zipfian stream is not skewed towards small ids")
	}
}

func TestZipfianSeeded(t *testing.T) {
	a, err := Collection(newZipfian(t, 7, 1.1, 1, 1000), 500)
	require.NoError(t, err)
	b, err := Collection(newZipfian(t, 7, 1.1, 1, 1000), 500)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestUniform(t *testing.T) {
	s := newUniform(t, 1, 100)
	for i := 0; i < 100; i++ {
		id, err := s()
		if err != nil {
			t.Fatal(err)
		}
		if id >= 100 {
			t.Fatalf("id %d out of range", id)
		}
	}
}

func TestEmptyRange(t *testing.T) {
	_, err := NewZipfian(1, 1.1, 1, 0)
	require.Error(t, err)
	_, err = NewZipfian(1, 1, 1, 10)
	require.Error(t, err)
	_, err = NewUniform(1, 0)
	require.Error(t, err)
}

func TestProbes(t *testing.T) {
	const nlist, nprobe = 64, 8
	s, err := NewProbes(3, nlist, nprobe, 1.2)
	require.NoError(t, err)
	for q := 0; q < 100; q++ {
		seen := make(map[ivfcache.ClusterID]struct{}, nprobe)
		for i := 0; i < nprobe; i++ {
			id, err := s()
			require.NoError(t, err)
			require.Less(t, uint64(id), uint64(nlist))
			_, dup := seen[id]
			require.False(t, dup, "query %d probes cluster %d twice", q, id)
			seen[id] = struct{}{}
		}
	}
}

func TestProbesAll(t *testing.T) {
	s, err := NewProbes(3, 4, 4, 1.5)
	require.NoError(t, err)
	seq, err := Collection(s, 4)
	require.NoError(t, err)
	require.ElementsMatch(t, []ivfcache.ClusterID{0, 1, 2, 3}, seq)
}

func TestProbesSkewedFullScan(t *testing.T) {
	// Every query probes every cluster while the skew makes the tail ranks
	// almost impossible to draw.
	const nlist = 200
	s, err := NewProbes(1, nlist, nlist, 5)
	require.NoError(t, err)
	for q := 0; q < 3; q++ {
		query, err := Collection(s, nlist)
		require.NoError(t, err)
		require.Len(t, query, nlist)
		seen := make(map[ivfcache.ClusterID]struct{}, nlist)
		for _, id := range query {
			seen[id] = struct{}{}
		}
		require.Len(t, seen, nlist)
	}
}

func TestProbesInvalid(t *testing.T) {
	_, err := NewProbes(1, 0, 1, 1.2)
	require.Error(t, err)
	_, err = NewProbes(1, 4, 5, 1.2)
	require.Error(t, err)
	_, err = NewProbes(1, 4, 2, 1)
	require.Error(t, err)
}

func TestParseLine(t *testing.T) {
	s := NewReader(ParseLine, bytes.NewReader([]byte{
		'0', '\r', '\n',
		'1', '\r', '\n',
		'2', '\r', '\n',
	}))
	for i := ivfcache.ClusterID(0); i < 3; i++ {
		v, err := s()
		if err != nil {
			t.Fatal(err)
		}
		if v != i {
			t.Fatal("value mismatch")
		}
	}
	if _, err := s(); err != ErrDone {
		t.Fatalf("expected ErrDone, got %v", err)
	}
}

func TestParseLineComments(t *testing.T) {
	trace := "# query 0\n5\n\n7\n# query 1\n5\n9"
	seq, err := Collection(NewReader(ParseLine, strings.NewReader(trace)), 100)
	require.NoError(t, err)
	require.Equal(t, []ivfcache.ClusterID{5, 7, 5, 9}, seq)
}

func TestParseLineInvalid(t *testing.T) {
	s := NewReader(ParseLine, strings.NewReader("1\nx\n"))
	_, err := s()
	require.NoError(t, err)
	_, err = s()
	require.Error(t, err)
	require.NotEqual(t, ErrDone, err)
}

func TestCollect(t *testing.T) {
	s := newUniform(t, 1, 100)
	c, err := Collection(s, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(c) != 100 {
		t.Fatal("collection not full")
	}
}

func TestCollectShort(t *testing.T) {
	c, err := Collection(NewReader(ParseLine, strings.NewReader("1\n2\n")), 100)
	require.NoError(t, err)
	require.Equal(t, []ivfcache.ClusterID{1, 2}, c)
}

func TestFlatten(t *testing.T) {
	seq := Flatten([][]ivfcache.ClusterID{{3, 1}, {}, {2, 3}})
	require.Equal(t, []ivfcache.ClusterID{3, 1, 2, 3}, seq)
	require.Empty(t, Flatten(nil))
}

func TestReadQueries(t *testing.T) {
	queries, err := ReadQueries(strings.NewReader("# probes per query\n3 1\r\n\n2\t3 7\n"))
	require.NoError(t, err)
	require.Equal(t, [][]ivfcache.ClusterID{{3, 1}, {2, 3, 7}}, queries)
	require.Equal(t, []ivfcache.ClusterID{3, 1, 2, 3, 7}, Flatten(queries))

	_, err = ReadQueries(strings.NewReader("1 2\n3 x\n"))
	require.Error(t, err)
}

func TestReadWeights(t *testing.T) {
	w, err := ReadWeights(strings.NewReader("# id weight\n0 10\r\n1\t5\n\n2 20\n"))
	require.NoError(t, err)
	require.Equal(t, 3, w.Len())
	require.Equal(t, uint64(35), w.Total())
	weight, err := w.Weight(2)
	require.NoError(t, err)
	require.Equal(t, uint64(20), weight)
}

func TestReadWeightsInvalid(t *testing.T) {
	tests := map[string]string{
		"fields":    "0 10 3\n",
		"id":        "a 10\n",
		"weight":    "0 -1\n",
		"duplicate": "0 10\n0 11\n",
		"zero":      "0 0\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadWeights(strings.NewReader(in))
			require.Error(t, err)
		})
	}
}

func TestSyntheticWeights(t *testing.T) {
	w, err := SyntheticWeights(1, 50, 10, 20)
	require.NoError(t, err)
	require.Equal(t, 50, w.Len())
	for _, id := range w.IDs() {
		weight, err := w.Weight(id)
		require.NoError(t, err)
		require.GreaterOrEqual(t, weight, uint64(10))
		require.LessOrEqual(t, weight, uint64(20))
	}
	again, err := SyntheticWeights(1, 50, 10, 20)
	require.NoError(t, err)
	require.Equal(t, w.Total(), again.Total())

	_, err = SyntheticWeights(1, 0, 10, 20)
	require.Error(t, err)
	_, err = SyntheticWeights(1, 5, 0, 20)
	require.Error(t, err)
	_, err = SyntheticWeights(1, 5, 30, 20)
	require.Error(t, err)
}
