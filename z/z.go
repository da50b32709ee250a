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

// Package z holds small helpers shared by the simulator packages: option
// strings, histograms and hashing.
package z

import (
	"encoding/binary"
	"math"
	"math/big"

	"github.com/cespare/xxhash/v2"
	farm "github.com/dgryski/go-farm"
	"github.com/dustin/go-humanize"
)

// Seed derives a deterministic random seed for the component called name
// from a master seed. An empty name returns the master seed unchanged, so a
// single-component run behaves exactly like one seeded directly.
func Seed(master int64, name string) int64 {
	if name == "" {
		return master
	}
	return master ^ int64(xxhash.Sum64String(name))
}

// Fingerprint returns a 64-bit farmhash fingerprint of an id sequence. Two
// sequences with the same fingerprint are, for reporting purposes, the same
// replay input.
func Fingerprint[T ~uint64](ids []T) uint64 {
	buf := make([]byte, 8*len(ids))
	for i, id := range ids {
		binary.LittleEndian.PutUint64(buf[8*i:], uint64(id))
	}
	return farm.Fingerprint64(buf)
}

// Comma formats an unsigned count with thousands separators, e.g. 1,234,567.
func Comma(v uint64) string {
	if v <= math.MaxInt64 {
		return humanize.Comma(int64(v))
	}
	return humanize.BigComma(new(big.Int).SetUint64(v))
}
