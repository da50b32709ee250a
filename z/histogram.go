/*
 * Copyright 2020 Dgraph Labs, Inc. and Contributors
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

package z

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// HistogramBounds creates bounds for a histogram. The bounds are powers of two
// of the form [2^minExponent, ..., 2^maxExponent].
func HistogramBounds(minExponent, maxExponent uint32) []float64 {
	var bounds []float64
	for i := minExponent; i <= maxExponent; i++ {
		bounds = append(bounds, float64(int(1)<<i))
	}
	return bounds
}

// HistogramData records the distribution of integer samples, such as the
// weights of evicted clusters.
type HistogramData struct {
	Bounds         []float64
	Count          int64
	CountPerBucket []int64
	Min            int64
	Max            int64
	Sum            int64
}

// NewHistogramData returns a new instance of HistogramData with properly
// initialized fields.
func NewHistogramData(bounds []float64) *HistogramData {
	return &HistogramData{
		Bounds:         bounds,
		CountPerBucket: make([]int64, len(bounds)+1),
		Max:            0,
		Min:            math.MaxInt64,
	}
}

// Copy returns a deep copy of the histogram.
func (histogram *HistogramData) Copy() *HistogramData {
	if histogram == nil {
		return nil
	}
	return &HistogramData{
		Bounds:         append([]float64(nil), histogram.Bounds...),
		CountPerBucket: append([]int64(nil), histogram.CountPerBucket...),
		Count:          histogram.Count,
		Min:            histogram.Min,
		Max:            histogram.Max,
		Sum:            histogram.Sum,
	}
}

// Update records value.
func (histogram *HistogramData) Update(value int64) {
	if value > histogram.Max {
		histogram.Max = value
	}
	if value < histogram.Min {
		histogram.Min = value
	}

	histogram.Sum += value
	histogram.Count++

	for index := 0; index <= len(histogram.Bounds); index++ {
		// Allocate value in the last bucket if we reached the end of the Bounds array.
		if index == len(histogram.Bounds) {
			histogram.CountPerBucket[index]++
			break
		}
		if value < int64(histogram.Bounds[index]) {
			histogram.CountPerBucket[index]++
			break
		}
	}
}

// Mean returns the average of all recorded values, or 0 if there are none.
func (histogram *HistogramData) Mean() float64 {
	if histogram == nil || histogram.Count == 0 {
		return 0
	}
	return float64(histogram.Sum) / float64(histogram.Count)
}

// Percentile returns the upper bound of the bucket holding the p-th
// percentile, p in [0, 1]. Values past the last bound report the last bound.
func (histogram *HistogramData) Percentile(p float64) float64 {
	if histogram == nil || histogram.Count == 0 || len(histogram.Bounds) == 0 {
		return 0
	}
	if p <= 0 {
		return histogram.Bounds[0]
	}
	want := int64(math.Ceil(p * float64(histogram.Count)))
	var seen int64
	for index, count := range histogram.CountPerBucket {
		seen += count
		if seen >= want {
			if index >= len(histogram.Bounds) {
				break
			}
			return histogram.Bounds[index]
		}
	}
	return histogram.Bounds[len(histogram.Bounds)-1]
}

// String renders the non-empty buckets in a human-readable format.
func (histogram *HistogramData) String() string {
	if histogram == nil || histogram.Count == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Count: %s Min: %s Max: %s Mean: %.2f\n",
		humanize.Comma(histogram.Count), humanize.Comma(histogram.Min),
		humanize.Comma(histogram.Max), histogram.Mean())
	fmt.Fprintf(&b, "%24s %9s\n", "Range", "Count")

	numBounds := len(histogram.Bounds)
	for index, count := range histogram.CountPerBucket {
		if count == 0 {
			continue
		}
		// The last bucket holds everything from the last bound up to infinity.
		if index == len(histogram.CountPerBucket)-1 {
			lowerBound := int(histogram.Bounds[numBounds-1])
			fmt.Fprintf(&b, "[%10d, %10s) %9d\n", lowerBound, "infinity", count)
			continue
		}
		upperBound := int(histogram.Bounds[index])
		lowerBound := 0
		if index > 0 {
			lowerBound = int(histogram.Bounds[index-1])
		}
		fmt.Fprintf(&b, "[%10d, %10d) %9d\n", lowerBound, upperBound, count)
	}
	return b.String()
}
