package z

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHistogramBounds(t *testing.T) {
	require.Equal(t, []float64{2, 4, 8, 16}, HistogramBounds(1, 4))
}

func TestHistogramUpdate(t *testing.T) {
	h := NewHistogramData(HistogramBounds(1, 4))
	for _, v := range []int64{1, 3, 3, 9, 100} {
		h.Update(v)
	}
	require.Equal(t, int64(5), h.Count)
	require.Equal(t, int64(1), h.Min)
	require.Equal(t, int64(100), h.Max)
	require.Equal(t, int64(116), h.Sum)
	// [0,2) [2,4) [4,8) [8,16) [16,inf)
	require.Equal(t, []int64{1, 2, 0, 1, 1}, h.CountPerBucket)
	require.InDelta(t, 23.2, h.Mean(), 1e-9)
}

func TestHistogramPercentile(t *testing.T) {
	h := NewHistogramData(HistogramBounds(1, 4))
	require.Equal(t, 0.0, h.Percentile(0.5))

	for i := 0; i < 90; i++ {
		h.Update(1)
	}
	for i := 0; i < 10; i++ {
		h.Update(10)
	}
	require.Equal(t, 2.0, h.Percentile(0.0))
	require.Equal(t, 2.0, h.Percentile(0.5))
	require.Equal(t, 2.0, h.Percentile(0.8))
	require.Equal(t, 16.0, h.Percentile(0.99))

	h.Update(1000)
	require.Equal(t, 16.0, h.Percentile(1.0))
}

func TestHistogramCopy(t *testing.T) {
	h := NewHistogramData(HistogramBounds(1, 2))
	h.Update(3)
	c := h.Copy()
	h.Update(1)
	require.Equal(t, int64(1), c.Count)
	require.Equal(t, int64(2), h.Count)
	require.Equal(t, []int64{0, 1, 0}, c.CountPerBucket)

	var nilHist *HistogramData
	require.Nil(t, nilHist.Copy())
	require.Equal(t, "", nilHist.String())
}

func TestHistogramString(t *testing.T) {
	h := NewHistogramData(HistogramBounds(1, 2))
	h.Update(1500)
	s := h.String()
	require.Contains(t, s, "Count: 1 Min: 1,500 Max: 1,500")
	require.Contains(t, s, "infinity")
}
