// Package timeseries holds the date/value primitives shared by the macro
// snapshot builder and the meso analyzer: sorting and cleaning raw series,
// point-in-time lookups, and percentile/z-score normalization against
// trailing history.
package timeseries

import (
	"math"
	"sort"
	"time"

	"github.com/montanaflynn/stats"
)

// minSample is the number of valid observations required before
// percentile/z-score are considered meaningful. Below it both return
// neutral defaults rather than failing.
const minSample = 20

type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Clean returns the points sorted ascending by date with non-finite values
// dropped. The input is not modified.
func Clean(points []Point) []Point {
	out := make([]Point, 0, len(points))
	for _, p := range points {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// ValueAtOrBefore returns the latest value whose date is <= target. If the
// target precedes all data it returns the earliest value; on an empty
// series it reports false.
func ValueAtOrBefore(points []Point, target time.Time) (float64, bool) {
	if len(points) == 0 {
		return 0, false
	}
	for i := len(points) - 1; i >= 0; i-- {
		if !points[i].Date.After(target) {
			return points[i].Value, true
		}
	}
	return points[0].Value, true
}

// Values extracts the value column.
func Values(points []Point) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}

// PercentileRank returns the percent of samples strictly below v, or a
// neutral 50 when fewer than 20 valid samples exist.
func PercentileRank(sample []float64, v float64) float64 {
	valid := finite(sample)
	if len(valid) < minSample {
		return 50.0
	}
	below := 0
	for _, s := range valid {
		if s < v {
			below++
		}
	}
	return float64(below) / float64(len(valid)) * 100.0
}

// ZScore returns (v - mean) / stddev against the sample, 0 when fewer than
// 20 valid samples exist or the sample has zero spread.
func ZScore(sample []float64, v float64) float64 {
	valid := finite(sample)
	if len(valid) < minSample {
		return 0.0
	}
	mean, err := stats.Mean(valid)
	if err != nil {
		return 0.0
	}
	stdev, err := stats.StandardDeviationSample(valid)
	if err != nil || stdev == 0 {
		return 0.0
	}
	return (v - mean) / stdev
}

func finite(sample []float64) []float64 {
	out := make([]float64, 0, len(sample))
	for _, s := range sample {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			continue
		}
		out = append(out, s)
	}
	return out
}
