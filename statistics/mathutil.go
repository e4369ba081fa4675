package statistics

import (
	"math"
	"sort"
	"strconv"

	"github.com/montanaflynn/stats"
)

// roundTo rounds half to even, matching spreadsheet-style report rounding.
func roundTo(x float64, places int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	p := math.Pow(10, float64(places))
	return math.RoundToEven(x*p) / p
}

// quantile interpolates linearly between the closest ranks (h = (n-1)q).
// sorted must be ascending and non-empty.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	h := float64(n-1) * q
	lo := math.Floor(h)
	i := int(lo)
	if i >= n-1 {
		return sorted[n-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// mode returns the most frequent value, the smallest one on ties. When no
// value repeats every value ties and the minimum is returned.
func mode(values []float64) float64 {
	modes, err := stats.Mode(values)
	if err != nil || len(modes) == 0 {
		m, _ := stats.Min(values)
		return m
	}
	return modes[0]
}

// nanToNil turns undefined statistics into missing cells.
func nanToNil(x float64) any {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil
	}
	return x
}

// compareKeys orders group key values numerically when both parse as
// numbers and lexically otherwise.
func compareKeys(a, b string) int {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	switch {
	case errA == nil && errB == nil:
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func sortKeyTuples(keys [][]string) {
	sort.SliceStable(keys, func(i, j int) bool {
		for k := range keys[i] {
			if c := compareKeys(keys[i][k], keys[j][k]); c != 0 {
				return c < 0
			}
		}
		return false
	})
}
