// Package trajectory computes the forward citation slope for a single
// article from its yearly citation series. It is a pure function of the
// series: it never touches the Store.
package trajectory

import (
	"sort"

	"github.com/montanaflynn/stats"

	"primetime/providers"
)

// Point is one (year, count) sample of a citation series.
type Point struct {
	Year  int
	Count int
}

// ForwardSlope fits a simple linear trend to series and returns its
// slope, projected one year ahead. Series shorter than three points fall
// back to the arithmetic mean annual delta (too short to fit a trend
// line meaningfully); series shorter than two points have slope 0.
func ForwardSlope(series []Point) float64 {
	if len(series) < 2 {
		return 0
	}

	sorted := make([]Point, len(series))
	copy(sorted, series)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Year < sorted[j].Year })

	if len(sorted) < 3 {
		return meanAnnualDelta(sorted)
	}

	coords := make(stats.Series, len(sorted))
	for i, p := range sorted {
		coords[i] = stats.Coordinate{X: float64(p.Year), Y: float64(p.Count)}
	}

	regressed, err := stats.LinearRegression(coords)
	if err != nil || len(regressed) < 2 {
		return meanAnnualDelta(sorted)
	}

	first, last := regressed[0], regressed[len(regressed)-1]
	if last.X == first.X {
		return meanAnnualDelta(sorted)
	}
	return (last.Y - first.Y) / (last.X - first.X)
}

func meanAnnualDelta(sorted []Point) float64 {
	if len(sorted) < 2 {
		return 0
	}
	var total float64
	for i := 1; i < len(sorted); i++ {
		total += float64(sorted[i].Count - sorted[i-1].Count)
	}
	return total / float64(len(sorted)-1)
}

// FromYearlyCounts converts the Citation Adapter's wire type into the
// series ForwardSlope expects.
func FromYearlyCounts(counts []providers.YearlyCount) []Point {
	out := make([]Point, len(counts))
	for i, c := range counts {
		out[i] = Point{Year: c.Year, Count: c.Count}
	}
	return out
}
