// Package scoring computes a Search's opportunity score: three raw
// sub-scores, each normalized against the empirical distribution of
// past raw values, combined into one weighted overall score.
package scoring

import (
	"math"
	"sort"
	"time"
)

// Raw holds the three pre-normalization sub-scores for one Search.
type Raw struct {
	Novelty  float64
	Velocity float64
	Recency  float64
}

// Weights is the convex combination used to produce Overall. Defaults to
// 0.4/0.4/0.2; callers may override via configuration but the contract
// requires these defaults.
type Weights struct {
	Novelty  float64
	Velocity float64
	Recency  float64
}

// DefaultWeights are the design contract's fixed weights.
var DefaultWeights = Weights{Novelty: 0.4, Velocity: 0.4, Recency: 0.2}

// Normalized holds the three normalized sub-scores plus the weighted
// overall score, all clamped to [0,1].
type Normalized struct {
	Novelty  float64
	Velocity float64
	Recency  float64
	Overall  float64
}

// VelocityRaw is the mean forward citation slope over the search's
// article set, clipped below at 0.
func VelocityRaw(slopes []float64) float64 {
	if len(slopes) == 0 {
		return 0
	}
	var total float64
	for _, s := range slopes {
		total += s
	}
	mean := total / float64(len(slopes))
	return math.Max(0, mean)
}

// RecencyRaw is the mean of exp(-age_years/tau) over the search's
// article set. Articles without a publication date contribute 0.
func RecencyRaw(pubDates []*time.Time, tauYears float64, now time.Time) float64 {
	if len(pubDates) == 0 {
		return 0
	}
	var total float64
	for _, d := range pubDates {
		if d == nil {
			continue
		}
		ageYears := float64(now.Year() - d.Year())
		total += math.Exp(-ageYears / tauYears)
	}
	return total / float64(len(pubDates))
}

// Percentile replaces a raw value with its empirical CDF position within
// history: (# of historical values <= x) / max(1, len(history)). The
// caller must append the new raw value to history before calling this,
// so at least one sample always exists.
func Percentile(x float64, history []float64) float64 {
	if len(history) == 0 {
		return 0
	}
	count := 0
	for _, h := range history {
		if h <= x {
			count++
		}
	}
	p := float64(count) / float64(max(1, len(history)))
	return clamp01(p)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Normalize turns one Search's raw sub-scores into their percentile-rank
// normalized forms plus the weighted overall score. noveltyHistory,
// velocityHistory, and recencyHistory must already include raw as their
// final element.
func Normalize(raw Raw, noveltyHistory, velocityHistory, recencyHistory []float64, weights Weights) Normalized {
	n := Normalized{
		Novelty:  Percentile(raw.Novelty, noveltyHistory),
		Velocity: Percentile(raw.Velocity, velocityHistory),
		Recency:  Percentile(raw.Recency, recencyHistory),
	}
	n.Overall = clamp01(weights.Novelty*n.Novelty + weights.Velocity*n.Velocity + weights.Recency*n.Recency)
	return n
}

// SortedCopy returns a sorted copy of history, useful for tests that
// want to assert on the percentile-rank contract directly.
func SortedCopy(history []float64) []float64 {
	out := make([]float64, len(history))
	copy(out, history)
	sort.Float64s(out)
	return out
}
