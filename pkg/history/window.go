package history

import (
	"math"
	"time"

	"github.com/aretw0/synapse/pkg/domain"
)

// Window is an immutable, oldest-first slice of records with rolling metrics.
type Window []domain.ActionRecord

// Len returns the number of records in the window.
func (w Window) Len() int { return len(w) }

// Errors counts failed records.
func (w Window) Errors() int {
	n := 0
	for _, r := range w {
		if !r.Success {
			n++
		}
	}
	return n
}

// ErrorRate is the fraction of failed records, 0 for an empty window.
func (w Window) ErrorRate() float64 {
	if len(w) == 0 {
		return 0
	}
	return float64(w.Errors()) / float64(len(w))
}

// SuccessRate is 1 - ErrorRate for a non-empty window.
func (w Window) SuccessRate() float64 {
	if len(w) == 0 {
		return 0
	}
	return 1 - w.ErrorRate()
}

// AvgDuration is the mean record duration.
func (w Window) AvgDuration() time.Duration {
	if len(w) == 0 {
		return 0
	}
	var total time.Duration
	for _, r := range w {
		total += r.Duration
	}
	return total / time.Duration(len(w))
}

// DurationStdDev is the population standard deviation of durations.
func (w Window) DurationStdDev() time.Duration {
	if len(w) == 0 {
		return 0
	}
	mean := float64(w.AvgDuration())
	var sum float64
	for _, r := range w {
		d := float64(r.Duration) - mean
		sum += d * d
	}
	return time.Duration(math.Sqrt(sum / float64(len(w))))
}

// DurationCV is the coefficient of variation (stddev / mean) of durations.
// It reports +Inf when the mean is zero and the window is not empty.
func (w Window) DurationCV() float64 {
	mean := w.AvgDuration()
	if mean == 0 {
		if len(w) == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return float64(w.DurationStdDev()) / float64(mean)
}

// TypeVariety is the ratio of distinct record types to records.
func (w Window) TypeVariety() float64 {
	if len(w) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(w))
	for _, r := range w {
		seen[r.Type] = struct{}{}
	}
	return float64(len(seen)) / float64(len(w))
}

// ErrorCluster returns the largest number of failures inside any span of the given length.
func (w Window) ErrorCluster(span time.Duration) int {
	var times []time.Time
	for _, r := range w {
		if !r.Success {
			times = append(times, r.Timestamp)
		}
	}
	best, lo := 0, 0
	for hi := range times {
		for times[hi].Sub(times[lo]) > span {
			lo++
		}
		if n := hi - lo + 1; n > best {
			best = n
		}
	}
	return best
}

// Pauses counts gaps between consecutive records longer than gap.
func (w Window) Pauses(gap time.Duration) int {
	n := 0
	for i := 1; i < len(w); i++ {
		if w[i].Timestamp.Sub(w[i-1].Timestamp) > gap {
			n++
		}
	}
	return n
}

// SuccessDelta is the success rate of the newer half minus that of the older half.
// An odd middle record belongs to the newer half.
func (w Window) SuccessDelta() float64 {
	if len(w) < 2 {
		return 0
	}
	mid := len(w) / 2
	return w[mid:].SuccessRate() - w[:mid].SuccessRate()
}
