package perf

import (
	"fmt"
	"time"
)

// Default thresholds for the bottleneck rules in spec.md §4.8.
const (
	DefaultTotalTimeThreshold = 1000 * time.Millisecond
	DefaultMemoryThresholdMB  = 500
)

// Severity is a bottleneck's urgency, per spec.md §4.8.
type Severity string

const (
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Bottleneck is one diagnosed issue in a completed Profile.
type Bottleneck struct {
	Type           string // "total_time", "slow_stage", "dominant_stage", "high_memory"
	Severity       Severity
	Message        string
	Recommendation string
}

// DetectBottlenecks applies the four rules from spec.md §4.8 to profile,
// using threshold as the total-time baseline (default 1000ms if zero).
func DetectBottlenecks(profile Profile, threshold time.Duration) []Bottleneck {
	if threshold <= 0 {
		threshold = DefaultTotalTimeThreshold
	}

	out := []Bottleneck{}

	if profile.Total > threshold {
		out = append(out, Bottleneck{
			Type:           "total_time",
			Severity:       SeverityHigh,
			Message:        fmt.Sprintf("total search time %s exceeded %s", profile.Total, threshold),
			Recommendation: "reduce max_results, narrow the query, or enable caching",
		})
	}

	slowStageThreshold := time.Duration(float64(threshold) * 0.5)
	for _, s := range profile.Stages {
		if s.Duration > slowStageThreshold {
			out = append(out, Bottleneck{
				Type:     "slow_stage",
				Severity: SeverityMedium,
				Message: fmt.Sprintf("stage %q took %s, over half the %s total-time threshold",
					s.Name, s.Duration, threshold),
				Recommendation: fmt.Sprintf("profile stage %q in isolation to find its cost driver", s.Name),
			})
		}
	}

	if profile.Total > 0 {
		for _, s := range profile.Stages {
			if float64(s.Duration) >= 0.7*float64(profile.Total) {
				out = append(out, Bottleneck{
					Type:     "dominant_stage",
					Severity: SeverityHigh,
					Message: fmt.Sprintf("stage %q accounted for %.0f%% of total time",
						s.Name, 100*float64(s.Duration)/float64(profile.Total)),
					Recommendation: fmt.Sprintf("stage %q dominates the query; optimize or parallelize it first", s.Name),
				})
			}
		}
	}

	if profile.MemoryPeakMB-profile.MemoryStartMB > DefaultMemoryThresholdMB {
		out = append(out, Bottleneck{
			Type:     "high_memory",
			Severity: SeverityHigh,
			Message: fmt.Sprintf("memory grew by %dMB during the search (start %dMB, peak %dMB)",
				profile.MemoryPeakMB-profile.MemoryStartMB, profile.MemoryStartMB, profile.MemoryPeakMB),
			Recommendation: "lower max_file_size or max_commits to bound in-memory buffers",
		})
	}

	return out
}
