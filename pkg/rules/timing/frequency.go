package timing

import (
	"fmt"

	"github.com/Sumatoshi-tech/mcapcheck/pkg/alg/stats"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/config"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/report"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/safeconv"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/series"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/topic"
)

const (
	nsToMs = 1e-6

	maxListedGaps = 5
)

// Rate returns messages per second over the span of ts. The second result
// is false for fewer than two samples or a zero span.
func Rate(ts []uint64) (float64, bool) {
	if len(ts) < 2 {
		return 0, false
	}

	span := safeconv.Uint64ToFloatSeconds(ts[len(ts)-1] - ts[0])
	if span == 0 {
		return 0, false
	}

	return float64(len(ts)) / span, true
}

// CheckFrequencies is C1-C3.
func CheckFrequencies(topics series.Topics, cfg config.Checks, r *report.Report) {
	topics.Each(func(name string, ts []uint64) {
		rate, ok := Rate(ts)
		if !ok {
			return
		}

		if topic.IsJointState(name) {
			if rate < cfg.MinJointHz {
				r.Soft("C1: Low joint_states rate",
					fmt.Sprintf("%.1f Hz (min %s Hz)", rate, report.FormatFloat(cfg.MinJointHz)))
			} else {
				r.Pass("C1: Joint states frequency OK", fmt.Sprintf("%.1f Hz", rate))
			}
		}

		if topic.IsImage(name) {
			if rate < cfg.MinCameraFPS {
				r.Soft("C2: Low camera FPS",
					fmt.Sprintf("%s: %.1f FPS (min %s FPS)", name, rate, report.FormatFloat(cfg.MinCameraFPS)))
			} else {
				r.Pass("C2: Camera FPS OK", fmt.Sprintf("%s: %.1f FPS", name, rate))
			}
		}

		if topic.IsAction(name) {
			if len(ts) < cfg.MinActionMessages {
				r.Warn("C3: Few action messages", fmt.Sprintf("%s: only %d messages", name, len(ts)))
			} else {
				r.Pass("C3: Action frequency OK", fmt.Sprintf("%s: %.1f Hz, %d messages", name, rate, len(ts)))
			}
		}
	})
}

// CheckGaps flags joint-state and image topics whose largest consecutive
// gap exceeds the configured maximum; average rates hide dropped frames.
func CheckGaps(topics series.Topics, cfg config.Checks, r *report.Report) {
	var issues []string

	topics.Each(func(name string, ts []uint64) {
		if len(ts) < 2 || (!topic.IsJointState(name) && !topic.IsImage(name)) {
			return
		}

		if maxGap := stats.Max(stats.Intervals(ts, nsToMs)); maxGap > cfg.MaxTimeGapMs {
			issues = append(issues, fmt.Sprintf("%s: %.1f ms", name, maxGap))
		}
	})

	if len(issues) == 0 {
		r.Pass("C1: No large gaps in key topics", "All gaps < "+report.FormatFloat(cfg.MaxTimeGapMs)+" ms")

		return
	}

	for _, issue := range issues[:min(len(issues), maxListedGaps)] {
		r.Soft("C1: Large time gap detected", issue)
	}
}
