package values

import (
	"fmt"
	"math"

	"github.com/Sumatoshi-tech/mcapcheck/pkg/alg/stats"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/config"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/container"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/decoder"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/report"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/series"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/topic"
)

const nsToSeconds = 1e-9

// CheckJointStates is E1. Joint count must stay constant per topic and
// positions must be finite; a NaN velocity also fails.
func CheckJointStates(src container.Source, r *report.Report) (Stats, error) {
	counts := map[string]int{}
	firstCount := 0

	var (
		nanMsgs, infMsgs int
		inconsistent     string
	)

	st, err := jointStates(src, func(name string, js decoder.JointState) bool {
		want, seen := counts[name]

		switch {
		case !seen:
			counts[name] = len(js.Position)
			if firstCount == 0 {
				firstCount = len(js.Position)
			}
		case len(js.Position) != want:
			inconsistent = fmt.Sprintf("Expected %d, got %d", want, len(js.Position))

			return false
		}

		for _, p := range js.Position {
			if math.IsNaN(p) {
				nanMsgs++

				break
			}

			if math.IsInf(p, 0) {
				infMsgs++

				break
			}
		}

		for _, v := range js.Velocity {
			if math.IsNaN(v) {
				nanMsgs++

				break
			}
		}

		return true
	})
	if err != nil {
		return st, err
	}

	switch {
	case inconsistent != "":
		r.Fail("E1: Inconsistent joint count", inconsistent)
	case st.Decoded == 0 && st.DecodeFailures > 0:
		r.Warn("E1: Cannot decode joint_states", fmt.Sprintf("Failed to decode %d messages", st.DecodeFailures))
	case nanMsgs > 0:
		r.Fail("E1: NaN in joint values", fmt.Sprintf("%d messages affected", nanMsgs))
	case infMsgs > 0:
		r.Fail("E1: Inf in joint values", fmt.Sprintf("%d messages affected", infMsgs))
	case st.Decoded > 0:
		r.Pass("E1: Joint values valid", fmt.Sprintf("%d messages, %d joints", st.Decoded, firstCount))
	default:
		r.Warn("E1: No joint_states data", "Cannot verify joint values")
	}

	return st, nil
}

// CheckMotionSmoothness is E2: the largest per-joint change between
// consecutive messages of a topic must stay under MaxJointJump.
func CheckMotionSmoothness(src container.Source, cfg config.Checks, r *report.Report) (Stats, error) {
	prev := map[string][]float64{}

	var (
		maxJump float64
		jumps   int
	)

	st, err := jointStates(src, func(name string, js decoder.JointState) bool {
		last, ok := prev[name]
		prev[name] = js.Position

		if !ok || len(last) != len(js.Position) {
			return true
		}

		var cur float64

		for i, p := range js.Position {
			if d := math.Abs(p - last[i]); d > cur {
				cur = d
			}
		}

		if cur > maxJump {
			maxJump = cur
		}

		if cur > cfg.MaxJointJump {
			jumps++
		}

		return true
	})
	if err != nil {
		return st, err
	}

	limit := report.FormatFloat(cfg.MaxJointJump)

	switch {
	case st.Decoded == 0 && st.DecodeFailures > 0:
		r.Warn("E2: Cannot decode joint_states for smoothness check",
			fmt.Sprintf("Failed to decode %d messages", st.DecodeFailures))
	case st.Decoded == 0:
		r.Warn("E2: No joint_states for smoothness check", "")
	case jumps > 0:
		r.Soft("E2: Joint discontinuity detected",
			fmt.Sprintf("%d jumps (max %.3f rad, threshold %s rad)", jumps, maxJump, limit))
	default:
		r.Pass("E2: Motion smoothness OK", fmt.Sprintf("Max jump %.3f rad < %s rad", maxJump, limit))
	}

	return st, nil
}

// CheckTimingStability is F: the population standard deviation of the
// intervals between pooled joint-state timestamps is the loop jitter.
func CheckTimingStability(topics series.Topics, cfg config.Checks, r *report.Report) {
	ts := topics.Pool(topic.IsJointState)
	if len(ts) < cfg.MinStabilitySamples {
		r.Warn("F: Insufficient data for timing stability", "")

		return
	}

	_, jitter := stats.MeanStdDev(stats.Intervals(ts, nsToSeconds))

	if jitter > cfg.MaxTimingJitter {
		r.Soft("F: High timing jitter",
			fmt.Sprintf("%.4fs (threshold %ss)", jitter, report.FormatFloat(cfg.MaxTimingJitter)))

		return
	}

	r.Pass("F: Timing stability OK", fmt.Sprintf("Jitter %.4fs", jitter))
}

// CheckTrajectoryContinuity is F1. It needs forward kinematics or an
// end-effector pose topic and always warns.
func CheckTrajectoryContinuity(r *report.Report) {
	r.Warn("F1: Trajectory continuity check not implemented", "Requires forward kinematics or EE pose topic")
}

// CheckVibration is F2. It needs a spectral analysis of joint positions and
// always warns.
func CheckVibration(r *report.Report) {
	r.Warn("F2: Vibration detection not implemented", "Requires FFT analysis on joint positions")
}
