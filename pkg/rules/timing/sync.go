package timing

import (
	"fmt"
	"slices"

	"github.com/Sumatoshi-tech/mcapcheck/pkg/config"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/report"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/series"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/topic"
)

const percent = 100

// Nearest returns the element of the sorted slice closest to t. On a tie
// the smaller element wins. sorted must not be empty.
func Nearest(sorted []uint64, t uint64) uint64 {
	i, _ := slices.BinarySearch(sorted, t)

	switch {
	case i == 0:
		return sorted[0]
	case i == len(sorted):
		return sorted[len(sorted)-1]
	}

	below, above := sorted[i-1], sorted[i]
	if t-below <= above-t {
		return below
	}

	return above
}

func absDiff(a, b uint64) uint64 {
	if a > b {
		return a - b
	}

	return b - a
}

// CheckSync is D1: each image frame is matched to its nearest joint state;
// too many frames further than MaxSyncMs is a desync.
func CheckSync(topics series.Topics, cfg config.Checks, r *report.Report) {
	joints := topics.Pool(topic.IsJointState)
	if len(joints) == 0 {
		r.Warn("D1: Skip sync check", "No joint_states topics found")

		return
	}

	frames := topics.Pool(topic.IsImage)
	if len(frames) == 0 {
		r.Warn("D1: Skip sync check", "No camera topics")

		return
	}

	desync := 0

	for _, ft := range frames {
		if float64(absDiff(Nearest(joints, ft), ft))*nsToMs > cfg.MaxSyncMs {
			desync++
		}
	}

	ratio := float64(desync) / float64(len(frames))
	limit := report.FormatFloat(cfg.MaxSyncMs)

	if ratio > cfg.MaxDesyncRatio {
		r.Soft("D1: Camera-joint desync", fmt.Sprintf("%.1f%% frames > %s ms", ratio*percent, limit))

		return
	}

	r.Pass("D1: Camera-joint sync OK", fmt.Sprintf("%.1f%% frames within %s ms", (1-ratio)*percent, limit))
}

// CheckActionAlignment is D2: actions logged after the last joint state
// reference states the file never recorded.
func CheckActionAlignment(topics series.Topics, cfg config.Checks, r *report.Report) {
	joints := topics.Pool(topic.IsJointState)
	actions := topics.Pool(topic.IsAction)

	if len(actions) == 0 || len(joints) == 0 {
		r.Warn("D2: Skip action alignment", "Missing action or joint_states")

		return
	}

	lastState := joints[len(joints)-1]

	i, found := slices.BinarySearch(actions, lastState)
	for found && i < len(actions) && actions[i] == lastState {
		i++
	}

	future := len(actions) - i

	if float64(future) > float64(len(actions))*cfg.MaxFutureActionRatio {
		r.Soft("D2: Action-state misalignment", fmt.Sprintf("%d actions after last joint state", future))

		return
	}

	r.Pass("D2: Action-state alignment OK", "")
}
