package timing

import (
	"fmt"
	"strconv"

	"github.com/Sumatoshi-tech/mcapcheck/pkg/container"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/report"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/series"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/topic"
)

// Metadata keys declaring the episode window in nanoseconds.
const (
	KeyEpisodeStart = "episode_start"
	KeyEpisodeEnd   = "episode_end"
)

// CheckEpisodeRange is B2: joint-state and image topics must lie inside the
// window declared by episode metadata.
func CheckEpisodeRange(topics series.Topics, fields map[string]string, r *report.Report) {
	if topics.Empty() {
		return
	}

	rawStart, hasStart := fields[KeyEpisodeStart]
	rawEnd, hasEnd := fields[KeyEpisodeEnd]

	if !hasStart || !hasEnd {
		r.Warn("B2: No episode metadata", "Skip episode range check")

		return
	}

	start, errStart := strconv.ParseUint(container.Unquote(rawStart), 10, 64)
	end, errEnd := strconv.ParseUint(container.Unquote(rawEnd), 10, 64)

	if errStart != nil || errEnd != nil {
		r.Warn("B2: Invalid episode metadata", fmt.Sprintf("start=%q end=%q", rawStart, rawEnd))

		return
	}

	if start >= end {
		r.Fail("B2: Invalid episode range", fmt.Sprintf("start=%d >= end=%d", start, end))

		return
	}

	topics.Each(func(name string, ts []uint64) {
		if !topic.IsJointState(name) && !topic.IsImage(name) {
			return
		}

		if ts[0] < start || ts[len(ts)-1] > end {
			r.Warn("B2: Topic outside episode range", name)
		}
	})

	r.Pass("B2: Episode time range valid", "")
}
