// Package timing implements the time-ordering, frequency, coverage and
// synchronization rules (B1-B2, C1-C3, D1-D2).
package timing

import (
	"errors"
	"fmt"
	"io"

	"github.com/Sumatoshi-tech/mcapcheck/pkg/container"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/report"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/series"
)

// CollectTimestamps is B1. It reads every record in file order and builds
// the per-topic series. A zero timestamp or a per-topic rollback records a
// FAIL and returns an empty series so no later rule computes on it. The
// second result is the number of records read.
func CollectTimestamps(src container.Source, r *report.Report) (series.Topics, int64, error) {
	b := series.NewBuilder()
	last := map[string]uint64{}

	var n int64

	for {
		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return series.Topics{}, n, fmt.Errorf("read messages: %w", err)
		}

		n++

		name := rec.Channel.Topic
		ts := rec.Message.LogTime

		if ts == 0 {
			r.Fail("B1: Null timestamp", name)

			return series.Topics{}, n, nil
		}

		if prev, ok := last[name]; ok && ts < prev {
			r.Fail("B1: Timestamp rollback", fmt.Sprintf("%s at %d", name, ts))

			return series.Topics{}, n, nil
		}

		last[name] = ts
		b.Add(name, ts)
	}

	r.Pass("B1: Timestamps monotonic", "All timestamps valid and ordered")

	return b.Build(), n, nil
}
