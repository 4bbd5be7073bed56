// Package vision holds the image rules (G1, G2). Only frame sampling is
// implemented; pixel-level analysis is reported as a gap.
package vision

import (
	"errors"
	"fmt"
	"io"

	"github.com/Sumatoshi-tech/mcapcheck/pkg/config"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/container"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/report"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/series"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/topic"
)

// CheckImageIntegrity is G1. It samples at most cfg.ImageSampleLimit image
// frames across all image topics and reports the count per topic.
func CheckImageIntegrity(src container.Source, cfg config.Checks, r *report.Report) error {
	counts := series.NewBuilder()
	sampled := 0

	for sampled < cfg.ImageSampleLimit {
		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return fmt.Errorf("read messages: %w", err)
		}

		if !topic.IsImage(rec.Channel.Topic) {
			continue
		}

		counts.Add(rec.Channel.Topic, rec.Message.LogTime)
		sampled++
	}

	topics := counts.Build()
	if topics.Empty() {
		r.Warn("G1: No images to check", "")

		return nil
	}

	topics.Each(func(name string, ts []uint64) {
		r.Pass("G1: Images found", fmt.Sprintf("%s: %d samples", name, len(ts)))
	})

	r.Warn("G1: Image quality check not fully implemented", "Pixel-level analysis requires image decoding")

	return nil
}

// CheckIllumination is G2 and always warns.
func CheckIllumination(r *report.Report) {
	r.Warn("G2: Illumination check not implemented", "Requires image decoding and brightness analysis")
}
