// Package checker runs every rule family over one MCAP file and grades the
// result.
//
// Structure rules run first and a failed A1 finalizes the report at once.
// Every later stage runs through runStage, which turns a returned error or a
// panic into a WARN named after the stage, so a run always produces a
// finalized report.
package checker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/mcapcheck/pkg/config"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/container"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/observability"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/report"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/rules/metadata"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/rules/structure"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/rules/timing"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/rules/values"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/rules/vision"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/series"
)

// tracerName is the default OTel tracer name for check runs.
const tracerName = "mcapcheck"

// Stage names. A stage that errors is reported as "<name> error".
const (
	StageTimestamps = "B1: Timestamp check"
	StageEpisode    = "B2: Episode range check"
	StageFrequency  = "C: Frequency check"
	StageSync       = "D: Sync check"
	StageJoints     = "E1: Joint states check"
	StageSmoothness = "E2: Motion smoothness check"
	StageStability  = "F: Timing stability check"
	StageAdvanced   = "F: Advanced check"
	StageVision     = "G: Vision check"
	StageMetadata   = "I: Metadata check"
)

// Outcome is the result of one run. Topics is empty when B1 failed or the
// file could not be read.
type Outcome struct {
	Report   *report.Report
	Topics   series.Topics
	Duration time.Duration
}

// Checker runs checks with a fixed configuration. The zero value of the
// optional fields is usable.
type Checker struct {
	Config config.Config

	// Tracer creates one span per run and per stage.
	// When nil, falls back to otel.Tracer("mcapcheck").
	Tracer trace.Tracer

	// Metrics, when set, records stage durations, message counts and grades.
	Metrics *observability.CheckMetrics

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// New returns a checker for cfg.
func New(cfg config.Config) *Checker {
	return &Checker{Config: cfg}
}

func (c *Checker) tracer() trace.Tracer {
	if c.Tracer != nil {
		return c.Tracer
	}

	return otel.Tracer(tracerName)
}

func (c *Checker) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}

	return slog.Default()
}

// Run checks the file at path. It never returns an error: a file that
// cannot be opened is reported as a FAIL finding.
func (c *Checker) Run(ctx context.Context, path string) Outcome {
	start := time.Now()

	ctx, span := c.tracer().Start(ctx, "mcapcheck.check", trace.WithAttributes(attribute.String("mcap.file", path)))
	defer span.End()

	r := report.New(path, c.Config.Modes.Strict)
	out := Outcome{Report: r}

	f, err := container.Open(path)
	if err != nil {
		reportOpenFailure(r, path, err)
	} else {
		out.Topics = c.runRules(ctx, f, r)
	}

	level := r.Finalize()
	out.Duration = time.Since(start)

	span.SetAttributes(attribute.String("mcap.level", string(level)))

	if c.Metrics != nil {
		sum := r.Summary()
		c.Metrics.RecordCheck(ctx, string(level), map[string]int{
			string(report.LevelPass): sum.Passed,
			string(report.LevelWarn): sum.Warnings,
			string(report.LevelFail): sum.Failed,
		})
	}

	c.logger().InfoContext(ctx, "check finished",
		"file", path, "level", level, "findings", len(r.Items()), "duration", out.Duration)

	return out
}

func reportOpenFailure(r *report.Report, path string, err error) {
	switch {
	case errors.Is(err, container.ErrNotFound):
		r.Fail("File not found", path)
	case errors.Is(err, container.ErrOpen):
		r.Fail("Cannot open file", err.Error())
	default:
		r.Fail("Cannot read MCAP", err.Error())
	}
}

func (c *Checker) runRules(ctx context.Context, f *container.File, r *report.Report) series.Topics {
	checks := c.Config.Checks
	summary := f.Summary()

	if !structure.CheckReadable(summary, r) {
		return series.Topics{}
	}

	structure.CheckRequiredTopics(summary.Channels, checks, r)
	structure.CheckSchemas(summary.Channels, summary.Schemas, r)

	var topics series.Topics

	c.runStage(ctx, r, StageTimestamps, func(ctx context.Context) error {
		return c.pass(ctx, f, StageTimestamps, func(src container.Source) error {
			var err error
			topics, _, err = timing.CollectTimestamps(src, r)

			return err
		})
	})

	if !topics.Empty() {
		c.runStage(ctx, r, StageEpisode, func(context.Context) error {
			records, err := f.Metadata()
			if err != nil {
				return err
			}

			timing.CheckEpisodeRange(topics, container.MergeMetadata(records), r)

			return nil
		})

		c.runStage(ctx, r, StageFrequency, func(context.Context) error {
			timing.CheckFrequencies(topics, checks, r)
			timing.CheckGaps(topics, checks, r)

			return nil
		})

		c.runStage(ctx, r, StageSync, func(context.Context) error {
			timing.CheckSync(topics, checks, r)
			timing.CheckActionAlignment(topics, checks, r)

			return nil
		})
	}

	c.runStage(ctx, r, StageJoints, func(ctx context.Context) error {
		return c.pass(ctx, f, StageJoints, func(src container.Source) error {
			st, err := values.CheckJointStates(src, r)
			c.recordDecode(ctx, StageJoints, st)

			return err
		})
	})

	c.runStage(ctx, r, StageSmoothness, func(ctx context.Context) error {
		return c.pass(ctx, f, StageSmoothness, func(src container.Source) error {
			_, err := values.CheckMotionSmoothness(src, checks, r)

			return err
		})
	})

	if !topics.Empty() {
		c.runStage(ctx, r, StageStability, func(context.Context) error {
			values.CheckTimingStability(topics, checks, r)

			return nil
		})
	}

	if c.Config.Modes.Advanced {
		c.runStage(ctx, r, StageAdvanced, func(context.Context) error {
			values.CheckTrajectoryContinuity(r)
			values.CheckVibration(r)

			return nil
		})
	}

	if c.Config.Modes.Vision {
		c.runStage(ctx, r, StageVision, func(ctx context.Context) error {
			err := c.pass(ctx, f, StageVision, func(src container.Source) error {
				return vision.CheckImageIntegrity(src, checks, r)
			})
			if err != nil {
				return err
			}

			vision.CheckIllumination(r)

			return nil
		})
	}

	c.runStage(ctx, r, StageMetadata, func(context.Context) error {
		records, err := f.Metadata()
		if err != nil {
			return err
		}

		if fields := metadata.CheckMetadata(records, checks, r); fields != nil {
			metadata.CheckConsistency(fields, r)
		}

		return nil
	})

	return topics
}

func (c *Checker) recordDecode(ctx context.Context, stage string, st values.Stats) {
	if st.DecodeFailures > 0 {
		c.logger().DebugContext(ctx, "undecodable joint states",
			"stage", stage, "decoded", st.Decoded, "failed", st.DecodeFailures)
	}

	if c.Metrics != nil {
		c.Metrics.RecordDecodeFailures(ctx, int64(st.DecodeFailures))
	}
}
