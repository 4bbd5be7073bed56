package checker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/mcapcheck/pkg/container"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/report"
)

// ErrStagePanic wraps a value recovered from a panicking stage.
var ErrStagePanic = errors.New("stage panicked")

// runStage runs fn and converts its error or panic into a WARN finding
// named "<name> error". It always returns so the next stage can run.
func (c *Checker) runStage(ctx context.Context, r *report.Report, name string, fn func(context.Context) error) {
	ctx, span := c.tracer().Start(ctx, "mcapcheck.stage",
		trace.WithAttributes(attribute.String("stage", name)))
	defer span.End()

	start := time.Now()
	err := guard(ctx, fn)
	elapsed := time.Since(start)

	if err != nil {
		r.Warn(name+" error", err.Error())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger().WarnContext(ctx, "stage failed", "stage", name, "error", err)
	} else {
		c.logger().DebugContext(ctx, "stage finished", "stage", name, "duration", elapsed)
	}

	if c.Metrics != nil {
		c.Metrics.RecordStage(ctx, name, elapsed, err != nil)
	}
}

func guard(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrStagePanic, rec)
		}
	}()

	return fn(ctx)
}

// countingSource counts the records a pass reads.
type countingSource struct {
	src container.Source
	n   int64
}

func (s *countingSource) Next() (container.Record, error) {
	rec, err := s.src.Next()
	if err == nil {
		s.n++
	}

	return rec, err
}

// pass opens a fresh message stream over f for one rule.
func (c *Checker) pass(ctx context.Context, f *container.File, stage string, fn func(container.Source) error) error {
	msgs, err := f.Messages()
	if err != nil {
		return err
	}
	defer msgs.Close()

	src := &countingSource{src: msgs}
	err = fn(src)

	if c.Metrics != nil {
		c.Metrics.RecordMessages(ctx, stage, src.n)
	}

	return err
}
