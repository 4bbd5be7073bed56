package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricChecksTotal    = "mcapcheck.checks.total"
	metricFindingsTotal  = "mcapcheck.findings.total"
	metricStageDuration  = "mcapcheck.stage.duration.seconds"
	metricStageErrors    = "mcapcheck.stage.errors.total"
	metricMessagesTotal  = "mcapcheck.messages.total"
	metricDecodeFailures = "mcapcheck.decode.failures.total"

	attrLevel = "level"
	attrStage = "stage"
)

// stageBucketBoundaries covers 1ms to 10min.
var stageBucketBoundaries = []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300, 600}

// CheckMetrics holds the instruments recorded by a check run.
type CheckMetrics struct {
	checksTotal    metric.Int64Counter
	findingsTotal  metric.Int64Counter
	stageDuration  metric.Float64Histogram
	stageErrors    metric.Int64Counter
	messagesTotal  metric.Int64Counter
	decodeFailures metric.Int64Counter
}

// NewCheckMetrics creates the instruments from mt.
func NewCheckMetrics(mt metric.Meter) (*CheckMetrics, error) {
	checks, err := mt.Int64Counter(metricChecksTotal,
		metric.WithDescription("Completed file checks by grade"),
		metric.WithUnit("{check}"))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricChecksTotal, err)
	}

	findings, err := mt.Int64Counter(metricFindingsTotal,
		metric.WithDescription("Findings by level"),
		metric.WithUnit("{finding}"))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFindingsTotal, err)
	}

	duration, err := mt.Float64Histogram(metricStageDuration,
		metric.WithDescription("Check stage duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(stageBucketBoundaries...))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricStageDuration, err)
	}

	stageErrs, err := mt.Int64Counter(metricStageErrors,
		metric.WithDescription("Stages that ended in an error or panic"),
		metric.WithUnit("{error}"))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricStageErrors, err)
	}

	messages, err := mt.Int64Counter(metricMessagesTotal,
		metric.WithDescription("Messages read across all passes"),
		metric.WithUnit("{message}"))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricMessagesTotal, err)
	}

	decodeFailures, err := mt.Int64Counter(metricDecodeFailures,
		metric.WithDescription("Joint-state messages that could not be decoded"),
		metric.WithUnit("{message}"))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricDecodeFailures, err)
	}

	return &CheckMetrics{
		checksTotal:    checks,
		findingsTotal:  findings,
		stageDuration:  duration,
		stageErrors:    stageErrs,
		messagesTotal:  messages,
		decodeFailures: decodeFailures,
	}, nil
}

// RecordStage records one stage run.
func (m *CheckMetrics) RecordStage(ctx context.Context, stage string, d time.Duration, failed bool) {
	attrs := metric.WithAttributes(attribute.String(attrStage, stage))
	m.stageDuration.Record(ctx, d.Seconds(), attrs)

	if failed {
		m.stageErrors.Add(ctx, 1, attrs)
	}
}

// RecordMessages adds n messages read by a pass.
func (m *CheckMetrics) RecordMessages(ctx context.Context, stage string, n int64) {
	m.messagesTotal.Add(ctx, n, metric.WithAttributes(attribute.String(attrStage, stage)))
}

// RecordDecodeFailures adds n undecodable joint-state messages.
func (m *CheckMetrics) RecordDecodeFailures(ctx context.Context, n int64) {
	if n > 0 {
		m.decodeFailures.Add(ctx, n)
	}
}

// RecordCheck records a finished check: its grade and per-level finding counts.
func (m *CheckMetrics) RecordCheck(ctx context.Context, level string, findings map[string]int) {
	m.checksTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrLevel, level)))

	for lvl, n := range findings {
		if n > 0 {
			m.findingsTotal.Add(ctx, int64(n), metric.WithAttributes(attribute.String(attrLevel, lvl)))
		}
	}
}
