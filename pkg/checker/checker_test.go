package checker_test

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/mcapcheck/internal/testmcap"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/checker"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/config"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/observability"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/report"
)

const (
	ms  = testmcap.Millisecond
	sec = testmcap.Second
)

func names(r *report.Report) []string {
	var out []string
	for _, f := range r.Items() {
		out = append(out, f.Name)
	}

	return out
}

func find(t *testing.T, r *report.Report, name string) report.Finding {
	t.Helper()

	for _, f := range r.Items() {
		if f.Name == name {
			return f
		}
	}

	require.Failf(t, "finding not recorded", "%q not in %v", name, names(r))

	return report.Finding{}
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

func run(t *testing.T, cfg config.Config, path string) checker.Outcome {
	t.Helper()

	out := checker.New(cfg).Run(context.Background(), path)
	require.True(t, out.Report.Finalized())

	return out
}

func TestRun_EmptyLog(t *testing.T) {
	t.Parallel()

	path := testmcap.New().Write(t)
	r := run(t, config.Default(), path).Report

	assert.Equal(t, []string{"A1: Empty MCAP"}, names(r))
	assert.Equal(t, report.LevelFail, r.Level())
}

func TestRun_SteadyJointsNoCamera(t *testing.T) {
	t.Parallel()

	b := testmcap.New()
	ch := b.Channel("/robot/joint_states", testmcap.JointStateSchema)
	b.SteadyJoints(ch, sec, 20*ms, 500, 6)

	out := run(t, config.Default(), b.Write(t))
	r := out.Report

	assert.Equal(t, report.LevelWarn, find(t, r, "A2: Insufficient camera topics").Level)

	freq := find(t, r, "C1: Joint states frequency OK")
	assert.Equal(t, report.LevelPass, freq.Level)
	assert.Equal(t, "50.1 Hz", freq.Detail(), "500 messages over 9.98 s")

	assert.Equal(t, "500 messages, 6 joints", find(t, r, "E1: Joint values valid").Detail())
	assert.Equal(t, report.LevelPass, find(t, r, "F: Timing stability OK").Level)
	assert.Equal(t, report.LevelWarn, r.Level())
	assert.Equal(t, 0, r.Summary().Failed)
	assert.Len(t, out.Topics.Timestamps("/robot/joint_states"), 500)
}

func TestRun_NaNPosition(t *testing.T) {
	t.Parallel()

	b := testmcap.New()
	ch := b.Channel("/joint_states", testmcap.JointStateSchema)
	b.SteadyJoints(ch, sec, 20*ms, 100, 3)
	b.JointState(ch, 3*sec, 0.1, math.NaN(), 0.3)

	r := run(t, config.Default(), b.Write(t)).Report

	nan := find(t, r, "E1: NaN in joint values")
	assert.Equal(t, report.LevelFail, nan.Level)
	assert.Equal(t, "1 messages affected", nan.Detail())
	assert.Equal(t, report.LevelFail, r.Level())
}

func TestRun_SingleMessageTopic(t *testing.T) {
	t.Parallel()

	b := testmcap.New()
	joints := b.Channel("/joint_states", testmcap.JointStateSchema)
	cam := b.Channel("/camera/front/image_raw", testmcap.ImageSchema)
	b.SteadyJoints(joints, sec, 20*ms, 100, 3)
	b.Message(cam, sec+5*ms, []byte{1, 2, 3})

	r := run(t, config.Default(), b.Write(t)).Report

	for _, f := range r.Items() {
		if strings.HasPrefix(f.Name, "C") {
			assert.NotContains(t, f.Detail(), "/camera/front/image_raw", f.Name)
		}
	}

	assert.Equal(t, report.LevelPass, find(t, r, "D1: Camera-joint sync OK").Level)
}

func TestRun_Deterministic(t *testing.T) {
	t.Parallel()

	b := testmcap.New()
	joints := b.Channel("/joint_states", testmcap.JointStateSchema)
	cam := b.Channel("/camera/a/image_raw", testmcap.ImageSchema)
	b.SteadyJoints(joints, sec, 20*ms, 200, 6)
	b.Periodic(cam, sec, 33*ms, 100, func(int) []byte { return []byte{0} })
	b.Metadata("episode", map[string]string{"episode_start": "1", "episode_end": "99000000000", "robot_model": "ur5"})

	path := b.Write(t)

	first, err := run(t, config.Default(), path).Report.JSON()
	require.NoError(t, err)

	second, err := run(t, config.Default(), path).Report.JSON()
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	require.NoError(t, report.Validate(first))
}

func TestRun_OpenFailures(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "missing.mcap")

	r := run(t, config.Default(), missing).Report
	require.Len(t, r.Items(), 1)
	assert.Equal(t, "File not found", r.Items()[0].Name)
	assert.Equal(t, missing, r.Items()[0].Detail())
	assert.Equal(t, report.LevelFail, r.Level())

	garbage := filepath.Join(t.TempDir(), "garbage.mcap")
	writeFile(t, garbage, []byte("not an mcap file at all"))

	r = run(t, config.Default(), garbage).Report
	assert.Equal(t, []string{"Cannot read MCAP"}, names(r))

	dir := t.TempDir()
	r = run(t, config.Default(), dir).Report
	assert.Len(t, r.Items(), 1)
	assert.Equal(t, report.LevelFail, r.Level())
}

func TestRun_TimestampRollbackSkipsTimingStages(t *testing.T) {
	t.Parallel()

	b := testmcap.New()
	ch := b.Channel("/joint_states", testmcap.JointStateSchema)
	b.JointState(ch, 2*sec, 0.1)
	b.JointState(ch, sec, 0.1)

	out := run(t, config.Default(), b.Write(t))
	r := out.Report

	assert.Equal(t, report.LevelFail, find(t, r, "B1: Timestamp rollback").Level)
	assert.True(t, out.Topics.Empty())

	for _, n := range names(r) {
		for _, prefix := range []string{"B2", "C", "D", "F:"} {
			assert.False(t, strings.HasPrefix(n, prefix), n)
		}
	}

	find(t, r, "E1: Joint values valid")
	find(t, r, "I1: No metadata found")
}

func TestRun_Modes(t *testing.T) {
	t.Parallel()

	b := testmcap.New()
	joints := b.Channel("/joint_states", testmcap.JointStateSchema)
	cam := b.Channel("/camera/a/image_raw", testmcap.ImageSchema)
	b.SteadyJoints(joints, sec, 100*ms, 30, 6)
	b.Periodic(cam, sec, 100*ms, 30, func(int) []byte { return []byte{0} })
	b.Metadata("robot", map[string]string{"arm_dof": "42", "control_mode": "position"})

	path := b.Write(t)

	relaxed := run(t, config.Default(), path).Report
	assert.Equal(t, report.LevelWarn, find(t, relaxed, "C1: Low joint_states rate").Level)
	assert.NotContains(t, names(relaxed), "F1: Trajectory continuity check not implemented")
	assert.NotContains(t, names(relaxed), "G1: Images found")
	assert.Equal(t, "42 DOF (typical range: 3-10)", find(t, relaxed, "I1: Unusual arm_dof").Detail())

	cfg := config.Default()
	cfg.Modes.Strict = true
	cfg.Modes.Vision = true
	cfg.Modes.Advanced = true

	strict := run(t, cfg, path).Report
	assert.Equal(t, report.LevelFail, find(t, strict, "C1: Low joint_states rate").Level)
	assert.Equal(t, report.LevelWarn, find(t, strict, "I1: Unusual arm_dof").Level)
	assert.Equal(t, "/camera/a/image_raw: 30 samples", find(t, strict, "G1: Images found").Detail())
	find(t, strict, "G2: Illumination check not implemented")
	find(t, strict, "F1: Trajectory continuity check not implemented")
	find(t, strict, "F2: Vibration detection not implemented")
	assert.Equal(t, report.LevelFail, strict.Level())
}

func TestRun_UndecodableJointStates(t *testing.T) {
	t.Parallel()

	b := testmcap.New()
	ch := b.ChannelWithEncoding("/joint_states", testmcap.JointStateSchema, "json")
	b.Periodic(ch, sec, 20*ms, 20, func(int) []byte { return []byte(`{"position":[0.1]}`) })

	r := run(t, config.Default(), b.Write(t)).Report

	assert.Equal(t, report.LevelWarn, find(t, r, "E1: Cannot decode joint_states").Level)
	assert.Equal(t, report.LevelWarn, find(t, r, "E2: Cannot decode joint_states for smoothness check").Level)
}

func TestRun_RecordsMetrics(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := observability.NewCheckMetrics(mp.Meter("test"))
	require.NoError(t, err)

	b := testmcap.New()
	ch := b.Channel("/joint_states", testmcap.JointStateSchema)
	b.SteadyJoints(ch, sec, 20*ms, 50, 6)

	c := checker.New(config.Default())
	c.Metrics = m

	out := c.Run(context.Background(), b.Write(t))
	assert.Equal(t, report.LevelWarn, out.Report.Level())

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	got := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			got[md.Name] = true
		}
	}

	assert.True(t, got["mcapcheck.checks.total"])
	assert.True(t, got["mcapcheck.stage.duration.seconds"])
	assert.True(t, got["mcapcheck.messages.total"])
}
