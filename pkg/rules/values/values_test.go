package values_test

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/mcapcheck/pkg/config"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/container"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/decoder"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/report"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/rules/values"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/series"
)

var jointSchema = &container.Schema{ID: 1, Name: "sensor_msgs/msg/JointState", Encoding: "ros2msg"}

type sliceSource struct {
	recs []container.Record
	err  error
}

func (s *sliceSource) Next() (container.Record, error) {
	if len(s.recs) == 0 {
		if s.err != nil {
			return container.Record{}, s.err
		}

		return container.Record{}, io.EOF
	}

	rec := s.recs[0]
	s.recs = s.recs[1:]

	return rec, nil
}

func joint(name string, js decoder.JointState) container.Record {
	return container.Record{
		Schema:  jointSchema,
		Channel: container.Channel{Topic: name, MessageEncoding: "cdr"},
		Message: container.Message{LogTime: 1, Data: decoder.EncodeJointState(0, 0, "base", js)},
	}
}

func pos(p ...float64) container.Record {
	return joint("/joint_states", decoder.JointState{Position: p})
}

func source(recs ...container.Record) *sliceSource {
	return &sliceSource{recs: recs}
}

func only(t *testing.T, r *report.Report) report.Finding {
	t.Helper()

	items := r.Items()
	require.Len(t, items, 1)

	return items[0]
}

func TestCheckJointStates(t *testing.T) {
	t.Parallel()

	nan := math.NaN()
	inf := math.Inf(1)

	undecodable := pos(0.1)
	undecodable.Message.Data = []byte{0, 1}

	noSchema := pos(0.1)
	noSchema.Schema = nil

	jsonEncoded := pos(0.1)
	jsonEncoded.Channel.MessageEncoding = "json"

	tests := []struct {
		name   string
		recs   []container.Record
		want   string
		detail string
		level  report.Level
	}{
		{
			name:   "valid",
			recs:   []container.Record{pos(0.1, 0.2), pos(0.1, 0.2), pos(0.1, 0.2)},
			want:   "E1: Joint values valid",
			detail: "3 messages, 2 joints",
			level:  report.LevelPass,
		},
		{
			name:   "inconsistent",
			recs:   []container.Record{pos(0.1, 0.2), pos(0.1, 0.2, 0.3), pos(nan, 0.2)},
			want:   "E1: Inconsistent joint count",
			detail: "Expected 2, got 3",
			level:  report.LevelFail,
		},
		{
			name:   "nan",
			recs:   []container.Record{pos(0.1, 0.2, 0.3), pos(0.1, nan, 0.3)},
			want:   "E1: NaN in joint values",
			detail: "1 messages affected",
			level:  report.LevelFail,
		},
		{
			name:   "inf",
			recs:   []container.Record{pos(inf, 0.2), pos(0.1, -inf)},
			want:   "E1: Inf in joint values",
			detail: "2 messages affected",
			level:  report.LevelFail,
		},
		{
			name: "nan_velocity",
			recs: []container.Record{
				joint("/joint_states", decoder.JointState{Position: []float64{0.1}, Velocity: []float64{nan}}),
			},
			want:   "E1: NaN in joint values",
			detail: "1 messages affected",
			level:  report.LevelFail,
		},
		{
			name:   "all_undecodable",
			recs:   []container.Record{undecodable, noSchema, jsonEncoded},
			want:   "E1: Cannot decode joint_states",
			detail: "Failed to decode 3 messages",
			level:  report.LevelWarn,
		},
		{
			name:   "none",
			recs:   []container.Record{{Channel: container.Channel{Topic: "/tf"}}},
			want:   "E1: No joint_states data",
			detail: "Cannot verify joint values",
			level:  report.LevelWarn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := report.New("f", false)
			_, err := values.CheckJointStates(source(tt.recs...), r)
			require.NoError(t, err)

			f := only(t, r)
			assert.Equal(t, tt.want, f.Name)
			assert.Equal(t, tt.detail, f.Detail())
			assert.Equal(t, tt.level, f.Level)
		})
	}
}

func TestCheckJointStates_CountsPerTopic(t *testing.T) {
	t.Parallel()

	lead := func(p ...float64) container.Record {
		return joint("/lead/joint_states", decoder.JointState{Position: p})
	}

	r := report.New("f", false)
	st, err := values.CheckJointStates(source(pos(1, 2, 3), lead(1, 2), pos(1, 2, 3), lead(1, 2)), r)
	require.NoError(t, err)
	assert.Equal(t, values.Stats{Decoded: 4}, st)
	assert.Equal(t, "E1: Joint values valid", only(t, r).Name)
}

func TestCheckJointStates_SourceError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	r := report.New("f", false)

	_, err := values.CheckJointStates(&sliceSource{err: boom}, r)
	require.ErrorIs(t, err, boom)
	assert.Empty(t, r.Items())
}

func TestCheckMotionSmoothness(t *testing.T) {
	t.Parallel()

	cfg := config.Default().Checks

	undecodable := pos(0.1)
	undecodable.Message.Data = nil

	tests := []struct {
		name   string
		strict bool
		recs   []container.Record
		want   string
		detail string
		level  report.Level
	}{
		{
			name:   "smooth",
			recs:   []container.Record{pos(0, 0), pos(0.1, 0.05), pos(0.2, 0.1)},
			want:   "E2: Motion smoothness OK",
			detail: "Max jump 0.100 rad < 0.5 rad",
			level:  report.LevelPass,
		},
		{
			name:   "jump",
			recs:   []container.Record{pos(0, 0), pos(0, 0.9), pos(0, 0.1), pos(0, 0.2)},
			want:   "E2: Joint discontinuity detected",
			detail: "2 jumps (max 0.900 rad, threshold 0.5 rad)",
			level:  report.LevelWarn,
		},
		{
			name:   "jump_strict",
			strict: true,
			recs:   []container.Record{pos(0), pos(1)},
			want:   "E2: Joint discontinuity detected",
			detail: "1 jumps (max 1.000 rad, threshold 0.5 rad)",
			level:  report.LevelFail,
		},
		{
			name:   "count_change_skipped",
			recs:   []container.Record{pos(0), pos(5, 5)},
			want:   "E2: Motion smoothness OK",
			detail: "Max jump 0.000 rad < 0.5 rad",
			level:  report.LevelPass,
		},
		{
			name: "per_topic",
			recs: []container.Record{
				pos(0), joint("/lead/joint_states", decoder.JointState{Position: []float64{3}}), pos(0.1),
			},
			want:   "E2: Motion smoothness OK",
			detail: "Max jump 0.100 rad < 0.5 rad",
			level:  report.LevelPass,
		},
		{
			name:   "undecodable",
			recs:   []container.Record{undecodable},
			want:   "E2: Cannot decode joint_states for smoothness check",
			detail: "Failed to decode 1 messages",
			level:  report.LevelWarn,
		},
		{
			name:  "none",
			want:  "E2: No joint_states for smoothness check",
			level: report.LevelWarn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := report.New("f", tt.strict)
			_, err := values.CheckMotionSmoothness(source(tt.recs...), cfg, r)
			require.NoError(t, err)

			f := only(t, r)
			assert.Equal(t, tt.want, f.Name)
			assert.Equal(t, tt.detail, f.Detail())
			assert.Equal(t, tt.level, f.Level)
		})
	}
}

func jointSeries(ts ...uint64) series.Topics {
	b := series.NewBuilder()
	for _, v := range ts {
		b.Add("/joint_states", v)
	}

	return b.Build()
}

func TestCheckTimingStability(t *testing.T) {
	t.Parallel()

	cfg := config.Default().Checks

	steady := make([]uint64, 50)
	for i := range steady {
		steady[i] = 1_000_000_000 + uint64(i)*20_000_000
	}

	r := report.New("f", false)
	values.CheckTimingStability(jointSeries(steady...), cfg, r)

	f := only(t, r)
	assert.Equal(t, "F: Timing stability OK", f.Name)
	assert.Equal(t, "Jitter 0.0000s", f.Detail())

	erratic := make([]uint64, 20)
	for i := 1; i < len(erratic); i++ {
		step := uint64(10_000_000)
		if i%2 == 0 {
			step = 110_000_000
		}

		erratic[i] = erratic[i-1] + step
	}

	for i := range erratic {
		erratic[i] += 1_000_000_000
	}

	jittery := report.New("f", false)
	values.CheckTimingStability(jointSeries(erratic...), cfg, jittery)

	f = only(t, jittery)
	assert.Equal(t, "F: High timing jitter", f.Name)
	assert.Contains(t, f.Detail(), "(threshold 0.02s)")
	assert.Equal(t, report.LevelWarn, f.Level)

	few := report.New("f", false)
	values.CheckTimingStability(jointSeries(1, 2, 3), cfg, few)
	assert.Equal(t, "F: Insufficient data for timing stability", only(t, few).Name)
}

func TestAdvancedPlaceholders(t *testing.T) {
	t.Parallel()

	r := report.New("f", false)
	values.CheckTrajectoryContinuity(r)
	values.CheckVibration(r)

	items := r.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "F1: Trajectory continuity check not implemented", items[0].Name)
	assert.Equal(t, "F2: Vibration detection not implemented", items[1].Name)
	assert.Equal(t, report.LevelWarn, r.Finalize())
}
