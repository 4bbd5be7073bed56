package structure_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/mcapcheck/pkg/config"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/container"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/report"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/rules/structure"
)

func channels(topics ...string) []container.Channel {
	out := make([]container.Channel, len(topics))
	for i, tp := range topics {
		out[i] = container.Channel{ID: uint16(i + 1), SchemaID: 1, Topic: tp, MessageEncoding: "cdr"}
	}

	return out
}

func schemas() map[uint16]container.Schema {
	return map[uint16]container.Schema{1: {ID: 1, Name: "sensor_msgs/msg/JointState"}}
}

func names(r *report.Report) []string {
	var out []string
	for _, f := range r.Items() {
		out = append(out, f.Name)
	}

	return out
}

func TestCheckReadable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		summary container.Summary
		ok      bool
		want    []string
		level   report.Level
	}{
		{
			name:    "empty",
			summary: container.Summary{},
			want:    []string{"A1: Empty MCAP"},
			level:   report.LevelFail,
		},
		{
			name:    "no_chunks",
			summary: container.Summary{MessageCount: 5},
			want:    []string{"A1: No chunks"},
			level:   report.LevelFail,
		},
		{
			name:    "missing_index",
			summary: container.Summary{MessageCount: 5, ChunkCount: 1},
			ok:      true,
			want:    []string{"A1: Missing index", "A1: MCAP readable"},
			level:   report.LevelWarn,
		},
		{
			name: "readable",
			summary: container.Summary{
				MessageCount: 500, ChunkCount: 2,
				Channels: channels("/joint_states"), Schemas: schemas(),
			},
			ok:    true,
			want:  []string{"A1: MCAP readable"},
			level: report.LevelPass,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := report.New("f", false)
			assert.Equal(t, tt.ok, structure.CheckReadable(tt.summary, r))
			assert.Equal(t, tt.want, names(r))
			assert.Equal(t, tt.level, r.Finalize())
		})
	}
}

func TestCheckReadable_Detail(t *testing.T) {
	t.Parallel()

	r := report.New("f", false)
	structure.CheckReadable(container.Summary{
		MessageCount: 500, ChunkCount: 2, Channels: channels("/a"), Schemas: schemas(),
	}, r)
	assert.Equal(t, "500 messages, 2 chunks", r.Items()[0].Detail())
}

func TestCheckRequiredTopics(t *testing.T) {
	t.Parallel()

	cfg := config.Default().Checks

	tests := []struct {
		name   string
		topics []string
		want   []string
		detail string
	}{
		{
			name:   "no_joint_states",
			topics: []string{"/camera/a/image_raw"},
			want:   []string{"A2: Missing joint_states topics"},
		},
		{
			name:   "no_cameras",
			topics: []string{"/robot/joint_states"},
			want:   []string{"A2: Insufficient camera topics", "A2: Core topics present"},
			detail: "1 joint_states, 0 cameras",
		},
		{
			name:   "cameras_without_images",
			topics: []string{"/joint_states", "/camera/a/info", "/camera/b/info", "/camera/b/image_raw"},
			want:   []string{"A2: Few camera image topics", "A2: Core topics present"},
			detail: "1 joint_states, 3 cameras",
		},
		{
			name: "complete_teleop",
			topics: []string{
				"/lead/joint_states", "/follow/Joint_States",
				"/camera/a/image_raw", "/camera/b/image_raw", "/arm_controller/command",
			},
			want:   []string{"A2: Core topics present"},
			detail: "2 joint_states (1 lead, 1 follow), 2 cameras, 1 actions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := report.New("f", false)
			structure.CheckRequiredTopics(channels(tt.topics...), cfg, r)
			assert.Equal(t, tt.want, names(r))

			if tt.detail != "" {
				items := r.Items()
				assert.Equal(t, tt.detail, items[len(items)-1].Detail())
			}
		})
	}
}

func TestCheckRequiredTopics_ExtraRequired(t *testing.T) {
	t.Parallel()

	cfg := config.Default().Checks
	cfg.RequiredTopics = []string{"/joint_states", "/camera/front/image_raw", "/tf"}

	r := report.New("f", false)
	structure.CheckRequiredTopics(channels("/joint_states", "/Camera/Front/image_raw", "/camera/x/image_raw"), cfg, r)

	items := r.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "A2: Missing required topic", items[0].Name)
	assert.Equal(t, "/tf", items[0].Detail())
	assert.Equal(t, report.LevelFail, items[0].Level)
}

func TestTopicNames_Dedup(t *testing.T) {
	t.Parallel()

	chs := channels("/a", "/b", "/a")
	assert.Equal(t, []string{"/a", "/b"}, structure.TopicNames(chs))
}

func TestCheckSchemas(t *testing.T) {
	t.Parallel()

	ok := report.New("f", false)
	structure.CheckSchemas(channels("/a", "/b"), schemas(), ok)
	assert.Equal(t, []string{"A3: All schemas resolvable"}, names(ok))
	assert.Equal(t, "1 schemas found", ok.Items()[0].Detail())

	chs := channels("/a", "/b", "/c", "/d", "/e")
	for i := range chs {
		chs[i].SchemaID = 9
	}

	bad := report.New("f", false)
	structure.CheckSchemas(chs, schemas(), bad)

	items := bad.Items()
	require.Len(t, items, 4)
	assert.Equal(t, "A3: Missing schemas", items[0].Name)
	assert.Equal(t, "5 channels", items[0].Detail())
	assert.Equal(t, "  - Missing schema", items[1].Name)
	assert.Equal(t, "/a (schema_id=9)", items[1].Detail())
	assert.True(t, bad.HardFail())
}
