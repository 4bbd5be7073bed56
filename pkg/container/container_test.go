package container_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/mcapcheck/internal/testmcap"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/container"
)

func TestOpen_NotFound(t *testing.T) {
	t.Parallel()

	_, err := container.Open(filepath.Join(t.TempDir(), "missing.mcap"))
	require.Error(t, err)
	assert.ErrorIs(t, err, container.ErrNotFound)
}

func TestOpen_Garbage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "garbage.mcap")
	require.NoError(t, os.WriteFile(path, []byte("definitely not an mcap file"), 0o600))

	_, err := container.Open(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, container.ErrRead)
}

func TestOpen_Summary(t *testing.T) {
	t.Parallel()

	b := testmcap.New()
	joints := b.Channel("/robot/joint_states", testmcap.JointStateSchema)
	cam := b.Channel("/camera/front/image_raw", testmcap.ImageSchema)
	b.SteadyJoints(joints, testmcap.Second, 20*testmcap.Millisecond, 10, 6)
	b.Message(cam, testmcap.Second+5*testmcap.Millisecond, []byte{0, 1, 0, 0})

	f, err := container.Open(b.Write(t))
	require.NoError(t, err)

	s := f.Summary()
	assert.Equal(t, uint64(11), s.MessageCount)
	assert.Positive(t, s.ChunkCount)
	assert.Equal(t, testmcap.Second, s.StartTime)
	require.Len(t, s.Channels, 2)
	assert.Equal(t, "/robot/joint_states", s.Channels[0].Topic)
	assert.Equal(t, "/camera/front/image_raw", s.Channels[1].Topic)
	assert.Less(t, s.Channels[0].ID, s.Channels[1].ID)
	assert.Len(t, s.Schemas, 2)
	assert.Equal(t, testmcap.JointStateSchema, s.Schemas[s.Channels[0].SchemaID].Name)
}

func TestOpen_Unchunked(t *testing.T) {
	t.Parallel()

	b := testmcap.New().Unchunked()
	ch := b.Channel("/joint_states", testmcap.JointStateSchema)
	b.SteadyJoints(ch, testmcap.Second, 20*testmcap.Millisecond, 3, 2)

	f, err := container.Open(b.Write(t))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), f.Summary().ChunkCount)
	assert.Equal(t, uint64(3), f.Summary().MessageCount)
}

func TestMessages_FileOrder(t *testing.T) {
	t.Parallel()

	b := testmcap.New()
	ch := b.Channel("/joint_states", testmcap.JointStateSchema)
	b.JointState(ch, 3*testmcap.Second, 0.1)
	b.JointState(ch, 1*testmcap.Second, 0.2)
	b.JointState(ch, 2*testmcap.Second, 0.3)

	f, err := container.Open(b.Write(t))
	require.NoError(t, err)

	msgs, err := f.Messages()
	require.NoError(t, err)

	defer msgs.Close()

	var times []uint64

	for {
		rec, nextErr := msgs.Next()
		if errors.Is(nextErr, io.EOF) {
			break
		}

		require.NoError(t, nextErr)
		require.NotNil(t, rec.Schema)
		assert.Equal(t, testmcap.JointStateSchema, rec.Schema.Name)
		assert.Equal(t, "/joint_states", rec.Channel.Topic)
		times = append(times, rec.Message.LogTime)
	}

	assert.Equal(t, []uint64{3 * testmcap.Second, 1 * testmcap.Second, 2 * testmcap.Second}, times)
}

func TestMetadata_FileOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		build func(*testmcap.Builder) *testmcap.Builder
	}{
		{"indexed", func(b *testmcap.Builder) *testmcap.Builder { return b }},
		{"unindexed", (*testmcap.Builder).NoMetadataIndex},
		{"unindexed_unchunked", func(b *testmcap.Builder) *testmcap.Builder {
			return b.NoMetadataIndex().Unchunked()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := tt.build(testmcap.New())
			ch := b.Channel("/joint_states", testmcap.JointStateSchema)
			b.JointState(ch, testmcap.Second, 0.1)
			b.Metadata("episode", map[string]string{"episode_id": "7"})
			b.Metadata("robot", map[string]string{"robot_model": "ur5", "arm_dof": "6"})

			f, err := container.Open(b.Write(t))
			require.NoError(t, err)

			md, err := f.Metadata()
			require.NoError(t, err)
			require.Len(t, md, 2)
			assert.Equal(t, "episode", md[0].Name)
			assert.Equal(t, "7", md[0].Fields["episode_id"])
			assert.Equal(t, "ur5", md[1].Fields["robot_model"])
		})
	}
}

func TestMetadata_ReadOnce(t *testing.T) {
	t.Parallel()

	b := testmcap.New()
	ch := b.Channel("/joint_states", testmcap.JointStateSchema)
	b.JointState(ch, testmcap.Second, 0.1)
	b.Metadata("episode", map[string]string{"episode_id": "7"})

	path := b.Write(t)

	f, err := container.Open(path)
	require.NoError(t, err)

	first, err := f.Metadata()
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))

	second, err := f.Metadata()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMetadata_None(t *testing.T) {
	t.Parallel()

	b := testmcap.New()
	ch := b.Channel("/joint_states", testmcap.JointStateSchema)
	b.JointState(ch, testmcap.Second, 0.1)

	f, err := container.Open(b.Write(t))
	require.NoError(t, err)

	md, err := f.Metadata()
	require.NoError(t, err)
	assert.Empty(t, md)
}

func TestMergeMetadata_LaterWins(t *testing.T) {
	t.Parallel()

	merged := container.MergeMetadata([]container.Metadata{
		{Name: "a", Fields: map[string]string{"operator": "alice", "station": "1"}},
		{Name: "b", Fields: map[string]string{"operator": "bob"}},
		{Name: "c"},
	})
	assert.Equal(t, map[string]string{"operator": "bob", "station": "1"}, merged)
	assert.Empty(t, container.MergeMetadata(nil))
}

func TestUnquote(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ur5", container.Unquote(` "ur5" `))
	assert.Equal(t, "ur5", container.Unquote("ur5"))
	assert.Empty(t, container.Unquote(`""`))
}
