// Package testmcap writes synthetic MCAP files for tests.
package testmcap

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/foxglove/mcap/go/mcap"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/mcapcheck/pkg/decoder"
)

// Schema names used by fixtures.
const (
	JointStateSchema = "sensor_msgs/msg/JointState"
	ImageSchema      = "sensor_msgs/msg/Image"
	StringSchema     = "std_msgs/msg/String"
)

// Millisecond and Second are nanosecond durations for log times.
const (
	Millisecond uint64 = 1_000_000
	Second      uint64 = 1_000_000_000
)

const chunkSize = 64 * 1024

type channel struct {
	id       uint16
	schemaID uint16
	topic    string
	encoding string
}

type message struct {
	channel uint16
	logTime uint64
	data    []byte
}

// Builder accumulates records and writes them as one MCAP file.
type Builder struct {
	schemas   []*mcap.Schema
	channels  []channel
	messages  []message
	metadata  []*mcap.Metadata
	unchunked bool
	noMDIndex bool
	seq       uint32
}

// New returns an empty chunked-file builder.
func New() *Builder {
	return &Builder{}
}

// Unchunked makes the builder write messages outside chunks.
func (b *Builder) Unchunked() *Builder {
	b.unchunked = true

	return b
}

// NoMetadataIndex omits the metadata index records from the summary section.
func (b *Builder) NoMetadataIndex() *Builder {
	b.noMDIndex = true

	return b
}

// Channel registers a CDR channel on topic with the given schema name and
// returns its id.
func (b *Builder) Channel(topic, schemaName string) uint16 {
	return b.ChannelWithEncoding(topic, schemaName, "cdr")
}

// ChannelWithEncoding registers a channel with an explicit message encoding.
func (b *Builder) ChannelWithEncoding(topic, schemaName, encoding string) uint16 {
	var schemaID uint16

	for _, s := range b.schemas {
		if s.Name == schemaName {
			schemaID = s.ID
		}
	}

	if schemaID == 0 {
		schemaID = uint16(len(b.schemas) + 1)
		b.schemas = append(b.schemas, &mcap.Schema{
			ID:       schemaID,
			Name:     schemaName,
			Encoding: "ros2msg",
			Data:     []byte{},
		})
	}

	id := uint16(len(b.channels) + 1)
	b.channels = append(b.channels, channel{id: id, schemaID: schemaID, topic: topic, encoding: encoding})

	return id
}

// Message appends a raw message.
func (b *Builder) Message(ch uint16, logTime uint64, data []byte) *Builder {
	b.messages = append(b.messages, message{channel: ch, logTime: logTime, data: data})

	return b
}

// JointState appends one encoded joint-state message.
func (b *Builder) JointState(ch uint16, logTime uint64, positions ...float64) *Builder {
	names := make([]string, len(positions))
	for i := range names {
		names[i] = "joint" + string(rune('1'+i))
	}

	js := decoder.JointState{Names: names, Position: positions}

	return b.Message(ch, logTime, decoder.EncodeJointState(0, 0, "base_link", js))
}

// Periodic appends n messages on ch starting at start and spaced by period,
// with data produced by payload for each index.
func (b *Builder) Periodic(ch uint16, start, period uint64, n int, payload func(i int) []byte) *Builder {
	for i := range n {
		b.Message(ch, start+uint64(i)*period, payload(i))
	}

	return b
}

// SteadyJoints appends n joint-state messages of the given joint count with
// slowly varying positions.
func (b *Builder) SteadyJoints(ch uint16, start, period uint64, n, joints int) *Builder {
	return b.Periodic(ch, start, period, n, func(i int) []byte {
		pos := make([]float64, joints)
		for j := range pos {
			pos[j] = float64(i)*0.001 + float64(j)*0.1
		}

		return decoder.EncodeJointState(0, 0, "base_link", decoder.JointState{Position: pos})
	})
}

// Metadata appends a metadata record.
func (b *Builder) Metadata(name string, fields map[string]string) *Builder {
	b.metadata = append(b.metadata, &mcap.Metadata{Name: name, Metadata: fields})

	return b
}

// Bytes encodes the file.
func (b *Builder) Bytes(t testing.TB) []byte {
	t.Helper()

	var buf bytes.Buffer

	w, err := mcap.NewWriter(&buf, &mcap.WriterOptions{
		Chunked:           !b.unchunked,
		ChunkSize:         chunkSize,
		Compression:       mcap.CompressionLZ4,
		SkipMetadataIndex: b.noMDIndex,
	})
	require.NoError(t, err)

	require.NoError(t, w.WriteHeader(&mcap.Header{Profile: "ros2", Library: "testmcap"}))

	for _, s := range b.schemas {
		require.NoError(t, w.WriteSchema(s))
	}

	for _, c := range b.channels {
		require.NoError(t, w.WriteChannel(&mcap.Channel{
			ID:              c.id,
			SchemaID:        c.schemaID,
			Topic:           c.topic,
			MessageEncoding: c.encoding,
			Metadata:        map[string]string{},
		}))
	}

	for _, m := range b.messages {
		b.seq++
		require.NoError(t, w.WriteMessage(&mcap.Message{
			ChannelID:   m.channel,
			Sequence:    b.seq,
			LogTime:     m.logTime,
			PublishTime: m.logTime,
			Data:        m.data,
		}))
	}

	for _, md := range b.metadata {
		require.NoError(t, w.WriteMetadata(md))
	}

	require.NoError(t, w.Close())

	return buf.Bytes()
}

// Write encodes the file into a temporary directory and returns its path.
func (b *Builder) Write(t testing.TB) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.mcap")
	require.NoError(t, os.WriteFile(path, b.Bytes(t), 0o600))

	return path
}
