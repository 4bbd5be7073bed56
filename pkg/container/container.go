// Package container adapts github.com/foxglove/mcap/go/mcap to the small,
// deterministic view the checker consumes: a summary with sorted channels, a
// file-order message stream, and the metadata records.
package container

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"sync"

	"github.com/foxglove/mcap/go/mcap"
)

// Sentinel errors returned by Open. Each wraps the underlying cause.
var (
	ErrNotFound     = errors.New("file not found")
	ErrOpen         = errors.New("cannot open file")
	ErrRead         = errors.New("cannot read mcap")
	ErrNoStatistics = errors.New("mcap summary has no statistics record")
)

// Schema names a message type.
type Schema struct {
	ID       uint16
	Name     string
	Encoding string
}

// Channel is a named message stream.
type Channel struct {
	ID              uint16
	SchemaID        uint16
	Topic           string
	MessageEncoding string
}

// Message is one logged message. Data is only valid until the next call to
// Messages.Next.
type Message struct {
	ChannelID uint16
	Sequence  uint32
	LogTime   uint64
	Data      []byte
}

// Record is one message with its resolved channel and schema. Schema is nil
// when the channel declares none.
type Record struct {
	Schema  *Schema
	Channel Channel
	Message Message
}

// Metadata is one metadata record.
type Metadata struct {
	Name   string
	Fields map[string]string
}

// Summary is the index-level view of a file.
type Summary struct {
	Schemas       map[uint16]Schema
	Channels      []Channel
	MessageCount  uint64
	ChunkCount    uint64
	StartTime     uint64
	EndTime       uint64
	MetadataCount uint64
}

// Source yields records in file order and returns io.EOF when exhausted.
type Source interface {
	Next() (Record, error)
}

// File is an opened MCAP file. Every message pass reopens the path so passes
// never share a read position. Metadata is read at most once.
type File struct {
	path     string
	summary  Summary
	offsets  []uint64
	metadata func() ([]Metadata, error)
}

// Open reads the summary section of the MCAP file at path.
func Open(path string) (*File, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader, err := mcap.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}

	info, err := reader.Info()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}

	if info.Statistics == nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, ErrNoStatistics)
	}

	file := &File{path: path, summary: summarize(info), offsets: metadataOffsets(info)}
	file.metadata = sync.OnceValues(file.readMetadata)

	return file, nil
}

// metadataOffsets returns the metadata index offsets in file order.
func metadataOffsets(info *mcap.Info) []uint64 {
	offsets := make([]uint64, 0, len(info.MetadataIndexes))
	for _, idx := range info.MetadataIndexes {
		offsets = append(offsets, idx.Offset)
	}

	slices.Sort(offsets)

	return offsets
}

func openFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err == nil {
		return f, nil
	}

	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	return nil, fmt.Errorf("%w: %w", ErrOpen, err)
}

func summarize(info *mcap.Info) Summary {
	stats := info.Statistics

	s := Summary{
		Schemas:       make(map[uint16]Schema, len(info.Schemas)),
		Channels:      make([]Channel, 0, len(info.Channels)),
		MessageCount:  stats.MessageCount,
		ChunkCount:    uint64(stats.ChunkCount),
		StartTime:     stats.MessageStartTime,
		EndTime:       stats.MessageEndTime,
		MetadataCount: uint64(stats.MetadataCount),
	}

	for id, sc := range info.Schemas {
		s.Schemas[id] = Schema{ID: sc.ID, Name: sc.Name, Encoding: sc.Encoding}
	}

	for _, ch := range info.Channels {
		s.Channels = append(s.Channels, channelOf(ch))
	}

	slices.SortFunc(s.Channels, func(a, b Channel) int { return cmp.Compare(a.ID, b.ID) })

	return s
}

func channelOf(ch *mcap.Channel) Channel {
	return Channel{
		ID:              ch.ID,
		SchemaID:        ch.SchemaID,
		Topic:           ch.Topic,
		MessageEncoding: ch.MessageEncoding,
	}
}

// Path returns the path the file was opened from.
func (f *File) Path() string { return f.path }

// Summary returns the summary read at Open.
func (f *File) Summary() Summary { return f.summary }

// Messages starts a linear, unindexed pass over every message. The caller
// must Close the returned stream.
func (f *File) Messages() (*Messages, error) {
	fh, err := openFile(f.path)
	if err != nil {
		return nil, err
	}

	reader, err := mcap.NewReader(fh)
	if err != nil {
		fh.Close()

		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}

	it, err := reader.Messages(mcap.UsingIndex(false))
	if err != nil {
		fh.Close()

		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}

	return &Messages{file: fh, it: it, schemas: map[uint16]*Schema{}}, nil
}

// Metadata returns every metadata record in file order. The records are
// read on the first call and shared by later calls; callers must not modify them.
func (f *File) Metadata() ([]Metadata, error) {
	return f.metadata()
}

func (f *File) readMetadata() ([]Metadata, error) {
	fh, err := openFile(f.path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	if len(f.offsets) > 0 {
		return readIndexedMetadata(fh, f.offsets)
	}

	return scanMetadata(fh)
}

// readIndexedMetadata seeks straight to each indexed metadata record.
func readIndexedMetadata(fh *os.File, offsets []uint64) ([]Metadata, error) {
	reader, err := mcap.NewReader(fh)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}

	out := make([]Metadata, 0, len(offsets))

	for _, offset := range offsets {
		md, err := reader.GetMetadata(offset)
		if err != nil {
			return out, fmt.Errorf("%w: metadata at %d: %w", ErrRead, offset, err)
		}

		out = append(out, Metadata{Name: md.Name, Fields: md.Metadata})
	}

	return out, nil
}

// scanMetadata walks the top-level records of a file without a metadata
// index. Chunks are skipped undecompressed.
func scanMetadata(fh *os.File) ([]Metadata, error) {
	lexer, err := mcap.NewLexer(fh, &mcap.LexerOptions{EmitChunks: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}

	var out []Metadata

	for {
		token, record, err := lexer.Next(nil)
		if errors.Is(err, io.EOF) {
			return out, nil
		}

		if err != nil {
			return out, fmt.Errorf("%w: %w", ErrRead, err)
		}

		if token != mcap.TokenMetadata {
			continue
		}

		md, err := mcap.ParseMetadata(record)
		if err != nil {
			return out, fmt.Errorf("%w: metadata record: %w", ErrRead, err)
		}

		out = append(out, Metadata{Name: md.Name, Fields: md.Metadata})
	}
}

// Messages is a file-order message stream.
type Messages struct {
	file    *os.File
	it      mcap.MessageIterator
	schemas map[uint16]*Schema
}

// Next returns the next record, or io.EOF after the last one.
func (m *Messages) Next() (Record, error) {
	schema, channel, msg, err := m.it.Next(nil)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}

		return Record{}, fmt.Errorf("%w: %w", ErrRead, err)
	}

	return Record{
		Schema:  m.schema(schema),
		Channel: channelOf(channel),
		Message: Message{
			ChannelID: msg.ChannelID,
			Sequence:  msg.Sequence,
			LogTime:   msg.LogTime,
			Data:      msg.Data,
		},
	}, nil
}

func (m *Messages) schema(sc *mcap.Schema) *Schema {
	if sc == nil {
		return nil
	}

	if cached, ok := m.schemas[sc.ID]; ok {
		return cached
	}

	s := &Schema{ID: sc.ID, Name: sc.Name, Encoding: sc.Encoding}
	m.schemas[sc.ID] = s

	return s
}

// Close releases the underlying file handle.
func (m *Messages) Close() error {
	return m.file.Close()
}
