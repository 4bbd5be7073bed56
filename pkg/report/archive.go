package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4/v4"
)

// ArchiveExt marks report files stored as lz4 frames.
const ArchiveExt = ".lz4"

// WriteFile writes doc as indented JSON to path, creating parent
// directories. Paths ending in ArchiveExt are lz4-compressed.
func WriteFile(path string, doc Document) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}

	var buf bytes.Buffer

	if err := EncodeJSON(&buf, doc); err != nil {
		return err
	}

	data := buf.Bytes()

	if strings.HasSuffix(path, ArchiveExt) {
		compressed, err := compress(data)
		if err != nil {
			return err
		}

		data = compressed
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

// ReadFile reads a report written by WriteFile and returns its raw JSON.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}

	if !strings.HasSuffix(path, ArchiveExt) {
		return data, nil
	}

	out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("decompress report: %w", err)
	}

	return out, nil
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	zw := lz4.NewWriter(&buf)

	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("compress report: %w", err)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress report: %w", err)
	}

	return buf.Bytes(), nil
}
