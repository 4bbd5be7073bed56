package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Item is the serialized form of a Finding. Field order is part of the
// contract: level, name, info.
type Item struct {
	Level Level   `json:"level" yaml:"level"`
	Name  string  `json:"name"  yaml:"name"`
	Info  *string `json:"info"  yaml:"info"`
}

// Document is the serialized report. Field order and names are the external
// contract consumed by downstream tooling.
type Document struct {
	File    string  `json:"file"    yaml:"file"`
	Level   Level   `json:"level"   yaml:"level"`
	Summary Summary `json:"summary" yaml:"summary"`
	Items   []Item  `json:"items"   yaml:"items"`
}

// Document returns the serializable view of a finalized report.
func (r *Report) Document() Document {
	doc := Document{
		File:    r.file,
		Level:   r.level,
		Summary: r.Summary(),
		Items:   make([]Item, 0, len(r.items)),
	}

	for _, f := range r.items {
		doc.Items = append(doc.Items, Item{Level: f.Level, Name: f.Name, Info: f.Info})
	}

	return doc
}

// MarshalJSON encodes the report as its Document.
func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Document())
}

// EncodeJSON writes doc indented by two spaces, leaving non-ASCII and HTML
// characters unescaped.
func EncodeJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode report json: %w", err)
	}

	return nil
}

// JSON returns the indented JSON document.
func (r *Report) JSON() ([]byte, error) {
	var buf bytes.Buffer

	if err := EncodeJSON(&buf, r.Document()); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// EncodeYAML writes doc as YAML.
func EncodeYAML(w io.Writer, doc Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode report yaml: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode report yaml: %w", err)
	}

	return nil
}

// DecodeJSON parses a JSON report document.
func DecodeJSON(data []byte) (Document, error) {
	var doc Document

	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode report json: %w", err)
	}

	return doc, nil
}
