package schema

import (
	"bytes"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/rna/errors"
)

// Format selects the textual encoding of a schema document.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

func (f Format) String() string {
	if f == FormatJSON {
		return "json"
	}
	return "yaml"
}

// DetectFormat reports JSON when the first non-blank byte opens an object or
// array, YAML otherwise.
func DetectFormat(data []byte) Format {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	return FormatYAML
}

// Load reads a bundle document or a single snapshot document. A single
// snapshot is returned as a bundle of one.
func Load(r io.Reader) (*Bundle, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Load("read schema", err)
	}
	return Parse(data)
}

// LoadFile loads a schema document from disk.
func LoadFile(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load("read schema file "+path, err)
	}
	return Parse(data)
}

// Parse decodes a schema document held in memory.
func Parse(data []byte) (*Bundle, error) {
	var doc document
	if err := unmarshal(data, &doc); err != nil {
		return nil, err
	}

	var docs []*snapshotDoc
	switch {
	case len(doc.Versions) > 0:
		docs = doc.Versions
	case doc.Version != "":
		docs = []*snapshotDoc{&doc.snapshotDoc}
	default:
		return nil, errors.Load("schema document has neither versions nor version", nil)
	}

	snaps := make([]*Snapshot, 0, len(docs))
	for i, d := range docs {
		if d == nil {
			return nil, errors.Load("empty snapshot document", nil)
		}
		s, err := d.toSnapshot()
		if err != nil {
			return nil, errors.New(errors.PhaseLoad, errors.KindInvalidSchema).
				Detail("snapshot %d (version %q)", i, d.Version).
				Cause(err).
				Build()
		}
		snaps = append(snaps, s)
	}
	return NewBundle(snaps...), nil
}

// LoadSnapshot reads a document that must describe exactly one snapshot.
func LoadSnapshot(r io.Reader) (*Snapshot, error) {
	b, err := Load(r)
	if err != nil {
		return nil, err
	}
	if b.Len() != 1 {
		return nil, errors.InvalidInput(errors.PhaseLoad, "document holds more than one snapshot")
	}
	return b.Snapshots()[0], nil
}

func unmarshal(data []byte, v any) error {
	if DetectFormat(data) == FormatJSON {
		if err := json.Unmarshal(data, v); err != nil {
			return errors.Load("parse json schema", err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return errors.Load("parse yaml schema", err)
	}
	return nil
}
