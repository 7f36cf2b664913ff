package schema

import (
	"io"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/rna/errors"
)

// Encode writes a bundle document. Zero-valued attributes are omitted.
func Encode(w io.Writer, b *Bundle, format Format) error {
	doc := bundleDoc{Versions: make([]*snapshotDoc, 0, b.Len())}
	for _, s := range b.snapshots {
		doc.Versions = append(doc.Versions, fromSnapshot(s))
	}
	return encode(w, doc, format)
}

// EncodeSnapshot writes a single snapshot document.
func EncodeSnapshot(w io.Writer, s *Snapshot, format Format) error {
	return encode(w, fromSnapshot(s), format)
}

func encode(w io.Writer, v any, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return errors.New(errors.PhaseLoad, errors.KindInvalidInput).
				Detail("encode json schema").
				Cause(err).
				Build()
		}
		return nil
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.New(errors.PhaseLoad, errors.KindInvalidInput).
				Detail("encode yaml schema").
				Cause(err).
				Build()
		}
		return enc.Close()
	}
}
