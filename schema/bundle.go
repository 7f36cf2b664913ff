package schema

import (
	"sort"

	"github.com/wippyai/rna/errors"
)

// Bundle is an ordered collection of snapshots, one per supported version range.
type Bundle struct {
	snapshots []*Snapshot
}

// NewBundle keeps snapshots in the order given; Find resolves ties by that order.
func NewBundle(snapshots ...*Snapshot) *Bundle {
	return &Bundle{snapshots: append([]*Snapshot(nil), snapshots...)}
}

// Find returns the first snapshot whose range contains version.
func (b *Bundle) Find(version string) (*Snapshot, error) {
	v, err := ParseVersion(version)
	if err != nil {
		return nil, errors.New(errors.PhaseResolve, errors.KindInvalidInput).
			Detail("requested version %q", version).
			Cause(err).
			Build()
	}

	for _, s := range b.snapshots {
		if s.rng.Contains(v) {
			return s, nil
		}
	}
	return nil, errors.VersionNotFound(version, b.Ranges())
}

// Ranges formats every snapshot range in bundle order, for diagnostics.
func (b *Bundle) Ranges() []string {
	out := make([]string, len(b.snapshots))
	for i, s := range b.snapshots {
		out[i] = s.rng.String()
	}
	return out
}

// Snapshots returns the snapshots in bundle order.
func (b *Bundle) Snapshots() []*Snapshot {
	return append([]*Snapshot(nil), b.snapshots...)
}

// Len returns the number of snapshots.
func (b *Bundle) Len() int {
	return len(b.snapshots)
}

// Merge combines snapshots into one bundle ordered by minimum version.
// Overlapping ranges are rejected, since Find could never reach the later one.
func Merge(snapshots ...*Snapshot) (*Bundle, error) {
	sorted := append([]*Snapshot(nil), snapshots...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].rng.Min.LT(sorted[j].rng.Min)
	})

	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if prev.rng.Overlaps(cur.rng) {
			return nil, errors.New(errors.PhaseValidate, errors.KindInvalidSchema).
				Detail("version %s %s overlaps version %s %s", prev.Version, prev.rng, cur.Version, cur.rng).
				Build()
		}
	}
	return NewBundle(sorted...), nil
}
