package schema

import (
	"fmt"

	"github.com/blang/semver/v4"
)

// ParseVersion parses a semantic version. Missing minor or patch components
// default to zero, so "2.80" reads as 2.80.0.
func ParseVersion(s string) (semver.Version, error) {
	v, err := semver.ParseTolerant(s)
	if err != nil {
		return semver.Version{}, fmt.Errorf("parse version %q: %w", s, err)
	}
	return v, nil
}

// Range is an inclusive version interval.
type Range struct {
	Min semver.Version
	Max semver.Version
}

// Contains reports whether v lies inside the range, bounds included.
func (r Range) Contains(v semver.Version) bool {
	return v.GE(r.Min) && v.LE(r.Max)
}

// Overlaps reports whether two ranges share at least one version.
func (r Range) Overlaps(o Range) bool {
	return r.Min.LE(o.Max) && o.Min.LE(r.Max)
}

func (r Range) String() string {
	return fmt.Sprintf("[%s, %s]", r.Min, r.Max)
}
