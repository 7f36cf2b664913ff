package schema

import (
	"fmt"
	"strings"

	"github.com/wippyai/rna/errors"
)

// Validate checks the layout invariants of a snapshot and reports every
// violation found, joined into one error.
//
//   - offsets and sizes are non-negative
//   - a field's storage ends inside its parent struct
//   - only struct entities carry fields
//   - identities are unique
func Validate(s *Snapshot) error {
	var errs []error
	seen := make(map[uint64]string)

	for _, name := range s.Names() {
		top := s.Entities[name]
		if top == nil {
			errs = append(errs, errors.InvalidSchema([]string{name}, "entity is empty"))
			continue
		}
		errs = validateEntity(top, []string{name}, seen, errs)
	}

	return errors.Join(errs...)
}

func validateEntity(e *Entity, path []string, seen map[uint64]string, errs []error) []error {
	if e.ID != 0 {
		if prev, dup := seen[e.ID]; dup {
			errs = append(errs, errors.InvalidSchema(path, fmt.Sprintf("identity %d already used by %s", e.ID, prev)))
		}
		seen[e.ID] = strings.Join(path, ".")
	}

	if e.Size < 0 {
		errs = append(errs, errors.InvalidSchema(path, fmt.Sprintf("negative size %d", e.Size)))
	}
	if e.Count < 0 {
		errs = append(errs, errors.InvalidSchema(path, fmt.Sprintf("negative count %d", e.Count)))
	}
	if e.Kind != KindStruct && len(e.Fields) > 0 {
		errs = append(errs, errors.InvalidSchema(path, fmt.Sprintf("%s entity cannot declare fields", e.Kind)))
	}

	for _, name := range e.FieldNames() {
		f := e.Fields[name]
		fieldPath := append(append([]string{}, path...), name)
		if f == nil {
			errs = append(errs, errors.InvalidSchema(fieldPath, "field is empty"))
			continue
		}
		if f.Offset < 0 {
			errs = append(errs, errors.InvalidSchema(fieldPath, fmt.Sprintf("negative offset %d", f.Offset)))
		}
		if end := f.Offset + f.Storage(); end > e.Size {
			errs = append(errs, errors.InvalidSchema(fieldPath,
				fmt.Sprintf("storage ends at %d, beyond parent size %d", end, e.Size)))
		}
		errs = validateEntity(f, fieldPath, seen, errs)
	}
	return errs
}
