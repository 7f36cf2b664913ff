package errors

import stderrors "errors"

// Is reports whether any error in err's tree matches target. It forwards to
// the standard library so callers need only this package.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Join wraps errs into a single error, discarding nils.
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}
