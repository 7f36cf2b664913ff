// Package abi provides low-level helpers for reading native layouts.
//
//   - helpers.go: overflow-checked address arithmetic
//   - widen.go: host-order integer widening for counts and pointers
//
// This package is internal to the transcoder.
package abi
