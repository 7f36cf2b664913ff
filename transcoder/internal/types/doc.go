// Package types defines compiled decode plans.
//
// A Plan is built once per (Go type, schema entity) pair and run for every
// decode of that pair. It holds one Step per bound field; running a plan is
// a sequence of memory reads into the destination value.
//
// # Key Types
//
//   - Plan: cached decoder with per-field diagnostics
//   - Step: one field decode
//   - Kind: host primitive kinds and their widths
//   - Rule: the construction rule that produced a field
//
// This package is internal to the transcoder.
package types
