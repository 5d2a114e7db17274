// Package invariants exposes a build-time switch for debug-only consistency
// checks.
package invariants
