//go:build !invariants && !race

package invariants

// Enabled is true if we were built with the "invariants" or "race" build
// tags. Expensive structural checks run after every tree mutation.
const Enabled = false
