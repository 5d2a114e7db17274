package bptree

import (
	"github.com/alexhholmes/bptdb/internal/invariants"
)

// MinOrder is the smallest order a tree accepts.
const MinOrder = 3

type options struct {
	checkInvariants bool // Run Verify after every mutation and panic on failure.
}

func defaultOptions() options {
	return options{
		checkInvariants: invariants.Enabled,
	}
}

// Option configures a Tree using the functional options pattern.
type Option func(*options)

// WithInvariantChecks forces the full structural check after every
// mutation on or off. It defaults to on only in builds with the
// "invariants" or "race" tags.
func WithInvariantChecks(enabled bool) Option {
	return func(o *options) {
		o.checkInvariants = enabled
	}
}
