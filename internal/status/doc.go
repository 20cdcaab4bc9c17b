// Package status derives the three-valued health label shown for a data
// source from its (loading, error) pair.
//
// Projection is pure: no IO, no state, no side effects.
package status
