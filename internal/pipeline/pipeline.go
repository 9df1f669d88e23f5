// Package pipeline provides the generic filter -> transform -> consume operation.
//
// Process visits every element of a source exactly once, in source order. Elements
// that satisfy the predicate are transformed and handed to the sink; the rest are
// skipped with no side effect. No intermediate collection is built and nothing
// runs concurrently: ordering of sink calls matches the source.
//
// Caller-supplied functions are invoked directly. A panic raised by a predicate,
// transform, or sink propagates unchanged to the caller of Process.
package pipeline

import (
	"iter"
	"slices"
)

// Process applies test, transform, and sink to every element of source in order.
// For each element e: if test(e) is true, sink(transform(e)) is called.
func Process[X, Y any](source iter.Seq[X], test Predicate[X], transform func(X) Y, sink func(Y)) {
	for e := range source {
		if test(e) {
			sink(transform(e))
		}
	}
}

// ProcessSlice is Process over a slice.
func ProcessSlice[X, Y any](source []X, test Predicate[X], transform func(X) Y, sink func(Y)) {
	Process(slices.Values(source), test, transform, sink)
}

// Filter is Process with the identity transform.
func Filter[X any](source iter.Seq[X], test Predicate[X], sink func(X)) {
	Process(source, test, Identity[X](), sink)
}

// FilterSlice is Filter over a slice.
func FilterSlice[X any](source []X, test Predicate[X], sink func(X)) {
	Filter(slices.Values(source), test, sink)
}

// Identity returns the identity transform.
func Identity[X any]() func(X) X {
	return func(x X) X { return x }
}

// Collect returns a sink that appends every value to dst.
func Collect[Y any](dst *[]Y) func(Y) {
	return func(y Y) {
		*dst = append(*dst, y)
	}
}

// Count returns a sink that increments n for every value.
func Count[Y any](n *int) func(Y) {
	return func(Y) {
		*n++
	}
}

// Tee returns a sink that forwards each value to every sink in order.
func Tee[Y any](sinks ...func(Y)) func(Y) {
	return func(y Y) {
		for _, sink := range sinks {
			sink(y)
		}
	}
}
