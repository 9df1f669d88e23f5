package pipeline

// Predicate is a boolean test over a value.
type Predicate[X any] func(X) bool

// And returns a predicate satisfied when both p and other are.
// other is not evaluated when p is false.
func (p Predicate[X]) And(other Predicate[X]) Predicate[X] {
	return func(x X) bool { return p(x) && other(x) }
}

// Or returns a predicate satisfied when p or other is.
// other is not evaluated when p is true.
func (p Predicate[X]) Or(other Predicate[X]) Predicate[X] {
	return func(x X) bool { return p(x) || other(x) }
}

// Negate returns the logical complement of p.
func (p Predicate[X]) Negate() Predicate[X] {
	return func(x X) bool { return !p(x) }
}

// True returns a predicate satisfied by every value.
func True[X any]() Predicate[X] {
	return func(X) bool { return true }
}

// All returns a predicate satisfied when every given predicate is.
// With no predicates it is satisfied by every value.
func All[X any](preds ...Predicate[X]) Predicate[X] {
	return func(x X) bool {
		for _, p := range preds {
			if !p(x) {
				return false
			}
		}
		return true
	}
}

// Any returns a predicate satisfied when at least one given predicate is.
// With no predicates it is satisfied by no value.
func Any[X any](preds ...Predicate[X]) Predicate[X] {
	return func(x X) bool {
		for _, p := range preds {
			if p(x) {
				return true
			}
		}
		return false
	}
}
