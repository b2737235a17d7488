// Package openlist implements the priority policies that decide which
// search-space entry to expand next: best-first, lexicographic
// tie-breaking, round-robin alternation over sublists, epsilon-greedy
// randomized best-first, type-based random-bucket selection, and
// Pareto-front tracking over multiple evaluators. Every policy works over
// a caller-supplied key (the evaluator output for one entry) and an
// opaque payload T the caller chooses (a StateID for eager search, a
// (predecessor, operator) pair for lazy search).
package openlist

// OpenList is the contract every policy in this package satisfies.
type OpenList[T any] interface {
	// Insert adds value under key. key's meaning (single scalar,
	// lexicographic tuple, type tuple) is policy-specific.
	Insert(key []int, value T)

	// RemoveMin pops and returns the policy's next entry to expand. ok is
	// false iff the list is empty.
	RemoveMin() (value T, ok bool)

	// Empty reports whether the list currently holds no entries.
	Empty() bool

	// Clear discards every entry.
	Clear()

	// Len reports the number of entries currently held.
	Len() int
}
