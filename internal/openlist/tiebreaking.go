package openlist

import (
	"container/heap"
	"math"
)

type tieBreakingEntry[T any] struct {
	key   []int
	value T
	seq   int // insertion order, breaks ties after key comparison
}

type tieBreakingHeap[T any] []*tieBreakingEntry[T]

func (h tieBreakingHeap[T]) Len() int { return len(h) }

func (h tieBreakingHeap[T]) Less(i, j int) bool {
	a, b := h[i].key, h[j].key
	for k := 0; k < len(a) && k < len(b); k++ {
		if a[k] != b[k] {
			return a[k] < b[k]
		}
	}
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return h[i].seq < h[j].seq
}

func (h tieBreakingHeap[T]) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *tieBreakingHeap[T]) Push(x any) {
	*h = append(*h, x.(*tieBreakingEntry[T]))
}

func (h *tieBreakingHeap[T]) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// TieBreakingOpenList orders entries by lexicographic comparison of their
// full key tuple (e.g. [f, h] for A*-with-h-tiebreaking), falling back to
// insertion order once every key component is equal.
//
// UnsafePruning, when set, makes Insert drop any entry whose first key
// component is infinite (math.MaxInt32, the value evaluation.Infinity
// takes), even though that verdict need not be a reliable dead-end proof;
// left false, every entry is inserted.
type TieBreakingOpenList[T any] struct {
	heap          tieBreakingHeap[T]
	next          int
	UnsafePruning bool
}

// NewTieBreaking returns an empty TieBreakingOpenList.
func NewTieBreaking[T any]() *TieBreakingOpenList[T] {
	return &TieBreakingOpenList[T]{}
}

func (l *TieBreakingOpenList[T]) Insert(key []int, value T) {
	if l.UnsafePruning && len(key) > 0 && key[0] >= math.MaxInt32 {
		return
	}
	k := append([]int(nil), key...)
	heap.Push(&l.heap, &tieBreakingEntry[T]{key: k, value: value, seq: l.next})
	l.next++
}

func (l *TieBreakingOpenList[T]) RemoveMin() (T, bool) {
	var zero T
	if l.heap.Len() == 0 {
		return zero, false
	}
	e := heap.Pop(&l.heap).(*tieBreakingEntry[T])
	return e.value, true
}

func (l *TieBreakingOpenList[T]) Empty() bool { return l.heap.Len() == 0 }

func (l *TieBreakingOpenList[T]) Clear() { l.heap = nil }

func (l *TieBreakingOpenList[T]) Len() int { return l.heap.Len() }
