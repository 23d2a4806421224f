// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package recommend

import "sort"

// nearer reports whether a ranks before b: smaller distance first, then
// smaller user ID.
func nearer(a, b Neighbor) bool {
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return a.UserID < b.UserID
}

// topK keeps the k nearest neighbors seen so far in a bounded max-heap
// whose root is the farthest kept neighbor. Push is O(log k), so a query
// over n users costs O(n log k) instead of a full sort.
type topK struct {
	k    int
	heap []Neighbor
}

func newTopK(k int) *topK {
	return &topK{k: k, heap: make([]Neighbor, 0, k)}
}

// Push offers a candidate.
func (t *topK) Push(n Neighbor) {
	if len(t.heap) < t.k {
		t.heap = append(t.heap, n)
		t.bubbleUp(len(t.heap) - 1)
		return
	}
	if t.k == 0 || !nearer(n, t.heap[0]) {
		return
	}
	t.heap[0] = n
	t.bubbleDown(0)
}

// Sorted returns the kept neighbors nearest first. The heap is consumed.
func (t *topK) Sorted() []Neighbor {
	out := t.heap
	t.heap = nil
	sort.Slice(out, func(i, j int) bool { return nearer(out[i], out[j]) })
	return out
}

// bubbleUp moves the element at i toward the root while it is farther
// than its parent.
func (t *topK) bubbleUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !nearer(t.heap[parent], t.heap[i]) {
			break
		}
		t.heap[i], t.heap[parent] = t.heap[parent], t.heap[i]
		i = parent
	}
}

// bubbleDown restores the heap after the root was replaced.
func (t *topK) bubbleDown(i int) {
	n := len(t.heap)
	for {
		farthest := i
		left, right := 2*i+1, 2*i+2

		if left < n && nearer(t.heap[farthest], t.heap[left]) {
			farthest = left
		}
		if right < n && nearer(t.heap[farthest], t.heap[right]) {
			farthest = right
		}
		if farthest == i {
			return
		}

		t.heap[i], t.heap[farthest] = t.heap[farthest], t.heap[i]
		i = farthest
	}
}
