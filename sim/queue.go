package sim

import "container/heap"

// Action runs at its scheduled simulation time.
type Action func(now float64)

type item struct {
	at  float64
	seq uint64
	run Action
}

type items []item

func (h items) Len() int { return len(h) }
func (h items) Less(i, j int) bool {
	if h[i].at != h[j].at {
		return h[i].at < h[j].at
	}
	return h[i].seq < h[j].seq
}
func (h items) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *items) Push(x any)   { *h = append(*h, x.(item)) }
func (h *items) Pop() any {
	old := *h
	it := old[len(old)-1]
	*h = old[:len(old)-1]
	return it
}

// Queue orders actions by time. Actions scheduled for the same time run in
// scheduling order.
type Queue struct {
	h   items
	seq uint64
}

// Schedule adds run at time at.
func (q *Queue) Schedule(at float64, run Action) {
	heap.Push(&q.h, item{at: at, seq: q.seq, run: run})
	q.seq++
}

// Len returns the number of pending actions.
func (q *Queue) Len() int { return q.h.Len() }

// Next returns the time of the earliest action.
func (q *Queue) Next() (float64, bool) {
	if q.h.Len() == 0 {
		return 0, false
	}
	return q.h[0].at, true
}

// Pop removes the earliest action.
func (q *Queue) Pop() (float64, Action) {
	it := heap.Pop(&q.h).(item)
	return it.at, it.run
}
