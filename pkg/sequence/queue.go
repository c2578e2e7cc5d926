package sequence

import "container/heap"

type PriorityItem[T any] struct {
	Value    T
	Priority int64
	index    int
}

type priorityQueue[T any] struct {
	items []*PriorityItem[T]
}

func (pq *priorityQueue[T]) Len() int {
	return len(pq.items)
}

func (pq *priorityQueue[T]) Less(i, j int) bool {
	return pq.items[i].Priority < pq.items[j].Priority
}

func (pq *priorityQueue[T]) Swap(i, j int) {
	pq.items[i], pq.items[j] = pq.items[j], pq.items[i]
	pq.items[i].index = i
	pq.items[j].index = j
}

func (pq *priorityQueue[T]) Push(x any) {
	item := x.(*PriorityItem[T])
	item.index = len(pq.items)
	pq.items = append(pq.items, item)
}

func (pq *priorityQueue[T]) Pop() any {
	old := pq.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil  // avoid memory leak
	item.index = -1 // for safety
	pq.items = old[0 : n-1]
	return item
}

// MinQueue is a priority queue that dequeues the smallest priority first.
// Priorities are int64 so callers can key entries by unix-nano deadlines.
type MinQueue[T any] struct {
	pq priorityQueue[T]
}

func NewMinQueue[T any]() *MinQueue[T] {
	q := &MinQueue[T]{}
	heap.Init(&q.pq)
	return q
}

func (q *MinQueue[T]) Enqueue(value T, priority int64) *PriorityItem[T] {
	item := &PriorityItem[T]{
		Value:    value,
		Priority: priority,
	}
	heap.Push(&q.pq, item)
	return item
}

func (q *MinQueue[T]) Dequeue() (T, bool) {
	if q.pq.Len() == 0 {
		var zero T
		return zero, false
	}
	item := heap.Pop(&q.pq).(*PriorityItem[T])
	return item.Value, true
}

// Peek returns the smallest-priority entry and its priority without removal.
func (q *MinQueue[T]) Peek() (T, int64, bool) {
	if q.pq.Len() == 0 {
		var zero T
		return zero, 0, false
	}
	head := q.pq.items[0]
	return head.Value, head.Priority, true
}

func (q *MinQueue[T]) Len() int {
	return q.pq.Len()
}

func (q *MinQueue[T]) IsEmpty() bool {
	return q.pq.Len() == 0
}
