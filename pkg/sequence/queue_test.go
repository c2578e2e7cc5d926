package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinQueue_OrdersBySmallestPriority(t *testing.T) {
	q := NewMinQueue[string]()
	q.Enqueue("late", 300)
	q.Enqueue("early", 100)
	q.Enqueue("mid", 200)

	value, priority, ok := q.Peek()
	assert.True(t, ok)
	assert.Equal(t, "early", value)
	assert.Equal(t, int64(100), priority)

	got := make([]string, 0, 3)
	for {
		v, ok := q.Dequeue()
		if !ok {
			break
		}
		got = append(got, v)
	}
	assert.Equal(t, []string{"early", "mid", "late"}, got)
	assert.True(t, q.IsEmpty())
}

func TestMinQueue_EmptyDequeue(t *testing.T) {
	q := NewMinQueue[int]()
	_, ok := q.Dequeue()
	assert.False(t, ok)
	_, _, ok = q.Peek()
	assert.False(t, ok)
}
