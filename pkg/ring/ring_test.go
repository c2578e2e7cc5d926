package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuffer_AppendAndSnapshot(t *testing.T) {
	b := New[int](4)
	assert.Equal(t, 0, b.Len())
	assert.Empty(t, b.Snapshot())

	for i := 1; i <= 3; i++ {
		b.Append(i)
	}
	assert.Equal(t, 3, b.Len())
	assert.Equal(t, []int{1, 2, 3}, b.Snapshot())
}

func TestBuffer_EvictsOldestPastCapacity(t *testing.T) {
	b := New[int](3)
	for i := 1; i <= 5; i++ {
		b.Append(i)
	}
	assert.Equal(t, 3, b.Len())
	assert.Equal(t, []int{3, 4, 5}, b.Snapshot())
}

func TestBuffer_Last(t *testing.T) {
	b := New[int](5)
	for i := 1; i <= 4; i++ {
		b.Append(i)
	}
	assert.Equal(t, []int{3, 4}, b.Last(2))
	assert.Equal(t, []int{1, 2, 3, 4}, b.Last(10))
}
