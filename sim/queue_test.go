package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPacketQueue_FIFO(t *testing.T) {
	q := &PacketQueue{Limit: 3}
	q.Push(10)
	q.Push(20)
	q.Push(30)

	at, ok := q.Pop()
	assert.True(t, ok)
	assert.Equal(t, int64(10), at)
	at, _ = q.Pop()
	assert.Equal(t, int64(20), at)
	assert.Equal(t, 1, q.Len())
}

func TestPacketQueue_DropsWhenFull(t *testing.T) {
	q := &PacketQueue{Limit: 2}
	assert.True(t, q.Push(1))
	assert.True(t, q.Push(2))
	assert.True(t, q.Full())
	assert.False(t, q.Push(3), "arrivals beyond the limit are rejected")
	assert.Equal(t, 2, q.Len())
}

func TestPacketQueue_PopEmpty(t *testing.T) {
	q := &PacketQueue{Limit: 1}
	_, ok := q.Pop()
	assert.False(t, ok)
}
