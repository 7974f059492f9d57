// Implements the PacketQueue, which holds the arrival timestamps of
// packets waiting for a transmission opportunity at one node.

package sim

// PacketQueue is a FIFO queue of packet arrival timestamps. The queuing
// delay of a packet is the gap between its arrival and the instant its
// transmission begins.
//
// A Limit of zero means unbounded (the saturated traffic model, which by
// construction never holds more than one outstanding packet); a positive
// Limit makes the queue lossy: arrivals beyond the limit are discarded.
type PacketQueue struct {
	queue []int64
	Limit int
}

// Len returns the number of queued packets.
func (q *PacketQueue) Len() int {
	return len(q.queue)
}

// Full reports whether the queue is at its capacity limit.
func (q *PacketQueue) Full() bool {
	return q.Limit > 0 && len(q.queue) >= q.Limit
}

// Push enqueues a packet that arrived at time t. It reports whether the
// packet was accepted; a full queue discards the arrival.
func (q *PacketQueue) Push(t int64) bool {
	if q.Full() {
		return false
	}
	q.queue = append(q.queue, t)
	return true
}

// Pop removes and returns the oldest arrival timestamp. The second return
// value is false when the queue is empty.
func (q *PacketQueue) Pop() (int64, bool) {
	if len(q.queue) == 0 {
		return 0, false
	}
	t := q.queue[0]
	q.queue = q.queue[1:]
	return t, true
}
