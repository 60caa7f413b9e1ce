package systems

import "sync"

// SpawnRequest asks the frame loop to create one particle.
type SpawnRequest struct {
	X, Y         float64
	HintX, HintY float64
}

// SpawnQueue hands spawn requests from the pointer listener to the frame loop.
// Listeners only Push; the frame loop is the single consumer via Drain.
type SpawnQueue struct {
	mu      sync.Mutex
	pending []SpawnRequest
	batches int
}

// NewSpawnQueue creates an empty queue.
func NewSpawnQueue() *SpawnQueue {
	return &SpawnQueue{pending: make([]SpawnRequest, 0, 16)}
}

// Push appends one batch of requests.
func (q *SpawnQueue) Push(batch ...SpawnRequest) {
	if len(batch) == 0 {
		return
	}
	q.mu.Lock()
	q.pending = append(q.pending, batch...)
	q.batches++
	q.mu.Unlock()
}

// Drain moves all pending requests into dst (after truncating it) and returns dst
// along with the number of batches they arrived in.
func (q *SpawnQueue) Drain(dst []SpawnRequest) ([]SpawnRequest, int) {
	dst = dst[:0]
	q.mu.Lock()
	dst = append(dst, q.pending...)
	batches := q.batches
	q.pending = q.pending[:0]
	q.batches = 0
	q.mu.Unlock()
	return dst, batches
}

// Len returns the number of pending requests.
func (q *SpawnQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
