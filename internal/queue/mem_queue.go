package queue

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/indexpulse/core/internal/domain"
)

type scoredJob struct {
	job   domain.QueueJob
	score time.Time
}

// jobHeap orders scoredJob by score ascending (container/heap.Interface).
type jobHeap []scoredJob

func (h jobHeap) Len() int            { return len(h) }
func (h jobHeap) Less(i, j int) bool  { return h[i].score.Before(h[j].score) }
func (h jobHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *jobHeap) Push(x any)         { *h = append(*h, x.(scoredJob)) }
func (h *jobHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// MemQueue is an in-memory JobQueue used by use case and scheduler unit
// tests in place of the Redis-backed implementation.
type MemQueue struct {
	mu   sync.Mutex
	heap jobHeap
	now  func() time.Time
}

// NewMemQueue builds an empty queue. now defaults to time.Now; tests may
// override it to make eligibility deterministic.
func NewMemQueue(now func() time.Time) *MemQueue {
	if now == nil {
		now = time.Now
	}
	q := &MemQueue{now: now}
	heap.Init(&q.heap)
	return q
}

func (q *MemQueue) EnqueueURL(_ context.Context, urlID, projectID string, indexNowConfig *domain.IndexNowConfig) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	base := q.now()
	for _, m := range domain.AllMethods {
		job := domain.QueueJob{
			URLID:          urlID,
			ProjectID:      projectID,
			Method:         m,
			Attempt:        0,
			IndexNowConfig: indexNowConfig,
		}
		heap.Push(&q.heap, scoredJob{job: job, score: base.Add(MethodPriority[m])})
	}
	return nil
}

func (q *MemQueue) PopEligible(_ context.Context, batch int) ([]domain.QueueJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	var out []domain.QueueJob
	for len(out) < batch && q.heap.Len() > 0 && !q.heap[0].score.After(now) {
		item := heap.Pop(&q.heap).(scoredJob)
		out = append(out, item.job)
	}
	return out, nil
}

func (q *MemQueue) Requeue(_ context.Context, job domain.QueueJob, delay time.Duration) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	heap.Push(&q.heap, scoredJob{job: job, score: q.now().Add(delay)})
	return nil
}

func (q *MemQueue) Stats(_ context.Context) (Stats, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	stats := Stats{Total: int64(q.heap.Len())}
	for _, item := range q.heap {
		if item.score.After(now) {
			stats.Delayed++
		} else {
			stats.Eligible++
		}
	}
	return stats, nil
}
