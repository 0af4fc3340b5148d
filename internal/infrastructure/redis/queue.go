package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/indexpulse/core/internal/domain"
	"github.com/indexpulse/core/internal/queue"
	"github.com/redis/go-redis/v9"
)

const queueKey = "mq:queue"

// popEligibleScript atomically removes and returns every sorted-set
// member whose score is <= now, up to batch. ZRANGEBYSCORE + ZREM in one
// EVAL keeps the pop from racing a concurrent worker's pop.
var popEligibleScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local batch = tonumber(ARGV[2])
local results = redis.call('ZRANGEBYSCORE', key, '-inf', now, 'LIMIT', 0, batch)
if #results > 0 then
    redis.call('ZREM', key, unpack(results))
end
return results
`)

// Queue is a JobQueue backed by a single Redis sorted set keyed by
// eligibility time (whole Unix seconds).
type Queue struct {
	client *redis.Client
}

func NewQueue(client *redis.Client) *Queue {
	return &Queue{client: client}
}

func (q *Queue) EnqueueURL(ctx context.Context, urlID, projectID string, indexNowConfig *domain.IndexNowConfig) error {
	now := time.Now()
	members := make([]redis.Z, 0, len(domain.AllMethods))

	for _, m := range domain.AllMethods {
		job := domain.QueueJob{
			URLID:          urlID,
			ProjectID:      projectID,
			Method:         m,
			Attempt:        0,
			IndexNowConfig: indexNowConfig,
		}
		raw, err := json.Marshal(job)
		if err != nil {
			return fmt.Errorf("marshal queue job: %w", err)
		}
		score := now.Add(queue.MethodPriority[m])
		members = append(members, redis.Z{Score: float64(score.Unix()), Member: raw})
	}

	if err := q.client.ZAdd(ctx, queueKey, members...).Err(); err != nil {
		return fmt.Errorf("enqueue url methods: %w", err)
	}
	return nil
}

func (q *Queue) PopEligible(ctx context.Context, batch int) ([]domain.QueueJob, error) {
	raw, err := popEligibleScript.Run(ctx, q.client, []string{queueKey}, time.Now().Unix(), batch).StringSlice()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("pop eligible jobs: %w", err)
	}

	jobs := make([]domain.QueueJob, 0, len(raw))
	for _, r := range raw {
		var job domain.QueueJob
		if err := json.Unmarshal([]byte(r), &job); err != nil {
			// A malformed member can never become valid by retrying; drop it
			// rather than wedge the queue.
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func (q *Queue) Requeue(ctx context.Context, job domain.QueueJob, delay time.Duration) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal requeued job: %w", err)
	}
	score := time.Now().Add(delay).Unix()
	if err := q.client.ZAdd(ctx, queueKey, redis.Z{Score: float64(score), Member: raw}).Err(); err != nil {
		return fmt.Errorf("requeue job: %w", err)
	}
	return nil
}

func (q *Queue) Stats(ctx context.Context) (queue.Stats, error) {
	now := time.Now().Unix()

	total, err := q.client.ZCard(ctx, queueKey).Result()
	if err != nil {
		return queue.Stats{}, fmt.Errorf("zcard: %w", err)
	}
	eligible, err := q.client.ZCount(ctx, queueKey, "-inf", fmt.Sprintf("%d", now)).Result()
	if err != nil {
		return queue.Stats{}, fmt.Errorf("zcount eligible: %w", err)
	}
	delayed, err := q.client.ZCount(ctx, queueKey, fmt.Sprintf("(%d", now), "+inf").Result()
	if err != nil {
		return queue.Stats{}, fmt.Errorf("zcount delayed: %w", err)
	}

	return queue.Stats{Total: total, Eligible: eligible, Delayed: delayed}, nil
}
