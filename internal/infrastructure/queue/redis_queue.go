package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ppv-marketplace/pkg/constants"

	"github.com/go-redis/redis/v8"
)

// RedisQueue moves jobs between the API server and the worker process
// over two Redis lists.
type RedisQueue struct {
	rdb *redis.Client
}

func NewRedisQueue(rdb *redis.Client) *RedisQueue {
	return &RedisQueue{rdb: rdb}
}

func (q *RedisQueue) EnqueueConfirm(ctx context.Context, job ConfirmJob) error {
	payload, err := SerializeJob(job)
	if err != nil {
		return err
	}
	return q.rdb.LPush(ctx, constants.ConfirmQueue, payload).Err()
}

// NextConfirm blocks up to timeout. It returns nil, nil when nothing arrived.
func (q *RedisQueue) NextConfirm(ctx context.Context, timeout time.Duration) (*ConfirmJob, error) {
	val, err := q.rdb.BRPop(ctx, timeout, constants.ConfirmQueue).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return DeserializeJob(val[1])
}

func (q *RedisQueue) PublishConfirmed(ctx context.Context, job ConfirmedJob) error {
	payload, err := SerializeJob(job)
	if err != nil {
		return err
	}
	return q.rdb.LPush(ctx, constants.ConfirmedQueue, payload).Err()
}

func (q *RedisQueue) NextConfirmed(ctx context.Context, timeout time.Duration) (*ConfirmedJob, error) {
	val, err := q.rdb.BRPop(ctx, timeout, constants.ConfirmedQueue).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var job ConfirmedJob
	if err := json.Unmarshal([]byte(val[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to deserialize confirmed job: %w", err)
	}
	return &job, nil
}
