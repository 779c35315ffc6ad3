package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/assert/v2"
	"github.com/redis/go-redis/v9"

	"jobmate/board-client/internal/events"
)

func TestRecorder(t *testing.T) {
	r := &events.Recorder{}
	assert.Equal(t, r.Publish(context.Background(), events.Event{Op: "createJob"}), nil)

	got := r.Events()
	assert.Equal(t, 1, len(got))
	assert.Equal(t, "createJob", got[0].Op)

	r.Err = errors.New("down")
	assert.NotEqual(t, r.Publish(context.Background(), events.Event{}), nil)
	assert.Equal(t, 1, len(r.Events()))
}

func TestRedisPublisher_UnreachableReturnsError(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer rdb.Close()

	err := events.NewRedisPublisher(rdb).Publish(context.Background(), events.Event{Op: "deleteJob"})
	assert.NotEqual(t, err, nil)
}
