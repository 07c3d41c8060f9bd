// Package queue carries audio download jobs between the API process and the
// worker. Kafka backs the real deployment; a channel-backed queue serves
// tests and single-process setups.
package queue

import (
	"context"

	"betterme/backend/internal/model"
)

// Priority selects which topic a job lands on. YouTube downloads are slow and
// throttled upstream, so they ride the low priority topic.
type Priority string

const (
	PriorityHigh Priority = "high"
	PriorityLow  Priority = "low"
)

// Message is one fetched job plus whatever the backend needs to commit it.
type Message struct {
	Job model.AudioJob

	raw interface{}
}

// Producer enqueues jobs. Enqueue must return quickly; the request path never
// waits on a download.
type Producer interface {
	Enqueue(ctx context.Context, priority Priority, job model.AudioJob) error
}

// Consumer drains jobs with at-least-once semantics: a job is redelivered
// unless Commit is called after processing.
type Consumer interface {
	Fetch(ctx context.Context) (Message, error)
	Commit(ctx context.Context, msg Message) error
	Close() error
}
