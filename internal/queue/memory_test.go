package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"betterme/backend/internal/model"
)

func TestMemoryQueue_HighPriorityDrainsFirst(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(8)
	defer q.Close()

	require.NoError(t, q.Enqueue(ctx, PriorityLow, model.AudioJob{SourceURL: "low-1"}))
	require.NoError(t, q.Enqueue(ctx, PriorityLow, model.AudioJob{SourceURL: "low-2"}))
	require.NoError(t, q.Enqueue(ctx, PriorityHigh, model.AudioJob{SourceURL: "high-1"}))
	require.Equal(t, 3, q.Len())

	var order []string
	for i := 0; i < 3; i++ {
		msg, err := q.Fetch(ctx)
		require.NoError(t, err)
		require.NoError(t, q.Commit(ctx, msg))
		order = append(order, msg.Job.SourceURL)
	}

	require.Equal(t, []string{"high-1", "low-1", "low-2"}, order)
	require.Equal(t, 0, q.Len())
}

func TestMemoryQueue_FetchHonorsContextCancel(t *testing.T) {
	q := NewMemoryQueue(1)
	defer q.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.Fetch(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemoryQueue_CloseUnblocksFetch(t *testing.T) {
	q := NewMemoryQueue(1)

	done := make(chan error, 1)
	go func() {
		_, err := q.Fetch(context.Background())
		done <- err
	}()

	require.NoError(t, q.Close())
	require.NoError(t, q.Close()) // second close is a no-op

	select {
	case err := <-done:
		require.ErrorIs(t, err, ErrClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("fetch did not unblock on close")
	}

	require.ErrorIs(t, q.Enqueue(context.Background(), PriorityHigh, model.AudioJob{}), ErrClosed)
}
