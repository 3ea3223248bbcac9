package task

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTask implements the Task interface for testing
type mockTask struct {
	id       uuid.UUID
	taskType string
	execFn   func(ctx context.Context) (string, error)
}

func (m *mockTask) ID() uuid.UUID {
	return m.id
}

func (m *mockTask) Type() string {
	return m.taskType
}

func (m *mockTask) Execute(ctx context.Context) (string, error) {
	if m.execFn != nil {
		return m.execFn(ctx)
	}
	return "/done", nil
}

func newMockTask() *mockTask {
	return &mockTask{
		id:       uuid.New(),
		taskType: "mock",
	}
}

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func TestEnqueue(t *testing.T) {
	queue := NewTaskQueue(2, setupTestLogger())

	require.NoError(t, queue.Enqueue(newMockTask()))
	require.NoError(t, queue.Enqueue(newMockTask()))

	// Queue full
	task3 := newMockTask()
	err := queue.Enqueue(task3)
	assert.ErrorIs(t, err, ErrQueueFull)

	// Dequeue one item to make space
	<-queue.Chan()

	require.NoError(t, queue.Enqueue(task3))
}

func TestQueueClose(t *testing.T) {
	queue := NewTaskQueue(10, setupTestLogger())

	task := newMockTask()
	require.NoError(t, queue.Enqueue(task))

	queue.Close()

	err := queue.Enqueue(newMockTask())
	assert.ErrorIs(t, err, ErrQueueClosed)

	// Closing twice is safe.
	queue.Close()

	// Queued tasks can still be drained.
	received := <-queue.Chan()
	assert.Equal(t, task.ID(), received.ID())

	select {
	case _, ok := <-queue.Chan():
		assert.False(t, ok, "channel should be closed")
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timed out waiting for closed channel read")
	}
}

func TestConcurrentEnqueue(t *testing.T) {
	queue := NewTaskQueue(100, setupTestLogger())

	taskCount := 50
	doneCh := make(chan struct{})

	go func() {
		for i := 0; i < taskCount; i++ {
			assert.NoError(t, queue.Enqueue(newMockTask()))
		}
		close(doneCh)
	}()

	<-doneCh

	count := 0
	for i := 0; i < taskCount; i++ {
		select {
		case <-queue.Chan():
			count++
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timed out waiting for task")
		}
	}

	assert.Equal(t, taskCount, count)
}
