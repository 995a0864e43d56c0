package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/magistr/pkg/pain"
)

func TestWorkerPoolClassifiesEveryQuestion(t *testing.T) {
	qs := sampleQuestions(40)
	diagnoses := make([]pain.Diagnosis, len(qs))

	p := NewWorkerPool(4, 8, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	for i, q := range qs {
		require.NoError(t, p.Submit(func(context.Context) error {
			diagnoses[i] = pain.Classify(q.Text)
			return nil
		}))
	}
	p.Close()

	for i, q := range qs {
		assert.Equal(t, pain.Classify(q.Text), diagnoses[i], q.Text)
	}
}

func TestWorkerPoolSubmitAfterClose(t *testing.T) {
	p := NewWorkerPool(1, 2, nil)
	p.Start(context.Background())
	p.Close()

	assert.ErrorIs(t, p.Submit(func(context.Context) error { return nil }), ErrPoolClosed)
}

func TestWorkerPoolCloseReleasesBlockedSubmit(t *testing.T) {
	// Never started, so one job fills the queue.
	p := NewWorkerPool(1, 1, nil)
	require.NoError(t, p.Submit(func(context.Context) error { return nil }))

	done := make(chan error, 1)
	go func() { done <- p.Submit(func(context.Context) error { return nil }) }()
	time.Sleep(10 * time.Millisecond)
	p.Close()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrPoolClosed)
	case <-time.After(time.Second):
		t.Fatal("blocked Submit never returned")
	}
}

func TestWorkerPoolStopsOnCancel(t *testing.T) {
	p := NewWorkerPool(2, 16, nil)
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		p.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Close blocked after cancellation")
	}
}

func TestWorkerPoolSubmitCtxGivesUp(t *testing.T) {
	p := NewWorkerPool(1, 1, nil)
	defer p.Close()
	require.NoError(t, p.Submit(func(context.Context) error { return nil }))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.SubmitCtx(ctx, func(context.Context) error { return nil }), context.DeadlineExceeded)
}
