package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/magistr/pkg/db"
	"github.com/japaniel/magistr/pkg/pain"
	"github.com/japaniel/magistr/pkg/pitch"
	"github.com/japaniel/magistr/pkg/questions"
)

func setupDB(t *testing.T) *sql.DB {
	conn, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sampleQuestions(n int) []questions.Question {
	texts := []string{
		"Как перестать бояться будущего?",
		"Почему мне так одиноко?",
		"Что делать, если я не уверен в себе?",
		"Как заставить тостер делать тосты с настроением?",
	}
	qs := make([]questions.Question, n)
	for i := range qs {
		kind, source := questions.KindReal, questions.SourceSite
		if i%2 == 0 {
			kind, source = questions.KindRoflo, questions.SourceRoflo
		}
		qs[i] = questions.Question{Text: fmt.Sprintf("%s #%d", texts[i%len(texts)], i), Source: source, Kind: kind}
	}
	return qs
}

func TestIngestKeepsOrderAndRecords(t *testing.T) {
	conn := setupDB(t)
	qs := sampleQuestions(25)

	ig := NewIngester(conn, pitch.NewGenerator(1), nil)
	ig.BatchSize = 4
	var mu sync.Mutex
	var progress []int
	ig.OnProgress = func(current, total int) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 25, total)
		progress = append(progress, current)
	}

	s, err := ig.Ingest(context.Background(), qs)
	require.NoError(t, err)

	assert.NotEmpty(t, s.RunID)
	assert.Equal(t, 25, s.Total)
	assert.Equal(t, 13, s.Roflo)
	assert.Equal(t, 12, s.Real)
	assert.Equal(t, []int{10, 20}, progress)

	require.Len(t, s.Results, 25)
	for i, r := range s.Results {
		assert.Equal(t, i+1, r.Number)
		assert.Equal(t, qs[i].Text, r.Question.Text)
		assert.Equal(t, pain.Classify(qs[i].Text), r.Diagnosis)
	}

	n, err := db.CountAnalyses(conn, s.RunID)
	require.NoError(t, err)
	assert.Equal(t, 25, n)

	stored, err := db.GetAnalyses(conn, s.RunID)
	require.NoError(t, err)
	for i, a := range stored {
		assert.Equal(t, qs[i].Text, a.Question)
		assert.Equal(t, s.Results[i].Pitch.Name, a.StartupName)
	}
}

func TestIngestWithoutDB(t *testing.T) {
	ig := NewIngester(nil, nil, nil)
	s, err := ig.Ingest(context.Background(), sampleQuestions(7))
	require.NoError(t, err)
	assert.Equal(t, 7, s.Total)
	assert.Len(t, s.Top, TopSize)
}

func TestIngestEmpty(t *testing.T) {
	s, err := NewIngester(nil, nil, nil).Ingest(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, s.Total)
	assert.NotEmpty(t, s.RunID)
}

func TestIngestContextCancel(t *testing.T) {
	conn := setupDB(t)
	ig := NewIngester(conn, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := ig.Ingest(ctx, sampleQuestions(100))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, s.Total)

	n, err := db.CountAnalyses(conn, "")
	require.NoError(t, err)
	assert.Zero(t, n)
}

// failingPool accepts a few jobs and then refuses the rest.
type failingPool struct {
	*WorkerPool
	accept int
}

func (p *failingPool) SubmitCtx(ctx context.Context, job Job) error {
	if p.accept == 0 {
		return errors.New("queue broken")
	}
	p.accept--
	return p.WorkerPool.SubmitCtx(ctx, job)
}

func TestIngestSubmitError(t *testing.T) {
	ig := NewIngester(nil, nil, nil)
	ig.PoolFactory = func(workers, queue int) WorkerPoolInterface {
		return &failingPool{WorkerPool: NewWorkerPool(workers, queue, nil), accept: 3}
	}

	s, err := ig.Ingest(context.Background(), sampleQuestions(10))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "submit question 4")
	// The accepted questions are still reported.
	assert.Equal(t, 3, s.Total)
}

func TestSummarize(t *testing.T) {
	mk := func(n, hype int, kind questions.Kind, confidence float64) Result {
		return Result{
			Number:    n,
			Question:  questions.Question{Kind: kind},
			Diagnosis: pain.Diagnosis{Confidence: confidence},
			Pitch:     pitch.Pitch{HypeLevel: hype, Viability: pitch.Viability(hype)},
		}
	}
	results := []Result{
		mk(1, 5, questions.KindRoflo, 0.3),
		mk(2, 9, questions.KindReal, 0.6),
		mk(3, 7, questions.KindRoflo, 0.6),
		mk(4, 10, questions.KindCustom, 0.95),
		mk(5, 9, questions.KindRoflo, 0.8),
		mk(6, 6, questions.KindReal, 0.3),
	}

	s := summarize("run", results)
	assert.Equal(t, 6, s.Total)
	assert.Equal(t, 3, s.Roflo)
	assert.Equal(t, 3, s.Real)
	assert.Equal(t, 3, s.IPOReady)
	assert.InDelta(t, 0.591, s.AvgConfidence, 0.001)
	assert.InDelta(t, 46.0/6, s.AvgHype, 0.001)

	var top []int
	for _, r := range s.Top {
		top = append(top, r.Number)
	}
	assert.Equal(t, []int{4, 2, 5, 3, 6}, top)
}
