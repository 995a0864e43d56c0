// Package ingest runs a batch of questions through the classifier and the
// formatter concurrently and records every analysis.
package ingest

import (
	"cmp"
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/japaniel/magistr/pkg/db"
	"github.com/japaniel/magistr/pkg/pain"
	"github.com/japaniel/magistr/pkg/pitch"
	"github.com/japaniel/magistr/pkg/questions"
)

// ProgressEvery is how many finished questions separate two OnProgress calls.
const ProgressEvery = 10

// TopSize is the length of Summary.Top.
const TopSize = 5

// WorkerPoolInterface abstracts the worker pool so tests can inject failing implementations.
type WorkerPoolInterface interface {
	Start(ctx context.Context)
	Submit(Job) error
	// SubmitCtx attempts to enqueue a job but returns promptly if ctx is canceled.
	SubmitCtx(ctx context.Context, job Job) error
	Close()
}

// Result is one analysed question.
type Result struct {
	Number    int // 1-based position in the input
	Question  questions.Question
	Diagnosis pain.Diagnosis
	Pitch     pitch.Pitch
}

// Summary aggregates a finished run.
type Summary struct {
	RunID         string
	Total         int
	Roflo         int
	Real          int
	AvgConfidence float64
	AvgHype       float64
	// IPOReady counts pitches whose viability is pitch.ViabilityIPO.
	IPOReady int
	// Top holds the TopSize pitches with the highest hype, earlier ones first on ties.
	Top     []Result
	Results []Result
}

// Ingester runs questions through pain.Classify and the pitch generator.
type Ingester struct {
	// DB receives one analyses row per question; nil skips recording.
	DB        *sql.DB
	Generator *pitch.Generator
	BatchSize int
	Workers   int
	Logger    *zap.Logger
	// OnProgress is called every ProgressEvery results, in input order.
	OnProgress func(current, total int)

	// PoolFactory allows tests to inject custom worker pool implementations.
	PoolFactory func(workers, queue int) WorkerPoolInterface
}

// NewIngester creates a new Ingester.
func NewIngester(conn *sql.DB, gen *pitch.Generator, logger *zap.Logger) *Ingester {
	if gen == nil {
		gen = pitch.NewGenerator(uint64(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingester{
		DB:        conn,
		Generator: gen,
		BatchSize: 25,
		Workers:   4,
		Logger:    logger,
	}
}

// Ingest analyses every question and returns the run summary. Results keep
// the input order whatever order the workers finish in.
func (ig *Ingester) Ingest(ctx context.Context, qs []questions.Question) (Summary, error) {
	runID := uuid.NewString()
	log := ig.logger().With(zap.String("run_id", runID))
	total := len(qs)
	if total == 0 {
		return Summary{RunID: runID}, nil
	}
	if ig.Generator == nil {
		ig.Generator = pitch.NewGenerator(uint64(time.Now().UnixNano()))
	}

	var wp WorkerPoolInterface
	if ig.PoolFactory != nil {
		wp = ig.PoolFactory(ig.Workers, ig.Workers*2)
	} else {
		wp = NewWorkerPool(ig.Workers, ig.Workers*2, log)
	}

	// Sized for every result so workers never block on a slow consumer.
	resultCh := make(chan Result, total)

	var bw *BatchWriter
	if ig.DB != nil {
		bw = NewBatchWriter(ig.DB, BatchConfig{Size: ig.BatchSize, Interval: 100 * time.Millisecond}, log)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	wp.Start(ctx)

	submitErr := ig.produce(ctx, wp, qs, resultCh)
	// Close waits for the accepted jobs, so every result is in resultCh now.
	wp.Close()
	close(resultCh)

	results, consumeErr := ig.consume(resultCh, total, runID, bw)

	var bwErr error
	if bw != nil {
		bwErr = bw.Close()
	}

	if err := firstErr(submitErr, consumeErr, bwErr, ctx.Err()); err != nil {
		log.Warn("ingest interrupted", zap.Int("done", len(results)), zap.Int("total", total), zap.Error(err))
		return summarize(runID, results), err
	}

	s := summarize(runID, results)
	log.Info("ingest finished",
		zap.Int("total", s.Total),
		zap.Int("roflo", s.Roflo),
		zap.Int("ipo_ready", s.IPOReady))
	return s, nil
}

func (ig *Ingester) produce(ctx context.Context, wp WorkerPoolInterface, qs []questions.Question, out chan<- Result) error {
	for i, q := range qs {
		if err := ctx.Err(); err != nil {
			return err
		}
		number := i + 1
		job := func(ctx context.Context) error {
			d := pain.Classify(q.Text)
			out <- Result{Number: number, Question: q, Diagnosis: d, Pitch: ig.Generator.Format(d)}
			return nil
		}
		if err := wp.SubmitCtx(ctx, job); err != nil {
			return fmt.Errorf("submit question %d: %w", number, err)
		}
	}
	return nil
}

// consume reorders results, hands them to the batch writer and reports
// progress. It stops at the first gap left by a job that never ran.
func (ig *Ingester) consume(in <-chan Result, total int, runID string, bw *BatchWriter) ([]Result, error) {
	pending := make(map[int]Result)
	results := make([]Result, 0, total)
	next := 1

	for r := range in {
		pending[r.Number] = r
		for {
			item, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)

			if bw != nil {
				if err := bw.Submit(recordWrite(runID, item)); err != nil {
					return results, err
				}
			}
			results = append(results, item)
			if ig.OnProgress != nil && next%ProgressEvery == 0 {
				ig.OnProgress(next, total)
			}
			next++
		}
	}
	return results, nil
}

func recordWrite(runID string, r Result) WriteFunc {
	return func(_ context.Context, tx *sql.Tx) error {
		if _, err := db.RecordAnalysis(tx, AnalysisOf(runID, r)); err != nil {
			return fmt.Errorf("question %d: %w", r.Number, err)
		}
		return nil
	}
}

// AnalysisOf converts a result into its history row.
func AnalysisOf(runID string, r Result) db.Analysis {
	cats := make([]string, 0, len(r.Diagnosis.Categories))
	for _, c := range r.Diagnosis.Categories {
		cats = append(cats, string(c))
	}
	return db.Analysis{
		RunID:       runID,
		Question:    r.Question.Text,
		Source:      r.Question.Source,
		Kind:        string(r.Question.Kind),
		Categories:  cats,
		Confidence:  r.Diagnosis.Confidence,
		StartupName: r.Pitch.Name,
		HypeLevel:   r.Pitch.HypeLevel,
		Viability:   r.Pitch.Viability,
	}
}

func summarize(runID string, results []Result) Summary {
	s := Summary{RunID: runID, Total: len(results), Results: results}
	if s.Total == 0 {
		return s
	}

	var confidence float64
	var hype int
	for _, r := range results {
		if r.Question.Kind == questions.KindRoflo {
			s.Roflo++
		}
		if r.Pitch.Viability == pitch.ViabilityIPO {
			s.IPOReady++
		}
		confidence += r.Diagnosis.Confidence
		hype += r.Pitch.HypeLevel
	}
	s.Real = s.Total - s.Roflo
	s.AvgConfidence = confidence / float64(s.Total)
	s.AvgHype = float64(hype) / float64(s.Total)

	top := slices.Clone(results)
	slices.SortStableFunc(top, func(a, b Result) int {
		return cmp.Compare(b.Pitch.HypeLevel, a.Pitch.HypeLevel)
	})
	s.Top = top[:min(TopSize, len(top))]
	return s
}

func (ig *Ingester) logger() *zap.Logger {
	if ig.Logger == nil {
		return zap.NewNop()
	}
	return ig.Logger
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
