// Package worker runs quiz generation jobs in the background: a buffered
// queue drained by a fixed pool of goroutines, each job transitioning its
// quiz record to ready or failed exactly once.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/thinknt/quizforge/config"
	"github.com/thinknt/quizforge/internal/repository"
	"github.com/thinknt/quizforge/internal/service"
)

type GenerateQuizWorker struct {
	queue     chan service.GenerationJob
	generator service.QuizGeneratorService
	quizRepo  repository.QuizRepository
	timeout   time.Duration
	workers   int

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewGenerateQuizWorker(cfg *config.Config, generator service.QuizGeneratorService, quizRepo repository.QuizRepository) *GenerateQuizWorker {
	workers := cfg.Generation.Concurrency
	if workers <= 0 {
		workers = 1
	}
	queueSize := cfg.Generation.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}

	return &GenerateQuizWorker{
		queue:     make(chan service.GenerationJob, queueSize),
		generator: generator,
		quizRepo:  quizRepo,
		timeout:   time.Duration(cfg.Generation.TimeoutSec) * time.Second,
		workers:   workers,
	}
}

// Enqueue hands a job to the worker pool without blocking. A full queue is an
// error so the caller can fail the record instead of hanging a request.
func (w *GenerateQuizWorker) Enqueue(job service.GenerationJob) error {
	select {
	case w.queue <- job:
		return nil
	default:
		return fmt.Errorf("generation queue is full (%d pending)", cap(w.queue))
	}
}

// Start launches the worker goroutines. Stop drains nothing: in-flight jobs
// finish, queued jobs are dropped when the process exits.
func (w *GenerateQuizWorker) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go w.run(ctx, i)
	}
	log.Info().Int("workers", w.workers).Int("queue_size", cap(w.queue)).Msg("Generation worker pool started")
}

func (w *GenerateQuizWorker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	log.Info().Msg("Generation worker pool stopped")
}

func (w *GenerateQuizWorker) run(ctx context.Context, id int) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-w.queue:
			w.process(ctx, job)
		}
	}
}

// process runs one generation attempt and writes the terminal status. The
// orchestrator never touches the record; this is the only place the
// ready/failed transition happens.
func (w *GenerateQuizWorker) process(ctx context.Context, job service.GenerationJob) {
	runID := uuid.NewString()
	logger := log.With().Str("run_id", runID).Uint("quiz_id", job.QuizID).Logger()
	logger.Info().Str("theme", job.Params.Theme).Msg("Generating quiz")

	jobCtx := ctx
	if w.timeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	doc, err := w.generator.Generate(jobCtx, job.Params)
	if err != nil {
		logger.Error().Err(err).Msg("Quiz generation failed")
		if markErr := w.quizRepo.MarkFailed(job.QuizID, err.Error()); markErr != nil {
			logger.Error().Err(markErr).Msg("Failed to mark quiz as failed")
		}
		return
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		logger.Error().Err(err).Msg("Quiz document could not be encoded")
		if markErr := w.quizRepo.MarkFailed(job.QuizID, fmt.Sprintf("could not encode quiz document: %v", err)); markErr != nil {
			logger.Error().Err(markErr).Msg("Failed to mark quiz as failed")
		}
		return
	}

	if err := w.quizRepo.MarkReady(job.QuizID, raw); err != nil {
		logger.Error().Err(err).Msg("Failed to mark quiz as ready")
		return
	}
	logger.Info().Msg("Quiz generated successfully")
}
