// Package worker drains the audio job queue: download, transcode, upload,
// record. It is the slow half of the coordinator that the HTTP path
// deliberately never waits on.
package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"betterme/backend/internal/model"
	"betterme/backend/internal/queue"
	"betterme/backend/internal/repository"
	"betterme/backend/internal/storage"
)

type Worker struct {
	consumer   queue.Consumer
	audioRepo  *repository.AudioRepository
	store      storage.ObjectStore
	downloader Downloader

	// limiter paces job starts against the upstream media providers; it
	// replaces ad-hoc sleeps so tests can run with rate.Inf.
	limiter *rate.Limiter

	retryBackoff time.Duration
	logger       zerolog.Logger
	clock        func() time.Time
}

type Config struct {
	Consumer   queue.Consumer
	AudioRepo  *repository.AudioRepository
	Store      storage.ObjectStore
	Downloader Downloader

	JobsPerMinute float64
	RetryBackoff  time.Duration
	Logger        zerolog.Logger
}

func New(cfg Config) (*Worker, error) {
	if cfg.Consumer == nil {
		return nil, fmt.Errorf("consumer is required")
	}
	if cfg.AudioRepo == nil {
		return nil, fmt.Errorf("audio repository is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("object store is required")
	}
	if cfg.Downloader == nil {
		return nil, fmt.Errorf("downloader is required")
	}

	limit := rate.Inf
	if cfg.JobsPerMinute > 0 {
		limit = rate.Limit(cfg.JobsPerMinute / 60)
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = 30 * time.Second
	}

	return &Worker{
		consumer:     cfg.Consumer,
		audioRepo:    cfg.AudioRepo,
		store:        cfg.Store,
		downloader:   cfg.Downloader,
		limiter:      rate.NewLimiter(limit, 1),
		retryBackoff: backoff,
		logger:       cfg.Logger.With().Str("component", "audio_worker").Logger(),
		clock:        func() time.Time { return time.Now().UTC() },
	}, nil
}

// Run blocks until ctx is cancelled, processing one job at a time. A job
// failure gets one retry after a backoff; the second failure is recorded on
// the mapping and the job is committed so it does not loop forever.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info().Msg("audio worker started")

	for {
		if err := w.limiter.Wait(ctx); err != nil {
			w.logger.Info().Msg("audio worker stopped")
			return ctx.Err()
		}

		msg, err := w.consumer.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, queue.ErrClosed) {
				w.logger.Info().Msg("audio worker stopped")
				return ctx.Err()
			}
			w.logger.Error().Err(err).Msg("fetch failed")
			continue
		}

		w.handle(ctx, msg)
	}
}

func (w *Worker) handle(ctx context.Context, msg queue.Message) {
	job := msg.Job
	log := w.logger.With().Str("source_url", job.SourceURL).Logger()
	started := w.clock()

	err := w.process(ctx, job)
	if err != nil && ctx.Err() == nil {
		log.Warn().Err(err).Msg("download failed, retrying once")
		select {
		case <-time.After(w.retryBackoff):
			err = w.process(ctx, job)
		case <-ctx.Done():
			return
		}
	}

	if ctx.Err() != nil {
		// Shutting down mid-job: leave it uncommitted for redelivery.
		return
	}

	if err != nil {
		log.Error().Err(err).Msg("download failed permanently")
		if markErr := w.audioRepo.MarkFailed(
			ctx,
			job.SourceURL,
			err.Error(),
			w.clock().Format(time.RFC3339Nano),
		); markErr != nil {
			log.Error().Err(markErr).Msg("failed to record job failure")
		}
	} else {
		log.Info().Dur("took", w.clock().Sub(started)).Msg("audio processed")
	}

	if err := w.consumer.Commit(ctx, msg); err != nil {
		log.Error().Err(err).Msg("commit failed")
	}
}

func (w *Worker) process(ctx context.Context, job model.AudioJob) error {
	workDir, err := os.MkdirTemp("", "audio_out_")
	if err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	path, title, err := w.downloader.Download(ctx, job.SourceURL, workDir)
	if err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer file.Close()

	// Short random prefix keeps identically titled tracks from colliding.
	key := fmt.Sprintf("audios/%s_%s.mp3", uuid.NewString()[:8], SanitizeFilename(title))
	storageURL, err := w.store.Put(ctx, key, file, "audio/mpeg")
	if err != nil {
		return fmt.Errorf("store artifact: %w", err)
	}

	now := w.clock()
	mapping := model.AudioMapping{
		ID:         uuid.NewString(),
		SourceURL:  job.SourceURL,
		StorageURL: storageURL,
		Status:     model.AudioStatusReady,
		CreatedBy:  job.RequestedBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := w.audioRepo.MarkReady(ctx, &mapping); err != nil {
		return fmt.Errorf("record mapping: %w", err)
	}

	return nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SanitizeFilename reduces a track title to a storage-safe name.
func SanitizeFilename(title string) string {
	name := unsafeFilenameChars.ReplaceAllString(title, "_")
	name = strings.Trim(name, "._-")
	if len(name) > 120 {
		name = name[:120]
	}
	if name == "" {
		return "audio"
	}
	return name
}
