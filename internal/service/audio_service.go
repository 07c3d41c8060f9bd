package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "betterme/backend/internal/errors"
	"betterme/backend/internal/model"
	"betterme/backend/internal/queue"
	"betterme/backend/internal/repository"
)

// AudioService answers "where is the stored copy of this audio URL" without
// ever doing duplicate download work. The fast dedup check is synchronous;
// the download itself always happens on the worker side of the queue.
type AudioService struct {
	audioRepo *repository.AudioRepository
	producer  queue.Producer
	logger    zerolog.Logger
	clock     func() time.Time
}

func NewAudioService(audioRepo *repository.AudioRepository, producer queue.Producer, logger zerolog.Logger) *AudioService {
	return &AudioService{
		audioRepo: audioRepo,
		producer:  producer,
		logger:    logger.With().Str("component", "audio_service").Logger(),
		clock:     func() time.Time { return time.Now().UTC() },
	}
}

type AudioRequestResult struct {
	Message string `json:"message"`
	Link    string `json:"link,omitempty"`
	Queued  bool   `json:"-"`
}

// RequestMapping validates and normalizes the source URL, then either returns
// the existing mapping or claims the URL with a pending row and enqueues one
// download job. The unique source_url index guarantees that two concurrent
// first requests produce exactly one row and one job.
func (s *AudioService) RequestMapping(ctx context.Context, rawURL, requesterID string) (*AudioRequestResult, *apperrors.APIError) {
	sourceURL, err := NormalizeAudioURL(rawURL)
	if err != nil {
		return nil, apperrors.BadRequest("invalid_audio_url", err.Error())
	}

	now := s.clock()
	mapping := model.AudioMapping{
		ID:        uuid.NewString(),
		SourceURL: sourceURL,
		Status:    model.AudioStatusPending,
		CreatedBy: requesterID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	createErr := s.audioRepo.CreatePending(ctx, &mapping)
	if createErr == repository.ErrAlreadyExists {
		return s.handleExisting(ctx, sourceURL, requesterID)
	}
	if createErr != nil {
		return nil, apperrors.Internal("failed to record audio mapping")
	}

	if apiErr := s.enqueue(ctx, sourceURL, requesterID); apiErr != nil {
		// Roll the claim back so a later request can retry from scratch.
		if delErr := s.audioRepo.Delete(ctx, sourceURL); delErr != nil {
			s.logger.Error().Err(delErr).Str("source_url", sourceURL).
				Msg("failed to roll back unqueued mapping")
		}
		return nil, apiErr
	}

	return &AudioRequestResult{Message: "Audio processing initiated", Queued: true}, nil
}

func (s *AudioService) handleExisting(ctx context.Context, sourceURL, requesterID string) (*AudioRequestResult, *apperrors.APIError) {
	existing, err := s.audioRepo.GetBySourceURL(ctx, sourceURL)
	if err != nil {
		return nil, apperrors.Internal("failed to read audio mapping")
	}

	switch existing.Status {
	case model.AudioStatusReady:
		// Best-effort counter; a failed bump never fails the request.
		if err := s.audioRepo.IncrementRequestedCount(ctx, sourceURL); err != nil {
			s.logger.Warn().Err(err).Str("source_url", sourceURL).
				Msg("failed to bump requested count")
		}
		return &AudioRequestResult{Message: "Audio already processed", Link: existing.StorageURL}, nil

	case model.AudioStatusFailed:
		// Operator path for the no-retry gap: a repeat request re-arms and
		// re-enqueues a failed download.
		reset, err := s.audioRepo.ResetToPending(ctx, sourceURL, s.clock().Format(time.RFC3339Nano))
		if err != nil {
			return nil, apperrors.Internal("failed to reset audio mapping")
		}
		if !reset {
			// Someone else reset it first; treat as already queued.
			return &AudioRequestResult{Message: "Audio processing already queued", Queued: true}, nil
		}
		if apiErr := s.enqueue(ctx, sourceURL, requesterID); apiErr != nil {
			return nil, apiErr
		}
		return &AudioRequestResult{Message: "Audio processing initiated", Queued: true}, nil

	default:
		// Pending: the job is already in flight, nothing extra to enqueue.
		return &AudioRequestResult{Message: "Audio processing already queued", Queued: true}, nil
	}
}

func (s *AudioService) enqueue(ctx context.Context, sourceURL, requesterID string) *apperrors.APIError {
	priority := queue.PriorityHigh
	if IsYouTubeURL(sourceURL) {
		priority = queue.PriorityLow
	}

	job := model.AudioJob{SourceURL: sourceURL, RequestedBy: requesterID}
	if err := s.producer.Enqueue(ctx, priority, job); err != nil {
		s.logger.Error().Err(err).Str("source_url", sourceURL).Msg("enqueue failed")
		return apperrors.Upstream("failed to queue audio job")
	}
	return nil
}

// Lookup resolves a source URL to its stored artifact. Pending and failed
// mappings answer not-found: the link does not exist yet.
func (s *AudioService) Lookup(ctx context.Context, rawURL string) (string, *apperrors.APIError) {
	sourceURL, err := NormalizeAudioURL(rawURL)
	if err != nil {
		return "", apperrors.BadRequest("invalid_audio_url", err.Error())
	}

	mapping, repoErr := s.audioRepo.GetBySourceURL(ctx, sourceURL)
	if repoErr == repository.ErrNotFound {
		return "", apperrors.NotFound("audio_not_found", "audio not found")
	}
	if repoErr != nil {
		return "", apperrors.Internal("failed to read audio mapping")
	}
	if mapping.Status != model.AudioStatusReady {
		return "", apperrors.NotFound("audio_not_found", "audio not found")
	}

	return mapping.StorageURL, nil
}
