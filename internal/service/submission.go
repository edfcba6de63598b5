package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/staysign/guestreg/internal/domain"
	"github.com/staysign/guestreg/internal/metrics"
	"github.com/staysign/guestreg/internal/repo"
	"github.com/staysign/guestreg/internal/spam"
	"github.com/staysign/guestreg/internal/validate"
	"github.com/staysign/guestreg/pkg/events"
	"github.com/staysign/guestreg/pkg/logger"
)

var (
	// ErrRateLimited is returned when the client identity exhausted its
	// submission window.
	ErrRateLimited = errors.New("too many submission attempts")

	// ErrSpamRejected is returned for heuristic rejections. Deliberately
	// generic: the caller learns nothing about which rule matched.
	ErrSpamRejected = errors.New("submission rejected")
)

// RateLimiter is the slice of the limiter the service needs.
type RateLimiter interface {
	Allow(ctx context.Context, identity string) bool
}

type SubmissionService interface {
	// Submit runs the full pipeline: rate limit, validate, spam check,
	// persist. On success it returns the new record identifier.
	Submit(ctx context.Context, sub *domain.Submission, meta domain.RequestMeta) (string, error)
}

type submissionService struct {
	regRepo   repo.RegistrationRepo
	limiter   RateLimiter
	bus       events.Publisher
	recordTTL time.Duration
	now       func() time.Time
}

func NewSubmissionService(regRepo repo.RegistrationRepo, limiter RateLimiter, bus events.Publisher, recordTTL time.Duration) SubmissionService {
	return &submissionService{
		regRepo:   regRepo,
		limiter:   limiter,
		bus:       bus,
		recordTTL: recordTTL,
		now:       time.Now,
	}
}

func (s *submissionService) Submit(ctx context.Context, sub *domain.Submission, meta domain.RequestMeta) (string, error) {
	if !s.limiter.Allow(ctx, meta.RemoteIP) {
		metrics.SubmissionsTotal.WithLabelValues("rate_limited").Inc()
		return "", ErrRateLimited
	}

	now := s.now()

	reg, verr := validate.Submission(sub, now)
	if verr != nil {
		metrics.SubmissionsTotal.WithLabelValues("validation_failed").Inc()
		return "", verr
	}

	if spam.Suspicious(reg.FullName, reg.Email, reg.HomeAddress) {
		metrics.SubmissionsTotal.WithLabelValues("spam_rejected").Inc()
		logger.InfoContext(ctx, "Submission rejected by content filter")
		return "", ErrSpamRejected
	}

	reg.ID = uuid.NewString()
	reg.CreatedAt = now.UnixMilli()
	if meta.SubmittedAt == "" {
		meta.SubmittedAt = now.UTC().Format(time.RFC3339)
	}
	reg.Meta = meta

	if err := s.regRepo.Create(ctx, reg, s.recordTTL); err != nil {
		metrics.SubmissionsTotal.WithLabelValues("store_error").Inc()
		return "", fmt.Errorf("persist registration: %w", err)
	}

	// Best effort: a lost event never fails an accepted submission.
	if err := s.bus.Publish(ctx, events.RegistrationCreated, map[string]any{
		"id":        reg.ID,
		"createdAt": reg.CreatedAt,
		"checkIn":   reg.CheckIn,
		"checkOut":  reg.CheckOut,
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish registration event", "error", err, "registration_id", reg.ID)
	}

	metrics.SubmissionsTotal.WithLabelValues("accepted").Inc()
	logger.InfoContext(ctx, "Registration stored", "registration_id", reg.ID, "guests", reg.Guests)

	return reg.ID, nil
}
