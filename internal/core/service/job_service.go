package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dailyskills/marketplace/internal/core/domain"
	"github.com/dailyskills/marketplace/internal/core/ports"
)

const (
	jobsTable       = "jobs"
	defaultJobLimit = 50
	maxJobLimit     = 100
)

type JobService struct {
	repo   ports.JobRepository
	feed   ports.ChangeFeed
	logger zerolog.Logger
	now    func() time.Time
}

// NewJobService returns a JobService. feed may be nil.
func NewJobService(repo ports.JobRepository, feed ports.ChangeFeed, logger zerolog.Logger) *JobService {
	return &JobService{repo: repo, feed: feed, logger: logger, now: time.Now}
}

// ListJobs returns jobs newest first.
func (s *JobService) ListJobs(ctx context.Context, filter ports.JobFilter) ([]*domain.Job, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown job status %q", domain.ErrInvalidInput, filter.Status)
	}
	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultJobLimit
	case filter.Limit > maxJobLimit:
		filter.Limit = maxJobLimit
	}
	return s.repo.List(ctx, filter)
}

// CreateJob posts a new open job. Only employers may post.
func (s *JobService) CreateJob(ctx context.Context, input ports.CreateJobInput) (*domain.Job, error) {
	if input.Role != domain.RoleEmployer {
		return nil, domain.ErrForbidden
	}

	job := &domain.Job{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Category:    strings.TrimSpace(input.Category),
		Skills:      input.Skills,
		Location:    strings.TrimSpace(input.Location),
		Budget:      input.Budget,
		Status:      domain.JobOpen,
		EmployerID:  input.EmployerID,
		IsUrgent:    input.IsUrgent,
		CreatedAt:   s.now().UTC(),
	}
	if job.Title == "" || job.Description == "" || job.Category == "" || job.Location == "" {
		return nil, fmt.Errorf("%w: title, description, category and location are required", domain.ErrInvalidInput)
	}
	if job.Budget.MaxRate > 0 && job.Budget.MinRate > job.Budget.MaxRate {
		return nil, fmt.Errorf("%w: minimum rate exceeds maximum rate", domain.ErrInvalidInput)
	}
	if job.Skills == nil {
		job.Skills = []string{}
	}

	if err := s.repo.Create(ctx, job); err != nil {
		s.logger.Error().Err(err).Msg("failed to create job")
		return nil, err
	}

	s.logger.Info().Str("job_id", job.ID).Str("employer_id", job.EmployerID).Msg("job created")
	publish(ctx, s.feed, s.logger, domain.Change{Table: jobsTable, Key: job.ID, Op: domain.ChangeInsert, At: job.CreatedAt})
	return job, nil
}

// publish announces change on feed; failures are logged only.
func publish(ctx context.Context, feed ports.ChangeFeed, log zerolog.Logger, change domain.Change) {
	if feed == nil {
		return
	}
	if err := feed.Publish(ctx, change); err != nil {
		log.Warn().Err(err).Str("table", change.Table).Str("key", change.Key).Msg("failed to publish change")
	}
}
