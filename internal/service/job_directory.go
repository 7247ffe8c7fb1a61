package service

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/placement-api/internal/models"
)

type jobSummaryStore interface {
	GetSummary(ctx context.Context, id string) (*models.JobSummary, error)
}

// JobDirectory resolves job summaries, serving repeated lookups from cache.
type JobDirectory struct {
	repo   jobSummaryStore
	cache  *CacheService
	ttl    time.Duration
	logger *zap.Logger
}

// NewJobDirectory constructs a JobDirectory. cache may be nil.
func NewJobDirectory(repo jobSummaryStore, cache *CacheService, ttl time.Duration, logger *zap.Logger) *JobDirectory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobDirectory{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

func jobCacheKey(id string) string {
	return "jobs:summary:" + id
}

// Get returns the summary for id. Store errors, including sql.ErrNoRows, are returned unchanged.
func (d *JobDirectory) Get(ctx context.Context, id string) (*models.JobSummary, error) {
	value, err := d.cache.Remember(ctx, jobCacheKey(id), &models.JobSummary{}, d.ttl, func(ctx context.Context) (interface{}, error) {
		return d.repo.GetSummary(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	job, ok := value.(*models.JobSummary)
	if !ok || job == nil {
		d.logger.Warn("unexpected job summary value", zap.String("job_id", id))
		return nil, sql.ErrNoRows
	}
	return job, nil
}

// GetFresh reads id from the store, bypassing the cache, and refreshes the cached entry.
// Authorization decisions use it so a reassigned job takes effect immediately.
func (d *JobDirectory) GetFresh(ctx context.Context, id string) (*models.JobSummary, error) {
	job, err := d.repo.GetSummary(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := d.cache.Set(ctx, jobCacheKey(id), job, d.ttl); err != nil {
		d.logger.Debug("job summary not refreshed in cache", zap.String("job_id", id), zap.Error(err))
	}
	return job, nil
}
