package alarming

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/smukkama/vitalcheck/internal/validation"
)

// ErrReportNotFound is returned when no report is stored under the key
var ErrReportNotFound = errors.New("report not found")

const (
	reportKeyPrefix = "validation_report:"
	latestReportKey = "validation_report:latest"

	defaultReportTTL = 24 * time.Hour
)

// ReportStore keeps recent validation reports in Redis for presenters
type ReportStore struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewReportStore creates a report store. A non-positive ttl selects 24h.
func NewReportStore(redisClient *redis.Client, ttl time.Duration) *ReportStore {
	if ttl <= 0 {
		ttl = defaultReportTTL
	}
	return &ReportStore{redis: redisClient, ttl: ttl}
}

func reportKey(id string) string {
	return reportKeyPrefix + id
}

// Save stores the report and marks it as the latest one
func (s *ReportStore) Save(ctx context.Context, report *validation.Report) error {
	if report.ID == "" {
		return errors.New("report has no id")
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, reportKey(report.ID), data, s.ttl)
	pipe.Set(ctx, latestReportKey, report.ID, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save report in Redis: %w", err)
	}

	return nil
}

// Get retrieves a report by ID
func (s *ReportStore) Get(ctx context.Context, id string) (*validation.Report, error) {
	data, err := s.redis.Get(ctx, reportKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report from Redis: %w", err)
	}

	var report validation.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}

	return &report, nil
}

// Latest returns the most recently saved report
func (s *ReportStore) Latest(ctx context.Context) (*validation.Report, error) {
	id, err := s.redis.Get(ctx, latestReportKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest report id: %w", err)
	}
	return s.Get(ctx, id)
}

// Delete removes a report. The latest pointer is cleared when it names id.
func (s *ReportStore) Delete(ctx context.Context, id string) error {
	if err := s.redis.Del(ctx, reportKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}

	latest, err := s.redis.Get(ctx, latestReportKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get latest report id: %w", err)
	}
	if latest == id {
		return s.redis.Del(ctx, latestReportKey).Err()
	}
	return nil
}
