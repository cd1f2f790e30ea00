// Package bootstrap holds the wiring shared by the binaries.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/smukkama/vitalcheck/internal/thresholds"
	"github.com/smukkama/vitalcheck/pkg/config"
	"go.uber.org/zap"
)

// ProfileSource loads named threshold profiles. database.DB implements it.
type ProfileSource interface {
	GetThresholdProfile(ctx context.Context, name string) (thresholds.Thresholds, error)
}

// LoadThresholds resolves the active thresholds: the Postgres profile when
// ThresholdProfile is set, the configuration file otherwise.
func LoadThresholds(ctx context.Context, cfg config.EngineConfig, profiles ProfileSource, logger *zap.Logger) (thresholds.Thresholds, error) {
	if cfg.ThresholdProfile != "" {
		if profiles == nil {
			return thresholds.Thresholds{}, fmt.Errorf("threshold profile %q requested but no database is configured", cfg.ThresholdProfile)
		}
		t, err := profiles.GetThresholdProfile(ctx, cfg.ThresholdProfile)
		if err != nil {
			return thresholds.Thresholds{}, err
		}
		logger.Info("loaded threshold profile", zap.String("profile", cfg.ThresholdProfile))
		return t, nil
	}

	t, err := thresholds.Load(cfg.ThresholdsPath)
	if err != nil {
		return thresholds.Thresholds{}, err
	}
	logger.Info("loaded thresholds file", zap.String("path", cfg.ThresholdsPath))
	return t, nil
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}
