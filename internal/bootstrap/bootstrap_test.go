package bootstrap

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/smukkama/vitalcheck/internal/thresholds"
	"github.com/smukkama/vitalcheck/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProfiles struct {
	profiles map[string]thresholds.Thresholds
	asked    []string
}

var errNoProfile = errors.New("threshold profile not found")

func (f *fakeProfiles) GetThresholdProfile(_ context.Context, name string) (thresholds.Thresholds, error) {
	f.asked = append(f.asked, name)
	t, ok := f.profiles[name]
	if !ok {
		return thresholds.Thresholds{}, errNoProfile
	}
	return t, nil
}

func icu() thresholds.Thresholds {
	return thresholds.Thresholds{
		HeartRate:     thresholds.HeartRateRange{Min: 40, Max: 140},
		BloodPressure: thresholds.BloodPressureLimits{Systolic: 180, Diastolic: 120},
		Hypothermia:   35.0,
		Fever:         38.0,
		Hypoglycemia:  4.0,
		Hyperglycemia: 20.0,
	}
}

func TestLoadThresholds_RepoConfigFile(t *testing.T) {
	cfg := config.EngineConfig{ThresholdsPath: filepath.Join("..", "..", "configs", "thresholds.toml")}

	got, err := LoadThresholds(context.Background(), cfg, nil, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, thresholds.HeartRateRange{Min: 60, Max: 100}, got.HeartRate)
	assert.Equal(t, 7.0, got.Hyperglycemia)
}

func TestLoadThresholds_ProfileWins(t *testing.T) {
	profiles := &fakeProfiles{profiles: map[string]thresholds.Thresholds{"icu": icu()}}
	cfg := config.EngineConfig{ThresholdsPath: "does/not/exist.toml", ThresholdProfile: "icu"}

	got, err := LoadThresholds(context.Background(), cfg, profiles, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, icu(), got)
	assert.Equal(t, []string{"icu"}, profiles.asked)
}

func TestLoadThresholds_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := LoadThresholds(ctx, config.EngineConfig{ThresholdProfile: "icu"}, nil, zap.NewNop())
	assert.ErrorContains(t, err, "no database is configured")

	_, err = LoadThresholds(ctx, config.EngineConfig{ThresholdProfile: "ward"}, &fakeProfiles{}, zap.NewNop())
	assert.ErrorIs(t, err, errNoProfile)

	_, err = LoadThresholds(ctx, config.EngineConfig{ThresholdsPath: filepath.Join(t.TempDir(), "missing.toml")}, nil, zap.NewNop())
	assert.ErrorIs(t, err, thresholds.ErrFileRead)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()

	client, err := NewRedisClient(context.Background(), config.RedisConfig{Addr: addr})
	require.NoError(t, err)
	client.Close()

	mr.Close()
	_, err = NewRedisClient(context.Background(), config.RedisConfig{Addr: addr})
	assert.ErrorContains(t, err, "failed to connect to Redis")
}
