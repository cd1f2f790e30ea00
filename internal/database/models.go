package database

import (
	"time"

	"github.com/smukkama/vitalcheck/internal/thresholds"
)

// ThresholdProfile is a row of threshold_profiles
type ThresholdProfile struct {
	Name          string
	HeartRateMin  int
	HeartRateMax  int
	BPSystolic    int
	BPDiastolic   int
	Hypothermia   float64
	Fever         float64
	Hypoglycemia  float64
	Hyperglycemia float64
	UpdatedAt     time.Time
}

// Thresholds converts the row without validating it
func (p ThresholdProfile) Thresholds() thresholds.Thresholds {
	return thresholds.Thresholds{
		HeartRate:     thresholds.HeartRateRange{Min: p.HeartRateMin, Max: p.HeartRateMax},
		BloodPressure: thresholds.BloodPressureLimits{Systolic: p.BPSystolic, Diastolic: p.BPDiastolic},
		Hypothermia:   p.Hypothermia,
		Fever:         p.Fever,
		Hypoglycemia:  p.Hypoglycemia,
		Hyperglycemia: p.Hyperglycemia,
	}
}
