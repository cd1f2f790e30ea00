package thresholds

// HeartRateRange holds the critical heart rate bounds (bpm)
type HeartRateRange struct {
	Min int `toml:"min" yaml:"min" json:"min"`
	Max int `toml:"max" yaml:"max" json:"max"`
}

// BloodPressureLimits holds the hypertensive crisis bounds (mmHg)
type BloodPressureLimits struct {
	Systolic  int `toml:"systolic" yaml:"systolic" json:"systolic"`
	Diastolic int `toml:"diastolic" yaml:"diastolic" json:"diastolic"`
}

// Thresholds is a validated set of medical thresholds.
// Values returned by Load, Parse and New have passed Validate and are
// safe to share between goroutines.
type Thresholds struct {
	HeartRate     HeartRateRange      `toml:"critical_hr" yaml:"critical_hr" json:"critical_hr"`
	BloodPressure BloodPressureLimits `toml:"hypertensive_crisis" yaml:"hypertensive_crisis" json:"hypertensive_crisis"`
	Hypothermia   float64             `toml:"hypothermia" yaml:"hypothermia" json:"hypothermia"`
	Fever         float64             `toml:"fever" yaml:"fever" json:"fever"`
	Hypoglycemia  float64             `toml:"hypoglycemia" yaml:"hypoglycemia" json:"hypoglycemia"`
	Hyperglycemia float64             `toml:"hyperglycemia" yaml:"hyperglycemia" json:"hyperglycemia"`
}

// New validates values and returns them as Thresholds
func New(values Thresholds) (Thresholds, error) {
	if err := values.Validate(); err != nil {
		return Thresholds{}, err
	}
	return values, nil
}

// Validate checks that every threshold makes medical sense.
// The first violation is returned; checks run in a fixed order.
func (t Thresholds) Validate() error {
	if t.HeartRate.Min >= t.HeartRate.Max {
		return invalid("Heart rate min must be less than max")
	}

	if t.BloodPressure.Systolic <= 0 || t.BloodPressure.Diastolic <= 0 {
		return invalid("Blood pressure values must be positive")
	}

	// Negated comparisons so NaN never passes.
	if !(t.Hypothermia < t.Fever) {
		return invalid("Hypothermia threshold must be lower than fever threshold")
	}

	if !(t.Hypoglycemia < t.Hyperglycemia) {
		return invalid("Hypoglycemia threshold must be lower than hyperglycemia threshold")
	}

	return nil
}
