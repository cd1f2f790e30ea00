package rules

import (
	"fmt"
	"strings"
)

// Severity is the clinical urgency of a finding
type Severity int

const (
	// Critical implies immediate clinical concern
	Critical Severity = iota + 1
	// Warning implies the patient should be monitored
	Warning
)

func (s Severity) String() string {
	switch s {
	case Critical:
		return "critical"
	case Warning:
		return "warning"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// MarshalText encodes the severity as its lowercase name
func (s Severity) MarshalText() ([]byte, error) {
	switch s {
	case Critical, Warning:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("unknown severity %d", int(s))
	}
}

// UnmarshalText decodes "critical" or "warning"
func (s *Severity) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "critical":
		*s = Critical
	case "warning":
		*s = Warning
	default:
		return fmt.Errorf("unknown severity %q", string(text))
	}
	return nil
}

// Kind identifies which rule produced a finding
type Kind string

const (
	KindAbnormalHeartRate  Kind = "abnormal heart rate"
	KindHypothermia        Kind = "hypothermia"
	KindFever              Kind = "fever"
	KindHypertensiveCrisis Kind = "hypertensive crisis"
	KindHypertension       Kind = "stage 1/2 hypertension"
	KindHyperglycemia      Kind = "hyperglycemia"
	KindHypoglycemia       Kind = "hypoglycemia"
)

// Finding is one classified observation about a single record
type Finding struct {
	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity"`
	Detail   string   `json:"detail"`
	Value    float64  `json:"value"`
	Limit    float64  `json:"limit"`
}

// Message renders the finding for humans, e.g. "fever (39.0°C > 38.0°C)"
func (f Finding) Message() string {
	if f.Detail == "" {
		return string(f.Kind)
	}
	return fmt.Sprintf("%s (%s)", f.Kind, f.Detail)
}
