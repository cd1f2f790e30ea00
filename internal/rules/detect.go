package rules

import (
	"fmt"

	"github.com/smukkama/vitalcheck/internal/records"
	"github.com/smukkama/vitalcheck/internal/thresholds"
)

// Stage 1/2 hypertension reference points (mmHg). These are fixed
// clinical constants and do not come from the threshold configuration.
const (
	HypertensionSystolic  = 140
	HypertensionDiastolic = 90
)

// Detect evaluates a record against the thresholds and returns its
// findings in rule order: heart rate, temperature, then (medical mode
// only) blood pressure and blood sugar.
//
// Detect has no side effects and may be called from many goroutines
// with the same thresholds value.
func Detect(rec records.PatientRecord, t thresholds.Thresholds, medical bool) []Finding {
	findings := make([]Finding, 0, 4)

	if f, ok := checkHeartRate(rec, t); ok {
		findings = append(findings, f)
	}
	if f, ok := checkTemperature(rec, t); ok {
		findings = append(findings, f)
	}

	if !medical {
		return findings
	}

	if f, ok := checkBloodPressure(rec, t); ok {
		findings = append(findings, f)
	}
	if f, ok := checkBloodSugar(rec, t); ok {
		findings = append(findings, f)
	}

	return findings
}

func checkHeartRate(rec records.PatientRecord, t thresholds.Thresholds) (Finding, bool) {
	hr := rec.HeartRate

	var limit int
	switch {
	case hr < t.HeartRate.Min:
		limit = t.HeartRate.Min
	case hr > t.HeartRate.Max:
		limit = t.HeartRate.Max
	default:
		return Finding{}, false
	}

	return Finding{
		Kind:     KindAbnormalHeartRate,
		Severity: Critical,
		Detail:   fmt.Sprintf("%d bpm outside %d-%d", hr, t.HeartRate.Min, t.HeartRate.Max),
		Value:    float64(hr),
		Limit:    float64(limit),
	}, true
}

// Hypothermia and fever are mutually exclusive.
func checkTemperature(rec records.PatientRecord, t thresholds.Thresholds) (Finding, bool) {
	temp := rec.Temperature

	if temp < t.Hypothermia {
		return Finding{
			Kind:     KindHypothermia,
			Severity: Critical,
			Detail:   fmt.Sprintf("%.1f°C < %.1f°C", temp, t.Hypothermia),
			Value:    temp,
			Limit:    t.Hypothermia,
		}, true
	}

	if temp > t.Fever {
		return Finding{
			Kind:     KindFever,
			Severity: Critical,
			Detail:   fmt.Sprintf("%.1f°C > %.1f°C", temp, t.Fever),
			Value:    temp,
			Limit:    t.Fever,
		}, true
	}

	return Finding{}, false
}

func checkBloodPressure(rec records.PatientRecord, t thresholds.Thresholds) (Finding, bool) {
	sys, dia := rec.BPSystolic, rec.BPDiastolic
	reading := fmt.Sprintf("%d/%d mmHg", sys, dia)

	crisis := t.BloodPressure
	if sys >= crisis.Systolic || dia >= crisis.Diastolic {
		value, limit := sys, crisis.Systolic
		if sys < crisis.Systolic {
			value, limit = dia, crisis.Diastolic
		}
		return Finding{
			Kind:     KindHypertensiveCrisis,
			Severity: Critical,
			Detail:   fmt.Sprintf("%s >= %d/%d", reading, crisis.Systolic, crisis.Diastolic),
			Value:    float64(value),
			Limit:    float64(limit),
		}, true
	}

	if sys >= HypertensionSystolic || dia >= HypertensionDiastolic {
		value, limit := sys, HypertensionSystolic
		if sys < HypertensionSystolic {
			value, limit = dia, HypertensionDiastolic
		}
		return Finding{
			Kind:     KindHypertension,
			Severity: Warning,
			Detail:   fmt.Sprintf("%s >= %d/%d", reading, HypertensionSystolic, HypertensionDiastolic),
			Value:    float64(value),
			Limit:    float64(limit),
		}, true
	}

	return Finding{}, false
}

func checkBloodSugar(rec records.PatientRecord, t thresholds.Thresholds) (Finding, bool) {
	sugar := rec.BloodSugar

	if sugar > t.Hyperglycemia {
		return Finding{
			Kind:     KindHyperglycemia,
			Severity: Critical,
			Detail:   fmt.Sprintf("%.1f > %.1f", sugar, t.Hyperglycemia),
			Value:    sugar,
			Limit:    t.Hyperglycemia,
		}, true
	}

	if sugar < t.Hypoglycemia {
		return Finding{
			Kind:     KindHypoglycemia,
			Severity: Warning,
			Detail:   fmt.Sprintf("%.1f < %.1f", sugar, t.Hypoglycemia),
			Value:    sugar,
			Limit:    t.Hypoglycemia,
		}, true
	}

	return Finding{}, false
}
