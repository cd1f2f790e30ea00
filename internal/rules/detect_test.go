package rules

import (
	"encoding/json"
	"testing"

	"github.com/smukkama/vitalcheck/internal/records"
	"github.com/smukkama/vitalcheck/internal/thresholds"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adultThresholds() thresholds.Thresholds {
	return thresholds.Thresholds{
		HeartRate:     thresholds.HeartRateRange{Min: 60, Max: 100},
		BloodPressure: thresholds.BloodPressureLimits{Systolic: 180, Diastolic: 120},
		Hypothermia:   35.0,
		Fever:         38.0,
		Hypoglycemia:  3.9,
		Hyperglycemia: 7.0,
	}
}

// uses mg/dL glucose bounds
func icuThresholds() thresholds.Thresholds {
	return thresholds.Thresholds{
		HeartRate:     thresholds.HeartRateRange{Min: 40, Max: 140},
		BloodPressure: thresholds.BloodPressureLimits{Systolic: 180, Diastolic: 120},
		Hypothermia:   35.0,
		Fever:         38.0,
		Hypoglycemia:  70.0,
		Hyperglycemia: 400.0,
	}
}

func healthy() records.PatientRecord {
	return records.PatientRecord{
		PatientID:   1,
		Date:        "2024-03-01",
		HeartRate:   72,
		BPSystolic:  120,
		BPDiastolic: 80,
		Temperature: 36.5,
		BloodSugar:  5.0,
		Steps:       9000,
	}
}

func kinds(findings []Finding) []Kind {
	out := make([]Kind, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.Kind)
	}
	return out
}

func TestDetect_HealthyRecord(t *testing.T) {
	assert.Empty(t, Detect(healthy(), adultThresholds(), false))
	assert.Empty(t, Detect(healthy(), adultThresholds(), true))
}

func TestDetect_AllCritical(t *testing.T) {
	rec := records.PatientRecord{
		PatientID:   7,
		Date:        "2024-03-02",
		HeartRate:   180,
		BPSystolic:  190,
		BPDiastolic: 110,
		Temperature: 39.0,
		BloodSugar:  450,
	}

	findings := Detect(rec, icuThresholds(), true)
	require.Len(t, findings, 4)
	assert.Equal(t, []Kind{
		KindAbnormalHeartRate,
		KindFever,
		KindHypertensiveCrisis,
		KindHyperglycemia,
	}, kinds(findings))
	for _, f := range findings {
		assert.Equal(t, Critical, f.Severity, f.Kind)
	}

	assert.Equal(t, 180.0, findings[0].Value)
	assert.Equal(t, 140.0, findings[0].Limit)
	assert.Equal(t, 190.0, findings[2].Value)
	assert.Equal(t, 180.0, findings[2].Limit)
}

func TestDetect_BasicModeSkipsMedicalRules(t *testing.T) {
	rec := healthy()
	rec.BPSystolic, rec.BPDiastolic = 220, 130
	rec.BloodSugar = 30

	assert.Empty(t, Detect(rec, adultThresholds(), false))
	assert.Equal(t, []Kind{KindHypertensiveCrisis, KindHyperglycemia},
		kinds(Detect(rec, adultThresholds(), true)))
}

func TestDetect_HeartRateBounds(t *testing.T) {
	tests := []struct {
		hr      int
		flagged bool
		limit   float64
	}{
		{59, true, 60},
		{60, false, 0},
		{100, false, 0},
		{101, true, 100},
		{0, true, 60},
	}

	for _, tt := range tests {
		rec := healthy()
		rec.HeartRate = tt.hr

		findings := Detect(rec, adultThresholds(), false)
		if !tt.flagged {
			assert.Empty(t, findings, "hr=%d", tt.hr)
			continue
		}
		require.Len(t, findings, 1, "hr=%d", tt.hr)
		assert.Equal(t, KindAbnormalHeartRate, findings[0].Kind)
		assert.Equal(t, tt.limit, findings[0].Limit)
	}
}

func TestDetect_TemperatureExclusive(t *testing.T) {
	tests := []struct {
		temp float64
		want []Kind
	}{
		{34.9, []Kind{KindHypothermia}},
		{35.0, []Kind{}},
		{38.0, []Kind{}},
		{38.1, []Kind{KindFever}},
	}

	for _, tt := range tests {
		rec := healthy()
		rec.Temperature = tt.temp
		assert.Equal(t, tt.want, kinds(Detect(rec, adultThresholds(), false)), "temp=%.1f", tt.temp)
	}
}

func TestDetect_BloodPressureTiers(t *testing.T) {
	tests := []struct {
		name     string
		sys, dia int
		kind     Kind
		severity Severity
		limit    float64
	}{
		{"systolic crisis", 180, 80, KindHypertensiveCrisis, Critical, 180},
		{"diastolic crisis", 150, 120, KindHypertensiveCrisis, Critical, 120},
		{"stage by systolic", 140, 70, KindHypertension, Warning, 140},
		{"stage by diastolic", 130, 90, KindHypertension, Warning, 90},
		{"just under", 139, 89, "", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := healthy()
			rec.BPSystolic, rec.BPDiastolic = tt.sys, tt.dia

			findings := Detect(rec, adultThresholds(), true)
			if tt.kind == "" {
				assert.Empty(t, findings)
				return
			}
			require.Len(t, findings, 1)
			assert.Equal(t, tt.kind, findings[0].Kind)
			assert.Equal(t, tt.severity, findings[0].Severity)
			assert.Equal(t, tt.limit, findings[0].Limit)
		})
	}
}

func TestDetect_BloodSugar(t *testing.T) {
	rec := healthy()

	rec.BloodSugar = 7.1
	findings := Detect(rec, adultThresholds(), true)
	require.Len(t, findings, 1)
	assert.Equal(t, KindHyperglycemia, findings[0].Kind)
	assert.Equal(t, Critical, findings[0].Severity)

	rec.BloodSugar = 3.8
	findings = Detect(rec, adultThresholds(), true)
	require.Len(t, findings, 1)
	assert.Equal(t, KindHypoglycemia, findings[0].Kind)
	assert.Equal(t, Warning, findings[0].Severity)

	rec.BloodSugar = 3.9
	assert.Empty(t, Detect(rec, adultThresholds(), true))
	rec.BloodSugar = 7.0
	assert.Empty(t, Detect(rec, adultThresholds(), true))
}

func TestDetect_DoesNotMutateInput(t *testing.T) {
	rec := healthy()
	rec.HeartRate = 200
	before := rec
	th := adultThresholds()
	thBefore := th

	Detect(rec, th, true)

	assert.Equal(t, before, rec)
	assert.Equal(t, thBefore, th)
}

func TestFinding_Message(t *testing.T) {
	rec := healthy()
	rec.Temperature = 39.04

	findings := Detect(rec, adultThresholds(), false)
	require.Len(t, findings, 1)
	assert.Equal(t, "fever (39.0°C > 38.0°C)", findings[0].Message())
	assert.Equal(t, "fever", Finding{Kind: KindFever}.Message())
}

func TestSeverity_Text(t *testing.T) {
	data, err := json.Marshal(Finding{Kind: KindHypoglycemia, Severity: Warning})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"severity":"warning"`)

	var f Finding
	require.NoError(t, json.Unmarshal([]byte(`{"severity":"critical"}`), &f))
	assert.Equal(t, Critical, f.Severity)

	assert.Error(t, json.Unmarshal([]byte(`{"severity":"info"}`), &f))
	_, err = Severity(0).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "severity(9)", Severity(9).String())
}
