package thresholds

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a threshold configuration source
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks a format from the file extension, defaulting to TOML
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatTOML
	}
}

// Load reads, parses and validates the threshold file at path
func Load(path string) (Thresholds, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Thresholds{}, readError(path, err)
	}

	return Parse(content, FormatFromPath(path))
}

// Parse decodes and validates a threshold configuration held in memory
func Parse(data []byte, format Format) (Thresholds, error) {
	var doc rawDocument

	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatJSON:
		err = json.Unmarshal(data, &doc)
	default:
		return Thresholds{}, parseError(fmt.Sprintf("unsupported format %q", format), nil)
	}
	if err != nil {
		return Thresholds{}, parseError(string(format), err)
	}

	values, err := doc.resolve()
	if err != nil {
		return Thresholds{}, err
	}

	return New(values)
}

// rawDocument mirrors the file layout with pointer fields so that a
// missing key can be told apart from a zero value.
type rawDocument struct {
	Thresholds *rawThresholds `toml:"thresholds" yaml:"thresholds" json:"thresholds"`
}

type rawThresholds struct {
	HeartRate     *rawHeartRate     `toml:"critical_hr" yaml:"critical_hr" json:"critical_hr"`
	BloodPressure *rawBloodPressure `toml:"hypertensive_crisis" yaml:"hypertensive_crisis" json:"hypertensive_crisis"`
	Hypothermia   *float64          `toml:"hypothermia" yaml:"hypothermia" json:"hypothermia"`
	Fever         *float64          `toml:"fever" yaml:"fever" json:"fever"`
	Hypoglycemia  *float64          `toml:"hypoglycemia" yaml:"hypoglycemia" json:"hypoglycemia"`
	Hyperglycemia *float64          `toml:"hyperglycemia" yaml:"hyperglycemia" json:"hyperglycemia"`
}

type rawHeartRate struct {
	Min *int `toml:"min" yaml:"min" json:"min"`
	Max *int `toml:"max" yaml:"max" json:"max"`
}

type rawBloodPressure struct {
	Systolic  *int `toml:"systolic" yaml:"systolic" json:"systolic"`
	Diastolic *int `toml:"diastolic" yaml:"diastolic" json:"diastolic"`
}

func (d rawDocument) resolve() (Thresholds, error) {
	t := d.Thresholds
	if t == nil {
		return Thresholds{}, missing("thresholds")
	}
	if t.HeartRate == nil {
		return Thresholds{}, missing("thresholds.critical_hr")
	}
	if t.BloodPressure == nil {
		return Thresholds{}, missing("thresholds.hypertensive_crisis")
	}

	fields := []struct {
		name string
		set  bool
	}{
		{"thresholds.critical_hr.min", t.HeartRate.Min != nil},
		{"thresholds.critical_hr.max", t.HeartRate.Max != nil},
		{"thresholds.hypertensive_crisis.systolic", t.BloodPressure.Systolic != nil},
		{"thresholds.hypertensive_crisis.diastolic", t.BloodPressure.Diastolic != nil},
		{"thresholds.hypothermia", t.Hypothermia != nil},
		{"thresholds.fever", t.Fever != nil},
		{"thresholds.hypoglycemia", t.Hypoglycemia != nil},
		{"thresholds.hyperglycemia", t.Hyperglycemia != nil},
	}
	for _, f := range fields {
		if !f.set {
			return Thresholds{}, missing(f.name)
		}
	}

	return Thresholds{
		HeartRate: HeartRateRange{
			Min: *t.HeartRate.Min,
			Max: *t.HeartRate.Max,
		},
		BloodPressure: BloodPressureLimits{
			Systolic:  *t.BloodPressure.Systolic,
			Diastolic: *t.BloodPressure.Diastolic,
		},
		Hypothermia:   *t.Hypothermia,
		Fever:         *t.Fever,
		Hypoglycemia:  *t.Hypoglycemia,
		Hyperglycemia: *t.Hyperglycemia,
	}, nil
}

func missing(field string) error {
	return parseError(fmt.Sprintf("missing field %s", field), nil)
}
