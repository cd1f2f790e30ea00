package records

import (
	"encoding/json"
	"fmt"
	"io"
)

// PatientRecord is one day of measurements for a patient
type PatientRecord struct {
	PatientID   uint32  `json:"patient_id"`
	Date        string  `json:"date"`
	HeartRate   int     `json:"heart_rate"`
	BPSystolic  int     `json:"bp_systolic"`
	BPDiastolic int     `json:"bp_diastolic"`
	Temperature float64 `json:"temperature"`
	BloodSugar  float64 `json:"blood_sugar"`
	Steps       int     `json:"steps"`
}

// DecodeJSON decodes a JSON array of patient records
func DecodeJSON(r io.Reader) ([]PatientRecord, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var batch []PatientRecord
	if err := dec.Decode(&batch); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	if batch == nil {
		batch = []PatientRecord{}
	}
	return batch, nil
}
