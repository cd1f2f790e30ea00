package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/smukkama/vitalcheck/internal/records"
	"github.com/smukkama/vitalcheck/internal/thresholds"
	"go.uber.org/zap"
)

// ErrProfileNotFound is returned when no threshold profile has the given name
var ErrProfileNotFound = errors.New("threshold profile not found")

const dateLayout = "2006-01-02"

// ListRecords returns the patient records dated within [from, to],
// ordered by date then patient ID.
func (db *DB) ListRecords(ctx context.Context, from, to time.Time) ([]records.PatientRecord, error) {
	query := `
		SELECT patient_id, to_char(record_date, 'YYYY-MM-DD'), heart_rate,
		       bp_systolic, bp_diastolic, temperature, blood_sugar, steps
		FROM patient_records
		WHERE record_date BETWEEN $1 AND $2
		ORDER BY record_date, patient_id
	`

	rows, err := db.QueryContext(ctx, query, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query patient records: %w", err)
	}
	defer rows.Close()

	batch := []records.PatientRecord{}
	for rows.Next() {
		var rec records.PatientRecord
		if err := rows.Scan(
			&rec.PatientID,
			&rec.Date,
			&rec.HeartRate,
			&rec.BPSystolic,
			&rec.BPDiastolic,
			&rec.Temperature,
			&rec.BloodSugar,
			&rec.Steps,
		); err != nil {
			return nil, fmt.Errorf("failed to scan patient record: %w", err)
		}
		batch = append(batch, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read patient records: %w", err)
	}

	db.logger.Debug("loaded patient records",
		zap.Int("count", len(batch)),
		zap.String("from", from.Format(dateLayout)),
		zap.String("to", to.Format(dateLayout)))

	return batch, nil
}

// GetThresholdProfile loads a named threshold profile. The stored values
// go through the same validation as a configuration file.
func (db *DB) GetThresholdProfile(ctx context.Context, name string) (thresholds.Thresholds, error) {
	query := `
		SELECT name, hr_min, hr_max, bp_systolic, bp_diastolic,
		       hypothermia, fever, hypoglycemia, hyperglycemia, updated_at
		FROM threshold_profiles
		WHERE name = $1
	`

	var p ThresholdProfile
	err := db.QueryRowContext(ctx, query, name).Scan(
		&p.Name,
		&p.HeartRateMin,
		&p.HeartRateMax,
		&p.BPSystolic,
		&p.BPDiastolic,
		&p.Hypothermia,
		&p.Fever,
		&p.Hypoglycemia,
		&p.Hyperglycemia,
		&p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return thresholds.Thresholds{}, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	if err != nil {
		return thresholds.Thresholds{}, fmt.Errorf("failed to query threshold profile: %w", err)
	}

	return thresholds.New(p.Thresholds())
}
