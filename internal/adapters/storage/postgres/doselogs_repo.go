package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"pilltrack/internal/domain/doselogs"
)

type DoseLogsRepo struct {
	db DBTX
}

func NewDoseLogsRepo(db DBTX) *DoseLogsRepo {
	return &DoseLogsRepo{db: db}
}

const doseLogColumns = `
	d.id, d.medication_id,
	d.scheduled_time, d.taken_time,
	d.status, d.notes,
	d.created_at, d.updated_at`

func (r *DoseLogsRepo) Exists(ctx context.Context, medicationID string, scheduledTime time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM dose_logs
			WHERE medication_id = $1 AND scheduled_time = $2
		)
	`, medicationID, scheduledTime).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// CreateIfAbsent se apoya en el UNIQUE (medication_id, scheduled_time):
// dos sweeps concurrentes nunca crean dos filas para la misma toma.
func (r *DoseLogsRepo) CreateIfAbsent(ctx context.Context, d doselogs.DoseLog) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO dose_logs (
			id, medication_id,
			scheduled_time, taken_time,
			status, notes,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (medication_id, scheduled_time) DO NOTHING
	`,
		d.ID,
		d.MedicationID,
		d.ScheduledTime,
		toNullDate(d.TakenTime),
		d.Status,
		d.Notes,
		d.CreatedAt,
		d.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *DoseLogsRepo) GetByID(ctx context.Context, id string) (doselogs.DoseLog, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return doselogs.DoseLog{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+doseLogColumns+`
		FROM dose_logs d
		WHERE d.id = $1
	`, id)

	d, err := scanDoseLog(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return doselogs.DoseLog{}, ErrNotFound
		}
		return doselogs.DoseLog{}, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

func (r *DoseLogsRepo) ListPendingBefore(ctx context.Context, ownerUserID string, cutoff time.Time) ([]doselogs.DoseLog, error) {
	return r.list(ctx, `
		SELECT `+doseLogColumns+`
		FROM dose_logs d
		JOIN medications m ON m.id = d.medication_id
		WHERE m.owner_user_id = $1
		  AND d.status = 'PENDING'
		  AND d.scheduled_time <= $2
		ORDER BY d.scheduled_time ASC, d.id ASC
	`, ownerUserID, cutoff)
}

func (r *DoseLogsRepo) ListByOwnerBetween(ctx context.Context, ownerUserID string, from, to time.Time) ([]doselogs.DoseLog, error) {
	return r.list(ctx, `
		SELECT `+doseLogColumns+`
		FROM dose_logs d
		JOIN medications m ON m.id = d.medication_id
		WHERE m.owner_user_id = $1
		  AND d.scheduled_time BETWEEN $2 AND $3
		ORDER BY d.scheduled_time ASC, d.id ASC
	`, ownerUserID, from, to)
}

func (r *DoseLogsRepo) CountByMedicationBetween(ctx context.Context, medicationID string, from, to time.Time) (map[doselogs.Status]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, COUNT(*)
		FROM dose_logs
		WHERE medication_id = $1
		  AND scheduled_time BETWEEN $2 AND $3
		GROUP BY status
	`, medicationID, from, to)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make(map[doselogs.Status]int)
	for rows.Next() {
		var st doselogs.Status
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out[st] = n
	}
	return out, rows.Err()
}

// TransitionFromPending es un UPDATE condicional: filas terminales no se tocan.
func (r *DoseLogsRepo) TransitionFromPending(ctx context.Context, t doselogs.Transition) (bool, error) {
	var notes sql.NullString
	if t.Notes != nil {
		notes = sql.NullString{String: *t.Notes, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE dose_logs
		SET status = $2,
		    taken_time = COALESCE($3, taken_time),
		    notes = COALESCE($4, notes),
		    updated_at = $5
		WHERE id = $1
		  AND status = 'PENDING'
	`,
		t.ID,
		t.To,
		toNullDate(t.TakenTime),
		notes,
		t.At,
	)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *DoseLogsRepo) list(ctx context.Context, query string, args ...any) ([]doselogs.DoseLog, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]doselogs.DoseLog, 0)
	for rows.Next() {
		d, err := scanDoseLog(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanDoseLog(s scanner) (doselogs.DoseLog, error) {
	var d doselogs.DoseLog
	var taken sql.NullTime
	if err := s.Scan(
		&d.ID,
		&d.MedicationID,
		&d.ScheduledTime,
		&taken,
		&d.Status,
		&d.Notes,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return doselogs.DoseLog{}, err
	}
	d.TakenTime = fromNullTime(taken)
	return d, nil
}
