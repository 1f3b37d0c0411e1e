package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"pilltrack/internal/domain/reminders"
)

type RemindersRepo struct {
	db DBTX
}

func NewRemindersRepo(db DBTX) *RemindersRepo {
	return &RemindersRepo{db: db}
}

const reminderColumns = `
	r.id, r.medication_id,
	r.type, r.schedule_info, r.cron_expression, r.minutes_before,
	r.active, r.job_key, r.created_at`

func (r *RemindersRepo) Create(ctx context.Context, rem reminders.Reminder) error {
	var minutes sql.NullInt32
	if rem.MinutesBefore != nil {
		minutes = sql.NullInt32{Int32: int32(*rem.MinutesBefore), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reminders (
			id, medication_id,
			type, schedule_info, cron_expression, minutes_before,
			active, job_key, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		rem.ID,
		rem.MedicationID,
		rem.Type,
		rem.ScheduleInfo,
		rem.CronExpression,
		minutes,
		rem.Active,
		rem.JobKey,
		rem.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *RemindersRepo) GetByID(ctx context.Context, id string) (reminders.Reminder, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return reminders.Reminder{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+reminderColumns+`
		FROM reminders r
		WHERE r.id = $1
	`, id)

	rem, err := scanReminder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return reminders.Reminder{}, ErrNotFound
		}
		return reminders.Reminder{}, fmt.Errorf("db error: %w", err)
	}
	return rem, nil
}

func (r *RemindersRepo) ListActiveByType(ctx context.Context, t reminders.Type) ([]reminders.Reminder, error) {
	return r.list(ctx, `
		SELECT `+reminderColumns+`
		FROM reminders r
		WHERE r.active AND r.type = $1
		ORDER BY r.created_at ASC, r.id ASC
	`, t)
}

func (r *RemindersRepo) ListActiveByOwner(ctx context.Context, ownerUserID string) ([]reminders.Reminder, error) {
	return r.list(ctx, `
		SELECT `+reminderColumns+`
		FROM reminders r
		JOIN medications m ON m.id = r.medication_id
		WHERE r.active AND m.owner_user_id = $1
		ORDER BY r.created_at ASC, r.id ASC
	`, ownerUserID)
}

func (r *RemindersRepo) ListByMedication(ctx context.Context, medicationID string) ([]reminders.Reminder, error) {
	return r.list(ctx, `
		SELECT `+reminderColumns+`
		FROM reminders r
		WHERE r.medication_id = $1
		ORDER BY r.created_at ASC, r.id ASC
	`, medicationID)
}

func (r *RemindersRepo) list(ctx context.Context, query string, args ...any) ([]reminders.Reminder, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]reminders.Reminder, 0)
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, rem)
	}
	return out, rows.Err()
}

func scanReminder(s scanner) (reminders.Reminder, error) {
	var rem reminders.Reminder
	var minutes sql.NullInt32
	if err := s.Scan(
		&rem.ID,
		&rem.MedicationID,
		&rem.Type,
		&rem.ScheduleInfo,
		&rem.CronExpression,
		&minutes,
		&rem.Active,
		&rem.JobKey,
		&rem.CreatedAt,
	); err != nil {
		return reminders.Reminder{}, err
	}
	if minutes.Valid {
		v := int(minutes.Int32)
		rem.MinutesBefore = &v
	}
	return rem, nil
}
