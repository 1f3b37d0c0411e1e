package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"pilltrack/internal/domain/medications"
)

type MedicationsRepo struct {
	db DBTX
}

func NewMedicationsRepo(db DBTX) *MedicationsRepo {
	return &MedicationsRepo{db: db}
}

const medicationColumns = `
	id, owner_user_id,
	name, dosage, status,
	start_date, end_date,
	inventory, frequency, quantity_per_dose,
	created_at, updated_at`

func (r *MedicationsRepo) Create(ctx context.Context, m medications.Medication) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medications (`+medicationColumns+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		m.ID,
		m.OwnerUserID,
		m.Name,
		m.Dosage,
		m.Status,
		toNullDate(m.StartDate),
		toNullDate(m.EndDate),
		m.Inventory,
		m.Frequency,
		m.QuantityPerDose,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *MedicationsRepo) GetByID(ctx context.Context, id string) (medications.Medication, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return medications.Medication{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+medicationColumns+`
		FROM medications
		WHERE id = $1
	`, id)

	m, err := scanMedication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return medications.Medication{}, ErrNotFound
		}
		return medications.Medication{}, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

func (r *MedicationsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]medications.Medication, error) {
	return r.list(ctx, `
		SELECT `+medicationColumns+`
		FROM medications
		WHERE owner_user_id = $1
		ORDER BY created_at ASC, id ASC
	`, ownerUserID)
}

func (r *MedicationsRepo) ListOwnerIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT owner_user_id
		FROM medications
		ORDER BY owner_user_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *MedicationsRepo) ListLowStockByOwner(ctx context.Context, ownerUserID string, maxUnits int) ([]medications.Medication, error) {
	return r.list(ctx, `
		SELECT `+medicationColumns+`
		FROM medications
		WHERE owner_user_id = $1
		  AND status = 'ACTIVE'
		  AND inventory <= $2
		ORDER BY created_at ASC, id ASC
	`, ownerUserID, maxUnits)
}

// DecrementInventory es atómico: el WHERE evita dejar inventario negativo.
func (r *MedicationsRepo) DecrementInventory(ctx context.Context, id string, units int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE medications
		SET inventory = inventory - $2,
		    updated_at = now()
		WHERE id = $1
		  AND inventory >= $2
	`, id, units)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *MedicationsRepo) list(ctx context.Context, query string, args ...any) ([]medications.Medication, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]medications.Medication, 0)
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMedication(s scanner) (medications.Medication, error) {
	var m medications.Medication
	var start, end sql.NullTime
	if err := s.Scan(
		&m.ID,
		&m.OwnerUserID,
		&m.Name,
		&m.Dosage,
		&m.Status,
		&start,
		&end,
		&m.Inventory,
		&m.Frequency,
		&m.QuantityPerDose,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return medications.Medication{}, err
	}
	m.StartDate = fromNullTime(start)
	m.EndDate = fromNullTime(end)
	return m, nil
}
