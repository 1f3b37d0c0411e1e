package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"pilltrack/internal/domain/doselogs"
	"pilltrack/internal/domain/medications"
	"pilltrack/internal/domain/notifications"
	"pilltrack/internal/domain/reminders"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ts = time.Date(2024, 5, 14, 8, 0, 0, 0, time.UTC)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, mock
}

func TestDoseLogsRepo_CreateIfAbsent(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDoseLogsRepo(db)

	d := doselogs.DoseLog{ID: "d1", MedicationID: "m1", ScheduledTime: ts, Status: doselogs.StatusPending, CreatedAt: ts, UpdatedAt: ts}
	q := `(?s)INSERT\s+INTO\s+dose_logs.*ON\s+CONFLICT\s+\(medication_id,\s*scheduled_time\)\s+DO\s+NOTHING`

	mock.ExpectExec(q).
		WithArgs("d1", "m1", ts, sqlmock.AnyArg(), doselogs.StatusPending, "", ts, ts).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).
		WithArgs("d2", "m1", ts, sqlmock.AnyArg(), doselogs.StatusPending, "", ts, ts).
		WillReturnResult(sqlmock.NewResult(0, 0))

	created, err := repo.CreateIfAbsent(context.Background(), d)
	require.NoError(t, err)
	assert.True(t, created)

	d.ID = "d2"
	created, err = repo.CreateIfAbsent(context.Background(), d)
	require.NoError(t, err)
	assert.False(t, created, "conflict is not an error")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDoseLogsRepo_Exists(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDoseLogsRepo(db)

	mock.ExpectQuery(`(?s)SELECT\s+EXISTS.*FROM\s+dose_logs`).
		WithArgs("m1", ts).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.Exists(context.Background(), "m1", ts)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDoseLogsRepo_TransitionOnlyFromPending(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDoseLogsRepo(db)

	q := `(?s)UPDATE\s+dose_logs.*WHERE\s+id\s*=\s*\$1\s+AND\s+status\s*=\s*'PENDING'`
	mock.ExpectExec(q).
		WithArgs("d1", doselogs.StatusMissed, sqlmock.AnyArg(), sqlmock.AnyArg(), ts).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).
		WithArgs("d1", doselogs.StatusMissed, sqlmock.AnyArg(), sqlmock.AnyArg(), ts).
		WillReturnResult(sqlmock.NewResult(0, 0))

	tr := doselogs.Transition{ID: "d1", To: doselogs.StatusMissed, At: ts}

	applied, err := repo.TransitionFromPending(context.Background(), tr)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = repo.TransitionFromPending(context.Background(), tr)
	require.NoError(t, err)
	assert.False(t, applied)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDoseLogsRepo_ListPendingBefore(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDoseLogsRepo(db)

	cutoff := ts.Add(-6 * time.Hour)
	rows := sqlmock.NewRows([]string{"id", "medication_id", "scheduled_time", "taken_time", "status", "notes", "created_at", "updated_at"}).
		AddRow("d1", "m1", cutoff.Add(-time.Hour), nil, "PENDING", "", ts, ts)

	mock.ExpectQuery(`(?s)FROM\s+dose_logs\s+d\s+JOIN\s+medications\s+m.*status\s*=\s*'PENDING'.*scheduled_time\s*<=\s*\$2`).
		WithArgs("u1", cutoff).
		WillReturnRows(rows)

	got, err := repo.ListPendingBefore(context.Background(), "u1", cutoff)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, doselogs.StatusPending, got[0].Status)
	assert.Nil(t, got[0].TakenTime)
}

func TestDoseLogsRepo_DBErrorWrapped(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDoseLogsRepo(db)

	mock.ExpectQuery(`FROM\s+dose_logs`).WillReturnError(errors.New("db down"))

	_, err := repo.ListPendingBefore(context.Background(), "u1", ts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error: db down")
}

func TestDoseLogsRepo_CountByMedication(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDoseLogsRepo(db)

	mock.ExpectQuery(`(?s)SELECT\s+status,\s*COUNT\(\*\).*GROUP\s+BY\s+status`).
		WithArgs("m1", ts, ts.Add(time.Hour)).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("TAKEN", 3).
			AddRow("MISSED", 1))

	counts, err := repo.CountByMedicationBetween(context.Background(), "m1", ts, ts.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 3, counts[doselogs.StatusTaken])
	assert.Equal(t, 1, counts[doselogs.StatusMissed])
}

func medicationRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "owner_user_id", "name", "dosage", "status",
		"start_date", "end_date", "inventory", "frequency", "quantity_per_dose",
		"created_at", "updated_at",
	})
}

func TestMedicationsRepo_GetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMedicationsRepo(db)

	end := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`(?s)FROM\s+medications\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs("m1").
		WillReturnRows(medicationRow().AddRow("m1", "u1", "Aspirin", "100mg", "ACTIVE", nil, end, 4, 2, 1, ts, ts))
	mock.ExpectQuery(`(?s)FROM\s+medications\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	m, err := repo.GetByID(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, medications.StatusActive, m.Status)
	assert.Nil(t, m.StartDate)
	require.NotNil(t, m.EndDate)
	assert.True(t, m.EndDate.Equal(end))
	assert.Equal(t, 2, m.DaysRemaining())

	_, err = repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMedicationsRepo_LowStockAndOwners(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMedicationsRepo(db)

	mock.ExpectQuery(`(?s)SELECT\s+DISTINCT\s+owner_user_id`).
		WillReturnRows(sqlmock.NewRows([]string{"owner_user_id"}).AddRow("u1").AddRow("u2"))
	mock.ExpectQuery(`(?s)status\s*=\s*'ACTIVE'.*inventory\s*<=\s*\$2`).
		WithArgs("u1", 5).
		WillReturnRows(medicationRow().AddRow("m1", "u1", "Aspirin", "", "ACTIVE", nil, nil, 5, 1, 1, ts, ts))

	owners, err := repo.ListOwnerIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, owners)

	low, err := repo.ListLowStockByOwner(context.Background(), "u1", 5)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, 5, low[0].Inventory)
}

func TestMedicationsRepo_DecrementInventory(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMedicationsRepo(db)

	q := `(?s)UPDATE\s+medications.*inventory\s*>=\s*\$2`
	mock.ExpectExec(q).WithArgs("m1", 2).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("m1", 2).WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.DecrementInventory(context.Background(), "m1", 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.DecrementInventory(context.Background(), "m1", 2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRemindersRepo_ListActiveByType(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRemindersRepo(db)

	rows := sqlmock.NewRows([]string{"id", "medication_id", "type", "schedule_info", "cron_expression", "minutes_before", "active", "job_key", "created_at"}).
		AddRow("r1", "m1", "FIXED_TIME", "08:00", "0 55 7 * * ?", 10, true, "reminder_m1_r1", ts).
		AddRow("r2", "m2", "FIXED_TIME", "21:00", "", nil, true, "", ts)

	mock.ExpectQuery(`(?s)FROM\s+reminders\s+r\s+WHERE\s+r\.active\s+AND\s+r\.type\s*=\s*\$1`).
		WithArgs(reminders.TypeFixedTime).
		WillReturnRows(rows)

	got, err := repo.ListActiveByType(context.Background(), reminders.TypeFixedTime)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].MinutesBefore)
	assert.Equal(t, 10, *got[0].MinutesBefore)
	assert.Nil(t, got[1].MinutesBefore)
	assert.Equal(t, 5*time.Minute, got[1].LeadTime())
}

func TestNotificationsRepo_MarkReadNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewNotificationsRepo(db)

	mock.ExpectExec(`(?s)UPDATE\s+notifications`).
		WithArgs("n1", ts).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkRead(context.Background(), "n1", ts)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNotificationsRepo_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewNotificationsRepo(db)

	n := notifications.Notification{ID: "n1", UserID: "u1", Type: notifications.TypeLowStock, Title: "t", Message: "m", CreatedAt: ts}
	mock.ExpectExec(`(?s)INSERT\s+INTO\s+notifications`).
		WithArgs("n1", "u1", notifications.TypeLowStock, "t", "m", "", false, sqlmock.AnyArg(), ts).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), n))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_UsesEmbeddedDir(t *testing.T) {
	db, _ := newMock(t)

	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}
	require.NoError(t, Migrate(context.Background(), db))
	assert.Equal(t, "migrations", gotDir)

	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	err := Migrate(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration error")
}

func TestMigrationsEmbedded(t *testing.T) {
	b, err := migrationsFS.ReadFile("migrations/00001_init.sql")
	require.NoError(t, err)
	assert.Contains(t, string(b), "dose_logs_medication_scheduled_key UNIQUE (medication_id, scheduled_time)")
}

func TestTransactor_RollsBackWhenDecrementFails(t *testing.T) {
	db, mock := newMock(t)
	tx := NewTransactor(db)

	mock.ExpectBegin()
	mock.ExpectExec(`(?s)UPDATE\s+dose_logs.*status\s*=\s*'PENDING'`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`(?s)UPDATE\s+medications.*inventory\s*>=\s*\$2`).
		WithArgs("m1", 2).
		WillReturnError(errors.New("conn reset"))
	mock.ExpectRollback()

	taken := ts
	err := tx.WithinTx(context.Background(), func(ctx context.Context, s doselogs.TxStores) error {
		ok, err := s.Doses.TransitionFromPending(ctx, doselogs.Transition{ID: "d1", To: doselogs.StatusTaken, At: ts, TakenTime: &taken})
		if err != nil || !ok {
			return errors.New("transition not applied")
		}
		_, err = s.Meds.DecrementInventory(ctx, "m1", 2)
		return err
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conn reset")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_CommitsOnSuccess(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`(?s)UPDATE\s+medications`).
		WithArgs("m1", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := NewTransactor(db).WithinTx(context.Background(), func(ctx context.Context, s doselogs.TxStores) error {
		_, err := s.Meds.DecrementInventory(ctx, "m1", 1)
		return err
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
