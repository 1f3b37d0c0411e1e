package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pilltrack/internal/domain/doselogs"
	"pilltrack/internal/domain/medications"
	"pilltrack/internal/domain/notifications"
	"pilltrack/internal/domain/reminders"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 5, 14, 8, 0, 0, 0, time.UTC)

func seedMeds(t *testing.T) medications.Repository {
	t.Helper()
	meds := NewMedicationsRepo()
	ctx := context.Background()
	require.NoError(t, meds.Create(ctx, medications.Medication{ID: "m1", OwnerUserID: "u1", Status: medications.StatusActive, Inventory: 3, CreatedAt: base}))
	require.NoError(t, meds.Create(ctx, medications.Medication{ID: "m2", OwnerUserID: "u1", Status: medications.StatusPaused, Inventory: 1, CreatedAt: base.Add(time.Second)}))
	require.NoError(t, meds.Create(ctx, medications.Medication{ID: "m3", OwnerUserID: "u2", Status: medications.StatusActive, Inventory: 50, CreatedAt: base}))
	return meds
}

func TestMedicationsRepo_Queries(t *testing.T) {
	meds := seedMeds(t)
	ctx := context.Background()

	owners, err := meds.ListOwnerIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, owners)

	low, err := meds.ListLowStockByOwner(ctx, "u1", 5)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "m1", low[0].ID)

	ok, err := meds.DecrementInventory(ctx, "m1", 2)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = meds.DecrementInventory(ctx, "m1", 2)
	require.NoError(t, err)
	assert.False(t, ok)

	m, _ := meds.GetByID(ctx, "m1")
	assert.Equal(t, 1, m.Inventory)

	_, err = meds.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDoseLogsRepo_CreateIfAbsentUnderRace(t *testing.T) {
	repo := NewDoseLogsRepo(seedMeds(t))
	ctx := context.Background()

	var wg sync.WaitGroup
	created := make(chan bool, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := repo.CreateIfAbsent(ctx, doselogs.DoseLog{
				ID:            string(rune('a' + i)),
				MedicationID:  "m1",
				ScheduledTime: base,
				Status:        doselogs.StatusPending,
			})
			assert.NoError(t, err)
			created <- ok
		}(i)
	}
	wg.Wait()
	close(created)

	n := 0
	for ok := range created {
		if ok {
			n++
		}
	}
	assert.Equal(t, 1, n)

	exists, err := repo.Exists(ctx, "m1", base.In(time.FixedZone("X", 3600)))
	require.NoError(t, err)
	assert.True(t, exists, "same instant in another zone is the same key")
}

func TestDoseLogsRepo_PendingAndTransitions(t *testing.T) {
	repo := NewDoseLogsRepo(seedMeds(t))
	ctx := context.Background()

	mk := func(id, med string, at time.Time) {
		ok, err := repo.CreateIfAbsent(ctx, doselogs.DoseLog{ID: id, MedicationID: med, ScheduledTime: at, Status: doselogs.StatusPending})
		require.NoError(t, err)
		require.True(t, ok)
	}
	mk("d1", "m1", base)
	mk("d2", "m1", base.Add(time.Hour))
	mk("d3", "m3", base)

	pending, err := repo.ListPendingBefore(ctx, "u1", base)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "d1", pending[0].ID)

	applied, err := repo.TransitionFromPending(ctx, doselogs.Transition{ID: "d1", To: doselogs.StatusMissed, At: base})
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = repo.TransitionFromPending(ctx, doselogs.Transition{ID: "d1", To: doselogs.StatusTaken, At: base})
	require.NoError(t, err)
	assert.False(t, applied)

	d, _ := repo.GetByID(ctx, "d1")
	assert.Equal(t, doselogs.StatusMissed, d.Status)

	between, err := repo.ListByOwnerBetween(ctx, "u1", base, base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Len(t, between, 2)

	counts, err := repo.CountByMedicationBetween(ctx, "m1", base, base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, counts[doselogs.StatusMissed])
	assert.Equal(t, 1, counts[doselogs.StatusPending])
}

func TestRemindersRepo_ListActiveByOwner(t *testing.T) {
	repo := NewRemindersRepo(seedMeds(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, reminders.Reminder{ID: "r1", MedicationID: "m1", Type: reminders.TypeFixedTime, Active: true}))
	require.NoError(t, repo.Create(ctx, reminders.Reminder{ID: "r2", MedicationID: "m1", Type: reminders.TypeInterval, Active: false}))
	require.NoError(t, repo.Create(ctx, reminders.Reminder{ID: "r3", MedicationID: "m3", Type: reminders.TypeFixedTime, Active: true}))

	mine, err := repo.ListActiveByOwner(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "r1", mine[0].ID)

	fixed, err := repo.ListActiveByType(ctx, reminders.TypeFixedTime)
	require.NoError(t, err)
	assert.Len(t, fixed, 2)

	assert.ErrorIs(t, repo.Create(ctx, reminders.Reminder{ID: "r1"}), ErrConflict)
}

func TestNotificationsRepo_ReadFlow(t *testing.T) {
	repo := NewNotificationsRepo()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, notifications.Notification{ID: "n1", UserID: "u1", CreatedAt: base}))
	require.NoError(t, repo.Create(ctx, notifications.Notification{ID: "n2", UserID: "u1", CreatedAt: base.Add(time.Minute)}))

	list, err := repo.ListByUser(ctx, "u1", false)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "n2", list[0].ID)

	require.NoError(t, repo.MarkRead(ctx, "n1", base))
	unread, _ := repo.CountUnread(ctx, "u1")
	assert.Equal(t, 1, unread)

	n, err := repo.MarkAllRead(ctx, "u1", base)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.ErrorIs(t, repo.MarkRead(ctx, "missing", base), ErrNotFound)
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	meds := seedMeds(t)
	doses := NewDoseLogsRepo(meds)
	ctx := context.Background()
	ok, err := doses.CreateIfAbsent(ctx, doselogs.DoseLog{ID: "d1", MedicationID: "m3", ScheduledTime: base, Status: doselogs.StatusPending})
	require.NoError(t, err)
	require.True(t, ok)

	tx, err := NewTransactor(doses, meds)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = tx.WithinTx(ctx, func(ctx context.Context, s doselogs.TxStores) error {
		applied, err := s.Doses.TransitionFromPending(ctx, doselogs.Transition{ID: "d1", To: doselogs.StatusTaken, At: base})
		require.NoError(t, err)
		require.True(t, applied)
		dec, err := s.Meds.DecrementInventory(ctx, "m3", 5)
		require.NoError(t, err)
		require.True(t, dec)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	d, _ := doses.GetByID(ctx, "d1")
	assert.Equal(t, doselogs.StatusPending, d.Status)
	assert.Nil(t, d.TakenTime)
	m, _ := meds.GetByID(ctx, "m3")
	assert.Equal(t, 50, m.Inventory)

	err = tx.WithinTx(ctx, func(ctx context.Context, s doselogs.TxStores) error {
		_, err := s.Doses.TransitionFromPending(ctx, doselogs.Transition{ID: "d1", To: doselogs.StatusTaken, At: base})
		return err
	})
	require.NoError(t, err)
	d, _ = doses.GetByID(ctx, "d1")
	assert.Equal(t, doselogs.StatusTaken, d.Status)

	_, err = NewTransactor(doses, nil)
	assert.Error(t, err)
}
