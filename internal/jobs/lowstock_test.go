package jobs

import (
	"context"
	"errors"
	"testing"

	"pilltrack/internal/domain/medications"
	"pilltrack/internal/platform/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLowStock(store *fakeStore, n *fakeNotifier) *LowStockNotifier {
	return NewLowStockNotifier(Deps{Medications: store, Notifier: n, Clock: clock.NewFixed(at(9, 0, 0))})
}

func stockMed(id, owner string, inventory, perDay int) medications.Medication {
	m := activeMed(id, owner)
	m.Inventory = inventory
	m.Frequency = perDay
	return m
}

func TestLowStockNotifier_Threshold(t *testing.T) {
	tests := []struct {
		name      string
		inventory int
		perDay    int
		notify    bool
	}{
		{"five units five days", 5, 1, true},
		{"six units", 6, 1, false},
		{"zero units", 0, 2, true},
		{"no frequency", 3, 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore()
			store.meds["m1"] = stockMed("m1", "u1", tc.inventory, tc.perDay)
			n := newFakeNotifier()

			sum, err := newLowStock(store, n).Run(context.Background())
			require.NoError(t, err)

			if tc.notify {
				require.Len(t, n.lowStock, 1)
				assert.Equal(t, lowStockCall{"u1", "Med m1", tc.inventory}, n.lowStock[0])
				assert.Equal(t, 1, sum.Succeeded())
			} else {
				assert.Empty(t, n.lowStock)
			}
		})
	}
}

func TestLowStockNotifier_CheckGuards(t *testing.T) {
	n := newFakeNotifier()
	ls := newLowStock(newFakeStore(), n)

	res := ls.check(context.Background(), stockMed("m1", "u1", 9, 1))
	assert.Equal(t, OutcomeSkipped, res.Outcome)

	inactive := stockMed("m2", "u1", 1, 1)
	inactive.Status = medications.StatusPaused
	res = ls.check(context.Background(), inactive)
	assert.Equal(t, OutcomeSkipped, res.Outcome)

	assert.Empty(t, n.lowStock)
}

func TestLowStockNotifier_ExcludesInactive(t *testing.T) {
	store := newFakeStore()
	m := stockMed("m1", "u1", 1, 1)
	m.Status = medications.StatusDiscontinued
	store.meds["m1"] = m
	n := newFakeNotifier()

	_, err := newLowStock(store, n).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, n.lowStock)
}

func TestLowStockNotifier_FaultIsolation(t *testing.T) {
	store := newFakeStore()
	store.meds["a"] = stockMed("a", "u1", 2, 1)
	store.meds["b"] = stockMed("b", "u1", 3, 1)
	store.meds["c"] = stockMed("c", "u2", 4, 1)
	n := newFakeNotifier()
	n.failFor["Med b"] = errors.New("push provider down")

	sum, err := newLowStock(store, n).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, n.lowStock, 3)
	assert.Equal(t, 2, sum.Succeeded())
	assert.Equal(t, 1, sum.Failed())
}

func TestLowStockNotifier_RepeatsEveryRun(t *testing.T) {
	store := newFakeStore()
	store.meds["a"] = stockMed("a", "u1", 2, 1)
	n := newFakeNotifier()
	ls := newLowStock(store, n)

	for i := 0; i < 3; i++ {
		_, err := ls.Run(context.Background())
		require.NoError(t, err)
	}
	assert.Len(t, n.lowStock, 3)
}
