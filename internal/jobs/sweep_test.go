package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunItem_RecoversPanic(t *testing.T) {
	res := runItem("k1", func() ItemResult {
		var m map[string]int
		m["boom"]++
		return succeeded("k1")
	})
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, "k1", res.Key)
	assert.Contains(t, res.Reason, "panic")
}

func TestSummaryCounts(t *testing.T) {
	s := Summary{Items: []ItemResult{
		succeeded("a"), succeeded("b"), skipped("c", "x"), {Key: "d", Outcome: OutcomeFailed},
	}}
	assert.Equal(t, 2, s.Succeeded())
	assert.Equal(t, 1, s.Skipped())
	assert.Equal(t, 1, s.Failed())
}

func TestAllAndByName(t *testing.T) {
	sweeps := All(Deps{})
	require.Len(t, sweeps, 3)

	for _, name := range []string{NameReminders, NameMissedDoses, NameLowStock} {
		s, ok := ByName(sweeps, name)
		require.True(t, ok, name)
		assert.Equal(t, name, s.Name())
	}
	_, ok := ByName(sweeps, "nope")
	assert.False(t, ok)
}
