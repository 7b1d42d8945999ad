package sampler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/cpumon/internal/model"
)

func TestTableCommitPublishesAllUnits(t *testing.T) {
	tb := newTable(2)
	require.Equal(t, 2, tb.len())
	require.Len(t, tb.load().Units, 2)
	tb.prime(0, model.Counters{})
	tb.prime(1, model.Counters{})

	tb.update(0, model.Counters{User: 50, Idle: 50}, true, 10)
	tb.update(1, model.Counters{User: 25, Idle: 75}, true, 20)

	// staged values stay invisible until commit
	assert.Equal(t, model.Unit{}, tb.load().Units[0])

	at := time.Unix(1700000000, 0)
	tb.commit(at)

	snap := tb.load()
	assert.Equal(t, uint64(1), snap.Tick)
	assert.Equal(t, at, snap.Timestamp)
	assert.Equal(t, model.StateSteady, snap.State)
	assert.Equal(t, []model.Unit{
		{Utilization: 50, Frequency: 10},
		{Utilization: 25, Frequency: 20},
	}, snap.Units)
}

func TestTableUpdateWithoutCounters(t *testing.T) {
	tb := newTable(1)
	tb.prime(0, model.Counters{})
	tb.update(0, model.Counters{User: 30, System: 20, Idle: 50}, true, 0)
	tb.commit(time.Now())

	tb.update(0, model.Counters{}, false, 80)
	tb.commit(time.Now())

	assert.Equal(t, model.Unit{Utilization: 50, Frequency: 80}, tb.load().Units[0])
	assert.Equal(t, model.Counters{User: 30, System: 20, Idle: 50}, tb.prev[0])
}

func TestTablePublishedSnapshotIsStable(t *testing.T) {
	tb := newTable(1)
	tb.prime(0, model.Counters{})
	tb.update(0, model.Counters{User: 10, Idle: 10}, true, 0)
	tb.commit(time.Now())
	first := tb.load()

	tb.update(0, model.Counters{User: 40, Idle: 20}, true, 0)
	tb.commit(time.Now())

	assert.Equal(t, 50.0, first.Units[0].Utilization)
	assert.Equal(t, 75.0, tb.load().Units[0].Utilization)
	assert.Equal(t, uint64(2), tb.load().Tick)
}

func TestTableFirstLineBecomesBaseline(t *testing.T) {
	tb := newTable(2)
	tb.prime(0, model.Counters{User: 10, Idle: 10})

	tb.update(0, model.Counters{User: 20, Idle: 20}, true, 0)
	tb.update(1, model.Counters{User: 900, Idle: 100}, true, 0)
	tb.commit(time.Now())

	assert.Equal(t, 50.0, tb.load().Units[0].Utilization)
	assert.Zero(t, tb.load().Units[1].Utilization)
	assert.Equal(t, model.Counters{User: 900, Idle: 100}, tb.prev[1])

	tb.update(1, model.Counters{User: 930, Idle: 110}, true, 0)
	tb.commit(time.Now())
	assert.InDelta(t, 75.0, tb.load().Units[1].Utilization, 1e-9)
}
