// File: internal/agent/state_test.go
package agent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransitionTable(t *testing.T) {
	t.Parallel()
	allowed := []struct{ from, to State }{
		{StateObserving, StatePlanning},
		{StatePlanning, StateRanking},
		{StatePlanning, StateFinalizing},
		{StateRanking, StateProposing},
		{StateRanking, StateMeasuring},
		{StateProposing, StateValidating},
		{StateProposing, StateMeasuring},
		{StateValidating, StateExecuting},
		{StateValidating, StateMeasuring},
		{StateExecuting, StateMeasuring},
		{StateMeasuring, StateObserving},
		{StateMeasuring, StateFinalizing},
	}
	for _, tc := range allowed {
		assert.True(t, canTransition(tc.from, tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	denied := []struct{ from, to State }{
		{StateObserving, StateExecuting},
		{StatePlanning, StateObserving},
		{StateRanking, StateExecuting},
		{StateExecuting, StatePlanning},
		{StateFinalizing, StateObserving},
		{StateMeasuring, StatePlanning},
	}
	for _, tc := range denied {
		assert.False(t, canTransition(tc.from, tc.to), "%s -> %s should be denied", tc.from, tc.to)
	}
}

func TestRunStateMarkTried(t *testing.T) {
	t.Parallel()
	st := newRunState(5)
	st.markTried("3")
	st.markTried("1")
	st.markTried("3")

	assert.Equal(t, []string{"3", "1"}, st.triedOrder)
	assert.True(t, st.tried["3"])
	assert.True(t, st.tried["1"])
}

func TestRunStateHistoryEvictsOldest(t *testing.T) {
	t.Parallel()
	st := newRunState(5)
	for i := 1; i <= 7; i++ {
		st.step = i
		st.recordOutcome("do something", 1, 1, false)
	}

	// The sixth and seventh entries pushed steps 1 and 2 out of the window.
	assert.Len(t, st.history, 5)
	assert.Contains(t, st.history[0], "step 3:")
	assert.Contains(t, st.history[4], "step 7:")
	assert.NotContains(t, strings.Join(st.history, "\n"), "step 1:")
	assert.Len(t, st.historyTail(5), 5)
}

func TestRunStateUnboundedWindowKeepsAll(t *testing.T) {
	t.Parallel()
	st := newRunState(0)
	for i := 1; i <= 7; i++ {
		st.step = i
		st.recordOutcome("do something", 1, 1, false)
	}

	assert.Len(t, st.history, 7)
	assert.Len(t, st.historyTail(5), 5)
	assert.Contains(t, st.historyTail(5)[0], "step 3:")
}

func TestRunStateRecordOutcomeTruncates(t *testing.T) {
	t.Parallel()
	st := newRunState(5)
	st.step = 1
	st.recordOutcome(strings.Repeat("x", 300), 2, 1, true)

	entry := st.history[0]
	assert.Contains(t, entry, "actions=2 executed=1 ui_same=true")
	assert.Less(t, len(entry), 200)
	assert.Contains(t, entry, "...")
}
