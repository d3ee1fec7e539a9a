// File: internal/executor/executor_test.go
package executor

import (
	"context"
	"testing"
	"time"

	"github.com/chromedp/chromedp/kb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/api/schemas"
	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/internal/config"
)

func TestActionResultSucceeded(t *testing.T) {
	t.Parallel()
	assert.True(t, ActionResult{State: StateSettled}.Succeeded())
	for _, state := range []ActionState{StatePending, StateResolving, StateActing, StateFailed, StateSkipped} {
		assert.False(t, ActionResult{State: state}.Succeeded(), "state %s", state)
	}
}

func TestStepResultExecuted(t *testing.T) {
	t.Parallel()
	r := StepResult{Results: []ActionResult{
		{State: StateSettled},
		{State: StateFailed},
		{State: StateSettled},
		{State: StateSkipped},
	}}
	assert.Equal(t, 2, r.Executed())
	assert.Equal(t, 0, StepResult{}.Executed())
}

func TestNamedKeys(t *testing.T) {
	t.Parallel()
	assert.Equal(t, kb.Enter, namedKeys["enter"])
	assert.Equal(t, kb.Enter, namedKeys["return"])
	assert.Equal(t, kb.Escape, namedKeys["esc"])
	assert.Equal(t, kb.Tab, namedKeys["tab"])
	assert.Equal(t, kb.ArrowDown, namedKeys["arrowdown"])
	_, literal := namedKeys["x"]
	assert.False(t, literal)
}

func TestExecuteStepEmptyBatch(t *testing.T) {
	t.Parallel()
	e := New(config.NewDefaultConfig().Agent, zap.NewNop())
	result := e.ExecuteStep(context.Background(), nil, nil)
	assert.Empty(t, result.Results)
	assert.Empty(t, result.Notes)
}

func TestExecuteStepSkipsWhenBudgetAlreadySpent(t *testing.T) {
	t.Parallel()
	cfg := config.NewDefaultConfig().Agent
	e := New(cfg, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	actions := []schemas.ValidatedAction{
		{Action: schemas.ActionClick, TargetID: "1"},
		{Action: schemas.ActionClick, TargetID: "2"},
	}
	// A canceled parent means the budget context is already expired; the
	// whole batch is skipped without touching the session.
	result := e.ExecuteStep(ctx, nil, actions)

	require.Len(t, result.Results, 2)
	for _, res := range result.Results {
		assert.Equal(t, StateSkipped, res.State)
		assert.Equal(t, "step budget exhausted", res.Error)
	}
	require.Len(t, result.Notes, 1)
	assert.Contains(t, result.Notes[0], "2 of 2 actions skipped")
}

func TestSettleHonorsContext(t *testing.T) {
	t.Parallel()
	cfg := config.NewDefaultConfig().Agent
	cfg.SettleWait = 5 * time.Second
	e := New(cfg, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	e.settle(ctx)
	assert.Less(t, time.Since(start), time.Second)
}
