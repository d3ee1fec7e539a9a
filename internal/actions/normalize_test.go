// File: internal/actions/normalize_test.go
package actions

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/api/schemas"
)

func TestNormalizePlanCanonicalShape(t *testing.T) {
	t.Parallel()
	raw := json.RawMessage(`{
		"actions": [
			{"action": "click", "target_id": "3", "params": {}},
			{"action": "fill", "target_id": "4", "params": {"text": "hello"}}
		],
		"followup_hint": "press save next",
		"maybe_done": true
	}`)

	plan := NormalizePlan(raw)
	require.Len(t, plan.Actions, 2)
	assert.Equal(t, schemas.ActionClick, plan.Actions[0].Action)
	assert.Equal(t, "3", plan.Actions[0].TargetID)
	assert.Equal(t, "hello", plan.Actions[1].Params["text"])
	assert.Equal(t, "press save next", plan.FollowupHint)
	assert.True(t, plan.MaybeDone)
}

func TestNormalizePlanBareActionObject(t *testing.T) {
	t.Parallel()
	raw := json.RawMessage(`{"action": "click", "target_id": "7"}`)

	plan := NormalizePlan(raw)
	require.Len(t, plan.Actions, 1)
	assert.Equal(t, schemas.ActionClick, plan.Actions[0].Action)
	assert.Equal(t, "7", plan.Actions[0].TargetID)
}

func TestNormalizePlanListWrapper(t *testing.T) {
	t.Parallel()
	raw := json.RawMessage(`[{"actions": [{"action": "press", "target_id": "2", "params": {"key": "Enter"}}]}]`)

	plan := NormalizePlan(raw)
	require.Len(t, plan.Actions, 1)
	assert.Equal(t, schemas.ActionPress, plan.Actions[0].Action)
	assert.Equal(t, "Enter", plan.Actions[0].Params["key"])
}

func TestNormalizePlanBareActionList(t *testing.T) {
	t.Parallel()
	raw := json.RawMessage(`[
		{"action": "fill", "target_id": "1", "params": {"text": "a"}},
		{"action": "select", "target_id": "2", "params": {"option": "High"}},
		{"action": "click", "target_id": "3"}
	]`)

	plan := NormalizePlan(raw)
	require.Len(t, plan.Actions, 3)
	assert.Equal(t, schemas.ActionFill, plan.Actions[0].Action)
	assert.Equal(t, "High", plan.Actions[1].Params["option"])
	assert.Equal(t, "3", plan.Actions[2].TargetID)
}

func TestNormalizePlanActionsAsObject(t *testing.T) {
	t.Parallel()
	raw := json.RawMessage(`{"actions": {"action": "click", "target_id": "1"}}`)

	plan := NormalizePlan(raw)
	require.Len(t, plan.Actions, 1)
	assert.Equal(t, "1", plan.Actions[0].TargetID)
}

func TestNormalizePlanNumericTargetID(t *testing.T) {
	t.Parallel()
	raw := json.RawMessage(`{"actions": [{"action": "click", "target_id": 12}]}`)

	plan := NormalizePlan(raw)
	require.Len(t, plan.Actions, 1)
	assert.Equal(t, "12", plan.Actions[0].TargetID)
}

func TestNormalizePlanFractionalTargetIDCollapses(t *testing.T) {
	t.Parallel()
	raw := json.RawMessage(`{"actions": [{"action": "click", "target_id": 3.5}]}`)

	plan := NormalizePlan(raw)
	require.Len(t, plan.Actions, 1)
	assert.Empty(t, plan.Actions[0].TargetID)
}

func TestNormalizePlanNonStringParamsIgnored(t *testing.T) {
	t.Parallel()
	raw := json.RawMessage(`{"actions": [{"action": "fill", "target_id": "1", "params": {"text": "x", "count": 5}}]}`)

	plan := NormalizePlan(raw)
	require.Len(t, plan.Actions, 1)
	assert.Equal(t, map[string]string{"text": "x"}, plan.Actions[0].Params)
}

func TestNormalizePlanGarbage(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{`"just a string"`, `42`, `not json at all`, `[]`, `{}`} {
		plan := NormalizePlan(json.RawMessage(raw))
		assert.NotNil(t, plan.Actions, "raw: %s", raw)
		assert.Empty(t, plan.Actions, "raw: %s", raw)
	}
}

func TestClassifyValue(t *testing.T) {
	t.Parallel()
	assert.Equal(t, KindEmail, ClassifyValue("ava@example.com", ""))
	assert.Equal(t, KindPriority, ClassifyValue("High", ""))
	assert.Equal(t, KindPriority, ClassifyValue("", "Priority"))
	assert.Equal(t, KindLabel, ClassifyValue("Bug", ""))
	assert.Equal(t, KindOther, ClassifyValue("Ava Chen", ""))
	assert.Equal(t, KindOther, ClassifyValue("", "Assignee"))
}
