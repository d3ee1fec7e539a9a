// File: internal/actions/normalize.go
package actions

import (
	"encoding/json"
	"strconv"

	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/api/schemas"
)

// NormalizePlan coerces whatever JSON shape the proposer produced into a
// ProposerPlan. Models routinely return a bare action object, a list wrapping
// the real object, or a plan without the actions envelope; all of those are
// normalized rather than rejected. Anything unrecognizable collapses to an
// empty plan, which the loop treats as a recorded no-op step.
func NormalizePlan(raw json.RawMessage) schemas.ProposerPlan {
	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return schemas.ProposerPlan{Actions: []schemas.ProposedAction{}}
	}

	// A list: unwrap a single-element plan envelope, otherwise treat the
	// whole list as the actions array.
	if list, ok := value.([]interface{}); ok {
		if len(list) == 0 {
			return schemas.ProposerPlan{Actions: []schemas.ProposedAction{}}
		}
		if first, ok := list[0].(map[string]interface{}); ok {
			if _, hasActions := first["actions"]; hasActions {
				value = first
			} else {
				value = map[string]interface{}{"actions": list}
			}
		} else {
			value = map[string]interface{}{"actions": list}
		}
	}

	obj, ok := value.(map[string]interface{})
	if !ok {
		return schemas.ProposerPlan{Actions: []schemas.ProposedAction{}}
	}

	// A single action missing the actions envelope: wrap it.
	if _, hasActions := obj["actions"]; !hasActions {
		obj = map[string]interface{}{
			"actions":       []interface{}{obj},
			"followup_hint": obj["followup_hint"],
		}
	}

	plan := schemas.ProposerPlan{Actions: []schemas.ProposedAction{}}
	if hint, ok := obj["followup_hint"].(string); ok {
		plan.FollowupHint = hint
	}
	if done, ok := obj["maybe_done"].(bool); ok {
		plan.MaybeDone = done
	}

	rawActions := obj["actions"]
	var items []interface{}
	switch v := rawActions.(type) {
	case []interface{}:
		items = v
	case map[string]interface{}:
		// actions arrived as a bare object instead of a list
		items = []interface{}{v}
	}

	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		action := schemas.ProposedAction{Params: map[string]string{}}
		if s, ok := m["action"].(string); ok {
			action.Action = schemas.ActionKind(s)
		}
		switch tid := m["target_id"].(type) {
		case string:
			action.TargetID = tid
		case float64:
			// ids are transmitted as strings, but models sometimes emit numbers
			action.TargetID = formatIntID(tid)
		}
		if params, ok := m["params"].(map[string]interface{}); ok {
			for k, v := range params {
				if s, ok := v.(string); ok {
					action.Params[k] = s
				}
			}
		}
		plan.Actions = append(plan.Actions, action)
	}
	return plan
}

func formatIntID(f float64) string {
	n := int64(f)
	if float64(n) != f {
		return ""
	}
	return strconv.FormatInt(n, 10)
}
