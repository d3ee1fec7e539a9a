// File: internal/actions/validator.go
package actions

import (
	"go.uber.org/zap"

	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/api/schemas"
)

// Validator turns an untrusted proposed action batch into a safe, deduplicated,
// role-consistent list. Every rule drops silently: a bad action is never fatal
// to the run, and an empty result is a legitimate no-op step.
type Validator struct {
	logger *zap.Logger
}

// NewValidator builds a validator.
func NewValidator(logger *zap.Logger) *Validator {
	return &Validator{logger: logger.Named("validator")}
}

// Normalize applies, per action in input order:
//  1. target id must exist in the candidate set and be unused in this batch
//  2. fill on a combobox converts to select (typeahead controls report
//     combobox roles but expect option selection)
//  3. semantic remapping: when a value's kind (email/priority/label) clearly
//     disagrees with its target's name, swap to an unused candidate whose
//     name matches the kind
//  4. role guards: fill only on fillable roles, select only on selectable
//  5. required params: text for fill, option for select, key for press
//  6. idempotence: a fill whose target already holds the desired text is
//     skipped
func (v *Validator) Normalize(proposed []schemas.ProposedAction, candidates []schemas.ScoredElement) []schemas.ValidatedAction {
	byID := make(map[string]schemas.ElementRecord, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c.ElementRecord
	}

	validated := make([]schemas.ValidatedAction, 0, len(proposed))
	seenTargets := make(map[string]bool, len(proposed))

	for _, a := range proposed {
		if a.Params == nil {
			a.Params = map[string]string{}
		}
		if a.TargetID == "" {
			v.drop(a, "missing target_id")
			continue
		}
		target, known := byID[a.TargetID]
		if !known {
			v.drop(a, "unknown target_id")
			continue
		}

		// Auto-convert fill -> select for comboboxes carrying a value.
		if a.Action == schemas.ActionFill && target.Role == schemas.RoleCombobox {
			if text := a.Text(); text != "" {
				v.logger.Debug("Converting fill to select for combobox.",
					zap.String("target_id", a.TargetID), zap.String("option", text))
				a.Action = schemas.ActionSelect
				a.Params = map[string]string{"option": text}
			}
		}

		// Semantic remapping: move a clearly mistyped value onto a better
		// candidate before the uniqueness check locks the id in.
		if swapped, ok := v.remapTarget(a, target, candidates, seenTargets); ok {
			a.TargetID = swapped.ID
			target = swapped
		}

		if seenTargets[a.TargetID] {
			v.drop(a, "duplicate target_id in batch")
			continue
		}

		switch a.Action {
		case schemas.ActionFill:
			text := a.Text()
			if text == "" {
				v.drop(a, "fill without text")
				continue
			}
			if !schemas.FillableRoles[target.Role] {
				v.drop(a, "fill on non-fillable role "+string(target.Role))
				continue
			}
			if target.Value != "" && target.Value == text {
				v.drop(a, "value already set")
				continue
			}
		case schemas.ActionSelect:
			if a.Option() == "" {
				v.drop(a, "select without option")
				continue
			}
			if !schemas.SelectableRoles[target.Role] {
				v.drop(a, "select on non-select role "+string(target.Role))
				continue
			}
		case schemas.ActionPress:
			if a.Key() == "" {
				v.drop(a, "press without key")
				continue
			}
		case schemas.ActionClick:
			// Structurally always permitted.
		default:
			v.drop(a, "unknown action kind")
			continue
		}

		seenTargets[a.TargetID] = true
		validated = append(validated, schemas.ValidatedAction{
			Action:   a.Action,
			TargetID: a.TargetID,
			Params:   a.Params,
			Target:   target,
		})
	}
	return validated
}

// remapTarget finds a better candidate when the action's value kind
// contradicts the current target's name kind. Returns the replacement record
// and whether a swap happened.
func (v *Validator) remapTarget(a schemas.ProposedAction, target schemas.ElementRecord, candidates []schemas.ScoredElement, seen map[string]bool) (schemas.ElementRecord, bool) {
	var value string
	switch a.Action {
	case schemas.ActionSelect:
		value = a.Option()
	case schemas.ActionFill:
		value = a.Text()
	default:
		return schemas.ElementRecord{}, false
	}
	if value == "" {
		return schemas.ElementRecord{}, false
	}

	valueKind := ClassifyValue(value, "")
	nameKind := ClassifyValue("", target.Name)
	if valueKind == KindOther || valueKind == nameKind {
		return schemas.ElementRecord{}, false
	}

	for _, cand := range candidates {
		if seen[cand.ID] || cand.ID == target.ID {
			continue
		}
		if ClassifyValue("", cand.Name) == valueKind {
			v.logger.Debug("Semantic remap of action target.",
				zap.String("value", value),
				zap.String("from", target.Name),
				zap.String("to", cand.Name))
			return cand.ElementRecord, true
		}
	}
	return schemas.ElementRecord{}, false
}

func (v *Validator) drop(a schemas.ProposedAction, reason string) {
	v.logger.Debug("Dropping proposed action.",
		zap.String("action", string(a.Action)),
		zap.String("target_id", a.TargetID),
		zap.String("reason", reason))
}
