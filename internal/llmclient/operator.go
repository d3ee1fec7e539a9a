// File: internal/llmclient/operator.go
package llmclient

import (
	"context"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	genai "google.golang.org/genai"

	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/api/schemas"
	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/internal/actions"
	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/internal/llmutil"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// operatorPrompt instructs the text model to translate one instruction into a
// small batch of concrete actions over the offered candidates only.
const operatorPrompt = `You are Operator, the low-level UI operator. You do NOT see screenshots.

You receive:
- A high-level instruction from the Navigator
- An optional structured plan_steps object (for forms)
- A list of DOM candidates with target_id, role, name, and landmark

Your job: produce a SMALL sequence of concrete UI actions that satisfies the instruction, using ONLY the provided candidates by target_id. Return JSON ONLY.

OUTPUT FORMAT (JSON ONLY)
{"actions": [{"action": "click" | "fill" | "select" | "press", "target_id": "<id>", "params": { ... }}], "followup_hint": "short note about what to expect next"}

Action params:
- click:  { }
- fill:   { "text": "<string>" }
- select: { "option": "<visible label>" }
- press:  { "key": "Enter|Tab|Escape|..." }

WHEN plan_steps (FORM) IS PROVIDED
- Treat it as a macro: fill ALL listed fields, then submit if submit is true.
- For each field choose the most plausible candidate by label and role: text -> fill, select/dropdown -> select, checkbox -> click only if needed.
- A combobox whose name matches a field label should get select with the field's value as option, not a bare click. If it behaves like a typeahead, use fill.
- Order: open/focus the form if needed, then fill/select all fields, then submit.
- If a required field has no matching candidate, skip it and still return actions for the rest.

SELECTION RULES
- Match by label/accessible name and role first. Prefer controls inside the active form or modal over navigation/toolbar items.
- When submitting and both a navigation-level and an in-form button match, the in-form button is the correct target.
- Map form fields carefully. Do not put one field's value into another field.
- Do NOT invent target_ids. Keep the action list short; no exploratory clicks.
- Do not map two different form fields to the same target_id.
- If you cannot determine a concrete option or text, omit that action and mention it in followup_hint instead of guessing.
- If ui_same is true, do not choose a target_id that was tried last step.
- For role combobox, prefer select with an option.

SAFETY
- Avoid destructive actions (delete/close/dismiss) unless the instruction clearly requires them.
- Do NOT fill elements with role button, link, tab, menuitem, or switch. Only textbox, textarea, searchbox, combobox, or contenteditable can be filled.
- If nothing can be done with the candidates, return an empty actions list and explain in followup_hint.

Return exactly one JSON object with keys actions and followup_hint. No extra text.`

// Operator implements the proposing side of the loop with a text model.
type Operator struct {
	client *Client
	logger *zap.Logger
}

var _ schemas.Proposer = (*Operator)(nil)

func NewOperator(client *Client, logger *zap.Logger) *Operator {
	return &Operator{
		client: client,
		logger: logger.Named("operator"),
	}
}

// ProposeActions asks the proposer model for an action batch over the
// candidate cut. The response passes through structural normalization; the
// caller still owns semantic validation.
func (o *Operator) ProposeActions(ctx context.Context, step *schemas.PlanStep, candidates []schemas.ScoredElement, diag schemas.StepDiagnostics) (*schemas.ProposerPlan, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no candidates to propose actions for")
	}

	parts := []*genai.Part{
		{Text: operatorPrompt},
		{Text: o.userMessage(step, candidates, diag)},
	}

	raw, err := o.client.generate(ctx, o.client.cfg.ProposerModel, parts)
	if err != nil {
		return nil, fmt.Errorf("proposer call failed: %w", err)
	}
	o.logger.Debug("Proposer response.", zap.String("raw", raw))

	payload, err := llmutil.ExtractJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("proposer returned no JSON: %w", err)
	}

	plan := actions.NormalizePlan(payload)
	return &plan, nil
}

func (o *Operator) userMessage(step *schemas.PlanStep, candidates []schemas.ScoredElement, diag schemas.StepDiagnostics) string {
	planJSON := "null"
	if step.PlanSteps != nil {
		if data, err := jsonAPI.MarshalIndent(step.PlanSteps, "", "  "); err == nil {
			planJSON = string(data)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "User goal/instruction: %s\n\n", step.Instruction)
	fmt.Fprintf(&b, "plan_steps (may be null):\n%s\n\n", planJSON)
	if diag.UIUnchanged {
		tried := diag.TriedIDs
		if len(tried) > 5 {
			tried = tried[len(tried)-5:]
		}
		fmt.Fprintf(&b, "ui_same: true; last_tried_ids: %s\n\n", strings.Join(tried, ","))
	}
	b.WriteString("Candidates (id, role, name, landmark):\n")
	for _, c := range candidates {
		fmt.Fprintf(&b, "- id=%s | role=%s | name=%s | landmark=%s\n",
			c.ID, c.Role, c.Name, c.Landmark)
	}
	b.WriteString("\nReturn JSON as specified in the system message.")
	return b.String()
}
