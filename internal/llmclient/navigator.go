// File: internal/llmclient/navigator.go
package llmclient

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	genai "google.golang.org/genai"

	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/api/schemas"
	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/internal/llmutil"
	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/internal/vision"
)

// navigatorPrompt instructs the vision model to plan exactly one next step.
// The operator never sees the screenshot, so instructions must reference
// semantic labels, not positions.
const navigatorPrompt = `You are Navigator, a high-level planning agent that guides a low-level operator to drive arbitrary web applications.

You see:
- The user's overall goal
- The current UI screenshot
- A short history of previous steps and their outcomes

You CANNOT click or type. You only decide the NEXT logical step and describe it as an instruction for the operator.
The operator does not see the screenshot. It only sees DOM elements and their labels/accessible names, and can click, fill fields, select options, and press keys.

HOW YOU REASON
1. Understand the user's goal and infer the final state they want.
2. Understand the current UI from the screenshot: what kind of page this is, whether a modal is open, and whether a blocking state (login, popup, error banner) prevents progress.
3. Use history to understand progress. If the previous step executed but the UI is unchanged (ui_same: true), assume that approach failed. Do not repeat the same instruction; propose an alternative path. Avoid loops.
4. Plan ONE next conceptual step the operator can execute using DOM labels.
   - Start the instruction with a short description of the current UI context.
   - If the current screen is a relevant form and the goal requires submitting it, propose a single macro step to fill the entire form via plan_steps. Do NOT emit micro actions.
5. If the UI clearly shows the task is already done, mark the goal as complete.

HOW TO REFER TO UI ELEMENTS
- Never use coordinates, pixel positions, or directions like "top left".
- Describe the semantic purpose of the control so the operator can match it to a label or accessible name, e.g. "Click the button labeled 'Create new item'".

RESPONSE SCHEMA (JSON ONLY)
Respond with a single JSON object:
- instruction: string (the next step, starting with a short UI context)
- reason: string (brief reasoning)
- done: boolean (whether the goal is fully completed)
- plan_steps: object or null (present ONLY for a form macro)

Form plan_steps shape:
{"type": "form", "fields": [{"label": "Title", "value": "Example", "kind": "text"}, {"label": "Priority", "value": "High", "kind": "select"}], "submit": true}`

// Navigator implements the planning side of the loop with a vision model.
type Navigator struct {
	client *Client
	logger *zap.Logger
}

var _ schemas.Planner = (*Navigator)(nil)

func NewNavigator(client *Client, logger *zap.Logger) *Navigator {
	return &Navigator{
		client: client,
		logger: logger.Named("navigator"),
	}
}

// PlanStep sends the goal, loop diagnostics and the screenshot to the planner
// model and parses the resulting step. A response that is not valid JSON is
// demoted to a free-form instruction rather than failing the step.
func (n *Navigator) PlanStep(ctx context.Context, goal string, screenshot []byte, diag schemas.StepDiagnostics) (*schemas.PlanStep, error) {
	img, err := vision.ShrinkToMaxEdge(screenshot, n.client.cfg.MaxImageEdge)
	if err != nil {
		n.logger.Warn("Could not resize screenshot, sending original.", zap.Error(err))
		img = screenshot
	}

	parts := []*genai.Part{
		{Text: navigatorPrompt},
		{Text: n.userMessage(goal, diag)},
		{InlineData: &genai.Blob{MIMEType: "image/png", Data: img}},
	}

	raw, err := n.client.generate(ctx, n.client.cfg.PlannerModel, parts)
	if err != nil {
		return nil, fmt.Errorf("planner call failed: %w", err)
	}
	n.logger.Debug("Planner response.", zap.String("raw", raw))

	step, parseErr := llmutil.ParseJSONResponse[schemas.PlanStep](raw)
	if parseErr != nil || step.Instruction == "" {
		// Free-form output still carries an instruction; completion is only
		// recognized through the explicit phrase.
		n.logger.Debug("Planner returned non-JSON, using raw text.", zap.Error(parseErr))
		return &schemas.PlanStep{
			Instruction: raw,
			Done:        strings.Contains(strings.ToLower(raw), "goal completed"),
		}, nil
	}
	return step, nil
}

func (n *Navigator) userMessage(goal string, diag schemas.StepDiagnostics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User goal: %s\n", goal)
	fmt.Fprintf(&b, "History (last %d): %s", len(diag.HistoryTail), strings.Join(diag.HistoryTail, " | "))
	if diag.UIUnchanged {
		tried := diag.TriedIDs
		if len(tried) > 5 {
			tried = tried[len(tried)-5:]
		}
		fmt.Fprintf(&b, "; ui_same: true; last_tried_ids: %s", strings.Join(tried, ","))
	}
	return b.String()
}
