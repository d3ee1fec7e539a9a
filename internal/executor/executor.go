// File: internal/executor/executor.go
package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/api/schemas"
	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/internal/browser"
	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/internal/config"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// ActionState tracks an action through its lifecycle. Transitions are strictly
// forward: pending -> resolving -> acting -> settled | failed. Actions that
// never start because the step budget ran out go straight to skipped.
type ActionState string

const (
	StatePending   ActionState = "pending"
	StateResolving ActionState = "resolving"
	StateActing    ActionState = "acting"
	StateSettled   ActionState = "settled"
	StateFailed    ActionState = "failed"
	StateSkipped   ActionState = "skipped"
)

// ActionResult records the outcome of one validated action.
type ActionResult struct {
	Action   schemas.ValidatedAction `json:"action"`
	State    ActionState             `json:"state"`
	Error    string                  `json:"error,omitempty"`
	Duration time.Duration           `json:"duration"`
}

// Succeeded reports whether the action reached the settled state.
func (r ActionResult) Succeeded() bool { return r.State == StateSettled }

// StepResult aggregates per-action outcomes for one step of the loop.
type StepResult struct {
	Results []ActionResult `json:"results"`
	Notes   []string       `json:"notes,omitempty"`
}

// Executed counts the actions that settled.
func (r StepResult) Executed() int {
	n := 0
	for _, res := range r.Results {
		if res.Succeeded() {
			n++
		}
	}
	return n
}

// Executor performs validated actions against a live browser session. Each
// action gets its own timeout, and a whole batch shares a step budget; when
// the budget runs out, the remainder of the batch is skipped with a note
// rather than failing the step.
type Executor struct {
	cfg    config.AgentConfig
	logger *zap.Logger
}

func New(cfg config.AgentConfig, logger *zap.Logger) *Executor {
	return &Executor{
		cfg:    cfg,
		logger: logger.Named("executor"),
	}
}

// ExecuteStep runs a batch of actions in order under the step budget.
func (e *Executor) ExecuteStep(ctx context.Context, s *browser.Session, actions []schemas.ValidatedAction) StepResult {
	budgetCtx, cancel := context.WithTimeout(ctx, e.cfg.StepBudget)
	defer cancel()

	var result StepResult
	for i, action := range actions {
		if budgetCtx.Err() != nil {
			for _, rest := range actions[i:] {
				result.Results = append(result.Results, ActionResult{
					Action: rest,
					State:  StateSkipped,
					Error:  "step budget exhausted",
				})
			}
			result.Notes = append(result.Notes,
				fmt.Sprintf("step budget exhausted, %d of %d actions skipped", len(actions)-i, len(actions)))
			break
		}

		result.Results = append(result.Results, e.executeOne(budgetCtx, s, action))
		e.settle(budgetCtx)
	}
	return result
}

// executeOne drives a single action through the state machine.
func (e *Executor) executeOne(ctx context.Context, s *browser.Session, action schemas.ValidatedAction) ActionResult {
	start := time.Now()
	result := ActionResult{Action: action, State: StatePending}
	log := e.logger.With(
		zap.String("action", string(action.Action)),
		zap.String("target_id", action.TargetID),
		zap.String("target_name", action.Target.Name))

	actCtx, cancel := context.WithTimeout(ctx, e.cfg.ActionTimeout)
	defer cancel()

	result.State = StateResolving
	selector, cleanup, err := s.Resolve(actCtx, action.Target.Locator)
	if err != nil {
		result.State = StateFailed
		result.Error = err.Error()
		result.Duration = time.Since(start)
		log.Warn("Could not resolve action target.", zap.Error(err))
		return result
	}
	defer cleanup()

	result.State = StateActing
	switch action.Action {
	case schemas.ActionClick:
		err = e.click(actCtx, s, selector)
	case schemas.ActionFill:
		err = e.fill(actCtx, s, selector, action)
	case schemas.ActionSelect:
		err = e.selectOption(actCtx, s, selector, action)
	case schemas.ActionPress:
		err = e.press(actCtx, s, selector, action)
	default:
		err = fmt.Errorf("unsupported action kind %q", action.Action)
	}

	result.Duration = time.Since(start)
	if err != nil {
		result.State = StateFailed
		result.Error = err.Error()
		log.Warn("Action failed.", zap.Error(err), zap.Duration("duration", result.Duration))
		return result
	}

	result.State = StateSettled
	log.Debug("Action settled.", zap.Duration("duration", result.Duration))
	return result
}

// settle gives the page a short window to react between actions.
func (e *Executor) settle(ctx context.Context) {
	if e.cfg.SettleWait <= 0 {
		return
	}
	select {
	case <-time.After(e.cfg.SettleWait):
	case <-ctx.Done():
	}
}

func (e *Executor) click(ctx context.Context, s *browser.Session, selector string) error {
	return s.RunActions(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	)
}

// richTextFillScript writes into a contenteditable surface, preferring the
// inner paragraph node that rich text editors typically mount.
const richTextFillScript = `(function(p) {
	const el = document.querySelector(p.selector);
	if (!el || !el.isContentEditable) return false;
	const inner = el.querySelector('p');
	(inner || el).innerText = p.text;
	el.dispatchEvent(new Event('input', {bubbles: true}));
	return true;
})(%s)`

func (e *Executor) fill(ctx context.Context, s *browser.Session, selector string, action schemas.ValidatedAction) error {
	if !schemas.FillableRoles[action.Target.Role] {
		return fmt.Errorf("fill not permitted on role %q", action.Target.Role)
	}
	text := action.Text()

	if action.Target.Role == schemas.RoleContentEditable {
		return e.fillRichText(ctx, s, selector, text)
	}

	err := s.RunActions(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, text, chromedp.ByQuery),
	)
	if err == nil {
		return nil
	}
	// Some rich text widgets expose textbox roles but reject value writes;
	// retry through the contenteditable path before giving up.
	if richErr := e.fillRichText(ctx, s, selector, text); richErr == nil {
		return nil
	}
	return fmt.Errorf("fill failed: %w", err)
}

func (e *Executor) fillRichText(ctx context.Context, s *browser.Session, selector, text string) error {
	params, err := jsonAPI.Marshal(map[string]string{"selector": selector, "text": text})
	if err != nil {
		return fmt.Errorf("failed to encode fill params: %w", err)
	}
	var ok bool
	if err := s.Evaluate(ctx, fmt.Sprintf(richTextFillScript, params), &ok); err != nil {
		return fmt.Errorf("rich text fill failed: %w", err)
	}
	if !ok {
		return fmt.Errorf("element %s is not an editable surface", selector)
	}
	return nil
}

// nativeSelectScript picks an option on a native <select>, matching by exact
// text or value first and substring second, and fires the framework events.
const nativeSelectScript = `(function(p) {
	const el = document.querySelector(p.selector);
	if (!el || el.tagName.toLowerCase() !== 'select') return false;
	const want = p.option.trim().toLowerCase();
	const commit = function(i) {
		el.selectedIndex = i;
		el.dispatchEvent(new Event('input', {bubbles: true}));
		el.dispatchEvent(new Event('change', {bubbles: true}));
		return true;
	};
	for (let i = 0; i < el.options.length; i++) {
		const opt = el.options[i];
		const text = (opt.textContent || '').trim().toLowerCase();
		const value = (opt.value || '').trim().toLowerCase();
		if (text === want || value === want) return commit(i);
	}
	for (let i = 0; i < el.options.length; i++) {
		if ((el.options[i].textContent || '').trim().toLowerCase().indexOf(want) >= 0) return commit(i);
	}
	return false;
})(%s)`

// selectOption applies the three-stage fallback chain: native <select>
// assignment, ARIA listbox option click, then typeahead (type and Enter).
func (e *Executor) selectOption(ctx context.Context, s *browser.Session, selector string, action schemas.ValidatedAction) error {
	if !schemas.SelectableRoles[action.Target.Role] {
		return fmt.Errorf("select not permitted on role %q", action.Target.Role)
	}
	option := action.Option()

	// a) Native select.
	params, err := jsonAPI.Marshal(map[string]string{"selector": selector, "option": option})
	if err != nil {
		return fmt.Errorf("failed to encode select params: %w", err)
	}
	var ok bool
	if err := s.Evaluate(ctx, fmt.Sprintf(nativeSelectScript, params), &ok); err == nil && ok {
		return nil
	}

	// b) ARIA widget: open it, then click the matching option.
	if err := e.click(ctx, s, selector); err != nil {
		return fmt.Errorf("could not open selection widget: %w", err)
	}
	e.settle(ctx)
	if err := e.clickOptionByName(ctx, s, option); err == nil {
		return nil
	}

	// c) Typeahead: type the option and confirm with Enter.
	if err := s.RunActions(ctx,
		chromedp.SendKeys(selector, option, chromedp.ByQuery),
		chromedp.SendKeys(selector, kb.Enter, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("select fallbacks exhausted for option %q: %w", option, err)
	}
	return nil
}

// clickOptionByName resolves a live option element by accessible name. Exact
// match is tried before substring match.
func (e *Executor) clickOptionByName(ctx context.Context, s *browser.Session, option string) error {
	optSelector, cleanup, err := s.Resolve(ctx, schemas.Locator{
		Role: schemas.RoleOption,
		Name: option,
	})
	if err != nil {
		return e.clickOptionByText(ctx, s, option)
	}
	defer cleanup()
	return e.click(ctx, s, optSelector)
}

// optionTextScript tags the first visible option whose text contains the
// wanted value, for widgets whose option names carry extra decoration.
const optionTextScript = `(function(p) {
	const want = p.option.trim().toLowerCase();
	const nodes = document.querySelectorAll('[role="option"], option');
	for (let i = 0; i < nodes.length; i++) {
		const el = nodes[i];
		const rect = el.getBoundingClientRect();
		if (rect.width <= 0 || rect.height <= 0) continue;
		if ((el.innerText || el.textContent || '').trim().toLowerCase().indexOf(want) >= 0) {
			el.setAttribute(p.attr, p.token);
			return true;
		}
	}
	return false;
})(%s)`

func (e *Executor) clickOptionByText(ctx context.Context, s *browser.Session, option string) error {
	token := fmt.Sprintf("opt-%d", time.Now().UnixNano())
	params, err := jsonAPI.Marshal(map[string]string{
		"option": option,
		"attr":   "data-agent-option",
		"token":  token,
	})
	if err != nil {
		return fmt.Errorf("failed to encode option params: %w", err)
	}
	var ok bool
	if err := s.Evaluate(ctx, fmt.Sprintf(optionTextScript, params), &ok); err != nil {
		return fmt.Errorf("option text lookup failed: %w", err)
	}
	if !ok {
		return fmt.Errorf("no visible option matching %q", option)
	}
	selector := fmt.Sprintf(`[data-agent-option=%q]`, token)
	defer func() {
		cleanup := fmt.Sprintf(`document.querySelector('%s')?.removeAttribute('data-agent-option')`, selector)
		_ = s.Evaluate(ctx, cleanup, nil)
	}()
	return e.click(ctx, s, selector)
}

var namedKeys = map[string]string{
	"enter":      kb.Enter,
	"return":     kb.Enter,
	"tab":        kb.Tab,
	"escape":     kb.Escape,
	"esc":        kb.Escape,
	"backspace":  kb.Backspace,
	"delete":     kb.Delete,
	"arrowup":    kb.ArrowUp,
	"arrowdown":  kb.ArrowDown,
	"arrowleft":  kb.ArrowLeft,
	"arrowright": kb.ArrowRight,
	"pageup":     kb.PageUp,
	"pagedown":   kb.PageDown,
	"home":       kb.Home,
	"end":        kb.End,
}

// press focuses the target and sends the named key. Unrecognized names are
// sent as literal characters.
func (e *Executor) press(ctx context.Context, s *browser.Session, selector string, action schemas.ValidatedAction) error {
	key := action.Key()
	if mapped, ok := namedKeys[strings.ToLower(strings.TrimSpace(key))]; ok {
		key = mapped
	}
	return s.RunActions(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Focus(selector, chromedp.ByQuery),
		chromedp.KeyEvent(key),
	)
}
