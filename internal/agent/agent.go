// File: internal/agent/agent.go
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/api/schemas"
	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/internal/actions"
	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/internal/config"
	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/internal/executor"
	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/internal/rank"
	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/internal/vision"
)

// donePhrase in a planner instruction marks the goal as reached even when the
// structured done flag is absent.
const donePhrase = "goal completed"

// Options collects the collaborators an Agent needs. Recorder and Detector
// are optional; everything else is required.
type Options struct {
	Browser   Browser
	Runner    ActionRunner
	Planner   schemas.Planner
	Proposer  schemas.Proposer
	Ranker    *rank.Ranker
	Validator *actions.Validator
	Detector  *vision.ChangeDetector
	Recorder  Recorder
	RunID     string
}

// Agent drives the observe/plan/rank/propose/validate/execute/measure loop
// until the planner declares the goal reached or the step cap fires.
type Agent struct {
	cfg    *config.Config
	logger *zap.Logger

	browser   Browser
	runner    ActionRunner
	planner   schemas.Planner
	proposer  schemas.Proposer
	ranker    *rank.Ranker
	validator *actions.Validator
	detector  *vision.ChangeDetector
	recorder  Recorder
	runID     string

	state State
}

// New validates the wiring and builds an agent.
func New(cfg *config.Config, opts Options, logger *zap.Logger) (*Agent, error) {
	switch {
	case opts.Browser == nil:
		return nil, fmt.Errorf("agent requires a browser")
	case opts.Runner == nil:
		return nil, fmt.Errorf("agent requires an action runner")
	case opts.Planner == nil:
		return nil, fmt.Errorf("agent requires a planner")
	case opts.Proposer == nil:
		return nil, fmt.Errorf("agent requires a proposer")
	case opts.Ranker == nil:
		return nil, fmt.Errorf("agent requires a ranker")
	case opts.Validator == nil:
		return nil, fmt.Errorf("agent requires a validator")
	}

	log := logger.Named("agent")
	if opts.Detector == nil {
		opts.Detector = vision.NewChangeDetector(log)
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}

	return &Agent{
		cfg:       cfg,
		logger:    log,
		browser:   opts.Browser,
		runner:    opts.Runner,
		planner:   opts.Planner,
		proposer:  opts.Proposer,
		ranker:    opts.Ranker,
		validator: opts.Validator,
		detector:  opts.Detector,
		recorder:  opts.Recorder,
		runID:     opts.RunID,
		state:     StateObserving,
	}, nil
}

// Run executes the loop for one goal starting from startURL.
func (a *Agent) Run(ctx context.Context, goal, startURL string) (*RunSummary, error) {
	summary := &RunSummary{
		RunID:     a.runID,
		Goal:      goal,
		StartURL:  startURL,
		StartedAt: time.Now(),
	}

	if err := a.browser.Navigate(ctx, startURL); err != nil {
		return nil, fmt.Errorf("initial navigation failed: %w", err)
	}

	st := newRunState(a.cfg.Agent.HistoryWindow)
	for step := 1; step <= a.cfg.Agent.MaxSteps; step++ {
		if err := ctx.Err(); err != nil {
			a.finalize(ctx, summary, st, false, ReasonCanceled)
			return summary, err
		}
		st.step = step

		done, reason, err := a.runStep(ctx, goal, st)
		if err != nil {
			a.finalize(ctx, summary, st, false, ReasonCanceled)
			return summary, fmt.Errorf("step %d failed: %w", step, err)
		}
		if done {
			a.finalize(ctx, summary, st, true, reason)
			return summary, nil
		}
	}

	a.finalize(ctx, summary, st, false, ReasonMaxSteps)
	return summary, nil
}

// runStep performs one full pass of the state machine. It returns done=true
// with a completion reason when the planner declares the goal reached.
func (a *Agent) runStep(ctx context.Context, goal string, st *runState) (bool, string, error) {
	if a.state != StateObserving {
		a.transition(StateObserving)
	}
	a.recorder.BeginStep(st.step)
	log := a.logger.With(zap.Int("step", st.step))

	shot, err := a.browser.Screenshot(ctx)
	if err != nil {
		return false, "", fmt.Errorf("screenshot failed: %w", err)
	}
	a.recorder.RecordScreenshot("raw.png", shot)

	a.transition(StatePlanning)
	diag := a.diagnostics(st)
	plan, err := a.planner.PlanStep(ctx, goal, shot, diag)
	if err != nil {
		return false, "", fmt.Errorf("planning failed: %w", err)
	}
	a.recorder.RecordJSON("plan.json", plan)
	log.Info("Planned step.", zap.String("instruction", plan.Instruction))

	planDone := plan.Done || (plan.PlanSteps != nil && plan.PlanSteps.Done)
	if planDone || strings.Contains(strings.ToLower(plan.Instruction), donePhrase) {
		a.transition(StateFinalizing)
		if planDone {
			return true, ReasonPlannerDone, nil
		}
		return true, ReasonGoalPhrase, nil
	}

	a.transition(StateRanking)
	elements, err := a.browser.Elements(ctx)
	if err != nil {
		return false, "", fmt.Errorf("element catalog failed: %w", err)
	}
	selected, _ := a.ranker.Rank(elements, plan.Instruction, plan.PlanSteps, rank.LoopState{
		TriedIDs:           st.tried,
		IneffectiveTargets: st.ineffective,
		UIUnchanged:        st.uiUnchanged,
	})

	var validated []schemas.ValidatedAction
	var result executor.StepResult
	var hint string
	noteLines := []string{plan.Instruction}
	st.maybeDone = false

	switch {
	case len(selected) == 0:
		log.Warn("No candidates survived ranking.")
		noteLines = append(noteLines, "degraded: no interactable candidates")
		a.transition(StateMeasuring)
	default:
		a.transition(StateProposing)
		prop, propErr := a.proposer.ProposeActions(ctx, plan, selected, diag)
		if propErr != nil {
			log.Warn("Proposer failed, degrading step.", zap.Error(propErr))
			noteLines = append(noteLines, "degraded: proposer failure: "+propErr.Error())
			a.transition(StateMeasuring)
			break
		}
		hint = prop.FollowupHint
		st.maybeDone = prop.MaybeDone

		a.transition(StateValidating)
		validated = a.validator.Normalize(prop.Actions, selected)
		a.recorder.RecordJSON("actions.json", validated)
		if len(validated) == 0 {
			log.Warn("No proposed action survived validation.")
			noteLines = append(noteLines, "degraded: no valid actions")
			a.transition(StateMeasuring)
			break
		}

		a.transition(StateExecuting)
		result = a.runner.ExecuteStep(ctx, validated)
		a.recorder.RecordJSON("results.json", result)
		a.transition(StateMeasuring)
	}

	unchanged := a.measure(ctx, st, shot, selected, log)

	if !unchanged {
		st.ineffective = make(map[string]bool)
	}
	for _, res := range result.Results {
		st.markTried(res.Action.TargetID)
		// Failed attempts on a stuck UI count too; only actions the budget
		// never started are exempt.
		if unchanged && res.State != executor.StateSkipped {
			st.ineffective[res.Action.TargetID] = true
		}
	}
	st.uiUnchanged = unchanged
	st.recordOutcome(plan.Instruction, len(validated), result.Executed(), unchanged)

	if hint != "" {
		noteLines = append(noteLines, "followup: "+hint)
	}
	noteLines = append(noteLines, result.Notes...)
	a.recorder.RecordNote(strings.Join(noteLines, "\n"))

	if result.Executed() > 0 && a.formValuesConfirmed(ctx, plan.PlanSteps) {
		log.Info("All planned form values are present in the DOM.")
		a.transition(StateFinalizing)
		return true, ReasonFormConfirmed, nil
	}

	return false, "", nil
}

// formValuesConfirmed re-catalogs the page and reports whether every expected
// form value from the plan is visibly present. Fields without a target value
// are ignored; a plan with no values can never confirm.
func (a *Agent) formValuesConfirmed(ctx context.Context, plan *schemas.FormPlan) bool {
	if !plan.IsForm() {
		return false
	}
	var expected []string
	for _, f := range plan.Fields {
		if v := strings.TrimSpace(f.Value); v != "" {
			expected = append(expected, strings.ToLower(v))
		}
	}
	if len(expected) == 0 {
		return false
	}

	elements, err := a.browser.Elements(ctx)
	if err != nil {
		return false
	}
	for _, want := range expected {
		found := false
		for _, el := range elements {
			if strings.Contains(strings.ToLower(el.Value), want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// measure takes the post-action screenshot, persists it, and reports whether
// the UI is perceptually unchanged since the previous step.
func (a *Agent) measure(ctx context.Context, st *runState, rawShot []byte, selected []schemas.ScoredElement, log *zap.Logger) bool {
	after, err := a.browser.Screenshot(ctx)
	if err != nil {
		log.Warn("Post-action screenshot failed, assuming the UI changed.", zap.Error(err))
		return false
	}
	a.recorder.RecordScreenshot("after_action.png", after)

	if a.cfg.Run.Annotate && len(selected) > 0 {
		if annotated, aerr := vision.Annotate(rawShot, selected); aerr == nil {
			a.recorder.RecordScreenshot("annotated.png", annotated)
		} else {
			log.Debug("Screenshot annotation failed.", zap.Error(aerr))
		}
	}

	unchanged := a.detector.Observe(after)
	if unchanged && a.detector.Streak() >= 3 {
		log.Warn("UI has not visibly changed for several steps.",
			zap.Int("streak", a.detector.Streak()))
	}
	return unchanged
}

func (a *Agent) diagnostics(st *runState) schemas.StepDiagnostics {
	return schemas.StepDiagnostics{
		UIUnchanged: st.uiUnchanged,
		TriedIDs:    append([]string(nil), st.triedOrder...),
		HistoryTail: st.historyTail(a.cfg.Agent.HistoryWindow),
		MaybeDone:   st.maybeDone,
	}
}

func (a *Agent) transition(to State) {
	if !canTransition(a.state, to) {
		a.logger.DPanic("Invalid state transition.",
			zap.String("from", string(a.state)), zap.String("to", string(to)))
	}
	a.state = to
}

func (a *Agent) finalize(ctx context.Context, summary *RunSummary, st *runState, completed bool, reason string) {
	if a.state != StateFinalizing {
		a.state = StateFinalizing
	}

	summary.Steps = st.step
	summary.Completed = completed
	summary.Reason = reason
	summary.History = st.history
	summary.FinishedAt = time.Now()
	if url, err := a.browser.CurrentURL(ctx); err == nil {
		summary.FinalURL = url
	}

	a.recorder.WriteMeta(summary)
	a.logger.Info("Run finished.",
		zap.Bool("completed", completed),
		zap.String("reason", reason),
		zap.Int("steps", summary.Steps))
}
