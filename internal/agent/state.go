// File: internal/agent/state.go
package agent

import (
	"fmt"
	"time"
)

// State names a phase of the step loop. The loop is a strict state machine:
// every phase may only hand off to the phases listed in transitions, and an
// out-of-order hand-off is a programming error, not a recoverable condition.
type State string

const (
	StateObserving  State = "observing"
	StatePlanning   State = "planning"
	StateRanking    State = "ranking"
	StateProposing  State = "proposing"
	StateValidating State = "validating"
	StateExecuting  State = "executing"
	StateMeasuring  State = "measuring"
	StateFinalizing State = "finalizing"
)

// transitions is the complete transition table. Phases that produce nothing
// actionable (no candidates, no valid actions, model failure) skip forward to
// measuring so the step still records an outcome and the loop keeps moving.
var transitions = map[State][]State{
	StateObserving:  {StatePlanning},
	StatePlanning:   {StateRanking, StateFinalizing},
	StateRanking:    {StateProposing, StateMeasuring},
	StateProposing:  {StateValidating, StateMeasuring},
	StateValidating: {StateExecuting, StateMeasuring},
	StateExecuting:  {StateMeasuring},
	StateMeasuring:  {StateObserving, StateFinalizing},
	StateFinalizing: {},
}

func canTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Completion reasons recorded in the run summary.
const (
	ReasonPlannerDone   = "planner_done"
	ReasonGoalPhrase    = "goal_completed_phrase"
	ReasonFormConfirmed = "form_values_confirmed"
	ReasonMaxSteps      = "max_steps"
	ReasonCanceled      = "canceled"
)

// runState is the per-run scratch the loop accumulates across steps. Element
// ids inside it refer to past snapshots and are only ever used as opaque
// repetition markers, never resolved against a live page.
type runState struct {
	step        int
	window      int
	history     []string
	triedOrder  []string
	tried       map[string]bool
	ineffective map[string]bool
	uiUnchanged bool
	maybeDone   bool
}

func newRunState(window int) *runState {
	return &runState{
		window:      window,
		tried:       make(map[string]bool),
		ineffective: make(map[string]bool),
	}
}

// markTried records a target id once, preserving first-seen order.
func (s *runState) markTried(id string) {
	if !s.tried[id] {
		s.tried[id] = true
		s.triedOrder = append(s.triedOrder, id)
	}
}

// recordOutcome appends a one-line history entry for the finished step and
// evicts the oldest entry once the sliding window is full.
func (s *runState) recordOutcome(instruction string, attempted, executed int, unchanged bool) {
	const maxInstr = 120
	if len(instruction) > maxInstr {
		instruction = instruction[:maxInstr] + "..."
	}
	s.history = append(s.history, fmt.Sprintf(
		"step %d: %s | actions=%d executed=%d ui_same=%t",
		s.step, instruction, attempted, executed, unchanged))
	if s.window > 0 && len(s.history) > s.window {
		s.history = s.history[len(s.history)-s.window:]
	}
}

// historyTail returns the last n history entries.
func (s *runState) historyTail(n int) []string {
	if n <= 0 || len(s.history) <= n {
		return s.history
	}
	return s.history[len(s.history)-n:]
}

// RunSummary is the final account of a run.
type RunSummary struct {
	RunID      string    `json:"run_id"`
	Goal       string    `json:"goal"`
	StartURL   string    `json:"start_url"`
	FinalURL   string    `json:"final_url,omitempty"`
	Steps      int       `json:"steps"`
	Completed  bool      `json:"completed"`
	Reason     string    `json:"reason"`
	History    []string  `json:"history"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
