package schemas

import "context"

// Planner decides the next conceptual step from the user goal, the current
// screenshot and the loop diagnostics. Implementations are external
// collaborators (typically a vision LLM); the loop treats their output as
// untrusted data.
type Planner interface {
	PlanStep(ctx context.Context, goal string, screenshot []byte, diag StepDiagnostics) (*PlanStep, error)
}

// Proposer turns an instruction plus a bounded candidate list into a batch of
// proposed actions. Output is untrusted and must pass the validator before
// execution.
type Proposer interface {
	ProposeActions(ctx context.Context, step *PlanStep, candidates []ScoredElement, diag StepDiagnostics) (*ProposerPlan, error)
}
