package schemas

// -- Planner Schemas --

// FormField is one field of a structured form plan.
type FormField struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Kind  string `json:"kind,omitempty"` // text | select | checkbox | date
}

// FormPlan is the optional field-level plan a planner can attach to a step
// when the next step is filling a form.
type FormPlan struct {
	Type   string      `json:"type"` // currently always "form"
	Fields []FormField `json:"fields"`
	Submit bool        `json:"submit"`
	Done   bool        `json:"done,omitempty"`
}

// IsForm reports whether the plan describes a form-filling step.
func (p *FormPlan) IsForm() bool { return p != nil && p.Type == "form" }

// PlanStep is what the planner produces for one loop iteration.
type PlanStep struct {
	Instruction string    `json:"instruction"`
	Reason      string    `json:"reason,omitempty"`
	Done        bool      `json:"done"`
	PlanSteps   *FormPlan `json:"plan_steps,omitempty"`
}

// StepDiagnostics is the loop state exposed to the planner and proposer so
// they can avoid repeating ineffective work. It is advisory output only;
// nothing a model returns on its basis is trusted.
type StepDiagnostics struct {
	UIUnchanged bool     `json:"ui_unchanged"`
	TriedIDs    []string `json:"tried_ids"`
	HistoryTail []string `json:"history_tail"`
	MaybeDone   bool     `json:"maybe_done"`
}
