package schemas

// -- Action Schemas --

// ActionKind enumerates the UI actions the executor knows how to perform.
type ActionKind string

const (
	ActionClick  ActionKind = "click"
	ActionFill   ActionKind = "fill"
	ActionSelect ActionKind = "select"
	ActionPress  ActionKind = "press"
)

// ProposedAction is untrusted proposer output. Any field may be missing,
// malformed, or reference an id that does not exist; the validator is the
// only component allowed to consume it.
type ProposedAction struct {
	Action   ActionKind        `json:"action"`
	TargetID string            `json:"target_id"`
	Params   map[string]string `json:"params"`
}

// Text returns the fill payload, accepting the "value" alias some models emit.
func (a ProposedAction) Text() string {
	if v := a.Params["text"]; v != "" {
		return v
	}
	return a.Params["value"]
}

// Option returns the select payload, accepting the "value" alias.
func (a ProposedAction) Option() string {
	if v := a.Params["option"]; v != "" {
		return v
	}
	return a.Params["value"]
}

// Key returns the press payload, accepting the "keys" alias.
func (a ProposedAction) Key() string {
	if v := a.Params["key"]; v != "" {
		return v
	}
	return a.Params["keys"]
}

// ValidatedAction is an action that has passed normalization: the target id
// exists in the candidate set, is unique within the batch, the role is
// compatible with the action kind, and required params are present.
type ValidatedAction struct {
	Action   ActionKind        `json:"action"`
	TargetID string            `json:"target_id"`
	Params   map[string]string `json:"params"`
	// Target is the candidate record the id resolved to at validation time.
	Target ElementRecord `json:"target"`
}

// Text returns the fill payload, accepting the "value" alias.
func (a ValidatedAction) Text() string {
	if v := a.Params["text"]; v != "" {
		return v
	}
	return a.Params["value"]
}

// Option returns the select payload, accepting the "value" alias.
func (a ValidatedAction) Option() string {
	if v := a.Params["option"]; v != "" {
		return v
	}
	return a.Params["value"]
}

// Key returns the press payload, accepting the "keys" alias.
func (a ValidatedAction) Key() string {
	if v := a.Params["key"]; v != "" {
		return v
	}
	return a.Params["keys"]
}

// ProposerPlan is the normalized envelope around a proposer response.
type ProposerPlan struct {
	Actions      []ProposedAction `json:"actions"`
	FollowupHint string           `json:"followup_hint"`
	MaybeDone    bool             `json:"maybe_done"`
}
