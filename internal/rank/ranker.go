// File: internal/rank/ranker.go
package rank

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/api/schemas"
	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/internal/config"
)

// LoopState is the slice of run state the ranker needs: which targets were
// already tried, which of them produced no visible change, and whether the UI
// is currently stuck.
type LoopState struct {
	TriedIDs           map[string]bool
	IneffectiveTargets map[string]bool
	UIUnchanged        bool
}

// Sink receives ranking output for diagnostic persistence. It is a
// collaborator, not a contract: a nil sink disables persistence and nothing
// downstream may depend on the files existing.
type Sink interface {
	RecordRanking(all []schemas.ScoredElement, selected []schemas.ScoredElement)
}

// Ranker scores a catalog snapshot against an instruction and returns a
// bounded, role-diverse candidate set.
type Ranker struct {
	cfg    config.RankerConfig
	scorer *Scorer
	sink   Sink
	logger *zap.Logger
}

// NewRanker wires a ranker. sink may be nil.
func NewRanker(cfg config.RankerConfig, scorer *Scorer, sink Sink, logger *zap.Logger) *Ranker {
	return &Ranker{cfg: cfg, scorer: scorer, sink: sink, logger: logger.Named("ranker")}
}

var fillHintTokens = []string{"fill", "title", "description", "field"}
var selectHintTokens = []string{"select", "dropdown", "choose", "option"}

// textCapableRoles are injected by the fill coverage pass.
var textCapableRoles = map[schemas.Role]bool{
	schemas.RoleTextbox:         true,
	schemas.RoleTextarea:        true,
	schemas.RoleSearchbox:       true,
	schemas.RoleContentEditable: true,
}

// Rank scores every element, sorts descending (stable by scan order), takes
// the top K, then runs two coverage passes so a form-filling proposer is
// never starved of input or combobox candidates by the raw score cut.
func (r *Ranker) Rank(elements []schemas.ElementRecord, instruction string, plan *schemas.FormPlan, st LoopState) (selected, all []schemas.ScoredElement) {
	formMode := r.isFormMode(instruction, plan)
	topK := r.cfg.TopK
	if formMode {
		topK = r.cfg.FormTopK
	}

	r.logger.Debug("Scoring elements.",
		zap.Int("count", len(elements)),
		zap.Bool("form_mode", formMode),
		zap.Int("top_k", topK),
		zap.Bool("ui_unchanged", st.UIUnchanged))

	all = make([]schemas.ScoredElement, 0, len(elements))
	for _, e := range elements {
		s := r.scorer.Score(e, instruction, st.TriedIDs, st.UIUnchanged)
		if st.IneffectiveTargets[e.ID] {
			s -= r.cfg.IneffectivePenalty
		}
		if plan.IsForm() {
			s += r.fieldLabelBoost(e, plan)
		}
		all = append(all, schemas.ScoredElement{ElementRecord: e, Score: s})
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].Score > all[j].Score })

	used := make(map[string]bool)
	selected = make([]schemas.ScoredElement, 0, topK)
	for i := range all {
		if len(selected) >= topK {
			break
		}
		all[i].Selected = true
		used[all[i].ID] = true
		selected = append(selected, all[i])
	}

	instrLC := strings.ToLower(instruction)
	if containsAny(instrLC, fillHintTokens) {
		selected = r.injectByRole(all, selected, used, func(role schemas.Role) bool {
			return textCapableRoles[role]
		})
	}
	if containsAny(instrLC, selectHintTokens) {
		selected = r.injectByRole(all, selected, used, func(role schemas.Role) bool {
			return role == schemas.RoleCombobox
		})
	}

	if r.sink != nil {
		r.sink.RecordRanking(all, selected)
	}
	return selected, all
}

// injectByRole appends up to CoverageSlots elements matching the role
// predicate, in score order, skipping anything already selected.
func (r *Ranker) injectByRole(all, selected []schemas.ScoredElement, used map[string]bool, match func(schemas.Role) bool) []schemas.ScoredElement {
	added := 0
	for i := range all {
		if added >= r.cfg.CoverageSlots {
			break
		}
		if used[all[i].ID] || !match(all[i].Role) {
			continue
		}
		all[i].Selected = true
		used[all[i].ID] = true
		selected = append(selected, all[i])
		added++
	}
	return selected
}

// isFormMode widens the candidate budget for form filling: either the planner
// said so explicitly, or the instruction reads like one.
func (r *Ranker) isFormMode(instruction string, plan *schemas.FormPlan) bool {
	if plan.IsForm() {
		return true
	}
	lc := strings.ToLower(instruction)
	return strings.Contains(lc, "fill") && (strings.Contains(lc, "form") || strings.Contains(lc, "details"))
}

// fieldLabelBoost rewards elements whose name or placeholder contains a
// planned field label, once per matching field.
func (r *Ranker) fieldLabelBoost(e schemas.ElementRecord, plan *schemas.FormPlan) float64 {
	name := strings.ToLower(e.Name)
	placeholder := strings.ToLower(e.Placeholder)
	boost := 0.0
	for _, f := range plan.Fields {
		label := strings.ToLower(strings.TrimSpace(f.Label))
		if label == "" {
			continue
		}
		if strings.Contains(name, label) || strings.Contains(placeholder, label) {
			boost += r.cfg.FieldLabelBonus
		}
	}
	return boost
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
