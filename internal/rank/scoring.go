// File: internal/rank/scoring.go
package rank

import (
	"regexp"
	"strings"

	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/api/schemas"
	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/internal/config"
)

// baseRoleWeights give interactive primary controls a head start over
// secondary ones. Roles absent from the table score a neutral 0.5.
var baseRoleWeights = map[schemas.Role]float64{
	schemas.RoleButton:    1.0,
	schemas.RoleLink:      1.0,
	schemas.RoleCombobox:  1.0,
	schemas.RoleTextbox:   1.0,
	schemas.RoleTextarea:  1.0,
	schemas.RoleSearchbox: 1.0,
	schemas.RoleOption:    0.8,
	schemas.RoleMenuItem:  0.8,
	schemas.RoleCheckbox:  0.8,
	schemas.RoleRadio:     0.8,
	schemas.RoleTab:       0.8,
}

const defaultRoleWeight = 0.5

// shortNameAllowlist keeps legitimate two-letter labels out of the garbage
// penalty.
var shortNameAllowlist = map[string]bool{
	"ok": true, "go": true, "id": true, "up": true, "to": true,
	"at": true, "in": true, "on": true, "by": true,
}

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// Tokenize splits text into lowercase alphanumeric runs.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

func tokenSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}

// IsGarbageName reports whether a name is likely rendering noise: purely
// numeric, or shorter than three characters without being a known word.
func IsGarbageName(name string) bool {
	if name == "" {
		return false
	}
	allDigits := true
	for _, r := range name {
		if r < '0' || r > '9' {
			allDigits = false
			break
		}
	}
	if allDigits {
		return true
	}
	if len(name) < 3 && !shortNameAllowlist[strings.ToLower(name)] {
		return true
	}
	return false
}

// Scorer evaluates a single element against a single instruction. It is a
// pure function of its inputs: identical inputs always produce bit-identical
// scores.
type Scorer struct {
	cfg config.ScoringConfig
}

// NewScorer builds a scorer from named configuration.
func NewScorer(cfg config.ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score applies the four heuristic layers: lexical match, intent-aware role
// bias, negative signals, and retry/garbage adjustments.
func (s *Scorer) Score(elem schemas.ElementRecord, instruction string, triedIDs map[string]bool, uiUnchanged bool) float64 {
	name := strings.TrimSpace(elem.Name)
	fullName := strings.TrimSpace(name + " " + strings.TrimSpace(elem.Placeholder))

	instrTokens := Tokenize(instruction)
	nameTokens := Tokenize(fullName)
	instrSet := tokenSet(instrTokens)
	nameSet := tokenSet(nameTokens)

	intent := ClassifyIntent(instruction)

	score := s.lexical(instruction, fullName, instrSet, nameSet)
	score += s.roleBias(elem.Role, elem.Landmark, intent, nameSet)
	score += s.negativeSignals(intent, nameSet, instrSet)

	if triedIDs[elem.ID] {
		if uiUnchanged {
			score -= s.cfg.StuckPenalty
		} else {
			score -= s.cfg.RetryPenalty
		}
	}
	if IsGarbageName(name) {
		score -= s.cfg.GarbagePenalty
	}
	return score
}

// lexical is the primary driver: verbatim phrase containment plus token
// overlap between the instruction and the element's name and placeholder.
func (s *Scorer) lexical(instruction, fullName string, instrSet, nameSet map[string]bool) float64 {
	score := 0.0

	if fullName != "" && strings.Contains(strings.ToLower(instruction), strings.ToLower(fullName)) {
		if len(fullName) > 3 {
			score += s.cfg.ExactMatchBonus
		} else {
			score += s.cfg.ShortExactMatchBonus
		}
	}

	if len(instrSet) == 0 || len(nameSet) == 0 {
		return score
	}
	overlap := 0
	for t := range nameSet {
		if instrSet[t] {
			overlap++
		}
	}
	if overlap > 0 {
		score += s.cfg.TokenOverlapBonus * float64(overlap)
	}
	return score
}

func (s *Scorer) roleBias(role schemas.Role, landmark schemas.Landmark, intent Intent, nameSet map[string]bool) float64 {
	score, ok := baseRoleWeights[role]
	if !ok {
		score = defaultRoleWeight
	}

	anyToken := func(tokens ...string) bool {
		for _, t := range tokens {
			if nameSet[t] {
				return true
			}
		}
		return false
	}

	switch intent {
	case IntentProfileSettings:
		if anyToken("settings", "profile", "account", "workspace") {
			score += s.cfg.IntentNameBonus
		}
		switch landmark {
		case schemas.LandmarkNavigation, schemas.LandmarkBanner, schemas.LandmarkContentInfo:
			score += s.cfg.IntentLandmarkBonus
		}
	case IntentCreateNew:
		if anyToken("create", "new", "add") {
			score += s.cfg.IntentNameBonus
		}
		if landmark == schemas.LandmarkMain {
			score += s.cfg.IntentLandmarkBonus
		}
	case IntentFilterSearch:
		if anyToken("filter", "search") {
			score += s.cfg.IntentNameBonus
		}
	case IntentFormFill:
		switch role {
		case schemas.RoleTextbox, schemas.RoleTextarea, schemas.RoleCombobox, schemas.RoleCheckbox, schemas.RoleRadio:
			score += s.cfg.FormRoleBonus
		}
		if landmark == schemas.LandmarkMain {
			score += s.cfg.IntentLandmarkBonus
		}
	}
	return score
}

func (s *Scorer) negativeSignals(intent Intent, nameSet, instrSet map[string]bool) float64 {
	penalty := 0.0

	if conflicts := conflictTokens[intent]; len(conflicts) > 0 {
		nameHit, instrHit := false, false
		for _, t := range conflicts {
			if nameSet[t] {
				nameHit = true
			}
			if instrSet[t] {
				instrHit = true
			}
		}
		// An explicit request is never penalized.
		if nameHit && !instrHit {
			penalty -= s.cfg.ConflictPenalty
		}
	}

	for t := range nameSet {
		if genericChromeTokens[t] {
			penalty -= s.cfg.ChromePenalty
			break
		}
	}

	nameDestructive, instrDestructive := false, false
	for t := range nameSet {
		if destructiveTokens[t] {
			nameDestructive = true
			break
		}
	}
	for t := range instrSet {
		if destructiveTokens[t] {
			instrDestructive = true
			break
		}
	}
	if nameDestructive && !instrDestructive {
		penalty -= s.cfg.DestructivePenalty
	}
	return penalty
}
