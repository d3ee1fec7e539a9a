// File: internal/rank/scoring_test.go
package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/api/schemas"
	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/internal/config"
)

func testScoringConfig() config.ScoringConfig {
	return config.NewDefaultConfig().Agent.Scoring
}

func elem(id string, role schemas.Role, name string) schemas.ElementRecord {
	return schemas.ElementRecord{ID: id, Role: role, Name: name}
}

func TestClassifyIntent(t *testing.T) {
	t.Parallel()
	cases := []struct {
		instruction string
		want        Intent
	}{
		{"Open the profile settings page", IntentProfileSettings},
		{"Update the account email address", IntentProfileSettings},
		{"Create a new issue for the login bug", IntentCreateNew},
		{"Filter the board to show only urgent items", IntentFilterSearch},
		{"Go to the Reports tab", IntentNavigate},
		{"Fill in the title field", IntentFormFill},
		{"Click somewhere reasonable", IntentGeneric},
		{"", IntentGeneric},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyIntent(tc.instruction), "instruction: %q", tc.instruction)
	}
}

func TestClassifyIntentPrecedence(t *testing.T) {
	t.Parallel()
	// "profile" outranks "new" because profile/settings is checked first.
	assert.Equal(t, IntentProfileSettings, ClassifyIntent("add a new profile picture"))
}

func TestTokenize(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"create", "new", "issue"}, Tokenize("Create New Issue!"))
	assert.Equal(t, []string{"a1", "b2"}, Tokenize("A1-B2"))
	assert.Empty(t, Tokenize("!!!"))
}

func TestIsGarbageName(t *testing.T) {
	t.Parallel()
	assert.True(t, IsGarbageName("42"))
	assert.True(t, IsGarbageName("x"))
	assert.True(t, IsGarbageName("zq"))
	assert.False(t, IsGarbageName(""))
	assert.False(t, IsGarbageName("OK"))
	assert.False(t, IsGarbageName("Go"))
	assert.False(t, IsGarbageName("Save"))
}

func TestScoreIsDeterministic(t *testing.T) {
	t.Parallel()
	s := NewScorer(testScoringConfig())
	e := elem("3", schemas.RoleButton, "Create Issue")
	tried := map[string]bool{"7": true}

	first := s.Score(e, "Create a new issue", tried, false)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, s.Score(e, "Create a new issue", tried, false))
	}
}

func TestScoreExactMatchOutranksOverlap(t *testing.T) {
	t.Parallel()
	s := NewScorer(testScoringConfig())
	exact := elem("1", schemas.RoleButton, "Create Issue")
	partial := elem("2", schemas.RoleButton, "Issue Board")

	instruction := "Click the Create Issue button"
	assert.Greater(t,
		s.Score(exact, instruction, nil, false),
		s.Score(partial, instruction, nil, false))
}

func TestScoreRetryAndStuckPenalties(t *testing.T) {
	t.Parallel()
	cfg := testScoringConfig()
	s := NewScorer(cfg)
	e := elem("5", schemas.RoleButton, "Submit")
	instruction := "Submit the form"

	fresh := s.Score(e, instruction, nil, false)
	retried := s.Score(e, instruction, map[string]bool{"5": true}, false)
	stuck := s.Score(e, instruction, map[string]bool{"5": true}, true)

	assert.InDelta(t, fresh-cfg.RetryPenalty, retried, 1e-9)
	assert.InDelta(t, fresh-cfg.StuckPenalty, stuck, 1e-9)
	assert.Less(t, stuck, retried)
}

func TestScoreDestructivePenalty(t *testing.T) {
	t.Parallel()
	s := NewScorer(testScoringConfig())
	del := elem("1", schemas.RoleButton, "Delete Item")
	save := elem("2", schemas.RoleButton, "Save Item")

	// Unrequested destructive controls sink below neutral ones.
	assert.Less(t,
		s.Score(del, "Save the item", nil, false),
		s.Score(save, "Save the item", nil, false))

	// An explicit request removes the penalty.
	assert.Greater(t,
		s.Score(del, "Delete the item", nil, false),
		s.Score(save, "Delete the item", nil, false))
}

func TestScoreConflictPenaltyUnderIntent(t *testing.T) {
	t.Parallel()
	s := NewScorer(testScoringConfig())
	instruction := "Open the profile settings"
	issueBtn := elem("1", schemas.RoleButton, "Create Issue")
	settingsBtn := elem("2", schemas.RoleButton, "Settings")

	assert.Less(t,
		s.Score(issueBtn, instruction, nil, false),
		s.Score(settingsBtn, instruction, nil, false))
}

func TestScoreGarbageNamePenalty(t *testing.T) {
	t.Parallel()
	cfg := testScoringConfig()
	s := NewScorer(cfg)
	noisy := elem("1", schemas.RoleButton, "17")
	clean := elem("2", schemas.RoleButton, "Archive")

	assert.Less(t,
		s.Score(noisy, "Open the archive", nil, false),
		s.Score(clean, "Open the archive", nil, false))
}

func TestScoreFormRoleBonus(t *testing.T) {
	t.Parallel()
	s := NewScorer(testScoringConfig())
	instruction := "Fill in the details form"
	input := elem("1", schemas.RoleTextbox, "")
	link := elem("2", schemas.RoleLink, "")

	assert.Greater(t,
		s.Score(input, instruction, nil, false),
		s.Score(link, instruction, nil, false))
}
