package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONFromNoisyText(t *testing.T) {
	raw := `blah {"Alice": {"action": "REPOS"}} trailing`
	got, err := ExtractJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, `{"Alice": {"action": "REPOS"}}`, got)
}

func TestExtractJSONIgnoresBracesInStrings(t *testing.T) {
	raw := `note {"A": {"pensee": "il pense à } et {", "action": "RIEN"}} et après {plus}`
	got, err := ExtractJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, `{"A": {"pensee": "il pense à } et {", "action": "RIEN"}}`, got)
}

func TestExtractJSONHandlesEscapedQuotes(t *testing.T) {
	raw := `{"A": {"reaction": "elle dit \"}\" fort"}}`
	got, err := ExtractJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestExtractJSONNoObject(t *testing.T) {
	_, err := ExtractJSON("rien du tout")
	assert.Error(t, err)

	_, err = ExtractJSON(`{"A": {"action": "RIEN"`)
	assert.Error(t, err)
}

func TestParseDecisionsDefaultsMissingFields(t *testing.T) {
	raw := `voici ma réponse {"Alice": {"action": "REPOS"}} merci`
	positions := map[string][2]int{"Alice": {3, 4}}

	decisions, err := ParseDecisions(raw, positions)
	require.NoError(t, err)

	d := decisions["Alice"]
	assert.Equal(t, ActionRest, d.Action)
	// No dest in the record: stay where you are.
	assert.Equal(t, [2]int{3, 4}, d.Dest)
	assert.Equal(t, DefaultDuration, d.Duration)
	assert.Equal(t, "Attend...", d.Pensee)
}

func TestParseDecisionsUnparseableGivesDefaults(t *testing.T) {
	positions := map[string][2]int{"A": {1, 1}, "B": {2, 2}}

	decisions, err := ParseDecisions("aucune accolade ici", positions)
	assert.Error(t, err)
	require.Len(t, decisions, 2)

	assert.Equal(t, DefaultDecision([2]int{1, 1}), decisions["A"])
	assert.Equal(t, DefaultDecision([2]int{2, 2}), decisions["B"])
}

func TestParseDecisionsMissingCharacterKey(t *testing.T) {
	raw := `{"A": {"action": "ETUDIER", "target_skill": "savoir"}}`
	positions := map[string][2]int{"A": {0, 0}, "B": {5, 5}}

	decisions, err := ParseDecisions(raw, positions)
	require.NoError(t, err)

	assert.Equal(t, ActionStudy, decisions["A"].Action)
	assert.Equal(t, "SAVOIR", decisions["A"].TargetSkill)
	assert.Equal(t, DefaultDecision([2]int{5, 5}), decisions["B"])
}

func TestParseDecisionsBadFieldTypes(t *testing.T) {
	raw := `{"A": {"action": 12, "dest": "nord", "duration": "vite", "pensee": "..."}}`
	positions := map[string][2]int{"A": {2, 3}}

	decisions, err := ParseDecisions(raw, positions)
	require.NoError(t, err)

	d := decisions["A"]
	assert.Equal(t, ActionIdle, d.Action)
	assert.Equal(t, [2]int{2, 3}, d.Dest)
	assert.Equal(t, DefaultDuration, d.Duration)
}

func TestParseDecisionsDestWrongArity(t *testing.T) {
	raw := `{"A": {"dest": [1, 2, 3]}}`
	decisions, err := ParseDecisions(raw, map[string][2]int{"A": {7, 7}})
	require.NoError(t, err)
	assert.Equal(t, [2]int{7, 7}, decisions["A"].Dest)
}

func TestParseDecisionsDurationFloor(t *testing.T) {
	raw := `{"A": {"duration": 1}}`
	decisions, err := ParseDecisions(raw, map[string][2]int{"A": {0, 0}})
	require.NoError(t, err)
	assert.Equal(t, MinDuration, decisions["A"].Duration)
}

func TestParseDecisionsFloatDurationAndDest(t *testing.T) {
	// Models love floats.
	raw := `{"A": {"duration": 30.0, "dest": [3.0, 4.0]}}`
	decisions, err := ParseDecisions(raw, map[string][2]int{"A": {0, 0}})
	require.NoError(t, err)
	assert.Equal(t, 30, decisions["A"].Duration)
	assert.Equal(t, [2]int{3, 4}, decisions["A"].Dest)
}

func TestParseDecisionsControlCharRetry(t *testing.T) {
	raw := "{\"A\": {\"pensee\": \"avec\x07cloche\", \"action\": \"REPOS\"}}"
	decisions, err := ParseDecisions(raw, map[string][2]int{"A": {0, 0}})
	require.NoError(t, err)
	assert.Equal(t, ActionRest, decisions["A"].Action)
}

func TestNormalizeAction(t *testing.T) {
	assert.Equal(t, ActionRest, normalizeAction(" repos "))
	assert.Equal(t, ActionMove, normalizeAction("BOUGE"))
	assert.Equal(t, ActionIdle, normalizeAction("DANSER_LA_POLKA"))
	assert.Equal(t, ActionIdle, normalizeAction(""))
}
