package engine

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/tatianab/village-sim/internal/relations"
	"github.com/tatianab/village-sim/internal/world"
)

//go:embed prompts/turn_batch.txt
var turnBatchPrompt string

var turnBatchTmpl = template.Must(template.New("turn_batch").Parse(turnBatchPrompt))

// visibilityRadius is how far (Chebyshev distance) a character can see
// neighbors for the social context.
const visibilityRadius = 2

// chapterMemory bounds how much of the running chapter rides along in
// each prompt.
const chapterMemory = 2000

// buildBatchPrompt renders the oracle request for one batch of
// characters, reading only the frame-start snapshot.
func (e *Engine) buildBatchPrompt(names []string, snapshot map[string]*world.Character, timeStr string, weather world.Weather, chapter string) (string, error) {
	var agents strings.Builder
	for _, name := range names {
		agents.WriteString(e.agentBlock(name, snapshot))
	}

	var buf bytes.Buffer
	data := struct {
		ScenarioName string
		Description  string
		TimeStr      string
		Weather      string
		Chapter      string
		AgentsBlock  string
	}{
		ScenarioName: e.seed.ScenarioName,
		Description:  e.seed.Description,
		TimeStr:      timeStr,
		Weather:      weather.String(),
		Chapter:      tail(chapter, chapterMemory),
		AgentsBlock:  agents.String(),
	}
	if err := turnBatchTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// agentBlock renders one character's situation: identity, stats,
// terrain and dispositions toward everyone in sight.
func (e *Engine) agentBlock(name string, snapshot map[string]*world.Character) string {
	c := snapshot[name]

	var neighbors []string
	for other, oc := range snapshot {
		if other == name {
			continue
		}
		if abs(oc.Pos[0]-c.Pos[0]) <= visibilityRadius && abs(oc.Pos[1]-c.Pos[1]) <= visibilityRadius {
			neighbors = append(neighbors, other)
		}
	}

	statsStr := "Standard"
	if len(c.Stats) > 0 {
		var parts []string
		for _, s := range rpgSkillsOrdered(c.Stats) {
			parts = append(parts, fmt.Sprintf("%s:%d", s.name, s.val))
		}
		statsStr = strings.Join(parts, " | ")
	}

	return fmt.Sprintf(`
--- PERSONNAGE: %s ---
ROLE: %s (%d ans). BIO: %s
STATS: %s. XP: %d (Lvl %d)
ETAT: Energie %d. Or: %d. Inv: %v
LIEU: %s (Coord %v).
RELATIONS (Voisins): %s.
`,
		name, c.Role, c.Age, c.Description,
		statsStr, c.XP, c.Level,
		c.Energy, c.Gold, c.Inventory,
		e.seed.TerrainAt(c.Pos[0], c.Pos[1]), c.Pos,
		relations.SocialContext(c, sortedNames(neighbors)),
	)
}

func tail(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
