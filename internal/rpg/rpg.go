// Package rpg holds the progression rules: stat templates, d20 skill
// checks and experience/level bookkeeping.
package rpg

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/tatianab/village-sim/internal/world"
)

// Skills recognized by skill checks. A decision naming anything else is
// ignored by the engine.
var Skills = []string{"MAGIE", "SOCIAL", "PHYSIQUE", "SAVOIR"}

// IsSkill reports whether name is in the recognized skill set.
func IsSkill(name string) bool {
	for _, s := range Skills {
		if s == name {
			return true
		}
	}
	return false
}

// BaseXPLevel is the XP needed to go from level 1 to 2; the threshold
// scales linearly with the current level.
const BaseXPLevel = 100

// DefaultDifficulty is the threshold a check must meet when the caller
// does not pick one.
const DefaultDifficulty = 15

// CheckResult is the outcome of one skill check.
type CheckResult struct {
	Roll       int
	Bonus      int
	Total      int
	Difficulty int
	Success    bool
}

// ResolveCheck applies the check rule to an already-rolled die. Split
// out so tests can pin the roll.
func ResolveCheck(roll, bonus, difficulty int) CheckResult {
	if difficulty <= 0 {
		difficulty = DefaultDifficulty
	}
	total := roll + bonus
	return CheckResult{
		Roll:       roll,
		Bonus:      bonus,
		Total:      total,
		Difficulty: difficulty,
		Success:    total >= difficulty,
	}
}

// CheckSkill rolls a d20, adds the character's bonus for the skill
// (zero when unset) and succeeds when the total meets the difficulty.
// The rand source is injected so tests can seed it.
func CheckSkill(rng *rand.Rand, c *world.Character, skill string, difficulty int) CheckResult {
	return ResolveCheck(rng.Intn(20)+1, c.StatBonus(skill), difficulty)
}

// GainXP adds experience and applies level-ups. Unlike the single-step
// original, this loops so one large award can cross several thresholds.
// Returns human-readable log lines, one for the gain and one per level.
func GainXP(c *world.Character, amount int) []string {
	if c.Level == 0 {
		c.Level = 1
	}
	c.XP += amount
	logs := []string{fmt.Sprintf("Gagne %d XP", amount)}

	for c.XP >= c.Level*BaseXPLevel {
		c.XP -= c.Level * BaseXPLevel
		c.Level++
		logs = append(logs, fmt.Sprintf("🎉 LEVEL UP! Niveau %d atteint!", c.Level))
	}
	return logs
}

// statTemplate maps role keywords to a preset distribution.
type statTemplate struct {
	keywords []string
	stats    map[string]int
}

var roleTemplates = []statTemplate{
	{
		keywords: []string{"Prof", "Bibliothécaire"},
		stats:    map[string]int{"MAGIE": 8, "SAVOIR": 9, "SOCIAL": 4, "PHYSIQUE": 2},
	},
	{
		keywords: []string{"Étudiant"},
		stats:    map[string]int{"MAGIE": 4, "SAVOIR": 4, "SOCIAL": 5, "PHYSIQUE": 5},
	},
	{
		keywords: []string{"Garde", "Videur", "Concierge"},
		stats:    map[string]int{"PHYSIQUE": 8, "SOCIAL": 2, "MAGIE": 1, "SAVOIR": 3},
	},
	{
		keywords: []string{"Vendeur", "Tenancière"},
		stats:    map[string]int{"SOCIAL": 8, "SAVOIR": 6, "MAGIE": 3, "PHYSIQUE": 3},
	},
	{
		keywords: []string{"Fantôme"},
		stats:    map[string]int{"MAGIE": 6, "PHYSIQUE": 0, "SOCIAL": 7, "SAVOIR": 10},
	},
}

// InitStats builds the starting stat line for a role. Role matching is
// by substring against a fixed keyword table; unknown roles get a flat
// low default. Pure function.
func InitStats(role string) map[string]int {
	for _, tpl := range roleTemplates {
		for _, kw := range tpl.keywords {
			if strings.Contains(role, kw) {
				out := make(map[string]int, len(tpl.stats))
				for k, v := range tpl.stats {
					out[k] = v
				}
				return out
			}
		}
	}
	out := make(map[string]int, len(Skills))
	for _, s := range Skills {
		out[s] = 3
	}
	return out
}

// EnsureStats lazily initializes a character's progression fields the
// first time it is asked to act.
func EnsureStats(c *world.Character) {
	if c.Stats == nil {
		c.Stats = InitStats(c.Role)
	}
	if c.Level == 0 {
		c.Level = 1
	}
}
