package rpg

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tatianab/village-sim/internal/world"
)

func TestResolveCheckBoundary(t *testing.T) {
	// 15 + 0 meets difficulty 15 exactly.
	res := ResolveCheck(15, 0, 15)
	assert.True(t, res.Success)
	assert.Equal(t, 15, res.Total)

	res = ResolveCheck(14, 0, 15)
	assert.False(t, res.Success)
}

func TestResolveCheckBonus(t *testing.T) {
	res := ResolveCheck(7, 8, 15)
	assert.True(t, res.Success)
	assert.Equal(t, 8, res.Bonus)
	assert.Equal(t, 15, res.Total)
}

func TestCheckSkillRollRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	c := &world.Character{Name: "Elora", Stats: map[string]int{"MAGIE": 3}}
	for i := 0; i < 200; i++ {
		res := CheckSkill(rng, c, "MAGIE", DefaultDifficulty)
		assert.GreaterOrEqual(t, res.Roll, 1)
		assert.LessOrEqual(t, res.Roll, 20)
		assert.Equal(t, res.Roll+3, res.Total)
	}
}

func TestCheckSkillUnknownSkillZeroBonus(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	c := &world.Character{Name: "Kael"}
	res := CheckSkill(rng, c, "MAGIE", 15)
	assert.Equal(t, 0, res.Bonus)
}

func TestGainXPLevelUp(t *testing.T) {
	c := &world.Character{Name: "Lila", Level: 1, XP: 90}
	logs := GainXP(c, 20)

	assert.Equal(t, 2, c.Level)
	assert.Equal(t, 10, c.XP)
	require.Len(t, logs, 2)
	assert.Contains(t, logs[0], "20 XP")
	assert.Contains(t, logs[1], "Niveau 2")
}

func TestGainXPMultipleLevels(t *testing.T) {
	// One big award crosses two thresholds: 100 to reach 2, then 200 to
	// reach 3, leaving 50 over.
	c := &world.Character{Name: "Lila", Level: 1, XP: 0}
	logs := GainXP(c, 350)

	assert.Equal(t, 3, c.Level)
	assert.Equal(t, 50, c.XP)
	assert.Len(t, logs, 3)
}

func TestGainXPNoLevelUp(t *testing.T) {
	c := &world.Character{Name: "Lila", Level: 2, XP: 0}
	logs := GainXP(c, 100)

	// Threshold scales with level: 100 XP is not enough at level 2.
	assert.Equal(t, 2, c.Level)
	assert.Equal(t, 100, c.XP)
	assert.Len(t, logs, 1)
}

func TestInitStatsByRole(t *testing.T) {
	tests := []struct {
		role string
		want map[string]int
	}{
		{"Prof de Potions", map[string]int{"MAGIE": 8, "SAVOIR": 9, "SOCIAL": 4, "PHYSIQUE": 2}},
		{"Étudiant", map[string]int{"MAGIE": 4, "SAVOIR": 4, "SOCIAL": 5, "PHYSIQUE": 5}},
		{"Garde de nuit", map[string]int{"PHYSIQUE": 8, "SOCIAL": 2, "MAGIE": 1, "SAVOIR": 3}},
		{"Tenancière", map[string]int{"SOCIAL": 8, "SAVOIR": 6, "MAGIE": 3, "PHYSIQUE": 3}},
		{"Fantôme", map[string]int{"MAGIE": 6, "PHYSIQUE": 0, "SOCIAL": 7, "SAVOIR": 10}},
		{"Dragon", map[string]int{"MAGIE": 3, "SAVOIR": 3, "SOCIAL": 3, "PHYSIQUE": 3}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InitStats(tt.role), "role %q", tt.role)
	}
}

func TestEnsureStatsLazyInit(t *testing.T) {
	c := &world.Character{Name: "Baron", Role: "Fantôme"}
	EnsureStats(c)

	assert.Equal(t, 1, c.Level)
	assert.Equal(t, 10, c.Stats["SAVOIR"])

	// A second call must not overwrite progress.
	c.Stats["SAVOIR"] = 11
	EnsureStats(c)
	assert.Equal(t, 11, c.Stats["SAVOIR"])
}
