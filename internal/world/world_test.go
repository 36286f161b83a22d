package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnergyClamped(t *testing.T) {
	c := &Character{Name: "Elora", Energy: 95}

	c.AddEnergy(10)
	assert.Equal(t, 100, c.Energy)

	c.AddEnergy(-300)
	assert.Equal(t, 0, c.Energy)
}

func TestManaClamped(t *testing.T) {
	m := 195
	c := &Character{Name: "Elora", Mana: &m}

	c.AddMana(10)
	assert.Equal(t, 200, *c.Mana)

	c.AddMana(-500)
	assert.Equal(t, 0, *c.Mana)
}

func TestManaAbsentIsNoop(t *testing.T) {
	c := &Character{Name: "Kael"}
	c.AddMana(10)
	assert.Nil(t, c.Mana)
}

func TestStatBonusLazyDefault(t *testing.T) {
	c := &Character{Name: "Kael"}
	assert.Equal(t, 0, c.StatBonus("MAGIE"))
}

func TestSetAffinityClampsAndCreatesLedger(t *testing.T) {
	c := &Character{Name: "Kael"}
	assert.Equal(t, 100, c.SetAffinity("Elora", 140))
	assert.Equal(t, -100, c.SetAffinity("Elora", -140))
	assert.Equal(t, -100, c.AffinityWith("Elora"))
}

func TestCloneIsDeep(t *testing.T) {
	m := 50
	c := &Character{
		Name:      "Elora",
		Energy:    80,
		Mana:      &m,
		Stats:     map[string]int{"MAGIE": 5},
		Rel:       map[string]int{"Kael": 10},
		Inventory: []string{"Plume"},
	}

	cc := c.Clone()
	cc.Stats["MAGIE"] = 9
	cc.Rel["Kael"] = -50
	*cc.Mana = 0
	cc.Inventory[0] = "Grimoire"

	assert.Equal(t, 5, c.Stats["MAGIE"])
	assert.Equal(t, 10, c.Rel["Kael"])
	assert.Equal(t, 50, *c.Mana)
	assert.Equal(t, "Plume", c.Inventory[0])
}

func TestPrependLogsCap(t *testing.T) {
	s := &State{}
	for i := 0; i < MaxLogs; i++ {
		s.Logs = append(s.Logs, "old")
	}

	s.PrependLogs([]string{"new1", "new2"})
	assert.Len(t, s.Logs, MaxLogs)
	assert.Equal(t, "new1", s.Logs[0])
	assert.Equal(t, "new2", s.Logs[1])
}
