package economy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tatianab/village-sim/internal/world"
)

func TestCraftRoleGate(t *testing.T) {
	kael := &world.Character{Name: "Kael", Role: "Forgeron"}
	ok, msg := Craft(kael, "Épée")
	assert.True(t, ok)
	assert.Contains(t, msg, "Épée")
	assert.Equal(t, []string{"Épée"}, kael.Inventory)

	elora := &world.Character{Name: "Elora", Role: "Apothicaire"}
	ok, _ = Craft(elora, "Épée")
	assert.False(t, ok)
	assert.Empty(t, elora.Inventory)

	ok, _ = Craft(elora, "Potion")
	assert.True(t, ok)
}

func TestCraftUngatedItem(t *testing.T) {
	lila := &world.Character{Name: "Lila", Role: "Aubergiste"}
	ok, _ := Craft(lila, "Parchemin")
	assert.True(t, ok)
}

func TestTransaction(t *testing.T) {
	buyer := &world.Character{Name: "Harry", Gold: 20}
	seller := &world.Character{Name: "Lila", Gold: 5, Inventory: []string{"Bierraubeurre", "Grimoire"}}

	ok, msg := Transaction(buyer, seller, "Bierraubeurre")
	assert.True(t, ok)
	assert.Contains(t, msg, "5 or")
	assert.Equal(t, 15, buyer.Gold)
	assert.Equal(t, 10, seller.Gold)
	assert.Equal(t, []string{"Bierraubeurre"}, buyer.Inventory)
	assert.Equal(t, []string{"Grimoire"}, seller.Inventory)
}

func TestTransactionSellerLacksItem(t *testing.T) {
	buyer := &world.Character{Name: "Harry", Gold: 200}
	seller := &world.Character{Name: "Lila"}

	ok, _ := Transaction(buyer, seller, "Grimoire")
	assert.False(t, ok)
	assert.Equal(t, 200, buyer.Gold)
}

func TestTransactionInsufficientGold(t *testing.T) {
	buyer := &world.Character{Name: "Harry", Gold: 3}
	seller := &world.Character{Name: "Lila", Inventory: []string{"Grimoire"}}

	ok, _ := Transaction(buyer, seller, "Grimoire")
	assert.False(t, ok)
	assert.Equal(t, []string{"Grimoire"}, seller.Inventory)
}

func TestFirstAffordable(t *testing.T) {
	buyer := &world.Character{Name: "Harry", Gold: 10}
	seller := &world.Character{Name: "Lila", Inventory: []string{"Grimoire", "Plume", "Bierraubeurre"}}

	// Grimoire costs 100, out of reach; Plume is the first fit.
	assert.Equal(t, "Plume", FirstAffordable(buyer, seller))

	broke := &world.Character{Name: "Ron", Gold: 0}
	assert.Equal(t, "", FirstAffordable(broke, seller))
}

func TestPriceOfFallback(t *testing.T) {
	assert.Equal(t, 100, PriceOf("Grimoire"))
	assert.Equal(t, 10, PriceOf("Chose inconnue"))
}
