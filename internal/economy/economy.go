// Package economy is the gold/item layer: a fixed price list, role-gated
// crafting and character-to-character purchases.
package economy

import (
	"fmt"
	"strings"

	"github.com/tatianab/village-sim/internal/world"
)

// StartingGold seeds characters whose roster entry carries none.
const StartingGold = 100

// fallbackPrice covers items missing from the price list.
const fallbackPrice = 10

// Prices of known trade goods, in gold.
var Prices = map[string]int{
	"Baguette Magique": 50,
	"Potion de Soin":   15,
	"Parchemin":        2,
	"Plume":            1,
	"Bierraubeurre":    5,
	"Grimoire":         100,
	"Ingrédients":      10,
	"Épée":             40,
	"Potion":           15,
}

// PriceOf returns an item's price, falling back for unlisted goods.
func PriceOf(item string) int {
	if p, ok := Prices[item]; ok {
		return p
	}
	return fallbackPrice
}

// craftGates maps craftable items to the role keyword required to make
// them. Items not listed here can be crafted by anyone.
var craftGates = map[string]string{
	"Épée":   "Forgeron",
	"Potion": "Apothicaire",
}

// Craft attempts to make an item, honoring role gates. Returns whether
// it worked and a first-person flavor line.
func Craft(c *world.Character, item string) (bool, string) {
	if gate, ok := craftGates[item]; ok && !strings.Contains(c.Role, gate) {
		return false, fmt.Sprintf("Je ne sais pas fabriquer : %s...", item)
	}
	c.Inventory = append(c.Inventory, item)
	return true, fmt.Sprintf("J'ai fabriqué : %s", item)
}

// Transaction moves an item from seller to buyer for its listed price.
// Returns whether the sale happened and a flavor line.
func Transaction(buyer, seller *world.Character, item string) (bool, string) {
	idx := -1
	for i, it := range seller.Inventory {
		if it == item {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false, fmt.Sprintf("%s n'a pas de %s !", seller.Name, item)
	}

	price := PriceOf(item)
	if buyer.Gold < price {
		return false, fmt.Sprintf("Pas assez d'or (%d/%d)", buyer.Gold, price)
	}

	buyer.Gold -= price
	seller.Gold += price
	seller.Inventory = append(seller.Inventory[:idx], seller.Inventory[idx+1:]...)
	buyer.Inventory = append(buyer.Inventory, item)
	return true, fmt.Sprintf("Acheté %s à %s pour %d or", item, seller.Name, price)
}

// FirstAffordable picks the first item in the seller's inventory the
// buyer can pay for, or "" when nothing fits.
func FirstAffordable(buyer, seller *world.Character) string {
	for _, item := range seller.Inventory {
		if buyer.Gold >= PriceOf(item) {
			return item
		}
	}
	return ""
}
