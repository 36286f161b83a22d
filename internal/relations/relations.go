// Package relations is the Sims-style affinity ledger: bounded scores
// between characters and the labels derived from them.
package relations

import (
	"fmt"
	"strings"

	"github.com/tatianab/village-sim/internal/world"
)

// Status thresholds, checked in descending order.
const (
	ThLover       = 80
	ThFriend      = 50
	ThNeutralHigh = 10
	ThNeutralLow  = -10
	ThRival       = -40
	ThEnemy       = -70
)

// Status labels an affinity score.
func Status(score int) string {
	switch {
	case score >= ThLover:
		return "Amour"
	case score >= ThFriend:
		return "Ami"
	case score >= ThNeutralHigh:
		return "Sympathique"
	case score > ThNeutralLow:
		return "Neutre"
	case score > ThRival:
		return "Froid"
	case score > ThEnemy:
		return "Rival"
	default:
		return "Ennemi"
	}
}

// UpdateAffinity shifts source's disposition toward target by delta,
// clamped to [-100,100], and returns the new value with its label.
// Note that near the bounds clamping makes updates non-invertible:
// +d then -d only restores the original when no clamp fired in between.
func UpdateAffinity(source *world.Character, target string, delta int) (int, string) {
	newVal := source.SetAffinity(target, source.AffinityWith(target)+delta)
	return newVal, Status(newVal)
}

// SocialContext renders the character's dispositions toward visible
// neighbors for the oracle prompt, e.g. "Draco (Rival: -45), Luna (Ami: 60)".
func SocialContext(source *world.Character, neighbors []string) string {
	var parts []string
	for _, n := range neighbors {
		if n == source.Name {
			continue
		}
		score := source.AffinityWith(n)
		parts = append(parts, fmt.Sprintf("%s (%s: %d)", n, Status(score), score))
	}
	if len(parts) == 0 {
		return "Aucune relation notable ici."
	}
	return strings.Join(parts, ", ")
}
