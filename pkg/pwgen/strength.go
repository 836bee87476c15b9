package pwgen

import (
	"math/big"

	"github.com/verte-zerg/phonopass/pkg/phonetic"
)

// Strength counts the distinct passwords the generator can emit with the
// given number of digits. Adjacent segments always differ in kind, so every
// sampling path spells a different string and the count is the sum over
// segment counts and initial kinds of the per-step candidate products.
func (g *Generator) Strength(digits int) *big.Int {
	total := new(big.Int)
	for n := g.cfg.minSegments; n <= g.cfg.maxSegments; n++ {
		for _, kind := range []phonetic.Kind{phonetic.Consonant, phonetic.Vowel} {
			total.Add(total, pathCount(g.table, kind, n))
		}
	}
	if digits > 0 {
		base := big.NewInt(int64(len(g.cfg.digitAlphabet)))
		total.Mul(total, new(big.Int).Exp(base, big.NewInt(int64(digits)), nil))
	}
	return total
}

func pathCount(table *phonetic.Table, kind phonetic.Kind, n int) *big.Int {
	count := big.NewInt(int64(len(table.Entries(kind, phonetic.Initial))))
	for i := 1; i < n && count.Sign() > 0; i++ {
		kind = kind.Other()
		role := phonetic.Medial
		if i == n-1 {
			role = phonetic.Final
		}
		count.Mul(count, big.NewInt(int64(len(table.Entries(kind, role)))))
	}
	return count
}
