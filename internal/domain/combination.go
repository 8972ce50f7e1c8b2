package domain

import (
	"encoding/binary"
	"math"
	"strings"

	"github.com/google/uuid"
)

// NameSeparator joins combination values into a variant's display name.
const NameSeparator = " / "

// combinationNamespace scopes UUIDv5 combination keys.
var combinationNamespace = uuid.MustParse("6f1c2a34-9d0e-4b7a-8c55-2e4f1a9b7d10")

// Combination is one value per attribute, in attribute declaration order.
type Combination []string

func (c Combination) Name() string {
	return strings.Join(c, NameSeparator)
}

// Key identifies the combination by its tuple rather than its display
// name, so values containing the separator cannot collide.
func (c Combination) Key() string {
	var buf []byte
	var n [binary.MaxVarintLen64]byte
	for _, v := range c {
		buf = append(buf, n[:binary.PutUvarint(n[:], uint64(len(v)))]...)
		buf = append(buf, v...)
	}
	return uuid.NewSHA1(combinationNamespace, buf).String()
}

// GenerateCombinations returns the cartesian product of valueSets in
// declaration order. No sets yields a single empty combination; any empty
// set yields none.
func GenerateCombinations(valueSets [][]string) []Combination {
	if len(valueSets) == 0 {
		return []Combination{{}}
	}

	rest := GenerateCombinations(valueSets[1:])
	out := make([]Combination, 0, len(valueSets[0])*len(rest))
	for _, v := range valueSets[0] {
		for _, tail := range rest {
			combo := make(Combination, 0, len(tail)+1)
			combo = append(combo, v)
			combo = append(combo, tail...)
			out = append(out, combo)
		}
	}
	return out
}

// CombinationCount is the product of the set sizes, saturating at MaxInt.
func CombinationCount(valueSets [][]string) int {
	count := 1
	for _, set := range valueSets {
		n := len(set)
		if n == 0 {
			return 0
		}
		if count > math.MaxInt/n {
			return math.MaxInt
		}
		count *= n
	}
	return count
}
