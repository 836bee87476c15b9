// Package weighted implements weighted random selection.
package weighted

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sort"
)

// Source is a source of uniformly distributed integers in [0, n).
// *math/rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// CryptoSource draws from crypto/rand. It is safe for concurrent use.
type CryptoSource struct{}

// Intn returns a uniform integer in [0, n). It panics if n <= 0 or the
// system randomness source fails.
func (CryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("weighted: invalid argument to Intn")
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("weighted: reading crypto/rand: " + err.Error())
	}
	return int(v.Int64())
}

// Choice pairs an item with its weight.
type Choice[T any] struct {
	Item   T
	Weight int
}

// Chooser picks items with probability proportional to their weight.
// It is immutable and safe to share between goroutines.
type Chooser[T any] struct {
	items      []T
	cumulative []int
	total      int
}

// NewChooser builds a Chooser. Every weight must be positive and at least
// one choice is required.
func NewChooser[T any](choices []Choice[T]) (*Chooser[T], error) {
	if len(choices) == 0 {
		return nil, fmt.Errorf("no choices")
	}
	c := &Chooser[T]{
		items:      make([]T, len(choices)),
		cumulative: make([]int, len(choices)),
	}
	for i, choice := range choices {
		if choice.Weight <= 0 {
			return nil, fmt.Errorf("choice %d has non-positive weight %d", i, choice.Weight)
		}
		c.total += choice.Weight
		c.items[i] = choice.Item
		c.cumulative[i] = c.total
	}
	return c, nil
}

// Len returns the number of choices.
func (c *Chooser[T]) Len() int {
	return len(c.items)
}

// Total returns the sum of all weights.
func (c *Chooser[T]) Total() int {
	return c.total
}

// Pick draws one item. A source that always returns 0 picks the first item.
func (c *Chooser[T]) Pick(src Source) T {
	r := src.Intn(c.total)
	idx := sort.Search(len(c.cumulative), func(i int) bool {
		return c.cumulative[i] > r
	})
	return c.items[idx]
}
