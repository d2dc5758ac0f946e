package app

import (
	"math/rand/v2"

	"github.com/jsamuelsen/quotekeeper/internal/domain"
)

// RandomPicker chooses a quote uniformly at random.
type RandomPicker struct {
	intN func(n int) int
}

// NewRandomPicker creates a picker backed by math/rand/v2.
func NewRandomPicker() *RandomPicker {
	return &RandomPicker{intN: rand.IntN}
}

// NewRandomPickerWithSource creates a picker that draws indices from intN.
// intN must return a value in [0, n).
func NewRandomPickerWithSource(intN func(n int) int) *RandomPicker {
	return &RandomPicker{intN: intN}
}

// Pick returns a uniformly chosen quote, or false when c is empty.
func (p *RandomPicker) Pick(c domain.Collection) (domain.Quote, bool) {
	if len(c) == 0 {
		return domain.Quote{}, false
	}

	return c[p.intN(len(c))], true
}
