// Package game holds the client-side rules of the word chain: the chain
// itself, the phone format accepted at sign-in and the score bookkeeping
// shown on the game-over screen.
package game

import (
	"strings"

	"github.com/samber/lo"
)

// SeedWord is always the first element of a fresh chain.
const SeedWord = "Rock"

// Chain is the ordered list of accepted answers, starting with SeedWord.
type Chain []string

// NewChain returns a chain holding only the seed word.
func NewChain() Chain {
	return Chain{SeedWord}
}

// FromServer adopts a backend-provided chain, falling back to a fresh one
// when the backend has nothing to offer.
func FromServer(chain []string) Chain {
	if len(chain) == 0 {
		return NewChain()
	}
	return Chain(chain).Clone()
}

// Current is the element the next answer has to beat.
func (c Chain) Current() string {
	if len(c) == 0 {
		return SeedWord
	}
	return c[len(c)-1]
}

// Score is the number of accepted answers.
func (c Chain) Score() int {
	if len(c) == 0 {
		return 0
	}
	return len(c) - 1
}

// IsDuplicate reports whether answer, trimmed, already appears in the chain
// ignoring case. Blank answers are never duplicates.
func (c Chain) IsDuplicate(answer string) bool {
	candidate := strings.ToLower(Normalize(answer))
	if candidate == "" {
		return false
	}
	return lo.ContainsBy(c, func(item string) bool {
		return strings.ToLower(item) == candidate
	})
}

// Append returns a new chain with the trimmed answer added at the end.
// The receiver is left untouched.
func (c Chain) Append(answer string) Chain {
	out := make(Chain, len(c), len(c)+1)
	copy(out, c)
	return append(out, Normalize(answer))
}

// Clone returns an independent copy of the chain.
func (c Chain) Clone() Chain {
	if c == nil {
		return nil
	}
	out := make(Chain, len(c))
	copy(out, c)
	return out
}

// Normalize trims surrounding whitespace from a raw answer.
func Normalize(answer string) string {
	return strings.TrimSpace(answer)
}
