package fuzzy

import "unicode"

// Weights tunes match scoring.
type Weights struct {
	Base        int
	Consecutive int
	Boundary    int
	// Prefix applies when the first query rune matches the first text rune.
	Prefix int
	// ExactPrefix applies when the whole query is a prefix of the text.
	ExactPrefix int
	Gap         int
	Leading     int
	// ShortText rewards texts shorter than this many runes, one point
	// per rune below it.
	ShortText int
}

// DefaultWeights returns the weights used by DefaultOptions.
func DefaultWeights() Weights {
	return Weights{
		Base:        100,
		Consecutive: 20,
		Boundary:    15,
		Prefix:      25,
		ExactPrefix: 50,
		Gap:         2,
		Leading:     1,
		ShortText:   20,
	}
}

// Score rates a match of q at the rune indices idx. orig keeps the
// text's case for boundary detection; folded is the text as compared.
// Every match scores at least 1.
func (w Weights) Score(q, orig, folded []rune, idx []int) int {
	if len(idx) == 0 {
		return 0
	}
	score := w.Base
	for i, at := range idx {
		if i > 0 && at == idx[i-1]+1 {
			score += w.Consecutive
		}
		if boundary(orig, at) {
			score += w.Boundary
		}
	}
	if idx[0] == 0 {
		score += w.Prefix
	}
	if gaps := idx[len(idx)-1] - idx[0] + 1 - len(idx); gaps > 0 {
		score -= gaps * w.Gap
	}
	score -= idx[0] * w.Leading
	if n := len(folded); n < w.ShortText {
		score += w.ShortText - n
	}
	if hasPrefix(folded, q) {
		score += w.ExactPrefix
	}
	if score < 1 {
		score = 1
	}
	return score
}

func hasPrefix(text, q []rune) bool {
	if len(q) > len(text) {
		return false
	}
	for i, r := range q {
		if text[i] != r {
			return false
		}
	}
	return true
}

// boundary reports whether rune i starts a word: the first rune, a rune
// after a space or punctuation, an upper-case rune after a lower-case
// one, or a digit after a letter.
func boundary(runes []rune, i int) bool {
	if i == 0 {
		return true
	}
	if i >= len(runes) {
		return false
	}
	prev, cur := runes[i-1], runes[i]
	switch {
	case unicode.IsSpace(prev) || unicode.IsPunct(prev):
		return true
	case unicode.IsLower(prev) && unicode.IsUpper(cur):
		return true
	case unicode.IsLetter(prev) && unicode.IsDigit(cur):
		return true
	}
	return false
}
