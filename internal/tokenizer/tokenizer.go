// ABOUTME: Pluggable token counting used to keep chunks within a model budget
// ABOUTME: Ships a model-agnostic estimator that approximates BPE segmentation
package tokenizer

import (
	"unicode"
)

// Tokenizer counts the tokens a model would see for a piece of text
type Tokenizer interface {
	Count(text string) int
}

// Func adapts a plain function to the Tokenizer interface
type Func func(text string) int

// Count implements Tokenizer
func (f Func) Count(text string) int {
	return f(text)
}

// Estimator approximates byte-pair encoders without a vocabulary.
//
// Latin words cost one token per started group of four letters, digits are
// grouped by three, every punctuation or symbol rune costs one token, and
// ideographic runes cost one token each. Runs of newlines cost one token.
type Estimator struct{}

// NewEstimator creates an Estimator
func NewEstimator() *Estimator {
	return &Estimator{}
}

// Count implements Tokenizer
func (e *Estimator) Count(text string) int {
	tokens := 0
	letters := 0
	digits := 0
	newline := false

	flush := func() {
		tokens += (letters + 3) / 4
		tokens += (digits + 2) / 3
		letters, digits = 0, 0
	}

	for _, r := range text {
		switch {
		case isIdeograph(r):
			flush()
			newline = false
			tokens++
		case unicode.IsLetter(r) || unicode.IsMark(r):
			if digits > 0 {
				flush()
			}
			newline = false
			letters++
		case unicode.IsDigit(r):
			if letters > 0 {
				flush()
			}
			newline = false
			digits++
		case r == '\n':
			flush()
			if !newline {
				tokens++
			}
			newline = true
		case unicode.IsSpace(r):
			flush()
			newline = false
		default:
			flush()
			newline = false
			tokens++
		}
	}
	flush()

	return tokens
}

func isIdeograph(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul)
}
