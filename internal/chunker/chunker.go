// ABOUTME: Token-budget splitter that packs separator-delimited units into chunks
// ABOUTME: Never cuts inside a unit; oversized units become a chunk of their own
package chunker

import (
	"strings"

	"github.com/harper/mdtranslate/internal/tokenizer"
)

// DefaultSeparator splits documents on paragraph boundaries
const DefaultSeparator = "\n\n"

// Content is the result of splitting a document
type Content struct {
	Chunks []string
	Tokens int // sum of tokens over all chunks
	Length int // length of the source content in bytes
}

// Span is a half-open byte range [Start, End) of the source that must not be cut
type Span struct {
	Start int
	End   int
}

func (s Span) contains(pos int) bool {
	return pos > s.Start && pos < s.End
}

// Split partitions content into ordered chunks whose token count stays within budget
func Split(content string, budget int, separator string, tok tokenizer.Tokenizer) Content {
	return SplitProtected(content, budget, separator, tok, nil)
}

// SplitProtected behaves like Split but keeps every protected span inside one unit
func SplitProtected(content string, budget int, separator string, tok tokenizer.Tokenizer, protected []Span) Content {
	units := Units(content, separator, protected)
	chunks := Pack(units, budget, separator, tok)

	total := 0
	for _, chunk := range chunks {
		total += tok.Count(chunk)
	}

	return Content{Chunks: chunks, Tokens: total, Length: len(content)}
}

// Units cuts content at every separator occurrence that does not fall inside a protected span.
// Joining the units with separator reproduces content exactly.
func Units(content, separator string, protected []Span) []string {
	if separator == "" {
		return []string{content}
	}

	var units []string
	unitStart := 0
	searchFrom := 0

	for {
		idx := strings.Index(content[searchFrom:], separator)
		if idx < 0 {
			break
		}
		pos := searchFrom + idx

		if isProtected(pos, protected) {
			searchFrom = pos + 1
			continue
		}

		units = append(units, content[unitStart:pos])
		unitStart = pos + len(separator)
		searchFrom = unitStart
	}

	return append(units, content[unitStart:])
}

// Pack greedily merges units left to right while the merged text fits the budget
func Pack(units []string, budget int, separator string, tok tokenizer.Tokenizer) []string {
	if len(units) == 0 {
		return []string{""}
	}

	chunks := make([]string, 0, len(units))
	current := units[0]

	for _, unit := range units[1:] {
		candidate := current + separator + unit
		if tok.Count(candidate) > budget {
			chunks = append(chunks, current)
			current = unit
			continue
		}
		current = candidate
	}

	return append(chunks, current)
}

func isProtected(pos int, protected []Span) bool {
	for _, span := range protected {
		if span.contains(pos) {
			return true
		}
	}
	return false
}
