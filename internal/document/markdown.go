// ABOUTME: Markdown strategy: paragraph chunks that never cut through code or HTML blocks
// ABOUTME: Uses the goldmark AST to find the byte ranges that must stay in one unit
package document

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/harper/mdtranslate/internal/chunker"
)

// Markdown splits on blank lines and rejoins with the same separator
type Markdown struct {
	opts      Options
	separator string
	parser    goldmark.Markdown
}

// NewMarkdown creates the Markdown strategy
func NewMarkdown(opts Options) *Markdown {
	return &Markdown{
		opts:      opts.withDefaults(),
		separator: chunker.DefaultSeparator,
		parser:    goldmark.New(),
	}
}

func (m *Markdown) Name() string { return "Markdown" }

// ComposePrompt renders the system prompt for doc
func (m *Markdown) ComposePrompt(doc Document) (string, error) {
	return renderPrompt(m.opts.Template, doc)
}

// ComposeChunks splits the document within the token budget
func (m *Markdown) ComposeChunks(doc Document) chunker.Content {
	protected := m.ProtectedSpans([]byte(doc.Content))
	return chunker.SplitProtected(doc.Content, m.opts.MaxTokens, m.separator, m.opts.Tokenizer, protected)
}

// MergeResults joins translated parts in order
func (m *Markdown) MergeResults(parts []string) string {
	return strings.Join(parts, m.separator)
}

// ProtectedSpans returns the byte ranges of fenced code and HTML blocks.
// Each span starts at the opening line and ends at the newline closing the block.
func (m *Markdown) ProtectedSpans(src []byte) []chunker.Span {
	doc := m.parser.Parser().Parse(text.NewReader(src))

	var spans []chunker.Span
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.FencedCodeBlock:
			if span, ok := fencedSpan(node, src); ok {
				spans = append(spans, span)
			}
			return ast.WalkSkipChildren, nil
		case *ast.HTMLBlock:
			if span, ok := htmlSpan(node, src); ok {
				spans = append(spans, span)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return spans
}

func fencedSpan(node *ast.FencedCodeBlock, src []byte) (chunker.Span, bool) {
	lines := node.Lines()

	var start, closing int
	switch {
	case lines.Len() > 0:
		first := lineStart(src, lines.At(0).Start)
		if first == 0 {
			return chunker.Span{}, false
		}
		start = lineStart(src, first-1)
		closing = lines.At(lines.Len() - 1).Stop
	case node.Info != nil:
		start = lineStart(src, node.Info.Segment.Start)
		closing = lineEnd(src, start) + 1
	default:
		return chunker.Span{}, false
	}

	// the closing fence is the line following the content
	if closing > len(src) {
		closing = len(src)
	}
	if closing > 0 && src[closing-1] != '\n' {
		closing = lineEnd(src, closing) + 1
		if closing > len(src) {
			closing = len(src)
		}
	}
	return chunker.Span{Start: start, End: lineEnd(src, closing)}, true
}

func htmlSpan(node *ast.HTMLBlock, src []byte) (chunker.Span, bool) {
	lines := node.Lines()
	if lines.Len() == 0 {
		return chunker.Span{}, false
	}
	start := lineStart(src, lines.At(0).Start)
	stop := lines.At(lines.Len() - 1).Stop
	if node.HasClosure() {
		stop = node.ClosureLine.Stop
	}
	if stop > 0 && stop <= len(src) && src[stop-1] == '\n' {
		stop--
	}
	return chunker.Span{Start: start, End: stop}, true
}

// lineStart returns the offset of the first byte of the line holding pos
func lineStart(src []byte, pos int) int {
	if pos > len(src) {
		pos = len(src)
	}
	return bytes.LastIndexByte(src[:pos], '\n') + 1
}

// lineEnd returns the offset of the newline ending the line that starts at or holds pos
func lineEnd(src []byte, pos int) int {
	if pos >= len(src) {
		return len(src)
	}
	idx := bytes.IndexByte(src[pos:], '\n')
	if idx < 0 {
		return len(src)
	}
	return pos + idx
}
