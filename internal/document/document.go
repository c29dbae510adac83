// ABOUTME: Document model and the closed set of chunking strategies
// ABOUTME: Strategies are picked by file extension; unknown types yield ErrUnsupported
package document

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/harper/mdtranslate/internal/chunker"
	"github.com/harper/mdtranslate/internal/tokenizer"
)

// MaxTokens is the default token budget of one chunk
const MaxTokens = 2000

// ErrUnsupported means no strategy handles the document type
var ErrUnsupported = errors.New("unsupported file type")

// Document is one source file loaded for translation
type Document struct {
	Source      string
	Destination string
	Language    string
	Content     string
}

// Strategy knows how to prompt for, split and reassemble one document type
type Strategy interface {
	Name() string
	ComposePrompt(doc Document) (string, error)
	ComposeChunks(doc Document) chunker.Content
	MergeResults(parts []string) string
}

// Options configure a strategy; zero values fall back to defaults
type Options struct {
	MaxTokens int
	Tokenizer tokenizer.Tokenizer
	Template  *template.Template
}

func (o Options) withDefaults() Options {
	if o.MaxTokens <= 0 {
		o.MaxTokens = MaxTokens
	}
	if o.Tokenizer == nil {
		o.Tokenizer = tokenizer.NewEstimator()
	}
	if o.Template == nil {
		o.Template = template.Must(ParseTemplate("default", DefaultTemplate))
	}
	return o
}

// markdownExts are the extensions handled by the Markdown strategy
var markdownExts = map[string]bool{".md": true, ".markdown": true}

// ForFile returns the strategy registered for the extension of path
func ForFile(path string, opts Options) (Strategy, error) {
	if !Supported(path) {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupported)
	}
	return NewMarkdown(opts), nil
}

// Supported reports whether some strategy handles path
func Supported(path string) bool {
	return markdownExts[strings.ToLower(filepath.Ext(path))]
}
