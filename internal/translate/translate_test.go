// ABOUTME: Shared fakes for the translation pipeline tests
// ABOUTME: A scripted translator and helpers to build small Markdown fixtures
package translate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/harper/mdtranslate/internal/document"
	"github.com/harper/mdtranslate/internal/tokenizer"
)

// fakeTranslator upper-cases text unless fail returns an error for it
type fakeTranslator struct {
	mu    sync.Mutex
	calls []string
	fail  func(text string) error
	reply func(text string) string
}

func (f *fakeTranslator) Translate(_ context.Context, text, _ string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()

	if f.fail != nil {
		if err := f.fail(text); err != nil {
			return "", err
		}
	}
	if f.reply != nil {
		return f.reply(text), nil
	}
	return strings.ToUpper(text), nil
}

func (f *fakeTranslator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

var words = tokenizer.Func(func(text string) int { return len(strings.Fields(text)) })

// threeChunks splits into exactly three chunks with wordOptions
const threeChunks = "alpha one\n\nbeta two\n\ngamma three"

func wordOptions() document.Options {
	return document.Options{MaxTokens: 2, Tokenizer: words}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}
