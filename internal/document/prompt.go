// ABOUTME: System prompt templates rendered with text/template
// ABOUTME: Templates are looked up by name in a list of directories, with a built-in default
package document

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// DefaultTemplate is used when no template file is configured
const DefaultTemplate = `You are a professional technical translator.
Translate the Markdown document provided by the user into {{.Language}}.
Keep the Markdown structure, code blocks, links, HTML tags and front matter keys unchanged.
Reply with the translated document only.`

// ParseTemplate compiles a prompt template
func ParseTemplate(name, text string) (*template.Template, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}
	return tmpl, nil
}

// LoadTemplate finds name in dirs (in order) and compiles it.
// An empty name returns the built-in default template.
func LoadTemplate(name string, dirs ...string) (*template.Template, error) {
	if name == "" {
		return ParseTemplate("default", DefaultTemplate)
	}

	candidates := []string{name}
	if !filepath.IsAbs(name) {
		candidates = candidates[:0]
		for _, dir := range dirs {
			candidates = append(candidates, filepath.Join(dir, name))
		}
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading template: %w", err)
		}
		return ParseTemplate(filepath.Base(path), string(data))
	}

	return nil, fmt.Errorf("template %s not found in: %s", name, strings.Join(candidates, ", "))
}

func renderPrompt(tmpl *template.Template, doc Document) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Language    string
		Source      string
		Destination string
	}{doc.Language, doc.Source, doc.Destination}

	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
