// ABOUTME: Input discovery with ** globs, ignore patterns and list files
// ABOUTME: Results are relative to cwd (absolute patterns stay absolute), unique and sorted
package translate

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/harper/mdtranslate/internal/document"
)

// FindOptions control FindFiles
type FindOptions struct {
	Cwd    string
	Ignore []string
	// List treats the search argument as a file holding one pattern per line
	List bool
}

// FindFiles resolves search into the files to translate
func FindFiles(search string, opts FindOptions) ([]string, error) {
	cwd := opts.Cwd
	if cwd == "" {
		cwd = "."
	}

	var patterns []string
	if opts.List {
		lines, err := readList(resolve(cwd, search))
		if err != nil {
			return nil, err
		}
		patterns = lines
	} else {
		patterns = []string{search}
	}

	var files []string
	for _, pattern := range patterns {
		found, err := glob(cwd, pattern)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			if !document.Supported(f) {
				continue
			}
			ignored, err := isIgnored(f, opts.Ignore)
			if err != nil {
				return nil, err
			}
			if !ignored {
				files = append(files, f)
			}
		}
	}

	slices.Sort(files)
	return slices.Compact(files), nil
}

func glob(cwd, pattern string) ([]string, error) {
	base, rel := cwd, filepath.ToSlash(pattern)
	if filepath.IsAbs(pattern) {
		base, rel = doublestar.SplitPattern(rel)
	}

	matches, err := doublestar.Glob(os.DirFS(base), rel, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	if filepath.IsAbs(pattern) {
		for i, m := range matches {
			matches[i] = filepath.Join(base, filepath.FromSlash(m))
		}
		return matches, nil
	}
	for i, m := range matches {
		matches[i] = filepath.FromSlash(m)
	}
	return matches, nil
}

func isIgnored(file string, ignore []string) (bool, error) {
	slashed := filepath.ToSlash(file)
	for _, pattern := range ignore {
		ok, err := doublestar.Match(pattern, slashed)
		if err != nil {
			return false, fmt.Errorf("ignore pattern %q: %w", pattern, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// readList returns the patterns of a list file, skipping blank lines and # comments
func readList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening list file: %w", err)
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading list file: %w", err)
	}
	return patterns, nil
}

func resolve(cwd, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(cwd, path)
}
