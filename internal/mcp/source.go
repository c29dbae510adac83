// ABOUTME: File access helpers shared by the MCP handlers
// ABOUTME: Bounds how much of a source file a preview may read
package mcp

import (
	"fmt"
	"os"
)

// maxPreviewBytes bounds the size of files previewed through MCP
const maxPreviewBytes = 8 << 20

func readSource(path string) (string, error) {
	st, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("reading source: %w", err)
	}
	if st.Size() > maxPreviewBytes {
		return "", fmt.Errorf("%s is larger than %d bytes", path, maxPreviewBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading source: %w", err)
	}
	return string(data), nil
}
