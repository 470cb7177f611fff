package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MaxPreviewBytes is the hard ceiling on text returned by ReadFileText.
const MaxPreviewBytes = 8000

// Files implements read-only introspection and full-overwrite file creation.
type Files struct{}

// CreateFile writes content to path, creating parent directories as needed.
// An existing file is overwritten in full.
func (Files) CreateFile(path, content string) error {
	if parent := filepath.Dir(path); parent != "." && parent != "" {
		if err := os.MkdirAll(parent, 0755); err != nil {
			return fmt.Errorf("create parent directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// ListDir returns a listing of folder, directories first.
func (Files) ListDir(folder string) (string, error) {
	folder = unquote(folder)
	if folder == "" {
		folder = "."
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		return "", fmt.Errorf("folder not found: %s", folder)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir() != entries[j].IsDir() {
			return entries[i].IsDir()
		}
		return strings.ToLower(entries[i].Name()) < strings.ToLower(entries[j].Name())
	})

	abs, err := filepath.Abs(folder)
	if err != nil {
		abs = folder
	}

	if len(entries) == 0 {
		return fmt.Sprintf("(empty) %s", abs), nil
	}

	var sb strings.Builder
	sb.WriteString(abs)
	for _, e := range entries {
		kind := "file"
		if e.IsDir() {
			kind = "dir"
		}
		fmt.Fprintf(&sb, "\n- [%s] %s", kind, e.Name())
	}
	return sb.String(), nil
}

// ReadFileText returns the file's text, truncated to MaxPreviewBytes.
func (Files) ReadFileText(path string) (string, error) {
	path = unquote(path)
	if path == "" {
		return "", fmt.Errorf("empty path")
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}

	text := string(data)
	if len(text) > MaxPreviewBytes {
		text = text[:MaxPreviewBytes] + "\n\n... (truncated)"
	}
	return text, nil
}

// Cwd returns the process working directory.
func (Files) Cwd() (string, error) {
	return os.Getwd()
}

// unquote strips surrounding whitespace and quote characters from a
// user-supplied path argument.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	return s
}
