package tools

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFile(t *testing.T) {
	var f Files

	t.Run("creates parent directories", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "a", "b", "c.txt")

		require.NoError(t, f.CreateFile(path, "content"))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "content", string(data))
	})

	t.Run("overwrites in full", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "f.txt")

		require.NoError(t, f.CreateFile(path, "a much longer original body"))
		require.NoError(t, f.CreateFile(path, "short"))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "short", string(data))
	})
}

func TestListDir(t *testing.T) {
	var f Files
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "zebra.txt"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "apple.txt"), nil, 0644))

	out, err := f.ListDir(dir)
	require.NoError(t, err)

	// Directories first, then files alphabetically
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], dir)
	assert.Equal(t, "- [dir] sub", lines[1])
	assert.Equal(t, "- [file] apple.txt", lines[2])
	assert.Equal(t, "- [file] zebra.txt", lines[3])
}

func TestListDir_Errors(t *testing.T) {
	var f Files

	_, err := f.ListDir("/does/not/exist")
	assert.Error(t, err)
}

func TestListDir_Empty(t *testing.T) {
	var f Files
	dir := t.TempDir()

	out, err := f.ListDir(dir)
	require.NoError(t, err)
	assert.Contains(t, out, "(empty)")
}

func TestReadFileText(t *testing.T) {
	var f Files

	t.Run("reads whole file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "f.txt")
		require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

		out, err := f.ReadFileText(path)
		require.NoError(t, err)
		assert.Equal(t, "hello", out)
	})

	t.Run("truncates long files", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "big.txt")
		require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", MaxPreviewBytes+100)), 0644))

		out, err := f.ReadFileText(path)
		require.NoError(t, err)
		assert.Contains(t, out, "... (truncated)")
		assert.LessOrEqual(t, len(out), MaxPreviewBytes+50)
	})

	t.Run("strips quotes from path", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "q.txt")
		require.NoError(t, os.WriteFile(path, []byte("quoted"), 0644))

		out, err := f.ReadFileText(`"` + path + `"`)
		require.NoError(t, err)
		assert.Equal(t, "quoted", out)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := f.ReadFileText("/no/such/file")
		assert.Error(t, err)
	})

	t.Run("directory rejected", func(t *testing.T) {
		_, err := f.ReadFileText(t.TempDir())
		assert.Error(t, err)
	})
}
