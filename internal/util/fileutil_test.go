package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicWriteOverwrites(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "nested", "out.txt")

	n, err := AtomicWrite(dst, strings.NewReader("first version"), 0644)
	require.NoError(t, err)
	assert.EqualValues(t, 13, n)

	n, err = AtomicWrite(dst, strings.NewReader("second"), 0644)
	require.NoError(t, err)
	assert.EqualValues(t, 6, n)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	_, err = os.Stat(dst + tmpSuffix)
	assert.True(t, os.IsNotExist(err))
}

func TestCopyFileMissingSource(t *testing.T) {
	dir := t.TempDir()

	_, err := CopyFile(filepath.Join(dir, "missing"), filepath.Join(dir, "out"))
	assert.Error(t, err)
}

func TestJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v.json")

	var empty map[string]int
	found, err := ReadJSON(path, &empty)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, WriteJSON(path, map[string]int{"a": 1}))

	var got map[string]int
	found, err = ReadJSON(path, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, map[string]int{"a": 1}, got)
}
