package download

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirSaveNeverOverwrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	d := NewDir(dir, nil)

	first, err := d.Save("contract.pdf.sig", []byte("one"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "contract.pdf.sig"), first)

	second, err := d.Save("contract.pdf.sig", []byte("two"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "contract.pdf_1.sig"), second)

	third, err := d.Save("contract.pdf.sig", []byte("three"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "contract.pdf_2.sig"), third)

	got, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "one", string(got))

	info, err := os.Stat(second)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestDirConcurrentSavesGetDistinctNames(t *testing.T) {
	dir := t.TempDir()
	d := NewDir(dir, nil)

	const n = 8
	paths := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			path, err := d.Save("alice_private.key", []byte("k"))
			assert.NoError(t, err)
			paths <- path
		}()
	}
	wg.Wait()
	close(paths)

	seen := make(map[string]bool)
	for p := range paths {
		assert.False(t, seen[p], p)
		seen[p] = true
	}
	assert.Len(t, seen, n)
	assert.True(t, seen[filepath.Join(dir, "alice_private.key")])
	assert.True(t, seen[filepath.Join(dir, "alice_private_7.key")])
}

func TestDirSaveSanitizesName(t *testing.T) {
	dir := t.TempDir()
	path, err := NewDir(dir, nil).Save("../escape.key", []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "escape.key"), path)
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	name, err := m.Save("a.sig", []byte("1"))
	require.NoError(t, err)
	assert.Equal(t, "a.sig", name)
	_, _ = m.Save("a.sig", []byte("2"))

	data, ok := m.File("a.sig")
	require.True(t, ok)
	assert.Equal(t, "2", string(data))
	assert.Equal(t, []string{"a.sig"}, m.Names())
}
