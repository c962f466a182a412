package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoader(t *testing.T) {
	loader, err := NewLoader(4)
	require.NoError(t, err)

	path := writeCSV(t, "1.5,2.5,0\n3.0,4.0,1\n-1.0,0.25,0\n")

	ds, err := loader.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, 2, ds.Dim())
	assert.Equal(t, []float32{1.5, 2.5}, ds.Data[0])
	assert.Equal(t, []int{0, 1, 0}, ds.Labels)

	// Second load of the same path is served from cache.
	again, err := loader.Load(path)
	require.NoError(t, err)
	assert.Same(t, ds, again)
}

func TestLoaderErrors(t *testing.T) {
	loader, err := NewLoader(0)
	require.NoError(t, err)

	_, err = loader.Load(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	_, err = loader.Load(writeCSV(t, "1.0,not-a-label\n"))
	assert.Error(t, err)

	_, err = loader.Load(writeCSV(t, "5\n"))
	assert.Error(t, err)
}
