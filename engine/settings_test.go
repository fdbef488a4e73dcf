package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings_Valid(t *testing.T) {
	s := DefaultSettings()
	require.NoError(t, s.Validate())
	assert.Equal(t, 5, s.Recall.DefaultTopK())
	assert.Equal(t, 5.0, s.Recall.DefaultLikedThreshold())
	assert.Equal(t, 10, s.Recall.DefaultMaxResults())
}

func TestLoadSettings_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big5rec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
recall:
  top_k: 8
  liked_threshold: 6
  metric: euclidean
cache:
  backend: none
server:
  listen: ":9000"
`), 0o600))

	t.Setenv("BIG5REC_RECALL__MAX_RESULTS", "20")
	t.Setenv("BIG5REC_RECALL__DESCRIPTOR_COLUMNS", "Title, Artist")

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, 8, s.Recall.TopK)
	assert.Equal(t, 6.0, s.Recall.LikedThreshold)
	assert.Equal(t, "euclidean", s.Recall.Metric)
	assert.Equal(t, 20, s.Recall.MaxResults)
	assert.Equal(t, []string{"Title", "Artist"}, s.Recall.DescriptorColumns)
	assert.Equal(t, "none", s.Cache.Backend)
	assert.Equal(t, ":9000", s.Server.Listen)
	// 未覆盖的字段保留默认值
	assert.Equal(t, 5, s.Recall.Neighbors)
	assert.Equal(t, 10*time.Second, s.Server.ReadTimeout)
}

func TestLoadSettings_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("recall:\n  metric: manhattan\n"), 0o600))
	_, err := LoadSettings(path)
	assert.Error(t, err)

	path = filepath.Join(dir, "redis.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  backend: redis\n"), 0o600))
	_, err = LoadSettings(path)
	assert.Error(t, err)
}

func TestLoadSettings_MissingFile(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadSettings_ZeroLikedThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zero.yaml")
	require.NoError(t, os.WriteFile(path, []byte("recall:\n  liked_threshold: 0\n"), 0o600))

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.Recall.LikedThreshold)

	s.Recall.LikedThreshold = -1
	assert.Error(t, s.Validate())
}
