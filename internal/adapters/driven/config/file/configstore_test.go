package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	err = store.Set("test_key", "test_value")
	require.NoError(t, err)

	val, ok := store.Get("test_key")
	assert.True(t, ok)
	assert.Equal(t, "test_value", val)
}

func TestConfigStore_GetTyped(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("str", "hello"))
	require.NoError(t, store.Set("num", 42))
	require.NoError(t, store.Set("flt", 0.35))
	require.NoError(t, store.Set("flag", true))
	require.NoError(t, store.Set("list", []string{"a", "b"}))

	assert.Equal(t, "hello", store.GetString("str"))
	assert.Equal(t, 42, store.GetInt("num"))
	assert.InDelta(t, 0.35, store.GetFloat("flt"), 1e-9)
	assert.True(t, store.GetBool("flag"))
	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("list"))
}

func TestConfigStore_GetFloat_FromInt(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	// TOML numbers without a fractional part come back as int64
	require.NoError(t, store.Set("whole", 2))
	require.NoError(t, store.Load())

	assert.InDelta(t, 2.0, store.GetFloat("whole"), 1e-9)
}

func TestConfigStore_MissingKeys(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	_, ok := store.Get("absent")
	assert.False(t, ok)
	assert.Empty(t, store.GetString("absent"))
	assert.Zero(t, store.GetInt("absent"))
	assert.Zero(t, store.GetFloat("absent"))
	assert.False(t, store.GetBool("absent"))
	assert.Nil(t, store.GetStringSlice("absent"))
}

func TestConfigStore_PersistsAcrossLoads(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("kept", "value"))

	reopened, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "value", reopened.GetString("kept"))
}

func TestConfigStore_FlattensNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")
	content := "[retrieval]\ntop_k = 8\nmin_score = 0.5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, 8, store.GetInt("retrieval.top_k"))
	assert.InDelta(t, 0.5, store.GetFloat("retrieval.min_score"), 1e-9)
}

func TestSettings_Defaults(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	s := NewSettings(store)

	assert.Equal(t, DefaultChunkSize, s.ChunkSize())
	assert.Equal(t, DefaultChunkOverlap, s.ChunkOverlap())
	assert.Equal(t, DefaultTopK, s.TopK())
	assert.InDelta(t, DefaultMinScore, s.MinScore(), 1e-9)
	assert.Equal(t, DefaultContextBudget, s.ContextBudget())
	assert.InDelta(t, DefaultConfidenceFloor, s.ConfidenceFloor(), 1e-9)
	assert.True(t, s.StrictCitations())
	assert.True(t, s.RewriteQuery())
	assert.Equal(t, DefaultEmbeddingProvider, s.EmbeddingProvider())
	assert.Equal(t, DefaultLLMMaxTokens, s.LLMMaxTokens())
	assert.InDelta(t, DefaultLLMTemperature, s.LLMTemperature(), 1e-9)
}

func TestSettings_Overrides(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set(KeyTopK, 10))
	require.NoError(t, store.Set(KeyMinScore, 0.6))
	require.NoError(t, store.Set(KeyStrictCitations, false))
	require.NoError(t, store.Set(KeyEmbeddingProvider, "ollama"))

	s := NewSettings(store)

	assert.Equal(t, 10, s.TopK())
	assert.InDelta(t, 0.6, s.MinScore(), 1e-9)
	assert.False(t, s.StrictCitations())
	assert.Equal(t, "ollama", s.EmbeddingProvider())
}
