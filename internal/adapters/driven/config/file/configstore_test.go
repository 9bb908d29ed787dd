package file

import (
	"os"
	"path/filepath"
	"sync"
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

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".orgsync", "config.toml"), store.Path())
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("provider.scope", "acme"))
	require.NoError(t, store.Set("workers.size", 8))
	require.NoError(t, store.Set("backend.enabled", true))

	assert.Equal(t, "acme", store.GetString("provider.scope"))
	assert.Equal(t, 8, store.GetInt("workers.size"))
	assert.True(t, store.GetBool("backend.enabled"))

	t.Run("wrong types return zero values", func(t *testing.T) {
		assert.Empty(t, store.GetString("workers.size"))
		assert.Zero(t, store.GetInt("provider.scope"))
		assert.False(t, store.GetBool("provider.scope"))
	})

	t.Run("missing keys", func(t *testing.T) {
		val, ok := store.Get("nonexistent")
		assert.False(t, ok)
		assert.Nil(t, val)
		assert.Empty(t, store.GetString("nonexistent"))
	})
}

func TestConfigStore_GetInt_NumericTypes(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	store.mu.Lock()
	store.data["a"] = int64(9999)
	store.data["b"] = 12.0
	store.mu.Unlock()

	assert.Equal(t, 9999, store.GetInt("a"))
	assert.Equal(t, 12, store.GetInt("b"))
}

func TestConfigStore_Persistence_NestedTables(t *testing.T) {
	tmpDir := t.TempDir()

	store1, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store1.Set("provider.type", "github"))
	require.NoError(t, store1.Set("provider.scope", "acme"))
	require.NoError(t, store1.Set("requests.bulk_timeout_seconds", 90))

	content, err := os.ReadFile(store1.Path())
	require.NoError(t, err)
	assert.Contains(t, string(content), "[provider]")
	assert.Contains(t, string(content), "[requests]")

	store2, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "github", store2.GetString("provider.type"))
	assert.Equal(t, "acme", store2.GetString("provider.scope"))
	assert.Equal(t, 90, store2.GetInt("requests.bulk_timeout_seconds"))
}

func TestConfigStore_LoadsHandWrittenFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[provider]
type = "azure_devops"
scope = "contoso/web"

[backend]
kind = "sqlite"
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "azure_devops", store.GetString("provider.type"))
	assert.Equal(t, "contoso/web", store.GetString("provider.scope"))
	assert.Equal(t, []string{"backend.kind", "provider.scope", "provider.type"}, store.Keys())
}

func TestConfigStore_Unset(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("project.id", "proj-1"))
	require.NoError(t, store.Unset("project.id"))
	require.NoError(t, store.Unset("never.set"))

	_, ok := store.Get("project.id")
	assert.False(t, ok)

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	_, ok = reloaded.Get("project.id")
	assert.False(t, ok)
}

func TestNestMap(t *testing.T) {
	nested := nestMap(map[string]any{
		"provider.type":  "github",
		"provider.scope": "acme",
		"flat":           1,
		"flat.child":     2,
	})

	provider, ok := nested["provider"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "github", provider["type"])
	assert.Equal(t, 1, nested["flat"])
	assert.Equal(t, 2, nested["flat.child"], "conflicting prefix stays flat")
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("provider.token", "secret-token"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("# Just a comment\n\n"), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Empty(t, store.Keys())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := "workers.key" + string(rune('0'+id))
			_ = store.Set(key, id)
			_ = store.GetInt(key)
			_ = store.Keys()
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.Keys(), 10)
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("this is not valid TOML {{{[["), 0600))

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_Save_WriteFileError(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("provider.type", "github"))

	// Replace the file with a directory to cause write error
	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	assert.Error(t, store.Set("provider.scope", "acme"))
}

func TestConfigStore_SetWithUnmarshallableValue(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	// Channels cannot be marshaled to TOML
	assert.Error(t, store.Set("channel", make(chan int)))
}
