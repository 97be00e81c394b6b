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
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_NestedDirectory(t *testing.T) {
	nestedPath := filepath.Join(t.TempDir(), "nested", "deep")

	_, err := NewConfigStore(nestedPath)
	require.NoError(t, err)

	info, err := os.Stat(nestedPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_CorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("this is not valid TOML {{{[["), 0600))

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_ReadsNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[ftp]
host = "ftp.supplier.example"
port = 2121
timeout = "45s"

[catalog]
requests_per_second = 4
api_version = "2025-01"

[scheduler]
enabled = true

[scheduler.inventory_sync]
interval = "30m"
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "ftp.supplier.example", store.GetString("ftp.host"))
	assert.Equal(t, 2121, store.GetInt("ftp.port"))
	assert.Equal(t, "45s", store.GetString("ftp.timeout"))
	assert.Equal(t, 4.0, store.GetFloat("catalog.requests_per_second"))
	assert.True(t, store.GetBool("scheduler.enabled"))
	assert.Equal(t, "30m", store.GetString("scheduler.inventory_sync.interval"))
}

func TestConfigStore_TypedGettersMismatch(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("ftp.host", "x"))
	require.NoError(t, store.Set("ftp.port", int64(21)))

	assert.Equal(t, 0, store.GetInt("ftp.host"))
	assert.False(t, store.GetBool("ftp.host"))
	assert.Equal(t, "", store.GetString("ftp.port"))
	assert.Equal(t, 21.0, store.GetFloat("ftp.port"))
	assert.Equal(t, 0.0, store.GetFloat("missing"))
	assert.Nil(t, store.GetStringSlice("ftp.host"))

	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_SaveReload_WritesTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	values := map[string]any{
		"ftp.host":                          "ftp.supplier.example",
		"ftp.port":                          int64(21),
		"catalog.requests_per_second":       2.5,
		"scheduler.enabled":                 true,
		"scheduler.zero_out.enabled":        false,
		"locations.sweden.name":             "Fjernlager - Leveres innen 4-6 dager",
		"feed.separator":                    ";",
		"scheduler.inventory_sync.interval": "1h",
	}
	for k, v := range values {
		require.NoError(t, store.Set(k, v))
	}

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[ftp]")
	assert.NotContains(t, string(raw), `"ftp.host"`)

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "ftp.supplier.example", reloaded.GetString("ftp.host"))
	assert.Equal(t, 21, reloaded.GetInt("ftp.port"))
	assert.InDelta(t, 2.5, reloaded.GetFloat("catalog.requests_per_second"), 0.0001)
	assert.True(t, reloaded.GetBool("scheduler.enabled"))
	assert.Equal(t, "1h", reloaded.GetString("scheduler.inventory_sync.interval"))
	assert.Equal(t, "Fjernlager - Leveres innen 4-6 dager", reloaded.GetString("locations.sweden.name"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("ftp.password", "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_SetFailureRollsBack(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	err = store.Set("channel", make(chan int))
	assert.Error(t, err)

	_, ok := store.Get("channel")
	assert.False(t, ok)
}

func TestConfigStore_Load_ReadFileError(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("ftp.host", "x"))

	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	assert.Error(t, store.Load())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("logging.sample_every", int64(n))
			_ = store.GetInt("logging.sample_every")
		}(i)
	}
	wg.Wait()

	assert.GreaterOrEqual(t, store.GetInt("logging.sample_every"), 0)
}

func TestUnflattenMap(t *testing.T) {
	got := unflattenMap(map[string]any{
		"a.b.c": 1,
		"a.d":   2,
		"e":     3,
		"e.f":   4,
	})

	assert.Equal(t, map[string]any{
		"a":   map[string]any{"b": map[string]any{"c": 1}, "d": 2},
		"e":   3,
		"e.f": 4,
	}, got)

	assert.Equal(t, map[string]any{"a.b": 1, "a.c": 2, "x": 5},
		flattenMap(map[string]any{"a": map[string]any{"b": 1, "c": 2}, "x": 5}, ""))
}
