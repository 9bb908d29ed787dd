package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Seeded(t *testing.T) {
	store := NewConfigStore(map[string]any{"provider.type": "github"}, map[string]any{"workers.size": 2})

	assert.Equal(t, "github", store.GetString("provider.type"))
	assert.Equal(t, 2, store.GetInt("workers.size"))
	assert.Equal(t, []string{"provider.type", "workers.size"}, store.Keys())
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("s", "value"))
	require.NoError(t, store.Set("i64", int64(42)))
	require.NoError(t, store.Set("f", float64(7)))
	require.NoError(t, store.Set("b", true))

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"string", store.GetString("s"), "value"},
		{"string wrong type", store.GetString("b"), ""},
		{"int from int64", store.GetInt("i64"), 42},
		{"int from float64", store.GetInt("f"), 7},
		{"int missing", store.GetInt("missing"), 0},
		{"bool", store.GetBool("b"), true},
		{"bool wrong type", store.GetBool("s"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestConfigStore_Unset(t *testing.T) {
	store := NewConfigStore(map[string]any{"project.id": "p1"})

	require.NoError(t, store.Unset("project.id"))

	_, ok := store.Get("project.id")
	assert.False(t, ok)
	assert.Empty(t, store.Keys())
}

func TestConfigStore_NoOps(t *testing.T) {
	store := NewConfigStore()

	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Empty(t, store.Path())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key.%d", n)
			_ = store.Set(key, n)
			assert.Equal(t, n, store.GetInt(key))
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.Keys(), 50)
}
