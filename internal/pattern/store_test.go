package pattern

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreBootstrap(t *testing.T) {
	file := filepath.Join(t.TempDir(), "url_patterns.json")
	store := NewStore(file)

	require.NoError(t, store.Load())

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	persisted := map[string][]string{}
	require.NoError(t, json.Unmarshal(data, &persisted))
	assert.Equal(t, store.Patterns("YouTube"), persisted["YouTube"])
	assert.Len(t, persisted, len(store.Services()))
}

func TestStoreLoadMerge(t *testing.T) {
	file := filepath.Join(t.TempDir(), "url_patterns.json")
	custom := `^https?://youtu\.be/custom/[\w-]+$`
	seed := map[string][]string{
		"YouTube": {
			custom,
			`^https?://youtu\.be/[\w-]{11}(?:\?\S*)?$`, // already built in, must not duplicate
		},
		"NotAService": {`^https?://nope\.example/.*$`},
	}
	data, err := json.Marshal(seed)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(file, data, 0o644))

	store := NewStore(file)
	builtin := len(store.Patterns("YouTube"))
	require.NoError(t, store.Load())

	patterns := store.Patterns("YouTube")
	assert.Len(t, patterns, builtin+1)
	assert.Equal(t, custom, patterns[len(patterns)-1])
	assert.False(t, store.Has("NotAService"))
}

func TestStoreLoadBadFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "url_patterns.json")
	require.NoError(t, os.WriteFile(file, []byte("{not json"), 0o644))

	store := NewStore(file)
	before := store.Patterns("YouTube")
	require.Error(t, store.Load())
	assert.Equal(t, before, store.Patterns("YouTube"))
}

func TestStoreRegister(t *testing.T) {
	file := filepath.Join(t.TempDir(), "url_patterns.json")
	store := NewStore(file)

	pat := `^https?://rutube\.ru/shorts/[\w-]+$`
	require.NoError(t, store.Register("RuTube", pat))
	patterns := store.Patterns("RuTube")
	assert.Equal(t, pat, patterns[len(patterns)-1])

	// register persists the store
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "shorts")

	err = store.Register("RuTube", pat)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicatePattern))

	err = store.Register("NotAService", pat)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownService))

	require.Error(t, store.Register("RuTube", `([`))
}
