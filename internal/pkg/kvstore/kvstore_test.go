package kvstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeUnderTest lets the same behavioral suite run against every implementation.
func storeUnderTest(t *testing.T, name string) Store {
	t.Helper()

	switch name {
	case "memory":
		return NewMemory()
	case "file":
		f, err := OpenFile(filepath.Join(t.TempDir(), "kv.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = f.Close() })
		return f
	default:
		t.Fatalf("unknown store %q", name)
		return nil
	}
}

func TestStore_Behavior(t *testing.T) {
	for _, name := range []string{"memory", "file"} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := storeUnderTest(t, name)

			// Missing key is reported as absent, not an error.
			_, ok, err := s.Get(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Set(ctx, "cart", `{"items":[]}`))

			v, ok, err := s.Get(ctx, "cart")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `{"items":[]}`, v)

			// Set overwrites.
			require.NoError(t, s.Set(ctx, "cart", `{"items":[1]}`))
			v, _, err = s.Get(ctx, "cart")
			require.NoError(t, err)
			assert.Equal(t, `{"items":[1]}`, v)

			// Delete is idempotent.
			require.NoError(t, s.Delete(ctx, "cart"))
			require.NoError(t, s.Delete(ctx, "cart"))

			_, ok, err = s.Get(ctx, "cart")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestFile_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	f, err := OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, f.Set(ctx, "token", "abc123"))
	require.NoError(t, f.Close())

	f, err = OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	v, ok, err := f.Get(ctx, "token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc123", v)
}
