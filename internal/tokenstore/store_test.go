package tokenstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenBackend struct{}

func (brokenBackend) Load(context.Context, string) (string, error) {
	return "", errors.New("disk on fire")
}
func (brokenBackend) Save(context.Context, string, string) error { return errors.New("disk on fire") }
func (brokenBackend) Delete(context.Context, ...string) error    { return errors.New("disk on fire") }

func TestStoreSetGetClear(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	store := New(backend, nil)

	_, ok := store.Token(ctx)
	assert.False(t, ok, "empty store has no token")

	require.NoError(t, store.SetToken(ctx, "abc"))
	token, ok := store.Token(ctx)
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	require.NoError(t, store.SetValue(ctx, KeyUser, `{"id":"1"}`))
	require.NoError(t, store.SetToken(ctx, ""))
	_, ok = store.Token(ctx)
	assert.False(t, ok, "SetToken(\"\") clears")
	_, ok = store.Value(ctx, KeyUser)
	assert.False(t, ok, "clearing the token drops the stored user")
	assert.Equal(t, 0, backend.Len())
}

func TestStoreReadsPersistedTokenOnStart(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	require.NoError(t, backend.Save(ctx, KeyAccessToken, "persisted"))

	token, ok := New(backend, nil).Token(ctx)
	assert.True(t, ok)
	assert.Equal(t, "persisted", token)
}

func TestStoreDegradesWhenStorageUnavailable(t *testing.T) {
	ctx := context.Background()
	store := New(brokenBackend{}, nil)

	_, ok := store.Token(ctx)
	assert.False(t, ok)

	err := store.SetToken(ctx, "abc")
	assert.Error(t, err)
	token, ok := store.Token(ctx)
	assert.True(t, ok, "in-memory credential survives a failed write")
	assert.Equal(t, "abc", token)
}

func TestFileBackendSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kola", "credentials.yaml")

	first := New(NewFileBackend(path), nil)
	require.NoError(t, first.SetToken(ctx, "abc"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second := New(NewFileBackend(path), nil)
	token, ok := second.Token(ctx)
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	require.NoError(t, second.Clear(ctx))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "clearing the last key removes the file")
}

func TestFileBackendCorruptFileIsAbsent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml: ["), 0o600))

	_, ok := New(NewFileBackend(path), nil).Token(ctx)
	assert.False(t, ok)
}
