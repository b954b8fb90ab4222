package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/strun-app/strun-wallet/internal/crypto"
)

var testParams = crypto.Params{N: 1 << 10, R: 8, P: 1}

func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()

	_, ok, err := s.Get(ctx, KeyWalletPublic)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, KeyWalletPublic, "pub"))
	require.NoError(t, s.Set(ctx, KeyWalletPrivate, "priv"))
	require.NoError(t, s.Set(ctx, KeyWalletPublic, "pub2"))

	v, ok, err := s.Get(ctx, KeyWalletPublic)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "pub2", v)

	require.NoError(t, s.Remove(ctx, KeyWalletPrivate))
	require.NoError(t, s.Remove(ctx, "never-set"))

	_, ok, err = s.Get(ctx, KeyWalletPrivate)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory(t *testing.T) {
	s := NewMemory()
	exerciseStore(t, s)

	require.NoError(t, s.Close())
	_, _, err := s.Get(context.Background(), KeyWalletPublic)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.store")

	s, err := OpenFile(path, []byte("dev"), testParams)
	require.NoError(t, err)
	exerciseStore(t, s)
	require.NoError(t, s.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "pub2")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened, err := OpenFile(path, []byte("dev"), testParams)
	require.NoError(t, err)
	v, ok, err := reopened.Get(context.Background(), KeyWalletPublic)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "pub2", v)

	_, err = OpenFile(path, []byte("wrong"), testParams)
	assert.ErrorIs(t, err, crypto.ErrInvalidPassword)
}

func TestFileRekey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.store")
	ctx := context.Background()

	s, err := OpenFile(path, []byte("old"), testParams)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, KeyWalletPrivate, "secret"))
	require.NoError(t, s.Rekey([]byte("new"), testParams))
	require.NoError(t, s.Close())

	_, err = OpenFile(path, []byte("old"), testParams)
	assert.ErrorIs(t, err, crypto.ErrInvalidPassword)

	reopened, err := OpenFile(path, []byte("new"), testParams)
	require.NoError(t, err)
	v, ok, err := reopened.Get(ctx, KeyWalletPrivate)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "secret", v)
}

func TestWALStore(t *testing.T) {
	dir := t.TempDir()

	s, err := NewWALStore(dir)
	require.NoError(t, err)
	exerciseStore(t, s)
	require.NoError(t, s.Close())

	reopened, err := NewWALStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	v, ok, err := reopened.Get(context.Background(), KeyWalletPublic)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "pub2", v)

	_, ok, err = reopened.Get(context.Background(), KeyWalletPrivate)
	require.NoError(t, err)
	assert.False(t, ok)
}

type fakeWALReader struct {
	records map[uint64][2]string
	last    uint64
	broken  uint64
}

func (f fakeWALReader) CurrentIndex() uint64 { return f.last }

func (f fakeWALReader) Get(idx uint64) (string, []byte, error) {
	if idx == f.broken {
		return "", nil, errors.New("segment checksum mismatch")
	}
	r := f.records[idx]
	return r[0], []byte(r[1]), nil
}

func TestReplayAppliesTombstones(t *testing.T) {
	r := fakeWALReader{
		last: 3,
		records: map[uint64][2]string{
			1: {walSetPrefix + KeyWalletPublic, "pub"},
			2: {walSetPrefix + KeyUser, "{}"},
			3: {walRemovePrefix + KeyUser, ""},
		},
	}
	data := make(map[string]string)
	require.NoError(t, replay(r, data))
	assert.Equal(t, map[string]string{KeyWalletPublic: "pub"}, data)
}

func TestReplayFailsOnUnreadableRecord(t *testing.T) {
	r := fakeWALReader{
		last:   2,
		broken: 2,
		records: map[uint64][2]string{
			1: {walSetPrefix + KeyWalletPublic, "pub"},
		},
	}
	err := replay(r, make(map[string]string))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 2")
	assert.Contains(t, err.Error(), "checksum mismatch")
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(Options{Backend: "keychain"})
	assert.Error(t, err)

	s, err := Open(Options{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk gone")
}
func (failingStore) Set(context.Context, string, string) error { return errors.New("disk gone") }
func (failingStore) Remove(context.Context, string) error      { return errors.New("disk gone") }
func (failingStore) Close() error                              { return nil }

func TestLenientSwallowsFailures(t *testing.T) {
	l := NewLenient(failingStore{}, zap.NewNop())
	ctx := context.Background()

	v, ok := l.Get(ctx, KeyUser)
	assert.False(t, ok)
	assert.Empty(t, v)

	assert.NotPanics(t, func() {
		l.Set(ctx, KeyUser, "{}")
		l.Remove(ctx, KeyUser)
	})
}
