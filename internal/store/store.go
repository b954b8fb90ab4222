// Package store provides the persistent key-value store behind the wallet and the session cache.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/strun-app/strun-wallet/internal/crypto"
)

// Store keys used by the application.
const (
	KeyWalletPublic  = "solana_wallet_public"
	KeyWalletPrivate = "solana_wallet_private"
	KeyAuthSession   = "strun.auth.session"
	KeyUser          = "user"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendWAL    = "wal"
)

// ErrClosed is returned by operations on a closed store
var ErrClosed = errors.New("store is closed")

// Store is a string key-value store. A missing key is reported as ok=false, not as an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend  string
	Path     string
	Password []byte        // file backend only
	Params   crypto.Params // file backend only, zero value means crypto.DefaultParams
}

// Open creates the backend named in opts. It is called once at the composition root.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case BackendMemory:
		return NewMemory(), nil
	case BackendFile:
		params := opts.Params
		if params.N == 0 {
			params = crypto.DefaultParams
		}
		return OpenFile(opts.Path, opts.Password, params)
	case BackendWAL:
		return NewWALStore(opts.Path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
