// Package wallet is the custodial wallet: the only holder of the private key and the
// only component that signs transactions.
package wallet

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/strun-app/strun-wallet/internal/client"
	"github.com/strun-app/strun-wallet/internal/store"
)

// Ledger is the subset of the ledger client the custodian needs.
type Ledger interface {
	IsValidAddress(address string) bool
	GetBalanceInSmallestUnit(ctx context.Context, owner solana.PublicKey) (uint64, error)
	LatestBlockhash(ctx context.Context) (solana.Hash, error)
	SubmitAndConfirm(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	RequestAirdrop(ctx context.Context, owner solana.PublicKey, lamports uint64) (solana.Signature, error)
	Confirm(ctx context.Context, sig solana.Signature) error
	GetTransactions(ctx context.Context, owner solana.PublicKey, limit int) ([]client.SolanaTransaction, error)
	Network() client.Network
}

// RateSource provides the SOL/USD display rate.
type RateSource interface {
	GetSOLtoUSDRate(ctx context.Context) (decimal.Decimal, error)
}

// State is the custodian readiness.
type State int

const (
	StateUninitialized State = iota
	StateReady
)

func (s State) String() string {
	if s == StateReady {
		return "ready"
	}
	return "uninitialized"
}

// Options tunes custodian policies.
type Options struct {
	// Cooldown is the minimum time between two outgoing payments. Zero disables it.
	Cooldown time.Duration
	// RegenerateCorrupt replaces an unreadable stored wallet with a new one.
	// Funds on the old address become unreachable.
	//
	// The default (false) departs from the documented regenerate-on-decode-failure
	// behaviour: EnsureWallet fails with WalletCorruptedError and leaves the stored
	// keys in place. The default is pending product sign-off; set true to regenerate.
	RegenerateCorrupt bool
}

// Keypair is the custodial key pair. PublicKey is always derived from PrivateKey.
type Keypair struct {
	PublicKey  solana.PublicKey
	PrivateKey solana.PrivateKey
}

// Clear zeroes the private key.
func (k *Keypair) Clear() {
	if k != nil {
		clear(k.PrivateKey)
	}
}

// Custodian owns the keypair lifecycle.
type Custodian struct {
	store  store.Store
	ledger Ledger
	rates  RateSource
	opts   Options
	logger *zap.Logger

	ensureMu sync.Mutex
	ready    atomic.Bool

	sendMu   sync.Mutex
	lastSend time.Time
	now      func() time.Time
}

// New creates a custodian. rates may be nil.
func New(s store.Store, ledger Ledger, rates RateSource, opts Options, logger *zap.Logger) *Custodian {
	return &Custodian{
		store:  s,
		ledger: ledger,
		rates:  rates,
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
}

// State reports whether a wallet has been resolved at least once.
func (c *Custodian) State() State {
	if c.ready.Load() {
		return StateReady
	}
	return StateUninitialized
}

// Network returns the ledger network the custodian operates on.
func (c *Custodian) Network() client.Network {
	return c.ledger.Network()
}

// EnsureWallet returns the stored keypair, generating and persisting one if none exists.
// The store is re-read on every call. Caller owns the returned private key and should Clear it.
func (c *Custodian) EnsureWallet(ctx context.Context) (*Keypair, error) {
	c.ensureMu.Lock()
	defer c.ensureMu.Unlock()

	kp, _, err := c.ensureLocked(ctx)
	return kp, err
}

// PublicAddress returns the base58 receive address.
func (c *Custodian) PublicAddress(ctx context.Context) (string, error) {
	kp, err := c.EnsureWallet(ctx)
	if err != nil {
		return "", err
	}
	defer kp.Clear()
	return kp.PublicKey.String(), nil
}

func (c *Custodian) ensureLocked(ctx context.Context) (*Keypair, bool, error) {
	kp, err := c.load(ctx)
	switch {
	case err == nil:
		c.ready.Store(true)
		return kp, false, nil
	case errors.Is(err, errNoWallet):
	case IsWalletCorrupted(err) && c.opts.RegenerateCorrupt:
		c.logger.Warn("stored wallet is corrupted, generating a new one; funds on the old address are no longer reachable",
			zap.Error(err))
	default:
		return nil, false, err
	}

	kp, err = c.generate(ctx)
	if err != nil {
		return nil, false, err
	}
	c.ready.Store(true)
	return kp, true, nil
}

func (c *Custodian) load(ctx context.Context) (*Keypair, error) {
	privEncoded, hasPriv, err := c.store.Get(ctx, store.KeyWalletPrivate)
	if err != nil {
		return nil, fmt.Errorf("failed to read wallet private key: %w", err)
	}
	pubEncoded, hasPub, err := c.store.Get(ctx, store.KeyWalletPublic)
	if err != nil {
		return nil, fmt.Errorf("failed to read wallet public key: %w", err)
	}

	if !hasPriv && !hasPub {
		return nil, errNoWallet
	}
	if !hasPriv {
		return nil, &WalletCorruptedError{Reason: "private key missing for address " + pubEncoded}
	}

	kp, err := decodePrivateKey(privEncoded)
	if err != nil {
		return nil, err
	}

	if !hasPub {
		// private half is the truth; restore the public half
		if err := c.store.Set(ctx, store.KeyWalletPublic, kp.PublicKey.String()); err != nil {
			kp.Clear()
			return nil, fmt.Errorf("failed to restore wallet public key: %w", err)
		}
		c.logger.Info("restored missing wallet public key", zap.String("address", kp.PublicKey.String()))
		return kp, nil
	}

	if pubEncoded != kp.PublicKey.String() {
		kp.Clear()
		return nil, &WalletCorruptedError{Reason: "stored address does not match private key"}
	}
	return kp, nil
}

func decodePrivateKey(encoded string) (*Keypair, error) {
	raw, err := base58.Decode(encoded)
	if err != nil {
		return nil, &WalletCorruptedError{Reason: "private key is not base58"}
	}
	if len(raw) != ed25519.PrivateKeySize {
		clear(raw)
		return nil, &WalletCorruptedError{Reason: fmt.Sprintf("private key has %d bytes, want %d", len(raw), ed25519.PrivateKeySize)}
	}

	// recompute the public half from the seed
	derived := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
	if !bytes.Equal(derived, raw) {
		clear(raw)
		clear(derived)
		return nil, &WalletCorruptedError{Reason: "private key does not match its embedded public key"}
	}
	clear(raw)

	priv := solana.PrivateKey(derived)
	return &Keypair{PublicKey: priv.PublicKey(), PrivateKey: priv}, nil
}

// generate writes the private half first: a wallet is ready only once its private key is persisted.
func (c *Custodian) generate(ctx context.Context) (*Keypair, error) {
	priv, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate keypair: %w", err)
	}
	kp := &Keypair{PublicKey: priv.PublicKey(), PrivateKey: priv}

	if err := c.store.Set(ctx, store.KeyWalletPrivate, base58.Encode(priv)); err != nil {
		kp.Clear()
		return nil, fmt.Errorf("failed to persist wallet private key: %w", err)
	}
	if err := c.store.Set(ctx, store.KeyWalletPublic, kp.PublicKey.String()); err != nil {
		kp.Clear()
		return nil, fmt.Errorf("failed to persist wallet public key: %w", err)
	}

	c.logger.Info("generated new wallet",
		zap.String("address", kp.PublicKey.String()),
		zap.String("network", string(c.ledger.Network())))
	return kp, nil
}
