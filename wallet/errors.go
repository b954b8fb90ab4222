package wallet

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount is returned for non-positive amounts or amounts finer than one lamport.
	ErrInvalidAmount = errors.New("amount must be a positive SOL value with at most 9 decimal places")
	// ErrFaucetUnavailable is returned when test funds are requested on a production network.
	ErrFaucetUnavailable = errors.New("test funds are not available on a production network")

	errNoWallet = errors.New("no wallet stored")
)

// InvalidAddressError means the recipient is not a well-formed ledger address
type InvalidAddressError struct {
	Address string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid Solana address %q", e.Address)
}

// InsufficientFundsError means the transfer exceeds the balance fetched just before sending
type InsufficientFundsError struct {
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient SOL balance: requested %s, available %s", e.Requested, e.Available)
}

// WalletCorruptedError means key material is stored but cannot be used.
// The address may still hold funds, so no new wallet is generated over it.
type WalletCorruptedError struct {
	Reason string
}

func (e *WalletCorruptedError) Error() string {
	return "stored wallet is corrupted: " + e.Reason
}

// WalletExistsError is returned by Generate when a wallet is already stored
type WalletExistsError struct {
	Address string
}

func (e *WalletExistsError) Error() string {
	return "wallet already exists: " + e.Address
}

// CooldownError means a previous payment happened too recently
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("cooldown active, please wait %v", e.Remaining.Round(time.Second))
}

// IsInvalidAddress checks if err is InvalidAddressError
func IsInvalidAddress(err error) bool {
	var target *InvalidAddressError
	return errors.As(err, &target)
}

// IsInsufficientFunds checks if err is InsufficientFundsError
func IsInsufficientFunds(err error) bool {
	var target *InsufficientFundsError
	return errors.As(err, &target)
}

// IsWalletCorrupted checks if err is WalletCorruptedError
func IsWalletCorrupted(err error) bool {
	var target *WalletCorruptedError
	return errors.As(err, &target)
}

// IsWalletExists checks if err is WalletExistsError
func IsWalletExists(err error) bool {
	var target *WalletExistsError
	return errors.As(err, &target)
}

// IsCooldown checks if err is CooldownError
func IsCooldown(err error) bool {
	var target *CooldownError
	return errors.As(err, &target)
}
