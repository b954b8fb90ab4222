package client

import (
	"errors"
	"fmt"
	"time"
)

// ErrNetworkMismatch is returned when the RPC endpoint serves a different cluster than configured
var ErrNetworkMismatch = errors.New("rpc endpoint serves a different network")

// TransactionFailedError means the ledger rejected the transaction, or the submission
// failed at the RPC layer. The transfer may still have been recorded when Signature is set;
// check balance/history before resubmitting.
type TransactionFailedError struct {
	Signature string
	Reason    string
	Err       error
}

func (e *TransactionFailedError) Error() string {
	msg := "transaction failed"
	if e.Signature != "" {
		msg += " (" + e.Signature + ")"
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TransactionFailedError) Unwrap() error {
	return e.Err
}

// ConfirmationTimeoutError means the transaction was submitted but no confirmation
// arrived within the bounded wait. The outcome is unknown.
type ConfirmationTimeoutError struct {
	Signature string
	Waited    time.Duration
	Err       error
}

func (e *ConfirmationTimeoutError) Error() string {
	return fmt.Sprintf("transaction %s not confirmed after %s", e.Signature, e.Waited.Round(time.Millisecond))
}

func (e *ConfirmationTimeoutError) Unwrap() error {
	return e.Err
}

// IsTransactionFailed checks if err is a TransactionFailedError
func IsTransactionFailed(err error) bool {
	var target *TransactionFailedError
	return errors.As(err, &target)
}

// IsConfirmationTimeout checks if err is a ConfirmationTimeoutError
func IsConfirmationTimeout(err error) bool {
	var target *ConfirmationTimeoutError
	return errors.As(err, &target)
}
