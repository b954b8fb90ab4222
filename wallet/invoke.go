package wallet

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// BuildFunc builds program instructions for the custodial wallet as signer and fee payer.
type BuildFunc func(signer solana.PublicKey) ([]solana.Instruction, error)

// Invoke signs and submits instructions with the custodial key. It is serialized with Send.
func (c *Custodian) Invoke(ctx context.Context, build BuildFunc) (string, error) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	kp, err := c.EnsureWallet(ctx)
	if err != nil {
		return "", err
	}
	defer kp.Clear()

	instructions, err := build(kp.PublicKey)
	if err != nil {
		return "", fmt.Errorf("failed to build instructions: %w", err)
	}
	if len(instructions) == 0 {
		return "", fmt.Errorf("failed to build instructions: none returned")
	}

	sig, err := c.signAndSubmit(ctx, kp, instructions)
	if err != nil {
		return "", err
	}

	c.logger.Info("program invoked",
		zap.String("signer", kp.PublicKey.String()),
		zap.String("program", instructions[0].ProgramID().String()),
		zap.String("signature", sig.String()))
	return sig.String(), nil
}
