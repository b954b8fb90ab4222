package program

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/strun-app/strun-wallet/wallet"
)

// Invoker signs and submits instructions with the custodial wallet.
type Invoker interface {
	Invoke(ctx context.Context, build wallet.BuildFunc) (string, error)
}

// Client sends task program instructions signed by the custodial wallet.
type Client struct {
	programID solana.PublicKey
	invoker   Invoker
	logger    *zap.Logger
}

// NewClient creates a Client. An empty programID selects DefaultProgramID.
func NewClient(programID string, invoker Invoker, logger *zap.Logger) (*Client, error) {
	if programID == "" {
		programID = DefaultProgramID
	}
	id, err := solana.PublicKeyFromBase58(programID)
	if err != nil {
		return nil, fmt.Errorf("invalid program id %q: %w", programID, err)
	}
	return &Client{programID: id, invoker: invoker, logger: logger}, nil
}

func (c *Client) ProgramID() solana.PublicKey {
	return c.programID
}

// CreateTask creates the signer's task account and returns the signature and task address.
func (c *Client) CreateTask(ctx context.Context, args CreateTaskArgs) (string, string, error) {
	var task solana.PublicKey
	sig, err := c.invoker.Invoke(ctx, func(signer solana.PublicKey) ([]solana.Instruction, error) {
		ix, addr, err := CreateTask(c.programID, signer, args)
		if err != nil {
			return nil, err
		}
		task = addr
		return []solana.Instruction{ix}, nil
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to create task: %w", err)
	}

	c.logger.Info("task created on chain", zap.String("task", task.String()), zap.String("signature", sig))
	return sig, task.String(), nil
}

// SubmitProof records a proof URL for the signer against task.
func (c *Client) SubmitProof(ctx context.Context, task, proofURL string) (string, string, error) {
	taskKey, err := solana.PublicKeyFromBase58(task)
	if err != nil {
		return "", "", fmt.Errorf("invalid task address %q: %w", task, err)
	}

	var submission solana.PublicKey
	sig, err := c.invoker.Invoke(ctx, func(signer solana.PublicKey) ([]solana.Instruction, error) {
		ix, addr, err := SubmitProof(c.programID, signer, taskKey, proofURL)
		if err != nil {
			return nil, err
		}
		submission = addr
		return []solana.Instruction{ix}, nil
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to submit proof: %w", err)
	}

	c.logger.Info("proof submitted on chain", zap.String("submission", submission.String()), zap.String("signature", sig))
	return sig, submission.String(), nil
}

// VoteSubmission casts the signer's vote for a submission.
func (c *Client) VoteSubmission(ctx context.Context, task, submission string) (string, error) {
	keys, err := parseKeys(task, submission)
	if err != nil {
		return "", err
	}

	sig, err := c.invoker.Invoke(ctx, func(signer solana.PublicKey) ([]solana.Instruction, error) {
		ix, err := VoteSubmission(c.programID, signer, keys[0], keys[1])
		if err != nil {
			return nil, err
		}
		return []solana.Instruction{ix}, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to vote: %w", err)
	}
	return sig, nil
}

// DistributeRewards pays a submission's receiver out of the task vault.
func (c *Client) DistributeRewards(ctx context.Context, task, submission, receiver, vault string) (string, error) {
	keys, err := parseKeys(task, submission, receiver, vault)
	if err != nil {
		return "", err
	}

	sig, err := c.invoker.Invoke(ctx, func(solana.PublicKey) ([]solana.Instruction, error) {
		ix, err := DistributeRewards(c.programID, keys[0], keys[1], keys[2], keys[3])
		if err != nil {
			return nil, err
		}
		return []solana.Instruction{ix}, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to distribute rewards: %w", err)
	}
	return sig, nil
}

func parseKeys(addresses ...string) ([]solana.PublicKey, error) {
	keys := make([]solana.PublicKey, len(addresses))
	for i, a := range addresses {
		k, err := solana.PublicKeyFromBase58(a)
		if err != nil {
			return nil, fmt.Errorf("invalid address %q: %w", a, err)
		}
		keys[i] = k
	}
	return keys, nil
}
