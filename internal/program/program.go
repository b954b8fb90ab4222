// Package program encodes instructions for the on-chain task program.
package program

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// DefaultProgramID is the deployed task program.
const DefaultProgramID = "9qpcky7wTGD3VHMMzVdaG2G2WrEi8SgpmVhhbyzJG8Mf"

const (
	seedTask       = "task"
	seedSubmission = "submission"
)

// Instruction names as declared by the program.
const (
	InstructionCreateTask        = "create_task"
	InstructionSubmitProof       = "submit_proof"
	InstructionVoteSubmission    = "vote_submission"
	InstructionDistributeRewards = "distribute_rewards"
)

// Discriminator returns the 8-byte selector of a global program instruction.
func Discriminator(name string) [8]byte {
	sum := sha256.Sum256([]byte("global:" + name))
	var d [8]byte
	copy(d[:], sum[:8])
	return d
}

// TaskAddress derives the task account owned by creator.
func TaskAddress(programID, creator solana.PublicKey) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindProgramAddress([][]byte{[]byte(seedTask), creator.Bytes()}, programID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("failed to derive task address: %w", err)
	}
	return addr, bump, nil
}

// SubmissionAddress derives the submission account of user for task.
func SubmissionAddress(programID, user, task solana.PublicKey) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindProgramAddress(
		[][]byte{[]byte(seedSubmission), user.Bytes(), task.Bytes()},
		programID,
	)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("failed to derive submission address: %w", err)
	}
	return addr, bump, nil
}

// encode writes the discriminator followed by the Borsh encoding of args.
// A nil args yields the bare discriminator.
func encode(name string, args any) ([]byte, error) {
	d := Discriminator(name)
	buf := bytes.NewBuffer(d[:])
	if args == nil {
		return buf.Bytes(), nil
	}
	if err := bin.NewBorshEncoder(buf).Encode(args); err != nil {
		return nil, fmt.Errorf("failed to encode %s args: %w", name, err)
	}
	return buf.Bytes(), nil
}
