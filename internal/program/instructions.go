package program

import (
	"errors"

	"github.com/gagliardetto/solana-go"
)

var ErrEmptyTitle = errors.New("task title is required")

// CreateTaskArgs are the create_task arguments in declaration order.
type CreateTaskArgs struct {
	Title         string
	Description   string
	MaxUsers      uint32
	RewardPerUser uint64 // lamports
}

type submitProofArgs struct {
	ProofURL string
}

// CreateTask builds create_task. The task account is derived from the creator.
func CreateTask(programID, creator solana.PublicKey, args CreateTaskArgs) (solana.Instruction, solana.PublicKey, error) {
	if args.Title == "" {
		return nil, solana.PublicKey{}, ErrEmptyTitle
	}
	task, _, err := TaskAddress(programID, creator)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	data, err := encode(InstructionCreateTask, args)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}

	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(creator, true, true),
		solana.NewAccountMeta(task, true, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}
	return solana.NewInstruction(programID, accounts, data), task, nil
}

// SubmitProof builds submit_proof for user against task.
func SubmitProof(programID, user, task solana.PublicKey, proofURL string) (solana.Instruction, solana.PublicKey, error) {
	submission, _, err := SubmissionAddress(programID, user, task)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	data, err := encode(InstructionSubmitProof, submitProofArgs{ProofURL: proofURL})
	if err != nil {
		return nil, solana.PublicKey{}, err
	}

	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(user, true, true),
		solana.NewAccountMeta(task, true, false),
		solana.NewAccountMeta(submission, true, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}
	return solana.NewInstruction(programID, accounts, data), submission, nil
}

// VoteSubmission builds vote_submission. It takes no arguments.
func VoteSubmission(programID, voter, task, submission solana.PublicKey) (solana.Instruction, error) {
	data, err := encode(InstructionVoteSubmission, nil)
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(voter, true, true),
		solana.NewAccountMeta(task, true, false),
		solana.NewAccountMeta(submission, true, false),
	}
	return solana.NewInstruction(programID, accounts, data), nil
}

// DistributeRewards builds distribute_rewards. Only the task creator may send it;
// the creator signs as fee payer and is not listed among the accounts.
func DistributeRewards(programID, task, submission, receiver, vault solana.PublicKey) (solana.Instruction, error) {
	data, err := encode(InstructionDistributeRewards, nil)
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(task, true, false),
		solana.NewAccountMeta(vault, true, false),
		solana.NewAccountMeta(receiver, true, false),
		solana.NewAccountMeta(submission, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}
	return solana.NewInstruction(programID, accounts, data), nil
}
