package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/strun-app/strun-wallet/internal/app"
	"github.com/strun-app/strun-wallet/internal/common"
	"github.com/strun-app/strun-wallet/internal/model"
	"github.com/strun-app/strun-wallet/internal/program"
)

var (
	taskCategory    string
	taskStatus      string
	taskMaxUsers    uint32
	taskReward      string
	taskDescription string
	leaderboardSize int
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Browse and work on tasks",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			tasks, err := a.Backend.Tasks.List(cmd.Context(), model.TaskFilter{Category: taskCategory, Status: taskStatus})
			if err != nil {
				return err
			}
			return printJSON(tasks)
		})
	},
}

var tasksAcceptCmd = &cobra.Command{
	Use:   "accept <task-id>",
	Short: "Accept a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			msg, err := a.Backend.Tasks.Accept(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(msg)
		})
	},
}

var tasksChainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Send task program instructions signed by the wallet",
}

var tasksChainCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create the wallet's task account on chain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reward, err := decimal.NewFromString(taskReward)
		if err != nil {
			return fmt.Errorf("invalid --reward: %w", err)
		}
		lamports, err := common.SOLToLamports(reward)
		if err != nil {
			return fmt.Errorf("invalid --reward: %w", err)
		}

		return withApp(func(a *app.App) error {
			sig, task, err := a.Program.CreateTask(cmd.Context(), program.CreateTaskArgs{
				Title:         args[0],
				Description:   taskDescription,
				MaxUsers:      taskMaxUsers,
				RewardPerUser: lamports,
			})
			if err != nil {
				return err
			}
			fmt.Printf("task %s\nsignature %s\n", task, sig)
			return nil
		})
	},
}

var tasksChainSubmitCmd = &cobra.Command{
	Use:   "submit <task-address> <proof-url>",
	Short: "Record a proof for a task on chain",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			sig, submission, err := a.Program.SubmitProof(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("submission %s\nsignature %s\n", submission, sig)
			return nil
		})
	},
}

var tasksChainVoteCmd = &cobra.Command{
	Use:   "vote <task-address> <submission-address>",
	Short: "Vote for a submission on chain",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			sig, err := a.Program.VoteSubmission(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Println(sig)
			return nil
		})
	},
}

var tasksChainDistributeCmd = &cobra.Command{
	Use:   "distribute <task-address> <submission-address> <receiver> <vault>",
	Short: "Pay a submission out of the task vault",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			sig, err := a.Program.DistributeRewards(cmd.Context(), args[0], args[1], args[2], args[3])
			if err != nil {
				return err
			}
			fmt.Println(sig)
			return nil
		})
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the XP leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			entries, err := a.Backend.Leaderboard.Top(cmd.Context(), leaderboardSize)
			if err != nil {
				return err
			}
			return printJSON(entries)
		})
	},
}

func init() {
	tasksListCmd.Flags().StringVar(&taskCategory, "category", "", "filter by category")
	tasksListCmd.Flags().StringVar(&taskStatus, "status", "", "filter by status")

	tasksChainCreateCmd.Flags().StringVar(&taskDescription, "description", "", "task description")
	tasksChainCreateCmd.Flags().Uint32Var(&taskMaxUsers, "max-users", 10, "maximum participants")
	tasksChainCreateCmd.Flags().StringVar(&taskReward, "reward", "0", "reward per user in SOL")

	tasksChainCmd.AddCommand(tasksChainCreateCmd, tasksChainSubmitCmd, tasksChainVoteCmd, tasksChainDistributeCmd)
	tasksCmd.AddCommand(tasksListCmd, tasksAcceptCmd, tasksChainCmd)

	leaderboardCmd.Flags().IntVar(&leaderboardSize, "limit", 10, "number of entries")
}
