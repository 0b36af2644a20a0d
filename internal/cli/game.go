package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game commands",
	}

	cmd.AddCommand(newGameCreateCmd())
	cmd.AddCommand(newGameGetCmd())
	cmd.AddCommand(newGameOpenCmd())
	cmd.AddCommand(newGameFinishedCmd())
	cmd.AddCommand(newGameAnswerCmd())
	cmd.AddCommand(newGameSeenCmd())
	cmd.AddCommand(newGameFinishCmd())
	cmd.AddCommand(newGameDeleteCmd())

	return cmd
}

func newGameCreateCmd() *cobra.Command {
	var friend string
	var questions []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Start a new game against a friend",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"friendName": friend,
				"questions":  questions,
			}
			var result GameDetail

			if err := client.Post("/api/v1/games", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&friend, "friend", "", "Opponent username (required)")
	cmd.Flags().StringSliceVar(&questions, "questions", nil, "Question ids (required)")
	_ = cmd.MarkFlagRequired("friend")
	_ = cmd.MarkFlagRequired("questions")

	return cmd
}

func newGameGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameDetail

			if err := client.Get(fmt.Sprintf("/api/v1/games/%s", args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open",
		Short: "List open games",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result OpenGames

			if err := client.Get("/api/v1/games/open", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameFinishedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "finished",
		Short: "List finished games",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result FinishedGames

			if err := client.Get("/api/v1/games/finished", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameAnswerCmd() *cobra.Command {
	var correct, wrong []string

	cmd := &cobra.Command{
		Use:   "answer <id>",
		Short: "Submit answers for a game",
		Long: `Submit answers for a game. Pass question ids via --correct and
--wrong. Resubmitting a question id overwrites the earlier answer.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(correct) == 0 && len(wrong) == 0 {
				return fmt.Errorf("at least one of --correct or --wrong is required")
			}

			answers := make([]map[string]any, 0, len(correct)+len(wrong))
			for _, q := range correct {
				answers = append(answers, map[string]any{"questionId": strings.TrimSpace(q), "isCorrect": true})
			}
			for _, q := range wrong {
				answers = append(answers, map[string]any{"questionId": strings.TrimSpace(q), "isCorrect": false})
			}

			req := map[string]any{"answers": answers}
			var result SubmitResult

			if err := client.Patch(fmt.Sprintf("/api/v1/games/%s/answer", args[0]), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			if result.Finished && cfg.Output != "json" {
				out.PrintMessage("Game finished!")
			}
			out.Print(result.Game)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&correct, "correct", nil, "Question ids answered correctly")
	cmd.Flags().StringSliceVar(&wrong, "wrong", nil, "Question ids answered incorrectly")

	return cmd
}

func newGameSeenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seen <id>",
		Short: "Acknowledge a finished game's result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameDetail

			if err := client.Patch(fmt.Sprintf("/api/v1/games/%s/seen", args[0]), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameFinishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "finish <id>",
		Short: "Finish a game early without scoring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameDetail

			if err := client.Post(fmt.Sprintf("/api/v1/games/%s/finish", args[0]), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an unfinished game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(fmt.Sprintf("/api/v1/games/%s", args[0])); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Game deleted")
			return nil
		},
	}
}
