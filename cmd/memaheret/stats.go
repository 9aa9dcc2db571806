package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"memaheret/internal/daily"
	"memaheret/internal/game"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show played rounds, streaks and the guess distribution",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := openGame(cmd.Context(), daily.SystemClock{})
			if err != nil {
				return err
			}
			defer env.Close()

			_, stats, err := env.session.History(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load history: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderStats(stats))
			return nil
		},
	}
}

func shareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "share",
		Short: "Print the result grid of today's finished round",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := openGame(cmd.Context(), daily.SystemClock{})
			if err != nil {
				return err
			}
			defer env.Close()

			text, err := env.session.Share()
			if errors.Is(err, game.ErrRoundActive) {
				return errors.New("today's round is still in progress; finish it with 'memaheret play'")
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}
