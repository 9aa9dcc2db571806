package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"memaheret/internal/daily"
	"memaheret/internal/game"
	"memaheret/internal/round"
)

func playCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play today's word",
		Long: `Play today's word interactively, one guess per line.

Guesses may be typed with Hebrew letters or with the Latin keys of a
standard Hebrew keyboard layout; the last letter is switched to its final
form automatically.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := openGame(cmd.Context(), daily.SystemClock{})
			if err != nil {
				return err
			}
			defer env.Close()
			return play(cmd, env.session)
		},
	}
}

func play(cmd *cobra.Command, s *game.Session) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, titleStyle.Render("ממהרת "+s.View(ctx).Date))
	fmt.Fprintln(out, renderBoard(s.Attempts()))

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for s.State() == round.Active {
		fmt.Fprintf(out, "%d/%d > ", len(s.Attempts())+1, round.MaxAttempts)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		res, err := s.Submit(ctx, scanner.Text())
		switch {
		case errors.Is(err, round.ErrTooShort):
			fmt.Fprintln(out, warnStyle.Render(msgTooShort))
			continue
		case errors.Is(err, round.ErrNotInDictionary):
			fmt.Fprintln(out, warnStyle.Render(msgNotInDictionary))
			continue
		case err != nil:
			return err
		}

		fmt.Fprintln(out, renderRow(res.Attempt))
		if !res.Finished {
			fmt.Fprintln(out, renderKeyboard(s.LetterStatus()))
		}
	}

	return printOutcome(ctx, out, s)
}

func printOutcome(ctx context.Context, out io.Writer, s *game.Session) error {
	view := s.View(ctx)
	if view.Won {
		fmt.Fprintln(out, successStyle.Render(msgWon+" "+view.Congratulation))
	} else {
		fmt.Fprintln(out, warnStyle.Render(msgLost))
		fmt.Fprintln(out, "המילה הייתה: "+view.TargetWord)
	}
	text, err := s.Share()
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, text)
	fmt.Fprintln(out)
	next := time.Duration(view.SecondsToNextWord) * time.Second
	fmt.Fprintln(out, mutedStyle.Render("המילה הבאה בעוד "+formatCountdown(next)))
	return nil
}

// formatCountdown renders d as hh:mm:ss.
func formatCountdown(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	sec := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, sec)
}
