package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"memaheret/internal/wordlist"
)

func checkWordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-words [file]",
		Short: "Validate a word list",
		Long: `Validate a {"words": [...]} word list.

Every entry must be five Hebrew letters with final forms only in the last
position, and no two entries may be equal once final forms are normalized.
The command fails when any entry would be skipped by the game.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := viper.GetString("words")
			if len(args) == 1 {
				path = args[0]
			}
			return checkWords(cmd, path)
		},
	}
}

func checkWords(cmd *cobra.Command, path string) error {
	out := cmd.OutOrStdout()
	l, err := wordlist.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	skipped := l.Skipped()
	for _, w := range skipped {
		fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("skipped %q", w)))
	}
	if len(skipped) > 0 {
		return fmt.Errorf("%s: %d of %d entries are malformed or duplicates", path, len(skipped), l.Len()+len(skipped))
	}
	fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("%s: %d words ok", path, l.Len())))
	return nil
}
