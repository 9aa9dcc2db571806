package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"memaheret/internal/daily"
	"memaheret/internal/wordlist"
)

func todayCmd() *cobra.Command {
	var reveal bool
	cmd := &cobra.Command{
		Use:   "today",
		Short: "Show today's date string and time until the next word",
		RunE: func(cmd *cobra.Command, _ []string) error {
			words, err := wordlist.Load(viper.GetString("words"))
			if err != nil {
				return fmt.Errorf("failed to load word list: %w", err)
			}
			clock := daily.SystemClock{}
			return printToday(cmd, clock, words, reveal)
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "also print the word of the day")
	return cmd
}

func printToday(cmd *cobra.Command, clock daily.Clock, words *wordlist.List, reveal bool) error {
	out := cmd.OutOrStdout()
	date := daily.Today(clock)
	fmt.Fprintf(out, "%s %s\n", titleStyle.Render("date"), date)
	fmt.Fprintf(out, "%s %d\n", titleStyle.Render("hash"), daily.Hash(date))
	fmt.Fprintf(out, "%s %d/%d\n", titleStyle.Render("index"), daily.Index(date, words.Len()), words.Len())
	if reveal {
		fmt.Fprintf(out, "%s %s\n", titleStyle.Render("word"), daily.Select(date, words))
	}
	next := daily.UntilMidnight(clock.Now()).Round(time.Second)
	fmt.Fprintf(out, "%s %s\n", titleStyle.Render("next"), formatCountdown(next))
	return nil
}
