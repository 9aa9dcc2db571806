package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"memaheret/internal/hebrew"
	"memaheret/internal/match"
	"memaheret/internal/round"
	"memaheret/internal/store"
)

var (
	tileBase = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("15"))

	tileStyles = map[match.Verdict]lipgloss.Style{
		match.Exact: tileBase.Background(lipgloss.Color("28")),
		match.Other: tileBase.Background(lipgloss.Color("178")),
		match.Wrong: tileBase.Background(lipgloss.Color("240")),
		match.Unset: tileBase.Foreground(lipgloss.Color("250")).Background(lipgloss.Color("236")),
	}

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	barStyle     = lipgloss.NewStyle().Background(lipgloss.Color("28")).Foreground(lipgloss.Color("15"))
)

// Messages shown to the player.
const (
	msgTooShort        = "אין מספיק אותיות"
	msgNotInDictionary = "לא ברשימת המילים"
	msgWon             = "כל הכבוד!"
	msgLost            = "לא הצליח הפעם"
)

// renderRow draws an attempt as five colored tiles. Letters are laid out
// right to left, the way the word is read.
func renderRow(a round.Attempt) string {
	letters := []rune(a.Word)
	tiles := make([]string, 0, len(letters))
	for i := len(letters) - 1; i >= 0; i-- {
		tiles = append(tiles, tileStyles[a.Verdicts[i]].Render(string(letters[i])))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tiles...)
}

func renderEmptyRow() string {
	tiles := make([]string, match.WordLength)
	for i := range tiles {
		tiles[i] = tileStyles[match.Unset].Render("·")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tiles...)
}

// renderBoard draws every attempt followed by the remaining empty rows.
func renderBoard(attempts []round.Attempt) string {
	rows := make([]string, 0, round.MaxAttempts)
	for _, a := range attempts {
		rows = append(rows, renderRow(a))
	}
	for len(rows) < round.MaxAttempts {
		rows = append(rows, renderEmptyRow())
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderKeyboard lists every letter tried so far with its best status.
func renderKeyboard(m round.StatusMap) string {
	var b strings.Builder
	for _, l := range hebrew.Letters() {
		v := m.Get(l)
		if v == match.Unset {
			b.WriteString(mutedStyle.Render(l.String()))
		} else {
			b.WriteString(tileStyles[v].Render(l.String()))
		}
		b.WriteString(" ")
	}
	return strings.TrimRight(b.String(), " ")
}

// renderStats draws the summary line and the guess distribution bars.
func renderStats(s store.Stats) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("סטטיסטיקה"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "played %d  win %d%%  streak %d  max streak %d\n\n",
		s.Played, s.WinPercent, s.CurrentStreak, s.MaxStreak)

	most := 0
	for _, n := range s.Distribution {
		most = max(most, n)
	}
	for attempts := 1; attempts <= round.MaxAttempts; attempts++ {
		n := s.Distribution[attempts]
		width := 1
		if most > 0 {
			width = max(1, n*20/most)
		}
		bar := barStyle.Render(fmt.Sprintf("%*d", width, n))
		fmt.Fprintf(&b, "%d %s\n", attempts, bar)
	}
	return b.String()
}
