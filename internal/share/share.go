// Package share renders a finished round as the emoji grid players paste
// into chats, and reads back its header line.
package share

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"memaheret/internal/match"
)

// Title opens every header line.
const Title = "ממהרת"

// RTLMark prefixes each row so right-to-left clients lay it out correctly.
const RTLMark = "\u200f"

const maxAttempts = 6

var glyphs = map[match.Verdict]string{
	match.Exact: "🟩",
	match.Other: "🟨",
	match.Wrong: "⬜",
}

// Format renders the header and one glyph row per attempt.
func Format(date string, rows [][match.WordLength]match.Verdict, won bool) string {
	score := "X"
	if won {
		score = strconv.Itoa(len(rows))
	}
	lines := lo.Map(rows, func(row [match.WordLength]match.Verdict, _ int) string {
		var b strings.Builder
		b.WriteString(RTLMark)
		for _, v := range row {
			b.WriteString(glyphs[v])
		}
		return b.String()
	})
	return fmt.Sprintf("%s %s - %s/%d\n\n", Title, date, score, maxAttempts) + strings.Join(lines, "\n")
}

// Header is the parsed first line of a shared result.
type Header struct {
	Date     string
	Attempts int
	Won      bool
}

var ErrBadHeader = errors.New("not a result header")

var headerRe = regexp.MustCompile(`^` + Title + ` (\S+) - ([1-6]|X)/6$`)

// ParseHeader reads the header line of text produced by Format. For a loss
// Attempts is the number of grid rows that follow.
func ParseHeader(text string) (Header, error) {
	lines := strings.Split(text, "\n")
	m := headerRe.FindStringSubmatch(strings.TrimSpace(lines[0]))
	if m == nil {
		return Header{}, ErrBadHeader
	}
	h := Header{Date: m[1]}
	if m[2] == "X" {
		h.Attempts = len(lo.Filter(lines[1:], func(l string, _ int) bool { return strings.TrimSpace(l) != "" }))
		return h, nil
	}
	h.Attempts, _ = strconv.Atoi(m[2])
	h.Won = true
	return h, nil
}
