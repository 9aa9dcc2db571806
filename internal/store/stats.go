package store

import (
	"github.com/samber/lo"
)

// Stats summarises a history log.
type Stats struct {
	Played        int
	Won           int
	WinPercent    int
	CurrentStreak int
	MaxStreak     int
	// Distribution maps attempts-to-win (1..6) to how many rounds took that many.
	Distribution map[int]int
}

// Summarize derives Stats from a history log ordered oldest first.
func Summarize(history []Outcome) Stats {
	s := Stats{
		Played:       len(history),
		Won:          lo.CountBy(history, Outcome.Won),
		Distribution: make(map[int]int, 6),
	}
	for n := 1; n <= 6; n++ {
		s.Distribution[n] = 0
	}
	lo.ForEach(lo.Filter(history, func(o Outcome, _ int) bool { return o.Won() }), func(o Outcome, _ int) {
		s.Distribution[o.Attempts()]++
	})
	if s.Played > 0 {
		s.WinPercent = s.Won * 100 / s.Played
	}

	streak := 0
	for _, o := range history {
		if o.Won() {
			streak++
			s.MaxStreak = max(s.MaxStreak, streak)
		} else {
			streak = 0
		}
	}
	s.CurrentStreak = streak
	return s
}
