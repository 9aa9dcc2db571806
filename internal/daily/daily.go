// Package daily derives the word of the day from the calendar date.
//
// The hash and the date format are a wire contract: every client on the same
// Jerusalem calendar day must land on the same index, and changing either
// silently reassigns every historical word to a different date. The index is
// taken over the validated word list, after malformed entries and normalized
// duplicates are dropped, so a list with such entries maps dates differently
// than its raw length suggests.
package daily

import (
	"fmt"
	"sync"
	"time"
	_ "time/tzdata"
	"unicode/utf16"
)

// Zone is the time zone whose calendar day selects the word.
const Zone = "Asia/Jerusalem"

const (
	seed1 uint32 = 0xdeadbeef
	seed2 uint32 = 0x41c6ce57

	mix1 uint32 = 2654435761
	mix2 uint32 = 1597334677
	fin1 uint32 = 2246822507
	fin2 uint32 = 3266489909

	highMask = 0x1fffff // 21 bits
)

// Hash is the 53-bit cyrb53 hash of s, computed over its UTF-16 code units.
func Hash(s string) uint64 {
	h1, h2 := seed1, seed2
	for _, ch := range utf16.Encode([]rune(s)) {
		h1 = (h1 ^ uint32(ch)) * mix1
		h2 = (h2 ^ uint32(ch)) * mix2
	}
	h1 = ((h1 ^ (h1 >> 16)) * fin1) ^ ((h2 ^ (h2 >> 13)) * fin2)
	h2 = ((h2 ^ (h2 >> 16)) * fin1) ^ ((h1 ^ (h1 >> 13)) * fin2)
	return uint64(h2&highMask)<<32 | uint64(h1)
}

// Indexed is the read side of a word list.
type Indexed interface {
	At(i int) string
	Len() int
}

// Index returns the position of date's word in a list of n words.
func Index(date string, n int) int {
	if n <= 0 {
		return 0
	}
	return int(Hash(date) % uint64(n))
}

// Select returns the word of the day for date.
func Select(date string, words Indexed) string {
	return words.At(Index(date, words.Len()))
}

// DateString formats the calendar date of t in Zone as d.m.yyyy without
// zero padding, matching the he-IL short date.
func DateString(t time.Time) string {
	local := t.In(location())
	return fmt.Sprintf("%d.%d.%d", local.Day(), int(local.Month()), local.Year())
}

// UntilMidnight returns the time from t to the next midnight in Zone.
func UntilMidnight(t time.Time) time.Duration {
	local := t.In(location())
	y, m, d := local.Date()
	next := time.Date(y, m, d+1, 0, 0, 0, 0, local.Location())
	return next.Sub(local)
}

var location = sync.OnceValue(func() *time.Location {
	loc, err := time.LoadLocation(Zone)
	if err != nil {
		// tzdata is embedded, so this only happens on a broken build
		panic(fmt.Sprintf("daily: load %s: %v", Zone, err))
	}
	return loc
})

// Clock supplies the current time; tests swap it for a fixed instant.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// Today returns the date string for the clock's current instant.
func Today(c Clock) string {
	return DateString(c.Now())
}
