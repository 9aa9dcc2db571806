package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// Outcome is one completed round in the history log: the number of attempts
// it took to win, or Loss.
type Outcome int

// Loss is stored as "X".
const Loss Outcome = 0

const lossMarker = "X"

// Win records a round solved in n attempts.
func Win(n int) Outcome { return Outcome(n) }

func (o Outcome) Won() bool { return o > 0 }

// Attempts is the attempt count of a win, 0 for a loss.
func (o Outcome) Attempts() int { return int(o) }

func (o Outcome) String() string {
	if o == Loss {
		return lossMarker
	}
	return strconv.Itoa(int(o))
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	if o == Loss {
		return json.Marshal(lossMarker)
	}
	return json.Marshal(int(o))
}

func (o *Outcome) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s != lossMarker {
			return fmt.Errorf("unknown outcome marker %q", s)
		}
		*o = Loss
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("outcome must be an attempt count or %q: %w", lossMarker, err)
	}
	if n < 1 || n > 6 {
		return fmt.Errorf("attempt count %d out of range", n)
	}
	*o = Outcome(n)
	return nil
}

// Snapshot is the stored state of a day's round.
type Snapshot struct {
	Date    string
	Guesses []string
}

// Adapter encodes rounds and history into a device's KV namespace.
type Adapter struct {
	kv KV
}

func NewAdapter(kv KV) *Adapter {
	return &Adapter{kv: kv}
}

// Load returns the stored round. ok is false when nothing has been saved.
func (a *Adapter) Load(ctx context.Context) (Snapshot, bool, error) {
	date, ok, err := a.kv.Get(ctx, KeyDate)
	if err != nil || !ok || date == "" {
		return Snapshot{}, false, err
	}
	snap := Snapshot{Date: date, Guesses: []string{}}
	raw, ok, err := a.kv.Get(ctx, KeyGuesses)
	if err != nil {
		return Snapshot{}, false, err
	}
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &snap.Guesses); err != nil {
			return Snapshot{}, false, fmt.Errorf("%w: decode %s: %v", ErrCorrupt, KeyGuesses, err)
		}
	}
	return snap, true, nil
}

// Save stores date and the day's guesses.
func (a *Adapter) Save(ctx context.Context, date string, guesses []string) error {
	if guesses == nil {
		guesses = []string{}
	}
	data, err := json.Marshal(guesses)
	if err != nil {
		return err
	}
	if err := a.kv.Set(ctx, KeyDate, date); err != nil {
		return err
	}
	return a.kv.Set(ctx, KeyGuesses, string(data))
}

// Clear removes the stored round and keeps the history log.
func (a *Adapter) Clear(ctx context.Context) error {
	return a.kv.Delete(ctx, KeyDate, KeyGuesses)
}

// LoadHistory returns the history log, oldest first.
func (a *Adapter) LoadHistory(ctx context.Context) ([]Outcome, error) {
	raw, ok, err := a.kv.Get(ctx, KeyResults)
	if err != nil {
		return nil, err
	}
	results := []Outcome{}
	if !ok || raw == "" {
		return results, nil
	}
	if err := json.Unmarshal([]byte(raw), &results); err != nil {
		return nil, fmt.Errorf("decode %s: %w", KeyResults, err)
	}
	return results, nil
}

// AppendHistory adds o to the end of the history log.
func (a *Adapter) AppendHistory(ctx context.Context, o Outcome) error {
	results, err := a.LoadHistory(ctx)
	if err != nil {
		return err
	}
	data, err := json.Marshal(append(results, o))
	if err != nil {
		return err
	}
	return a.kv.Set(ctx, KeyResults, string(data))
}
