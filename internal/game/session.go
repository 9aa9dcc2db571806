// Package game runs one player's daily round on top of the round state
// machine, persisting progress and history through a store adapter.
package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/samber/lo"

	"memaheret/internal/daily"
	"memaheret/internal/match"
	"memaheret/internal/round"
	"memaheret/internal/share"
	"memaheret/internal/store"
	"memaheret/internal/types"
	"memaheret/internal/wordlist"
)

var ErrRoundActive = errors.New("round is still in progress")

// Reveal delays for the end-of-round overlay. They only pace the front end.
const (
	WinRevealDelay     = 3600 * time.Millisecond
	LossRevealDelay    = 2000 * time.Millisecond
	RestoreRevealDelay = 500 * time.Millisecond
)

var congratulations = []string{"גאוני", "מדהים", "נפלא", "סחתיין", "נהדר", "מקסים"}

// Deps are the collaborators a Session needs.
type Deps struct {
	Words *wordlist.List
	Store *store.Adapter
	Clock daily.Clock
	// OnStoreError receives persistence failures, which never interrupt play.
	OnStoreError func(op string, err error)
}

// Session is one player's view of today's round. Its methods are safe for
// concurrent use; concurrent submissions are applied one at a time.
type Session struct {
	mu    sync.Mutex
	words *wordlist.List
	store *store.Adapter
	clock daily.Clock
	onErr func(op string, err error)
	round *round.Round

	// persist is false while the stored round could not be read. Nothing is
	// written back until a later load succeeds.
	persist bool
}

// Result describes an accepted submission. Number is the attempt's 1-based
// position in today's round.
type Result struct {
	Attempt     round.Attempt
	Number      int
	Finished    bool
	Outcome     store.Outcome
	RevealAfter time.Duration
}

// Open loads the stored round for today. A round stored under another date
// is discarded without touching the history log.
func Open(ctx context.Context, d Deps) *Session {
	s := &Session{
		words: d.Words,
		store: d.Store,
		clock: d.Clock,
		onErr: d.OnStoreError,
	}
	if s.clock == nil {
		s.clock = daily.SystemClock{}
	}
	if s.onErr == nil {
		s.onErr = func(string, error) {}
	}
	s.load(ctx)
	return s
}

func (s *Session) load(ctx context.Context) {
	today := daily.Today(s.clock)
	target := daily.Select(today, s.words)
	current := s.round != nil && s.round.Date() == today

	snap, ok, err := s.store.Load(ctx)
	if errors.Is(err, store.ErrCorrupt) {
		// unreadable forever; start over and let the next save replace it
		s.onErr("load", err)
		snap, ok, err = store.Snapshot{}, true, nil
	}
	if err != nil {
		s.onErr("load", err)
		s.persist = false
		if !current {
			s.round = round.New(today, target, s.words)
		}
		return
	}
	s.persist = true

	switch {
	case ok && snap.Date == today:
		s.round = round.Restore(today, target, s.words, snap.Guesses)
	default:
		if ok {
			if err := s.store.Clear(ctx); err != nil {
				s.onErr("clear", err)
			}
		}
		if !current {
			s.round = round.New(today, target, s.words)
		}
	}
	s.save(ctx)
}

func (s *Session) save(ctx context.Context) {
	if !s.persist {
		return
	}
	if err := s.store.Save(ctx, s.round.Date(), s.round.Guesses()); err != nil {
		s.onErr("save", err)
	}
}

// rollover starts a fresh round once the calendar day has changed, and
// retries a load that failed earlier. The caller holds s.mu.
func (s *Session) rollover(ctx context.Context) {
	if !s.persist || daily.Today(s.clock) != s.round.Date() {
		s.load(ctx)
	}
}

// Submit records raw as the next attempt. Rejections are round.ErrTooShort,
// round.ErrNotInDictionary and round.ErrRoundOver; none of them change state.
func (s *Session) Submit(ctx context.Context, raw string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollover(ctx)

	a, err := s.round.Submit(raw)
	if err != nil {
		return Result{}, err
	}
	s.save(ctx)

	res := Result{Attempt: a, Number: s.round.Len()}
	if !s.round.IsTerminal() {
		return res, nil
	}

	res.Finished = true
	res.Outcome = store.Loss
	res.RevealAfter = LossRevealDelay
	if s.round.State() == round.Won {
		res.Outcome = store.Win(s.round.Len())
		res.RevealAfter = WinRevealDelay
	}
	if s.persist {
		if err := s.store.AppendHistory(ctx, res.Outcome); err != nil {
			s.onErr("append history", err)
		}
	}
	return res, nil
}

// Done is closed when today's round ends.
func (s *Session) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round.Done()
}

// State returns the lifecycle state of today's round.
func (s *Session) State() round.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round.State()
}

// Attempts returns today's attempts in order.
func (s *Session) Attempts() []round.Attempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round.Attempts()
}

// LetterStatus returns the best verdict seen so far for each letter.
func (s *Session) LetterStatus() round.StatusMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round.LetterStatus()
}

// Congratulation is the praise shown for a win in n attempts.
func Congratulation(n int) string {
	if n < 1 || n > len(congratulations) {
		return ""
	}
	return congratulations[n-1]
}

// View renders today's round for the front end. The target word is only
// included once the round is over.
func (s *Session) View(ctx context.Context) types.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollover(ctx)

	r := s.round
	attempts := r.Attempts()
	view := types.GameState{
		Date: r.Date(),
		Guesses: lo.Map(attempts, func(a round.Attempt, _ int) []types.GuessResult {
			letters := []rune(a.Word)
			return lo.Map(a.Verdicts[:], func(v match.Verdict, i int) types.GuessResult {
				return types.GuessResult{Letter: string(letters[i]), Status: v.String()}
			})
		}),
		GuessHistory:      r.Guesses(),
		CurrentRow:        r.Len(),
		GameOver:          r.IsTerminal(),
		Won:               r.State() == round.Won,
		Keyboard:          r.LetterStatus().Strings(),
		SecondsToNextWord: int64(daily.UntilMidnight(s.clock.Now()).Seconds()),
	}
	if view.GameOver {
		view.TargetWord = r.Target()
		view.RevealAfterMs = RestoreRevealDelay.Milliseconds()
	}
	if view.Won {
		view.Congratulation = Congratulation(r.Len())
	}
	return view
}

// Share returns the shareable result grid for a finished round.
func (s *Session) Share() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.round.IsTerminal() {
		return "", ErrRoundActive
	}
	rows := lo.Map(s.round.Attempts(), func(a round.Attempt, _ int) [match.WordLength]match.Verdict {
		return a.Verdicts
	})
	return share.Format(s.round.Date(), rows, s.round.State() == round.Won), nil
}

// History returns the device's history log and the stats derived from it.
func (s *Session) History(ctx context.Context) ([]store.Outcome, store.Stats, error) {
	h, err := s.store.LoadHistory(ctx)
	if err != nil {
		return nil, store.Stats{}, err
	}
	return h, store.Summarize(h), nil
}
