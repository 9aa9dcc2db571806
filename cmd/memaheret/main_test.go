package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memaheret/internal/daily"
	"memaheret/internal/match"
	"memaheret/internal/round"
)

const wordsFile = "../../data/words.json"

var testNow = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

func configure(t *testing.T, storeKind string) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("words", wordsFile)
	viper.Set("store", storeKind)
	viper.Set("data_dir", t.TempDir())
	viper.Set("device", "12345678-1234-5678-9abc-123456789def")
}

func testCmd(in string) (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader(in))
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	return cmd, &out
}

func TestPlayWin(t *testing.T) {
	configure(t, "memory")
	env, err := openGame(context.Background(), daily.FixedClock(testNow))
	require.NoError(t, err)
	defer env.Close()

	target := daily.Select("17.10.2026", env.words)
	cmd, out := testCmd("אבגדה\nשלו\n" + target + "\n")
	require.NoError(t, play(cmd, env.session))

	got := out.String()
	assert.Contains(t, got, msgNotInDictionary)
	assert.Contains(t, got, msgTooShort)
	assert.Contains(t, got, msgWon)
	assert.Contains(t, got, "ממהרת 17.10.2026 - 1/6")
	assert.Equal(t, round.Won, env.session.State())
}

func TestPlayStopsAtEOF(t *testing.T) {
	configure(t, "memory")
	env, err := openGame(context.Background(), daily.FixedClock(testNow))
	require.NoError(t, err)
	defer env.Close()

	cmd, out := testCmd("")
	require.NoError(t, play(cmd, env.session))
	assert.Equal(t, round.Active, env.session.State())
	assert.NotContains(t, out.String(), msgLost)
}

func TestPlayResumesFromStore(t *testing.T) {
	configure(t, "file")
	ctx := context.Background()
	clock := daily.FixedClock(testNow)

	env, err := openGame(ctx, clock)
	require.NoError(t, err)
	target := daily.Select("17.10.2026", env.words)
	miss := env.words.At(0)
	if miss == target {
		miss = env.words.At(1)
	}
	cmd, _ := testCmd(miss + "\n")
	require.NoError(t, play(cmd, env.session))
	env.Close()

	env, err = openGame(ctx, clock)
	require.NoError(t, err)
	defer env.Close()
	require.Len(t, env.session.Attempts(), 1)
	assert.Equal(t, miss, env.session.Attempts()[0].Word)
}

func TestPrintToday(t *testing.T) {
	configure(t, "memory")
	env, err := openGame(context.Background(), daily.FixedClock(testNow))
	require.NoError(t, err)
	defer env.Close()

	cmd, out := testCmd("")
	require.NoError(t, printToday(cmd, daily.FixedClock(testNow), env.words, false))
	got := out.String()
	assert.Contains(t, got, "17.10.2026")
	assert.Contains(t, got, "2988508982501929")
	assert.Contains(t, got, "12:00:00")
	assert.NotContains(t, got, daily.Select("17.10.2026", env.words))
}

func TestCheckWords(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"words":["מדינה","ספרים"]}`), 0644))
	require.NoError(t, os.WriteFile(bad, []byte(`{"words":["מדינה","ספר","ספרים","ספרימ"]}`), 0644))

	cmd, out := testCmd("")
	require.NoError(t, checkWords(cmd, good))
	assert.Contains(t, out.String(), "2 words ok")

	cmd, out = testCmd("")
	err := checkWords(cmd, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 4")
	assert.Contains(t, out.String(), "ספר")

	assert.NoError(t, checkWords(cmd, wordsFile))
}

func TestFormatCountdown(t *testing.T) {
	assert.Equal(t, "12:00:00", formatCountdown(12*time.Hour))
	assert.Equal(t, "00:01:05", formatCountdown(65*time.Second))
	assert.Equal(t, "23:59:59", formatCountdown(24*time.Hour-time.Second))
}

func TestRenderRowRightToLeft(t *testing.T) {
	a := round.Attempt{Word: "מדינה", Verdicts: match.Evaluate("מדינה", "ספרים")}
	row := renderRow(a)
	assert.Less(t, strings.Index(row, "ה"), strings.Index(row, "מ"), "last letter is drawn first")
	assert.Equal(t, round.MaxAttempts, strings.Count(renderBoard([]round.Attempt{a}), "\n")+1)
}

func TestDeviceID(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	first := deviceID()
	assert.Equal(t, first, deviceID(), "derived device ID must be stable")
	assert.Len(t, first, 36)

	viper.Set("device", "12345678-1234-5678-9abc-123456789def")
	assert.Equal(t, "12345678-1234-5678-9abc-123456789def", deviceID())
}
