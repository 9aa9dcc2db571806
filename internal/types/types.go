package types

// WordList is the JSON document the dictionary is loaded from.
type WordList struct {
	Words []string `json:"words"`
}

// GuessResult is one letter of a submitted attempt with its verdict.
type GuessResult struct {
	Letter string `json:"letter"`
	Status string `json:"status"`
}

// GameState is the view of a device's round sent to the front end.
type GameState struct {
	Date              string            `json:"date"`
	Guesses           [][]GuessResult   `json:"guesses"`
	GuessHistory      []string          `json:"guessHistory"`
	CurrentRow        int               `json:"currentRow"`
	GameOver          bool              `json:"gameOver"`
	Won               bool              `json:"won"`
	TargetWord        string            `json:"targetWord,omitempty"`
	Keyboard          map[string]string `json:"keyboard"`
	Congratulation    string            `json:"congratulation,omitempty"`
	RevealAfterMs     int64             `json:"revealAfterMs,omitempty"`
	SecondsToNextWord int64             `json:"secondsToNextWord"`
}

// PlayerStats summarises a device's history log.
type PlayerStats struct {
	Results           []any       `json:"results"`
	GamesPlayed       int         `json:"gamesPlayed"`
	GamesWon          int         `json:"gamesWon"`
	WinPercent        int         `json:"winPercent"`
	CurrentStreak     int         `json:"currentStreak"`
	MaxStreak         int         `json:"maxStreak"`
	GuessDistribution map[int]int `json:"guessDistribution"`
}
