package db

import "time"

// Player modes.
const (
	ModeMenu     = "menu"
	ModePlaying  = "playing"
	ModeAsking   = "asking"
	ModeCategory = "category"
)

// Player is the live chat session of one user.
type Player struct {
	UserID          int64
	UserName        string
	Score           int
	QuestionsAsked  int
	Mode            string
	CurrentQuestion string
	CurrentSource   string
	// DiagnosisJSON and PitchJSON hold the last analysis of CurrentQuestion,
	// empty until the step was taken.
	DiagnosisJSON string
	PitchJSON     string
	UpdatedAt     time.Time
}

// Stats accumulates finished games.
type Stats struct {
	UserID      int64
	UserName    string
	TotalScore  int
	GamesPlayed int
	BestScore   int
}

// Analysis is one classified question.
type Analysis struct {
	ID          int64
	RunID       string
	Question    string
	Source      string
	Kind        string
	Categories  []string
	Confidence  float64
	StartupName string
	HypeLevel   int
	Viability   string
	CreatedAt   time.Time
}
