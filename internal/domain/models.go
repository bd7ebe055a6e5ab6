package domain

import (
	"math"
	"time"
)

// Difficulty is the ordered difficulty level of a question or quiz.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Rank orders difficulties easy < medium < hard. Unknown levels sort last.
func (d Difficulty) Rank() int {
	switch d {
	case DifficultyEasy:
		return 0
	case DifficultyMedium:
		return 1
	case DifficultyHard:
		return 2
	}
	return 3
}

// Choice is one candidate answer, keyed "A".."D" in generated quizzes.
type Choice struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// QuizQuestion is a single generated question. Immutable once generated.
type QuizQuestion struct {
	ID          string     `json:"id"`
	Topic       string     `json:"topic"`
	Difficulty  Difficulty `json:"difficulty"`
	Prompt      string     `json:"prompt"`
	Choices     []Choice   `json:"choices"`
	AnswerKey   string     `json:"answerKey"`
	Explanation string     `json:"explanation,omitempty"`
}

// Quiz is an ordered collection of questions on one topic.
type Quiz struct {
	ID         string         `json:"id"`
	Topic      string         `json:"topic"`
	Difficulty Difficulty     `json:"difficulty"`
	Questions  []QuizQuestion `json:"questions"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// SubmittedAnswer is one answer from the quiz-delivery layer, positionally
// aligned with the quiz's question list.
type SubmittedAnswer struct {
	QuestionID string        `json:"questionId"`
	Choice     string        `json:"choice"`
	TimeTaken  time.Duration `json:"timeTaken"`
}

// QuestionResult pairs a question with the submitted answer and its correctness.
type QuestionResult struct {
	Question  QuizQuestion    `json:"question"`
	Submitted SubmittedAnswer `json:"submitted"`
	Correct   bool            `json:"correct"`
}

// Tally counts correct answers out of a total.
type Tally struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// Ratio returns the unrounded accuracy in [0,1]. Zero-total tallies yield 0.
func (t Tally) Ratio() float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Correct) / float64(t.Total)
}

// Percent returns the accuracy rounded to the nearest integer percentage,
// for display; storage keeps the unrounded ratio.
func (t Tally) Percent() int {
	return int(math.Round(t.Ratio() * 100))
}

// ScoredAttempt is one completed, scored quiz submission. Created once per
// attempt and never mutated afterwards.
type ScoredAttempt struct {
	ID           string               `json:"id"`
	UserID       string               `json:"userId"`
	QuizID       string               `json:"quizId"`
	Topic        string               `json:"topic"`
	Difficulty   Difficulty           `json:"difficulty"`
	CompletedAt  time.Time            `json:"completedAt"`
	Results      []QuestionResult     `json:"results"`
	Correct      int                  `json:"correct"`
	Total        int                  `json:"total"`
	ByTopic      map[string]Tally     `json:"byTopic"`
	ByDifficulty map[Difficulty]Tally `json:"byDifficulty"`
	TimeTaken    time.Duration        `json:"timeTaken"`
}

// Ratio returns the attempt's unrounded accuracy.
func (a ScoredAttempt) Ratio() float64 {
	return Tally{Correct: a.Correct, Total: a.Total}.Ratio()
}

// Percent returns the attempt's accuracy as a display percentage.
func (a ScoredAttempt) Percent() int {
	return Tally{Correct: a.Correct, Total: a.Total}.Percent()
}

// TrendPoint is one step of the cumulative accuracy trend.
type TrendPoint struct {
	At       time.Time `json:"at"`
	Accuracy float64   `json:"accuracy"`
}

// RankEntry is one row of a topic or difficulty ranking.
type RankEntry struct {
	Key string `json:"key"`
	Tally
}

// AnalyticsSnapshot is derived on demand from a set of scored attempts.
// Overall is nil when there is no data; the presentation layer decides how
// to render the empty state.
type AnalyticsSnapshot struct {
	Attempts     int          `json:"attempts"`
	Overall      *Tally       `json:"overall,omitempty"`
	Trend        []TrendPoint `json:"trend"`
	Topics       []RankEntry  `json:"topics"`
	Difficulties []RankEntry  `json:"difficulties"`
}

// StudentProfile carries per-user rollups shown on the dashboards.
type StudentProfile struct {
	UserID          string    `json:"userId"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Role            string    `json:"role"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	QuizCount       int       `json:"quizCount"`
	TotalCorrect    int       `json:"totalCorrect"`
	TotalQuestions  int       `json:"totalQuestions"`
	AverageScore    float64   `json:"averageScore"`
	PreferredTopics []string  `json:"preferredTopics"`
	SyncedCourses   []Course  `json:"syncedCourses,omitempty"`
}

// Course is a classroom course attached to a profile during sync.
type Course struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Section string `json:"section,omitempty"`
}

// ClassActivity is a feed event emitted when a student completes a quiz.
type ClassActivity struct {
	UserID      string     `json:"userId"`
	Topic       string     `json:"topic"`
	Difficulty  Difficulty `json:"difficulty"`
	Percent     int        `json:"percent"`
	CompletedAt time.Time  `json:"completedAt"`
}
