// Package scoring implements the pure quiz-result computations: scoring a
// completed submission and aggregating attempt history into analytics.
// Nothing here performs I/O or keeps state between calls, so every function
// is safe to invoke concurrently from multiple request contexts.
package scoring

import (
	"strings"

	"edututor-service/internal/domain"
)

// Score checks answers against the question list and returns the scored
// attempt. Answers must align positionally with questions: same length, same
// question IDs in the same order. Persistence and identity stamping (attempt
// ID, user, timestamp) are the caller's responsibility.
func Score(questions []domain.QuizQuestion, answers []domain.SubmittedAnswer) (domain.ScoredAttempt, error) {
	if len(questions) == 0 {
		return domain.ScoredAttempt{}, domain.ErrEmptyQuiz
	}
	if len(answers) != len(questions) {
		return domain.ScoredAttempt{}, &domain.AlignmentError{
			LengthOnly: true,
			WantLen:    len(questions),
			GotLen:     len(answers),
		}
	}
	for i := range questions {
		if answers[i].QuestionID != questions[i].ID {
			return domain.ScoredAttempt{}, &domain.AlignmentError{
				Index:  i,
				WantID: questions[i].ID,
				GotID:  answers[i].QuestionID,
			}
		}
	}

	attempt := domain.ScoredAttempt{
		Results:      make([]domain.QuestionResult, 0, len(questions)),
		Total:        len(questions),
		ByTopic:      make(map[string]domain.Tally),
		ByDifficulty: make(map[domain.Difficulty]domain.Tally),
	}
	for i, q := range questions {
		correct := answerMatches(answers[i].Choice, q.AnswerKey)
		if correct {
			attempt.Correct++
		}
		attempt.Results = append(attempt.Results, domain.QuestionResult{
			Question:  q,
			Submitted: answers[i],
			Correct:   correct,
		})

		topic := attempt.ByTopic[q.Topic]
		topic.Total++
		if correct {
			topic.Correct++
		}
		attempt.ByTopic[q.Topic] = topic

		diff := attempt.ByDifficulty[q.Difficulty]
		diff.Total++
		if correct {
			diff.Correct++
		}
		attempt.ByDifficulty[q.Difficulty] = diff

		attempt.TimeTaken += answers[i].TimeTaken
	}
	return attempt, nil
}

// answerMatches compares a submitted choice against the answer key after
// trimming whitespace, ignoring ASCII case. "b" matches "B", " 4 " matches
// "4"; anything else is an exact mismatch.
func answerMatches(submitted, key string) bool {
	submitted = strings.TrimSpace(submitted)
	key = strings.TrimSpace(key)
	if submitted == "" || key == "" {
		return false
	}
	return strings.EqualFold(submitted, key)
}
