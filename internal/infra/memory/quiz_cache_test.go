package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"edututor-service/internal/domain"
)

func TestQuizCacheCaches(t *testing.T) {
	loader := &countingLoader{
		QuizLoader: NewSeededQuizBank(map[string]domain.Quiz{
			"quiz-1": sampleQuiz(),
		}),
	}
	cache := NewQuizCache(loader, time.Minute)

	if _, err := cache.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := cache.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestQuizBankRoundTrip(t *testing.T) {
	bank := NewQuizBank()
	ctx := context.Background()

	if _, err := bank.LoadQuiz(ctx, "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}

	quiz := sampleQuiz()
	if err := bank.SaveQuiz(ctx, quiz); err != nil {
		t.Fatalf("save quiz: %v", err)
	}
	loaded, err := bank.LoadQuiz(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("load quiz: %v", err)
	}
	if loaded.ID != quiz.ID || len(loaded.Questions) != len(quiz.Questions) {
		t.Fatalf("unexpected quiz %+v", loaded)
	}
}

type countingLoader struct {
	QuizLoader
	calls int
}

func (l *countingLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	l.calls++
	return l.QuizLoader.LoadQuiz(ctx, quizID)
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:         "quiz-1",
		Topic:      "arithmetic",
		Difficulty: domain.DifficultyEasy,
		Questions: []domain.QuizQuestion{
			{
				ID:         "q1",
				Topic:      "arithmetic",
				Difficulty: domain.DifficultyEasy,
				Prompt:     "What is 2 + 2?",
				Choices: []domain.Choice{
					{Key: "A", Text: "3"},
					{Key: "B", Text: "4"},
					{Key: "C", Text: "5"},
				},
				AnswerKey: "B",
			},
		},
	}
}
