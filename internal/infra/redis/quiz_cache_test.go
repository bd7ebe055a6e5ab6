package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"edututor-service/internal/domain"
	"edututor-service/internal/infra/memory"
)

func TestQuizCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	loader := &countingLoader{
		QuizLoader: memory.NewSeededQuizBank(map[string]domain.Quiz{
			"quiz-1": sampleQuiz(),
		}),
	}
	cache := NewQuizCache(client, loader, time.Minute)

	quiz, err := cache.GetQuiz(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if quiz.Questions[0].AnswerKey != "B" {
		t.Fatalf("cached quiz must keep the answer key, got %+v", quiz.Questions[0])
	}
	if !mr.Exists("quiz:quiz-1") {
		t.Fatalf("expected quiz cached in redis")
	}

	// Second call should hit cache, loader not incremented.
	again, err := cache.GetQuiz(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get quiz 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if again.Topic != quiz.Topic || len(again.Questions) != len(quiz.Questions) {
		t.Fatalf("cache round trip mangled the quiz: %+v", again)
	}
}

func TestQuizCacheMissingQuiz(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewQuizCache(client, memory.NewQuizBank(), time.Minute)

	if _, err := cache.GetQuiz(context.Background(), "nope"); err != domain.ErrQuizNotFound {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

type countingLoader struct {
	memory.QuizLoader
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
				},
				AnswerKey: "B",
			},
		},
	}
}
