package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"edututor-service/internal/domain"
)

// QuizLoader fetches quiz content from a backing store (the quiz bank).
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizCache caches quizzes with TTL to avoid repeated bank hits while a
// quiz is being taken.
type QuizCache struct {
	loader QuizLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedQuiz
}

type cachedQuiz struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

func NewQuizCache(loader QuizLoader, ttl time.Duration) *QuizCache {
	return &QuizCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedQuiz),
	}
}

func (c *QuizCache) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[quizID]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.quiz, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[quizID]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.quiz, nil
		}
		c.mu.RUnlock()

		quiz, err := c.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}

		c.mu.Lock()
		c.cache[quizID] = cachedQuiz{
			quiz:      quiz,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

// QuizBank is an in-memory quiz bank for single-node or test setups. It
// implements both the bank and loader sides.
type QuizBank struct {
	mu      sync.RWMutex
	quizzes map[string]domain.Quiz
}

func NewQuizBank() *QuizBank {
	return &QuizBank{quizzes: make(map[string]domain.Quiz)}
}

// NewSeededQuizBank is useful for tests and demos.
func NewSeededQuizBank(quizzes map[string]domain.Quiz) *QuizBank {
	bank := NewQuizBank()
	for id, quiz := range quizzes {
		bank.quizzes[id] = quiz
	}
	return bank
}

func (b *QuizBank) SaveQuiz(_ context.Context, quiz domain.Quiz) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.quizzes[quiz.ID] = quiz
	return nil
}

func (b *QuizBank) LoadQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if quiz, ok := b.quizzes[quizID]; ok {
		return quiz, nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}
