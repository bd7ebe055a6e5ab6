// Package redis caches quiz content in Redis so repeated submissions against
// the same quiz do not hit the bank. Selected at startup when Redis is
// configured; the in-memory cache is the fallback.
package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"edututor-service/internal/domain"
	"edututor-service/internal/infra/memory"
)

// QuizCache stores whole quizzes as JSON under quiz:{quizID} with a
// jittered TTL, falling back to the loader on cache miss.
type QuizCache struct {
	client *redis.Client
	loader memory.QuizLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuizCache(client *redis.Client, loader memory.QuizLoader, ttl time.Duration) *QuizCache {
	return &QuizCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuizCache) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	key := c.key(quizID)

	if quiz, ok := c.fromCache(ctx, key); ok {
		return quiz, nil
	}

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if quiz, ok := c.fromCache(ctx, key); ok {
			return quiz, nil
		}

		quiz, err := c.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}

		data, err := json.Marshal(quiz)
		if err != nil {
			return domain.Quiz{}, err
		}
		// best-effort: a failed cache write only costs the next lookup
		_ = c.client.Set(ctx, key, data, c.ttlWithJitter()).Err()
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (c *QuizCache) fromCache(ctx context.Context, key string) (domain.Quiz, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// redis.Nil and transport errors alike fall through to the loader
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(data, &quiz); err != nil {
		return domain.Quiz{}, false
	}
	return quiz, true
}

func (c *QuizCache) key(quizID string) string {
	return "quiz:" + quizID
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
