package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quizcamp-service/internal/domain"
)

// QuestionLoader fetches the ordered question list from the backing store.
type QuestionLoader interface {
	Questions(ctx context.Context, quizPublicID string) ([]domain.Question, error)
}

// QuestionCache caches per-quiz question lists in Redis as a JSON value under
// quiz:{publicID}:questions and falls back to the loader on miss or Redis
// error. Mutations invalidate the key; the next read refills it.
type QuestionCache struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuestionCache(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) Questions(ctx context.Context, quizPublicID string) ([]domain.Question, error) {
	key := c.key(quizPublicID)

	if questions, ok := c.fromCache(ctx, key); ok {
		return questions, nil
	}

	result, err, _ := c.sf.Do(quizPublicID, func() (interface{}, error) {
		// Re-check in case another goroutine filled the key.
		if questions, ok := c.fromCache(ctx, key); ok {
			return questions, nil
		}

		questions, err := c.loader.Questions(ctx, quizPublicID)
		if err != nil {
			return nil, err
		}

		if raw, err := json.Marshal(questions); err == nil {
			// best-effort fill
			_ = c.client.Set(ctx, key, raw, c.ttlWithJitter()).Err()
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// Invalidate drops the cached list after a mutation so the next read observes
// the authoritative store.
func (c *QuestionCache) Invalidate(ctx context.Context, quizPublicID string) {
	_ = c.client.Del(ctx, c.key(quizPublicID)).Err()
}

func (c *QuestionCache) fromCache(ctx context.Context, key string) ([]domain.Question, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, false
	}
	return questions, true
}

func (c *QuestionCache) key(quizPublicID string) string {
	return "quiz:" + quizPublicID + ":questions"
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
