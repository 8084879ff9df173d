package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"classroom-quiz/internal/domain"
	"classroom-quiz/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestQuizRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	store := &countingStore{
		QuizStore: memory.NewStaticQuizStore(map[string]domain.Quiz{
			"quiz-1": sampleQuiz(),
		}),
	}
	repo := NewQuizRepository(client, store, time.Minute)

	quiz, err := repo.GetQuiz(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if store.loads != 1 {
		t.Fatalf("expected store called once, got %d", store.loads)
	}
	if !mr.Exists("quiz:quiz-1") {
		t.Fatalf("expected quiz cached in redis")
	}

	// Second call should hit cache, store not incremented.
	cached, _ := repo.GetQuiz(context.Background(), "quiz-1")
	if store.loads != 1 {
		t.Fatalf("expected cache hit, store loads=%d", store.loads)
	}
	if cached.Questions[0].CorrectOptionID != quiz.Questions[0].CorrectOptionID || len(cached.Questions[0].Options) != 2 {
		t.Fatalf("cached quiz lost content: %+v", cached)
	}

	mr.FastForward(2 * time.Minute)
	_, _ = repo.GetQuiz(context.Background(), "quiz-1")
	if store.loads != 2 {
		t.Fatalf("expected reload after expiry, store loads=%d", store.loads)
	}
}

func TestQuizRepositoryPropagatesNotFound(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	repo := NewQuizRepository(newClient(mr), memory.NewStaticQuizStore(nil), time.Minute)
	if _, err := repo.GetQuiz(context.Background(), "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
}

func TestQuizRepositorySaveWritesThrough(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := &countingStore{QuizStore: memory.NewStaticQuizStore(nil)}
	repo := NewQuizRepository(newClient(mr), store, time.Minute)

	if err := repo.SaveQuiz(context.Background(), sampleQuiz()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := repo.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if store.loads != 0 {
		t.Fatalf("expected cache hit after save, store loads=%d", store.loads)
	}
	list, _ := repo.ListQuizzes(context.Background())
	if len(list) != 1 {
		t.Fatalf("expected saved quiz in store, got %d", len(list))
	}
}

type countingStore struct {
	memory.QuizStore
	loads int
}

func (s *countingStore) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	s.loads++
	return s.QuizStore.LoadQuiz(ctx, quizID)
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:    "quiz-1",
		Title: "Arithmetic",
		Questions: []domain.Question{
			{
				ID:   "q1",
				Text: "What is 2 + 2?",
				Options: []domain.Option{
					{ID: "o1", Text: "3"},
					{ID: "o2", Text: "4"},
				},
				CorrectOptionID: "o2",
				TimeLimit:       20,
			},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
