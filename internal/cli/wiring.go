package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"classroom-quiz/internal/app"
	"classroom-quiz/internal/config"
	"classroom-quiz/internal/domain"
	"classroom-quiz/internal/infra/memory"
	pgstore "classroom-quiz/internal/infra/postgres"
	infraredis "classroom-quiz/internal/infra/redis"
	"classroom-quiz/internal/livefeed"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
)

// runtime is the service plus whatever connections it holds open.
type runtime struct {
	service *app.QuizService
	feed    livefeed.Feed
	closers []func()
}

func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

// buildRuntime picks Postgres or the built-in catalog, and Redis or in-memory session state,
// depending on what the config names.
func buildRuntime(ctx context.Context, cfg config.Config) (*runtime, error) {
	rt := &runtime{}

	var store memory.QuizStore = memory.NewStaticQuizStore(sampleQuizzes(time.Now()))
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		rt.closers = append(rt.closers, pool.Close)
		store = pgstore.NewQuizStore(pool)
	} else {
		log.Printf("no postgres url configured, using the built-in sample catalog")
	}

	quizTTL := config.Duration(cfg.Quiz.TTL, 10*time.Minute)
	opts := []app.ServiceOption{
		app.WithCodeGenerator(app.NewCodeGenerator(cfg.Session.CodeLength, nil)),
		app.WithTickSource(app.RealTicks, config.Duration(cfg.Session.TickInterval, time.Second)),
		app.WithLatency(config.Duration(cfg.Session.Latency, 0)),
	}

	var (
		sessions app.SessionRepository
		quizzes  app.QuizCatalog
	)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			rt.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		rt.closers = append(rt.closers, func() { _ = client.Close() })

		redisTTL := config.Duration(cfg.Redis.TTL, 2*time.Hour)
		sessions = infraredis.NewSessionStore(client, redisTTL)
		quizzes = infraredis.NewQuizRepository(client, store, quizTTL)
		opts = append(opts, app.WithAnswerLedger(infraredis.NewAnswerLedger(client, redisTTL)))
		log.Printf("using redis at %s for join codes and answers", cfg.Redis.Addr)
	} else {
		sessions = memory.NewSessionStore()
		quizzes = memory.NewQuizRepository(store, quizTTL)
	}

	if cfg.Simulate.Enabled {
		rt.feed = livefeed.NewSimulated(
			cfg.Simulate.Seed,
			cfg.Simulate.MaxStudents,
			config.Duration(cfg.Simulate.Period, livefeed.DefaultPeriod),
			nil,
		)
	}

	rt.service = app.NewQuizService(sessions, quizzes, opts...)
	return rt, nil
}

// sampleQuizzes seeds the catalog when no database is configured.
func sampleQuizzes(now time.Time) map[string]domain.Quiz {
	opts := func(texts ...string) []domain.Option {
		out := make([]domain.Option, len(texts))
		for i, text := range texts {
			out[i] = domain.Option{ID: fmt.Sprintf("o%d", i+1), Text: text}
		}
		return out
	}
	return map[string]domain.Quiz{
		"quiz1": {
			ID:          "quiz1",
			Title:       "Introduction to React",
			Description: "Test your knowledge of React fundamentals",
			Questions: []domain.Question{
				{
					ID:              "q1",
					Text:            "What is React?",
					Options:         opts("A JavaScript library for building user interfaces", "A programming language", "A database management system", "A design software"),
					CorrectOptionID: "o1",
					TimeLimit:       30,
				},
				{
					ID:              "q2",
					Text:            "What is JSX?",
					Options:         opts("A JavaScript extension for SQL", "A syntax extension for JavaScript recommended for React", "A new programming language", "JavaScript XML"),
					CorrectOptionID: "o2",
					TimeLimit:       30,
				},
				{
					ID:              "q3",
					Text:            "Which of the following is used to pass data to a component in React?",
					Options:         opts("setState", "render", "props", "propTypes"),
					CorrectOptionID: "o3",
					TimeLimit:       20,
				},
			},
			CreatedBy: "teacher1",
			CreatedAt: now.Add(-7 * 24 * time.Hour),
		},
		"quiz2": {
			ID:          "quiz2",
			Title:       "JavaScript Basics",
			Description: "Test your knowledge of JavaScript fundamentals",
			Questions: []domain.Question{
				{
					ID:              "q1",
					Text:            "Which of the following is NOT a JavaScript data type?",
					Options:         opts("String", "Boolean", "Character", "Number"),
					CorrectOptionID: "o3",
					TimeLimit:       20,
				},
				{
					ID:              "q2",
					Text:            "What will be the output of: console.log(typeof [])?",
					Options:         opts("array", "object", "undefined", "null"),
					CorrectOptionID: "o2",
					TimeLimit:       25,
				},
			},
			CreatedBy: "teacher1",
			CreatedAt: now.Add(-2 * 24 * time.Hour),
		},
	}
}
