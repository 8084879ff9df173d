package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"classroom-quiz/internal/domain"
	"github.com/redis/go-redis/v9"
)

// AnswerLedger records answers in one Redis hash per student:
//
//	HSETNX session:{sessionID}:student:{studentID}:answers {questionID} {json}
//
// HSETNX makes the first answer for a question stick.
type AnswerLedger struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAnswerLedger(client *redis.Client, ttl time.Duration) *AnswerLedger {
	return &AnswerLedger{client: client, ttl: ttl}
}

func (l *AnswerLedger) Record(ctx context.Context, answer domain.StudentAnswer) error {
	data, err := json.Marshal(answer)
	if err != nil {
		return fmt.Errorf("marshal answer: %w", err)
	}
	key := l.key(answer.SessionID, answer.StudentID)
	ok, err := l.client.HSetNX(ctx, key, answer.QuestionID, data).Result()
	if err != nil {
		return fmt.Errorf("record answer: %w", err)
	}
	if !ok {
		return domain.ErrAlreadyAnswered
	}
	if l.ttl > 0 {
		if err := l.client.Expire(ctx, key, l.ttl).Err(); err != nil {
			return fmt.Errorf("expire answers: %w", err)
		}
	}
	return nil
}

// Answers returns the recorded answers of one student keyed by question id.
func (l *AnswerLedger) Answers(ctx context.Context, sessionID, studentID string) (map[string]domain.StudentAnswer, error) {
	raw, err := l.client.HGetAll(ctx, l.key(sessionID, studentID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}
	out := make(map[string]domain.StudentAnswer, len(raw))
	for questionID, data := range raw {
		var answer domain.StudentAnswer
		if err := json.Unmarshal([]byte(data), &answer); err != nil {
			// skip malformed answer but continue collecting others
			continue
		}
		out[questionID] = answer
	}
	return out, nil
}

func (l *AnswerLedger) key(sessionID, studentID string) string {
	return "session:" + sessionID + ":student:" + studentID + ":answers"
}
