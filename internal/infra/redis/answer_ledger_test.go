package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"classroom-quiz/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestAnswerLedgerKeepsFirstAnswer(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ledger := NewAnswerLedger(newClient(mr), time.Hour)
	ctx := context.Background()

	first := domain.StudentAnswer{SessionID: "s1", QuestionID: "q1", StudentID: "u1", SelectedOptionID: "o2", IsCorrect: true}
	if err := ledger.Record(ctx, first); err != nil {
		t.Fatalf("record: %v", err)
	}

	second := first
	second.SelectedOptionID = "o1"
	second.IsCorrect = false
	if err := ledger.Record(ctx, second); !errors.Is(err, domain.ErrAlreadyAnswered) {
		t.Fatalf("expected already answered, got %v", err)
	}

	answers, err := ledger.Answers(ctx, "s1", "u1")
	if err != nil {
		t.Fatalf("answers: %v", err)
	}
	if got := answers["q1"]; got.SelectedOptionID != "o2" || !got.IsCorrect {
		t.Fatalf("first answer was overwritten: %+v", got)
	}
	if ttl := mr.TTL("session:s1:student:u1:answers"); ttl <= 0 {
		t.Fatalf("expected ttl on answers hash, got %v", ttl)
	}
}
