package memory

import (
	"errors"
	"testing"

	"classroom-quiz/internal/app"
	"classroom-quiz/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()

	session := app.NewSession("s1", "ABC123", sampleQuiz())
	if err := store.Add(session); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, ok := store.Get("s1"); !ok {
		t.Fatalf("expected session present")
	}
	if got, ok := store.GetByCode("ABC123"); !ok || got.ID() != "s1" {
		t.Fatalf("expected lookup by code")
	}

	store.Delete("s1")
	if _, ok := store.Get("s1"); ok {
		t.Fatalf("expected session removed")
	}
	if _, ok := store.GetByCode("ABC123"); ok {
		t.Fatalf("expected code released")
	}
}

func TestSessionStoreRejectsTakenCode(t *testing.T) {
	store := NewSessionStore()
	_ = store.Add(app.NewSession("s1", "ABC123", sampleQuiz()))

	err := store.Add(app.NewSession("s2", "ABC123", sampleQuiz()))
	if !errors.Is(err, domain.ErrCodeTaken) {
		t.Fatalf("expected code taken, got %v", err)
	}
	if _, ok := store.Get("s2"); ok {
		t.Fatalf("rejected session must not be stored")
	}
}
