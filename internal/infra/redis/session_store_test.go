package redis

import (
	"errors"
	"testing"
	"time"

	"classroom-quiz/internal/app"
	"classroom-quiz/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewSessionStore(newClient(mr), time.Minute)

	if err := store.Add(app.NewSession("s1", "ABC123", sampleQuiz())); err != nil {
		t.Fatalf("add: %v", err)
	}
	if !mr.Exists("quiz:code:ABC123") {
		t.Fatalf("expected redis key to be set")
	}
	if got, ok := store.GetByCode("ABC123"); !ok || got.ID() != "s1" {
		t.Fatalf("expected lookup by code")
	}

	store.Delete("s1")
	if mr.Exists("quiz:code:ABC123") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, ok := store.Get("s1"); ok {
		t.Fatalf("expected session removed")
	}
}

func TestSessionStoreRejectsCodeReservedElsewhere(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	// Two instances sharing one Redis.
	first := NewSessionStore(newClient(mr), time.Minute)
	second := NewSessionStore(newClient(mr), time.Minute)

	if err := first.Add(app.NewSession("s1", "ZZZ999", sampleQuiz())); err != nil {
		t.Fatalf("add: %v", err)
	}
	err = second.Add(app.NewSession("s2", "ZZZ999", sampleQuiz()))
	if !errors.Is(err, domain.ErrCodeTaken) {
		t.Fatalf("expected code taken, got %v", err)
	}

	mr.FastForward(2 * time.Minute)
	if err := second.Add(app.NewSession("s2", "ZZZ999", sampleQuiz())); err != nil {
		t.Fatalf("expected expired reservation to be reusable, got %v", err)
	}
}
