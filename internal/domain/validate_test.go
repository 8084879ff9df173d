package domain

import (
	"errors"
	"testing"
)

func TestValidateQuizAcceptsWellFormedQuiz(t *testing.T) {
	if err := ValidateQuiz(validQuiz()); err != nil {
		t.Fatalf("expected valid quiz, got %v", err)
	}
}

func TestValidateQuizRejectsMalformedDefinitions(t *testing.T) {
	cases := map[string]func(q *Quiz){
		"missing title":       func(q *Quiz) { q.Title = "  " },
		"no questions":        func(q *Quiz) { q.Questions = nil },
		"missing question id": func(q *Quiz) { q.Questions[0].ID = "" },
		"duplicate question":  func(q *Quiz) { q.Questions[1].ID = q.Questions[0].ID },
		"empty question":      func(q *Quiz) { q.Questions[0].Text = "" },
		"one option":          func(q *Quiz) { q.Questions[0].Options = q.Questions[0].Options[:1] },
		"empty option text":   func(q *Quiz) { q.Questions[0].Options[1].Text = "" },
		"duplicate option":    func(q *Quiz) { q.Questions[0].Options[1].ID = "o1" },
		"no correct option":   func(q *Quiz) { q.Questions[1].CorrectOptionID = "" },
		"unknown correct":     func(q *Quiz) { q.Questions[1].CorrectOptionID = "o9" },
		"negative limit":      func(q *Quiz) { q.Questions[0].TimeLimit = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			q := validQuiz()
			mutate(&q)
			err := ValidateQuiz(q)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Reason == "" {
				t.Fatalf("expected *ValidationError with reason, got %#v", err)
			}
		})
	}
}

func TestValidateQuizPrefixesQuestionField(t *testing.T) {
	q := validQuiz()
	q.Questions[1].Options[0].Text = ""

	var ve *ValidationError
	if !errors.As(ValidateQuiz(q), &ve) {
		t.Fatalf("expected validation error")
	}
	if ve.Field != "questions[1].options[0].text" {
		t.Fatalf("unexpected field %q", ve.Field)
	}
}

func TestNotFoundKinds(t *testing.T) {
	for _, err := range []error{ErrSessionNotFound, ErrStudentNotFound, ErrQuizNotFound, ErrQuestionNotFound, ErrOptionNotFound} {
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("%v should be a NotFound kind", err)
		}
	}
	if errors.Is(ErrSessionClosed, ErrNotFound) {
		t.Fatalf("session closed must not be a NotFound kind")
	}
	if ErrSessionNotFound.Error() != "quiz session not found" {
		t.Fatalf("unexpected message %q", ErrSessionNotFound.Error())
	}
}

func TestQuestionViewHidesCorrectOption(t *testing.T) {
	q := validQuiz().Questions[0]
	view := q.View()
	if view.ID != q.ID || len(view.Options) != len(q.Options) {
		t.Fatalf("unexpected view %+v", view)
	}
	view.Options[0].Text = "changed"
	if q.Options[0].Text == "changed" {
		t.Fatalf("view must not alias question options")
	}
}

func validQuiz() Quiz {
	return Quiz{
		ID:    "quiz-1",
		Title: "Introduction to Go",
		Questions: []Question{
			{
				ID:   "q1",
				Text: "Which keyword starts a goroutine?",
				Options: []Option{
					{ID: "o1", Text: "go"},
					{ID: "o2", Text: "async"},
				},
				CorrectOptionID: "o1",
				TimeLimit:       30,
			},
			{
				ID:   "q2",
				Text: "What does len return for a nil slice?",
				Options: []Option{
					{ID: "o1", Text: "panic"},
					{ID: "o2", Text: "0"},
				},
				CorrectOptionID: "o2",
			},
		},
	}
}
