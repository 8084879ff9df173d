package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ValidateQuiz checks a quiz definition before it is stored or hosted.
func ValidateQuiz(q Quiz) error {
	if strings.TrimSpace(q.Title) == "" {
		return invalid("title", "quiz title is required")
	}
	if len(q.Questions) == 0 {
		return invalid("questions", "quiz needs at least one question")
	}
	seen := make(map[string]struct{}, len(q.Questions))
	for i, question := range q.Questions {
		if question.ID == "" {
			return invalid(fmt.Sprintf("questions[%d].id", i), "question id is required")
		}
		if _, dup := seen[question.ID]; dup {
			return invalid(fmt.Sprintf("questions[%d].id", i), "duplicate question id %q", question.ID)
		}
		seen[question.ID] = struct{}{}
		if err := ValidateQuestion(question); err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				ve.Field = fmt.Sprintf("questions[%d].%s", i, ve.Field)
			}
			return err
		}
	}
	return nil
}

// ValidateQuestion checks a single question.
func ValidateQuestion(q Question) error {
	if strings.TrimSpace(q.Text) == "" {
		return invalid("text", "question text is required")
	}
	if len(q.Options) < 2 {
		return invalid("options", "question needs at least two options")
	}
	ids := make(map[string]struct{}, len(q.Options))
	for i, opt := range q.Options {
		if strings.TrimSpace(opt.Text) == "" {
			return invalid(fmt.Sprintf("options[%d].text", i), "option text is required")
		}
		if opt.ID == "" {
			return invalid(fmt.Sprintf("options[%d].id", i), "option id is required")
		}
		if _, dup := ids[opt.ID]; dup {
			return invalid(fmt.Sprintf("options[%d].id", i), "duplicate option id %q", opt.ID)
		}
		ids[opt.ID] = struct{}{}
	}
	if q.CorrectOptionID == "" {
		return invalid("correctOptionId", "a correct option must be selected")
	}
	if _, ok := ids[q.CorrectOptionID]; !ok {
		return invalid("correctOptionId", "correct option %q is not one of the options", q.CorrectOptionID)
	}
	if q.TimeLimit < 0 {
		return invalid("timeLimit", "time limit cannot be negative")
	}
	return nil
}
