package app

import (
	"sort"
	"time"

	"classroom-quiz/internal/domain"
)

// results aggregates every recorded answer. It is valid in any state.
func (s *Session) results() domain.QuizResults {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byQuestion := make(map[string][]domain.StudentAnswer, len(s.quiz.Questions))
	byStudent := make(map[string][]domain.StudentAnswer, len(s.students))
	for _, answer := range s.answers {
		byQuestion[answer.QuestionID] = append(byQuestion[answer.QuestionID], answer)
		byStudent[answer.StudentID] = append(byStudent[answer.StudentID], answer)
	}

	questions := make([]domain.QuestionResult, 0, len(s.quiz.Questions))
	for _, question := range s.quiz.Questions {
		result := domain.QuestionResult{
			QuestionID:         question.ID,
			OptionDistribution: make(map[string]int, len(question.Options)),
		}
		for _, opt := range question.Options {
			result.OptionDistribution[opt.ID] = 0
		}
		answers := byQuestion[question.ID]
		for _, answer := range answers {
			if answer.IsCorrect {
				result.Correct++
			} else {
				result.Incorrect++
			}
			result.OptionDistribution[answer.SelectedOptionID]++
		}
		result.AverageResponseTime = averageResponse(answers)
		questions = append(questions, result)
	}

	students := make([]domain.StudentResult, 0, len(s.joinOrder))
	for _, studentID := range s.joinOrder {
		answers := byStudent[studentID]
		correct := 0
		for _, answer := range answers {
			if answer.IsCorrect {
				correct++
			}
		}
		students = append(students, domain.StudentResult{
			StudentID:           studentID,
			Name:                s.students[studentID].Name,
			Score:               correct,
			TotalCorrect:        correct,
			AverageResponseTime: averageResponse(answers),
		})
	}

	// Score desc, then faster average response, then name.
	sort.SliceStable(students, func(i, j int) bool {
		if students[i].Score != students[j].Score {
			return students[i].Score > students[j].Score
		}
		if students[i].AverageResponseTime != students[j].AverageResponseTime {
			return students[i].AverageResponseTime < students[j].AverageResponseTime
		}
		return students[i].Name < students[j].Name
	})

	return domain.QuizResults{
		SessionID:     s.id,
		QuizID:        s.quiz.ID,
		TotalStudents: len(s.students),
		Questions:     questions,
		Students:      students,
	}
}

func averageResponse(answers []domain.StudentAnswer) time.Duration {
	if len(answers) == 0 {
		return 0
	}
	var total time.Duration
	for _, answer := range answers {
		total += answer.ResponseTime
	}
	return total / time.Duration(len(answers))
}
