package domain

import "time"

// Option represents a possible answer for a question.
type Option struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}

// Question models an MCQ question with exactly one correct option.
type Question struct {
	ID              string   `json:"id" yaml:"id"`
	Text            string   `json:"text" yaml:"text"`
	Options         []Option `json:"options" yaml:"options"`
	CorrectOptionID string   `json:"correctOptionId" yaml:"correct"`
	TimeLimit       int      `json:"timeLimit,omitempty" yaml:"time_limit,omitempty"` // seconds, 0 = untimed
}

// HasOption reports whether optionID belongs to the question.
func (q Question) HasOption(optionID string) bool {
	for _, opt := range q.Options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}

// View strips the correct option so the question can be shown while it is open.
func (q Question) View() QuestionView {
	opts := make([]Option, len(q.Options))
	copy(opts, q.Options)
	return QuestionView{ID: q.ID, Text: q.Text, Options: opts}
}

// Quiz is an ordered collection of questions authored by a teacher.
type Quiz struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Questions   []Question `json:"questions" yaml:"questions"`
	CreatedBy   string     `json:"createdBy" yaml:"created_by"`
	CreatedAt   time.Time  `json:"createdAt" yaml:"-"`
}

// Question returns the question with the given id and its index.
func (q Quiz) Question(questionID string) (Question, int, bool) {
	for i, question := range q.Questions {
		if question.ID == questionID {
			return question, i, true
		}
	}
	return Question{}, -1, false
}

// SessionStatus is the lifecycle state of a session.
type SessionStatus string

const (
	StatusWaiting   SessionStatus = "waiting"
	StatusActive    SessionStatus = "active"
	StatusCompleted SessionStatus = "completed"
)

// Session is a read-only snapshot of a running quiz session.
type Session struct {
	ID                   string        `json:"id"`
	Code                 string        `json:"code"`
	QuizID               string        `json:"quizId"`
	Status               SessionStatus `json:"status"`
	CurrentQuestionIndex int           `json:"currentQuestionIndex"`
	TotalQuestions       int           `json:"totalQuestions"`
	StartedAt            time.Time     `json:"startedAt"`
	EndedAt              *time.Time    `json:"endedAt,omitempty"`
	Students             int           `json:"students"`
}

// Student is an ephemeral identity valid within one session.
type Student struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SessionID string    `json:"sessionId"`
	JoinedAt  time.Time `json:"joinedAt"`
}

// JoinResult is handed to a student after joining by code.
type JoinResult struct {
	SessionID string `json:"sessionId"`
	StudentID string `json:"studentId"`
	Name      string `json:"name"`
}

// StudentAnswer is created once per (student, question) and never modified.
type StudentAnswer struct {
	SessionID        string        `json:"sessionId"`
	QuestionID       string        `json:"questionId"`
	StudentID        string        `json:"studentId"`
	SelectedOptionID string        `json:"selectedOptionId"`
	IsCorrect        bool          `json:"isCorrect"`
	ResponseTime     time.Duration `json:"responseTime"`
	AnsweredAt       time.Time     `json:"answeredAt"`
	Auto             bool          `json:"auto,omitempty"`
}

// QuestionView is a question without its correct option.
type QuestionView struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []Option `json:"options"`
}

// CurrentQuestion is what a viewer sees for the active question.
type CurrentQuestion struct {
	Index         int          `json:"index"`
	Total         int          `json:"total"`
	Question      QuestionView `json:"question"`
	Timed         bool         `json:"timed"`
	TimeLimit     int          `json:"timeLimit"`
	TimeRemaining int          `json:"timeRemaining"`
}

// Score is a student's running tally.
type Score struct {
	StudentID string `json:"studentId"`
	Correct   int    `json:"correct"`
	Total     int    `json:"total"`
}

// QuestionResult aggregates all answers given to one question.
type QuestionResult struct {
	QuestionID          string         `json:"questionId"`
	Correct             int            `json:"correctResponses"`
	Incorrect           int            `json:"incorrectResponses"`
	AverageResponseTime time.Duration  `json:"averageResponseTime"`
	OptionDistribution  map[string]int `json:"optionDistribution"`
}

// StudentResult is one row of the final leaderboard.
type StudentResult struct {
	StudentID           string        `json:"studentId"`
	Name                string        `json:"name"`
	Score               int           `json:"score"`
	TotalCorrect        int           `json:"totalCorrect"`
	AverageResponseTime time.Duration `json:"averageResponseTime"`
}

// QuizResults summarizes a session for the teacher.
type QuizResults struct {
	SessionID     string           `json:"sessionId"`
	QuizID        string           `json:"quizId"`
	TotalStudents int              `json:"totalStudents"`
	Questions     []QuestionResult `json:"questionResults"`
	Students      []StudentResult  `json:"studentResults"`
}

// EventType names a session update pushed to watchers.
type EventType string

const (
	EventJoined    EventType = "joined"
	EventQuestion  EventType = "question"
	EventTick      EventType = "tick"
	EventTimeUp    EventType = "time_up"
	EventAnswered  EventType = "answered"
	EventCompleted EventType = "completed"
)

// SessionEvent is a snapshot-friendly update for session watchers.
type SessionEvent struct {
	Type          EventType     `json:"type"`
	SessionID     string        `json:"sessionId"`
	Status        SessionStatus `json:"status"`
	QuestionIndex int           `json:"questionIndex"`
	TimeRemaining int           `json:"timeRemaining"`
	Students      int           `json:"students"`
	Answers       int           `json:"answers"`
}

// LiveSnapshot is one frame of the illustrative live-updates feed.
type LiveSnapshot struct {
	Students     int                `json:"students"`
	Distribution map[string]int     `json:"distribution"`
	Percentages  map[string]float64 `json:"percentages"`
}
