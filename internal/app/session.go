package app

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"classroom-quiz/internal/domain"
	"github.com/google/uuid"
)

// AnswerLedger keeps an external record of submitted answers.
// Record must fail with domain.ErrAlreadyAnswered when the pair was already recorded.
type AnswerLedger interface {
	Record(ctx context.Context, answer domain.StudentAnswer) error
}

// SessionSettings carries the collaborators a session needs beyond its quiz.
type SessionSettings struct {
	Now          func() time.Time
	NewID        func() string
	Ticks        TickSource
	TickInterval time.Duration
	Ledger       AnswerLedger
}

func (c SessionSettings) withDefaults() SessionSettings {
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.NewID == nil {
		c.NewID = uuid.NewString
	}
	if c.Ticks == nil {
		c.Ticks = RealTicks
	}
	if c.TickInterval <= 0 {
		c.TickInterval = time.Second
	}
	return c
}

// Session is the state machine for one quiz being administered.
// Status moves waiting -> active -> completed and the question index never decreases.
type Session struct {
	id       string
	code     string
	quiz     domain.Quiz
	settings SessionSettings

	mu                sync.RWMutex
	status            domain.SessionStatus
	index             int
	startedAt         time.Time
	endedAt           *time.Time
	questionStartedAt time.Time
	countdown         *Countdown
	timeUp            bool
	students          map[string]*studentState
	joinOrder         []string
	answers           []domain.StudentAnswer
	answered          map[answerKey]int
	pending           map[string]string
	subscribers       map[chan domain.SessionEvent]struct{}
}

type studentState struct {
	domain.Student
	left bool
}

type answerKey struct {
	studentID  string
	questionID string
}

// NewSession builds a waiting session for quiz with default settings.
func NewSession(id, code string, quiz domain.Quiz) *Session {
	return NewSessionWithSettings(id, code, quiz, SessionSettings{})
}

// NewSessionWithSettings allows deterministic clocks and tick sources in tests.
func NewSessionWithSettings(id, code string, quiz domain.Quiz, settings SessionSettings) *Session {
	settings = settings.withDefaults()
	return &Session{
		id:          id,
		code:        code,
		quiz:        quiz,
		settings:    settings,
		status:      domain.StatusWaiting,
		startedAt:   settings.Now(),
		students:    make(map[string]*studentState),
		answered:    make(map[answerKey]int),
		pending:     make(map[string]string),
		subscribers: make(map[chan domain.SessionEvent]struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Code returns the join code.
func (s *Session) Code() string { return s.code }

// Snapshot returns the session's current public state.
func (s *Session) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() domain.Session {
	var ended *time.Time
	if s.endedAt != nil {
		t := *s.endedAt
		ended = &t
	}
	return domain.Session{
		ID:                   s.id,
		Code:                 s.code,
		QuizID:               s.quiz.ID,
		Status:               s.status,
		CurrentQuestionIndex: s.index,
		TotalQuestions:       len(s.quiz.Questions),
		StartedAt:            s.startedAt,
		EndedAt:              ended,
		Students:             len(s.students),
	}
}

func (s *Session) admit(name string) (domain.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == domain.StatusCompleted {
		return domain.Student{}, domain.ErrSessionClosed
	}
	student := domain.Student{
		ID:        s.settings.NewID(),
		Name:      strings.TrimSpace(name),
		SessionID: s.id,
		JoinedAt:  s.settings.Now(),
	}
	s.students[student.ID] = &studentState{Student: student}
	s.joinOrder = append(s.joinOrder, student.ID)
	s.broadcastLocked(domain.EventJoined)
	return student, nil
}

// activate moves a waiting session to active and returns the current question.
func (s *Session) activate() (domain.CurrentQuestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.status {
	case domain.StatusCompleted:
		return domain.CurrentQuestion{}, domain.ErrSessionClosed
	case domain.StatusWaiting:
		s.status = domain.StatusActive
		s.startQuestionLocked()
		s.broadcastLocked(domain.EventQuestion)
	}
	return s.currentLocked(), nil
}

func (s *Session) currentLocked() domain.CurrentQuestion {
	question := s.quiz.Questions[s.index]
	current := domain.CurrentQuestion{
		Index:     s.index,
		Total:     len(s.quiz.Questions),
		Question:  question.View(),
		Timed:     question.TimeLimit > 0,
		TimeLimit: question.TimeLimit,
	}
	if s.countdown != nil {
		current.TimeRemaining = s.countdown.Remaining()
	}
	return current
}

// startQuestionLocked resets per-question state and restarts the countdown.
func (s *Session) startQuestionLocked() {
	s.stopCountdownLocked()
	s.timeUp = false
	s.pending = make(map[string]string)
	s.questionStartedAt = s.settings.Now()

	limit := s.quiz.Questions[s.index].TimeLimit
	if limit <= 0 {
		return
	}
	cd := NewCountdown(limit)
	s.countdown = cd
	cd.Start(s.settings.Ticks, s.settings.TickInterval, func(remaining int) {
		s.handleTick(cd, remaining)
	})
}

func (s *Session) stopCountdownLocked() {
	if s.countdown != nil {
		s.countdown.Stop()
		s.countdown = nil
	}
}

func (s *Session) handleTick(cd *Countdown, remaining int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Ticks from a countdown replaced by advance or end are stale.
	if s.countdown != cd || s.status != domain.StatusActive {
		return
	}
	if remaining > 0 {
		s.broadcastLocked(domain.EventTick)
		return
	}
	s.timeUp = true
	s.autoSubmitLocked()
	s.broadcastLocked(domain.EventTimeUp)
}

// autoSubmitLocked submits the selected-but-unsubmitted options when time runs out.
func (s *Session) autoSubmitLocked() {
	question := s.quiz.Questions[s.index]
	for _, studentID := range s.joinOrder {
		optionID, ok := s.pending[studentID]
		if !ok {
			continue
		}
		if st := s.students[studentID]; st == nil || st.left {
			continue
		}
		if _, done := s.answered[answerKey{studentID, question.ID}]; done {
			continue
		}
		if _, err := s.recordLocked(context.Background(), studentID, question, optionID, true); err != nil {
			log.Printf("auto-submit for student %s in session %s failed: %v", studentID, s.id, err)
		}
	}
	s.pending = make(map[string]string)
}

func (s *Session) selectOption(studentID, optionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpenLocked(studentID); err != nil {
		return err
	}
	if s.status != domain.StatusActive {
		return domain.ErrQuestionNotActive
	}
	question := s.quiz.Questions[s.index]
	if !question.HasOption(optionID) {
		return domain.ErrOptionNotFound
	}
	if _, done := s.answered[answerKey{studentID, question.ID}]; done {
		return domain.ErrAlreadyAnswered
	}
	if s.timeUp {
		return domain.ErrTimeUp
	}
	s.pending[studentID] = optionID
	return nil
}

func (s *Session) submit(ctx context.Context, studentID, questionID, optionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpenLocked(studentID); err != nil {
		return false, err
	}
	question, idx, ok := s.quiz.Question(questionID)
	if !ok {
		return false, domain.ErrQuestionNotFound
	}
	if !question.HasOption(optionID) {
		return false, domain.ErrOptionNotFound
	}
	if s.status != domain.StatusActive || idx != s.index {
		return false, domain.ErrQuestionNotActive
	}
	if _, done := s.answered[answerKey{studentID, questionID}]; done {
		return false, domain.ErrAlreadyAnswered
	}
	if s.timeUp {
		return false, domain.ErrTimeUp
	}
	return s.recordLocked(ctx, studentID, question, optionID, false)
}

func (s *Session) checkOpenLocked(studentID string) error {
	if s.status == domain.StatusCompleted {
		return domain.ErrSessionClosed
	}
	if st, ok := s.students[studentID]; !ok || st.left {
		return domain.ErrStudentNotFound
	}
	return nil
}

func (s *Session) recordLocked(ctx context.Context, studentID string, question domain.Question, optionID string, auto bool) (bool, error) {
	now := s.settings.Now()
	answer := domain.StudentAnswer{
		SessionID:        s.id,
		QuestionID:       question.ID,
		StudentID:        studentID,
		SelectedOptionID: optionID,
		IsCorrect:        optionID == question.CorrectOptionID,
		ResponseTime:     now.Sub(s.questionStartedAt),
		AnsweredAt:       now,
		Auto:             auto,
	}
	if s.settings.Ledger != nil {
		if err := s.settings.Ledger.Record(ctx, answer); err != nil {
			return false, err
		}
	}
	s.answered[answerKey{studentID, question.ID}] = len(s.answers)
	s.answers = append(s.answers, answer)
	delete(s.pending, studentID)
	s.broadcastLocked(domain.EventAnswered)
	return answer.IsCorrect, nil
}

// advance moves to the next question, or completes the session when none is left.
func (s *Session) advance() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == domain.StatusCompleted {
		return false, domain.ErrSessionClosed
	}
	next := s.index + 1
	if next >= len(s.quiz.Questions) {
		s.completeLocked()
		return false, nil
	}
	s.index = next
	s.status = domain.StatusActive
	s.startQuestionLocked()
	s.broadcastLocked(domain.EventQuestion)
	return true, nil
}

func (s *Session) end() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == domain.StatusCompleted {
		return domain.ErrSessionClosed
	}
	s.completeLocked()
	return nil
}

func (s *Session) completeLocked() {
	s.stopCountdownLocked()
	s.pending = make(map[string]string)
	s.status = domain.StatusCompleted
	ended := s.settings.Now()
	s.endedAt = &ended
	s.broadcastLocked(domain.EventCompleted)
}

// leave detaches a student. Their recorded answers stay in the results.
func (s *Session) leave(studentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.students[studentID]
	if !ok || st.left {
		return domain.ErrStudentNotFound
	}
	st.left = true
	delete(s.pending, studentID)
	return nil
}

// reveal returns the correct option once the question can no longer be answered.
func (s *Session) reveal(questionID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	question, idx, ok := s.quiz.Question(questionID)
	if !ok {
		return "", domain.ErrQuestionNotFound
	}
	switch {
	case s.status == domain.StatusCompleted,
		s.status == domain.StatusActive && idx < s.index,
		s.status == domain.StatusActive && idx == s.index && s.timeUp:
		return question.CorrectOptionID, nil
	}
	return "", domain.ErrAnswerHidden
}

func (s *Session) score(studentID string) (domain.Score, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.students[studentID]; !ok {
		return domain.Score{}, domain.ErrStudentNotFound
	}
	score := domain.Score{StudentID: studentID, Total: len(s.quiz.Questions)}
	for _, answer := range s.answers {
		if answer.StudentID == studentID && answer.IsCorrect {
			score.Correct++
		}
	}
	return score, nil
}

// stop halts the countdown when the session is discarded.
func (s *Session) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopCountdownLocked()
}

func (s *Session) subscribe() (<-chan domain.SessionEvent, func()) {
	ch := make(chan domain.SessionEvent, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked(kind domain.EventType) {
	ev := domain.SessionEvent{
		Type:          kind,
		SessionID:     s.id,
		Status:        s.status,
		QuestionIndex: s.index,
		Students:      len(s.students),
		Answers:       s.answersForCurrentLocked(),
	}
	if s.countdown != nil {
		ev.TimeRemaining = s.countdown.Remaining()
	}
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			// Slow watcher: drop its oldest event so the newest one always lands.
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}

func (s *Session) answersForCurrentLocked() int {
	if len(s.quiz.Questions) == 0 {
		return 0
	}
	questionID := s.quiz.Questions[s.index].ID
	n := 0
	for _, answer := range s.answers {
		if answer.QuestionID == questionID {
			n++
		}
	}
	return n
}
