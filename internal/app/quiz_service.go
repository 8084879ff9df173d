package app

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"classroom-quiz/internal/domain"
	"github.com/google/uuid"
)

// SessionRepository abstracts where live sessions are kept (in-memory, Redis, etc).
type SessionRepository interface {
	// Add stores a new session and reserves its join code.
	// It returns domain.ErrCodeTaken when the code is already in use.
	Add(session *Session) error
	Get(sessionID string) (*Session, bool)
	GetByCode(code string) (*Session, bool)
	Delete(sessionID string)
}

// QuizCatalog is the pluggable store of quiz definitions.
type QuizCatalog interface {
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	SaveQuiz(ctx context.Context, quiz domain.Quiz) error
}

// QuizService is the function-call boundary consumed by teacher and student views.
type QuizService struct {
	sessions SessionRepository
	quizzes  QuizCatalog

	now          func() time.Time
	newID        func() string
	newCode      CodeGenerator
	ticks        TickSource
	tickInterval time.Duration
	latency      time.Duration
	ledger       AnswerLedger
}

// ServiceOption customizes a QuizService.
type ServiceOption func(*QuizService)

// WithClock overrides time.Now for deterministic timestamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *QuizService) { s.now = now }
}

// WithIDGenerator overrides the UUID generator for quiz, session and student ids.
func WithIDGenerator(newID func() string) ServiceOption {
	return func(s *QuizService) { s.newID = newID }
}

// WithCodeGenerator overrides the join code generator.
func WithCodeGenerator(gen CodeGenerator) ServiceOption {
	return func(s *QuizService) { s.newCode = gen }
}

// WithTickSource overrides the countdown clock.
func WithTickSource(src TickSource, interval time.Duration) ServiceOption {
	return func(s *QuizService) {
		s.ticks = src
		s.tickInterval = interval
	}
}

// WithLatency delays create, join and submit to mimic a round trip.
func WithLatency(d time.Duration) ServiceOption {
	return func(s *QuizService) { s.latency = d }
}

// WithAnswerLedger mirrors every recorded answer to an external ledger.
func WithAnswerLedger(ledger AnswerLedger) ServiceOption {
	return func(s *QuizService) { s.ledger = ledger }
}

func NewQuizService(store SessionRepository, quizzes QuizCatalog, opts ...ServiceOption) *QuizService {
	s := &QuizService{
		sessions:     store,
		quizzes:      quizzes,
		now:          time.Now,
		newID:        uuid.NewString,
		ticks:        RealTicks,
		tickInterval: time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.newCode == nil {
		s.newCode = NewCodeGenerator(DefaultCodeLength, nil)
	}
	return s
}

// ListQuizzes returns every quiz in the catalog.
func (s *QuizService) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	return s.quizzes.ListQuizzes(ctx)
}

// GetQuiz returns one quiz by id.
func (s *QuizService) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return s.quizzes.GetQuiz(ctx, quizID)
}

// CreateQuiz validates a draft, assigns missing ids and the creation time, and stores it.
func (s *QuizService) CreateQuiz(ctx context.Context, draft domain.Quiz) (domain.Quiz, error) {
	quiz := draft
	quiz.Questions = make([]domain.Question, len(draft.Questions))
	copy(quiz.Questions, draft.Questions)
	if quiz.ID == "" {
		quiz.ID = s.newID()
	}
	for i := range quiz.Questions {
		if quiz.Questions[i].ID == "" {
			quiz.Questions[i].ID = s.newID()
		}
	}
	quiz.CreatedAt = s.now()

	if err := domain.ValidateQuiz(quiz); err != nil {
		return domain.Quiz{}, err
	}
	if err := s.quizzes.SaveQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// HostQuiz loads a quiz from the catalog and opens a session for it.
func (s *QuizService) HostQuiz(ctx context.Context, quizID string) (domain.Session, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Session{}, err
	}
	return s.CreateSession(ctx, quiz)
}

// CreateSession opens a waiting session with a fresh join code.
func (s *QuizService) CreateSession(ctx context.Context, quiz domain.Quiz) (domain.Session, error) {
	if err := s.simulateLatency(ctx); err != nil {
		return domain.Session{}, err
	}
	if err := domain.ValidateQuiz(quiz); err != nil {
		return domain.Session{}, err
	}

	settings := SessionSettings{
		Now:          s.now,
		NewID:        s.newID,
		Ticks:        s.ticks,
		TickInterval: s.tickInterval,
		Ledger:       s.ledger,
	}
	id := s.newID()
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		session := NewSessionWithSettings(id, s.newCode(), quiz, settings)
		err := s.sessions.Add(session)
		if err == nil {
			log.Printf("session %s opened for quiz %s with code %s", id, quiz.ID, session.Code())
			return session.Snapshot(), nil
		}
		if !errors.Is(err, domain.ErrCodeTaken) {
			return domain.Session{}, err
		}
	}
	return domain.Session{}, domain.ErrCodeSpaceExhausted
}

// Join admits a student by join code.
func (s *QuizService) Join(ctx context.Context, code, name string) (domain.JoinResult, error) {
	if err := s.simulateLatency(ctx); err != nil {
		return domain.JoinResult{}, err
	}
	if strings.TrimSpace(name) == "" {
		return domain.JoinResult{}, &domain.ValidationError{Field: "name", Reason: "student name is required"}
	}
	session, ok := s.sessions.GetByCode(NormalizeCode(code))
	if !ok {
		return domain.JoinResult{}, domain.ErrSessionNotFound
	}
	student, err := session.admit(name)
	if err != nil {
		return domain.JoinResult{}, err
	}
	return domain.JoinResult{SessionID: session.ID(), StudentID: student.ID, Name: student.Name}, nil
}

// CurrentQuestion activates a waiting session and returns the question being asked.
func (s *QuizService) CurrentQuestion(_ context.Context, sessionID string) (domain.CurrentQuestion, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return domain.CurrentQuestion{}, err
	}
	return session.activate()
}

// Select stores a student's choice so it is submitted automatically when time runs out.
func (s *QuizService) Select(_ context.Context, sessionID, studentID, optionID string) error {
	session, err := s.session(sessionID)
	if err != nil {
		return err
	}
	return session.selectOption(studentID, optionID)
}

// SubmitAnswer records a student's answer to the current question and reports correctness.
func (s *QuizService) SubmitAnswer(ctx context.Context, sessionID, studentID, questionID, optionID string) (bool, error) {
	if err := s.simulateLatency(ctx); err != nil {
		return false, err
	}
	session, err := s.session(sessionID)
	if err != nil {
		return false, err
	}
	return session.submit(ctx, studentID, questionID, optionID)
}

// Advance moves to the next question. It returns false once the session has completed.
func (s *QuizService) Advance(_ context.Context, sessionID string) (bool, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return false, err
	}
	hasNext, err := session.advance()
	if err == nil && !hasNext {
		log.Printf("session %s completed", sessionID)
	}
	return hasNext, err
}

// End terminates a session early.
func (s *QuizService) End(_ context.Context, sessionID string) error {
	session, err := s.session(sessionID)
	if err != nil {
		return err
	}
	if err := session.end(); err != nil {
		return err
	}
	log.Printf("session %s ended early", sessionID)
	return nil
}

// Leave detaches a student from the session.
func (s *QuizService) Leave(_ context.Context, sessionID, studentID string) error {
	session, err := s.session(sessionID)
	if err != nil {
		return err
	}
	return session.leave(studentID)
}

// Discard drops a session once its controlling view is done with it.
func (s *QuizService) Discard(_ context.Context, sessionID string) error {
	session, err := s.session(sessionID)
	if err != nil {
		return err
	}
	session.stop()
	s.sessions.Delete(sessionID)
	return nil
}

// RevealAnswer returns the correct option of a question that can no longer be answered.
func (s *QuizService) RevealAnswer(_ context.Context, sessionID, questionID string) (string, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return "", err
	}
	return session.reveal(questionID)
}

// Session returns a snapshot of the session state.
func (s *QuizService) Session(_ context.Context, sessionID string) (domain.Session, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return domain.Session{}, err
	}
	return session.Snapshot(), nil
}

// Score returns the number of questions a student answered correctly.
func (s *QuizService) Score(_ context.Context, sessionID, studentID string) (domain.Score, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return domain.Score{}, err
	}
	return session.score(studentID)
}

// Results aggregates all answers of a session.
func (s *QuizService) Results(_ context.Context, sessionID string) (domain.QuizResults, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return domain.QuizResults{}, err
	}
	return session.results(), nil
}

// Watch returns a channel of session events.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Watch(_ context.Context, sessionID string) (<-chan domain.SessionEvent, func(), error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

func (s *QuizService) session(sessionID string) (*Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *QuizService) simulateLatency(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
