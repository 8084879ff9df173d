package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"classroom-quiz/internal/app"
	"classroom-quiz/internal/domain"
	"classroom-quiz/internal/livefeed"
)

const consoleHelp = `commands:
  join <name>              admit a student
  leave <name>             detach a student
  question                 start the session or show the current question
  select <name> <option>   pick an option without submitting
  answer <name> <option>   submit an answer to the current question
  next                     move to the next question
  reveal [question-id]     show the correct option once answering is over
  score <name>             show a student's score
  results                  show the leaderboard and per-question breakdown
  end                      end the session early
  quit                     leave the console`

// console plays both the teacher and the students against one session.
type console struct {
	service   *app.QuizService
	sessionID string
	out       io.Writer
	feed      livefeed.Feed

	mu         sync.Mutex
	students   map[string]domain.JoinResult
	liveCancel context.CancelFunc
}

func newConsole(service *app.QuizService, sessionID string, out io.Writer, feed livefeed.Feed) *console {
	return &console{
		service:   service,
		sessionID: sessionID,
		out:       out,
		feed:      feed,
		students:  make(map[string]domain.JoinResult),
	}
}

// handle runs one command line and reports whether the console should exit.
// Service errors are printed, not returned, so a typo never ends the session.
func (c *console) handle(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	var err error
	switch cmd {
	case "quit", "exit":
		return true
	case "help":
		fmt.Fprintln(c.out, consoleHelp)
	case "join":
		err = c.join(ctx, strings.Join(args, " "))
	case "leave":
		err = c.withStudent(args, 1, func(st domain.JoinResult) error {
			if err := c.service.Leave(ctx, c.sessionID, st.StudentID); err != nil {
				return err
			}
			c.mu.Lock()
			delete(c.students, strings.ToLower(st.Name))
			c.mu.Unlock()
			fmt.Fprintf(c.out, "%s left\n", st.Name)
			return nil
		})
	case "question", "start":
		err = c.showQuestion(ctx)
	case "select":
		err = c.withStudent(args, 2, func(st domain.JoinResult) error {
			if err := c.service.Select(ctx, c.sessionID, st.StudentID, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "%s selected %s\n", st.Name, args[1])
			return nil
		})
	case "answer":
		err = c.withStudent(args, 2, func(st domain.JoinResult) error {
			return c.answer(ctx, st, args[1])
		})
	case "next":
		err = c.next(ctx)
	case "reveal":
		err = c.reveal(ctx, args)
	case "score":
		err = c.withStudent(args, 1, func(st domain.JoinResult) error {
			score, err := c.service.Score(ctx, c.sessionID, st.StudentID)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "%s: %d/%d\n", st.Name, score.Correct, score.Total)
			return nil
		})
	case "results":
		err = c.results(ctx)
	case "end":
		if err = c.service.End(ctx, c.sessionID); err == nil {
			c.stopLive()
			fmt.Fprintln(c.out, "session ended")
		}
	default:
		fmt.Fprintf(c.out, "unknown command %q, type help\n", cmd)
	}
	if err != nil {
		fmt.Fprintf(c.out, "error: %v\n", err)
	}
	return false
}

var errUsage = errors.New("missing arguments, type help")

func (c *console) withStudent(args []string, want int, fn func(domain.JoinResult) error) error {
	if len(args) < want {
		return errUsage
	}
	c.mu.Lock()
	st, ok := c.students[strings.ToLower(args[0])]
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("%q: %w", args[0], domain.ErrStudentNotFound)
	}
	return fn(st)
}

func (c *console) join(ctx context.Context, name string) error {
	key := strings.ToLower(strings.TrimSpace(name))
	c.mu.Lock()
	_, taken := c.students[key]
	c.mu.Unlock()
	if taken {
		return fmt.Errorf("%q already joined from this console", name)
	}
	joined, err := c.service.Join(ctx, c.code(ctx), name)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.students[key] = joined
	c.mu.Unlock()
	fmt.Fprintf(c.out, "%s joined as %s\n", joined.Name, joined.StudentID)
	return nil
}

func (c *console) code(ctx context.Context) string {
	session, err := c.service.Session(ctx, c.sessionID)
	if err != nil {
		return ""
	}
	return session.Code
}

func (c *console) showQuestion(ctx context.Context) error {
	current, err := c.service.CurrentQuestion(ctx, c.sessionID)
	if err != nil {
		return err
	}
	c.printQuestion(current)
	return nil
}

func (c *console) printQuestion(current domain.CurrentQuestion) {
	timing := "untimed"
	if current.Timed {
		timing = fmt.Sprintf("%ds left", current.TimeRemaining)
	}
	fmt.Fprintf(c.out, "question %d/%d [%s] (%s) %s\n",
		current.Index+1, current.Total, current.Question.ID, timing, current.Question.Text)
	for _, opt := range current.Question.Options {
		fmt.Fprintf(c.out, "  %s) %s\n", opt.ID, opt.Text)
	}
}

func (c *console) answer(ctx context.Context, st domain.JoinResult, optionID string) error {
	current, err := c.service.CurrentQuestion(ctx, c.sessionID)
	if err != nil {
		return err
	}
	correct, err := c.service.SubmitAnswer(ctx, c.sessionID, st.StudentID, current.Question.ID, optionID)
	if err != nil {
		return err
	}
	verdict := "incorrect"
	if correct {
		verdict = "correct"
	}
	fmt.Fprintf(c.out, "%s answered %s: %s\n", st.Name, optionID, verdict)
	return nil
}

func (c *console) next(ctx context.Context) error {
	hasNext, err := c.service.Advance(ctx, c.sessionID)
	if err != nil {
		return err
	}
	if !hasNext {
		c.stopLive()
		fmt.Fprintln(c.out, "no questions left, session completed")
		return nil
	}
	return c.showQuestion(ctx)
}

func (c *console) reveal(ctx context.Context, args []string) error {
	var questionID string
	if len(args) > 0 {
		questionID = args[0]
	} else {
		current, err := c.service.CurrentQuestion(ctx, c.sessionID)
		if err != nil {
			return err
		}
		questionID = current.Question.ID
	}
	optionID, err := c.service.RevealAnswer(ctx, c.sessionID, questionID)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s: correct option is %s\n", questionID, optionID)
	return nil
}

func (c *console) results(ctx context.Context) error {
	results, err := c.service.Results(ctx, c.sessionID)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%d students\n", results.TotalStudents)
	for i, st := range results.Students {
		fmt.Fprintf(c.out, "%d. %s %d correct, avg %s\n", i+1, st.Name, st.Score, st.AverageResponseTime)
	}
	for _, q := range results.Questions {
		ids := make([]string, 0, len(q.OptionDistribution))
		for id := range q.OptionDistribution {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		spread := make([]string, len(ids))
		for i, id := range ids {
			spread[i] = fmt.Sprintf("%s=%d", id, q.OptionDistribution[id])
		}
		fmt.Fprintf(c.out, "%s: %d correct, %d incorrect, avg %s, %s\n",
			q.QuestionID, q.Correct, q.Incorrect, q.AverageResponseTime, strings.Join(spread, " "))
	}
	return nil
}

// printEvents reports session changes until ctx ends or the watch is cancelled.
func (c *console) printEvents(ctx context.Context, events <-chan domain.SessionEvent) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			c.printEvent(ctx, ev)
		}
	}
}

func (c *console) printEvent(ctx context.Context, ev domain.SessionEvent) {
	switch ev.Type {
	case domain.EventJoined:
		fmt.Fprintf(c.out, "* %d students in the session\n", ev.Students)
	case domain.EventQuestion:
		fmt.Fprintf(c.out, "* question %d is open\n", ev.QuestionIndex+1)
		c.startLive(ctx)
	case domain.EventTick:
		if ev.TimeRemaining <= 5 || ev.TimeRemaining%10 == 0 {
			fmt.Fprintf(c.out, "* %ds left\n", ev.TimeRemaining)
		}
	case domain.EventTimeUp:
		fmt.Fprintf(c.out, "* time is up, %d of %d students answered\n", ev.Answers, ev.Students)
	case domain.EventAnswered:
		fmt.Fprintf(c.out, "* %d answers in\n", ev.Answers)
	case domain.EventCompleted:
		c.stopLive()
		fmt.Fprintln(c.out, "* session completed, type results for the leaderboard")
	}
}

// startLive restarts the simulated classroom numbers for the question now open.
func (c *console) startLive(ctx context.Context) {
	if c.feed == nil {
		return
	}
	current, err := c.service.CurrentQuestion(ctx, c.sessionID)
	if err != nil {
		return
	}
	ids := make([]string, len(current.Question.Options))
	for i, opt := range current.Question.Options {
		ids[i] = opt.ID
	}

	c.stopLive()
	liveCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.liveCancel = cancel
	c.mu.Unlock()

	snapshots := c.feed.Stream(liveCtx, ids)
	go func() {
		for snap := range snapshots {
			parts := make([]string, len(ids))
			for i, id := range ids {
				parts[i] = fmt.Sprintf("%s %.0f%%", id, snap.Percentages[id])
			}
			fmt.Fprintf(c.out, "~ live: %d students, %s\n", snap.Students, strings.Join(parts, ", "))
		}
	}()
}

func (c *console) stopLive() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.liveCancel != nil {
		c.liveCancel()
		c.liveCancel = nil
	}
}

// syncWriter serializes console output from the event printer and the command loop.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
