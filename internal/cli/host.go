package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"classroom-quiz/internal/config"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewHostCmd opens a session for a catalog quiz and runs the host console on stdin.
func NewHostCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "host <quiz-id>",
		Short: "Host a live session for a quiz",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHost(cmd.Context(), *configPath, args[0], cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runHost(ctx context.Context, configPath, quizID string, in io.Reader, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	rt, err := buildRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	session, err := rt.service.HostQuiz(ctx, quizID)
	if err != nil {
		return err
	}
	defer func() { _ = rt.service.Discard(context.Background(), session.ID) }()

	events, cancelWatch, err := rt.service.Watch(ctx, session.ID)
	if err != nil {
		return err
	}
	defer cancelWatch()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, quit := context.WithCancel(ctx)
	defer quit()

	w := &syncWriter{w: out}
	c := newConsole(rt.service, session.ID, w, rt.feed)
	fmt.Fprintf(w, "hosting %q, join code %s (%d questions). Type help for commands.\n",
		quizID, session.Code, session.TotalQuestions)

	lines := make(chan string)
	go scanLines(ctx, in, lines)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.printEvents(gctx, events)
	})
	g.Go(func() error {
		defer quit()
		for {
			select {
			case <-gctx.Done():
				return nil
			case line, ok := <-lines:
				if !ok {
					return nil
				}
				if c.handle(gctx, line) {
					return nil
				}
			}
		}
	})
	err = g.Wait()
	c.stopLive()
	return err
}

// scanLines feeds input lines to the console. Reads on stdin cannot be interrupted,
// so this goroutine is left out of the errgroup.
func scanLines(ctx context.Context, in io.Reader, lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}
}
