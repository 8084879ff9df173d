package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"classroom-quiz/internal/app"
	"classroom-quiz/internal/config"
	"classroom-quiz/internal/domain"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewQuizzesCmd groups the quiz catalog commands.
func NewQuizzesCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quizzes",
		Short: "Browse and import quizzes",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List quizzes in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), *configPath, func(service *app.QuizService) error {
				return listQuizzes(cmd.Context(), service, cmd.OutOrStdout())
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Validate a YAML quiz and add it to the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			draft, err := parseQuiz(data)
			if err != nil {
				return err
			}
			return withService(cmd.Context(), *configPath, func(service *app.QuizService) error {
				quiz, err := service.CreateQuiz(cmd.Context(), draft)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %s (%d questions)\n", quiz.ID, len(quiz.Questions))
				return nil
			})
		},
	})
	return cmd
}

func withService(ctx context.Context, configPath string, fn func(*app.QuizService) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	rt, err := buildRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(rt.service)
}

func listQuizzes(ctx context.Context, service *app.QuizService, out io.Writer) error {
	quizzes, err := service.ListQuizzes(ctx)
	if err != nil {
		return err
	}
	if len(quizzes) == 0 {
		fmt.Fprintln(out, "no quizzes yet")
		return nil
	}
	for _, quiz := range quizzes {
		fmt.Fprintf(out, "%s\t%s\t%d questions\t%s\n",
			quiz.ID, quiz.Title, len(quiz.Questions), quiz.CreatedAt.Format("2006-01-02"))
	}
	return nil
}

// parseQuiz decodes a quiz document. Unknown keys are rejected so typos surface early.
func parseQuiz(data []byte) (domain.Quiz, error) {
	var quiz domain.Quiz
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("parse quiz: %w", err)
	}
	return quiz, nil
}
