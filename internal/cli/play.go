package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/domain"
	"timed-quiz-service/internal/infra/memory"
)

// NewPlayCmd runs a quiz file interactively in the terminal.
func NewPlayCmd() *cobra.Command {
	var (
		budget int
		userID string
	)
	cmd := &cobra.Command{
		Use:   "play <quiz-file>",
		Short: "Take a quiz from a YAML/JSON file in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			quiz, err := memory.ReadQuizFile(args[0])
			if err != nil {
				return err
			}
			return playQuiz(quiz, budget, userID, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVar(&budget, "budget", 0, "time budget in seconds (defaults to the quiz time limit)")
	cmd.Flags().StringVar(&userID, "user", "player", "user id recorded on the result")
	return cmd
}

func playQuiz(quiz domain.Quiz, budget int, userID string, in io.Reader, out io.Writer) error {
	if budget <= 0 {
		budget = quiz.TimeLimitSeconds
	}
	if budget <= 0 {
		budget = int(app.DefaultBudget / time.Second)
	}
	session, err := app.StartSession(quiz, app.SessionOptions{UserID: userID, BudgetSeconds: budget})
	if err != nil {
		return err
	}
	events, cancel := session.Subscribe()
	defer cancel()

	if quiz.Title != "" {
		fmt.Fprintf(out, "%s\n", quiz.Title)
	}
	fmt.Fprintf(out, "%d questions, %s on the clock. Answer with a number, s to skip, q to quit.\n",
		len(quiz.Questions), domain.FormatClock(budget))

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-session.Done():
				return
			}
		}
	}()

	for {
		select {
		case ev := <-events:
			if printEvent(out, ev) {
				return nil
			}
		case line, ok := <-lines:
			if !ok || line == "q" || line == "quit" {
				if session.Abandon() {
					fmt.Fprintln(out, "quiz abandoned")
					return nil
				}
				// the session finished first; keep draining for the result
				lines = nil
				continue
			}
			if err := applyInput(session, line); err != nil {
				fmt.Fprintf(out, "  %v\n", err)
			}
		}
	}
}

func applyInput(session *app.Session, line string) error {
	switch line {
	case "":
		return nil
	case "s", "skip":
		return session.Skip()
	}
	n, err := strconv.Atoi(line)
	if err != nil {
		return fmt.Errorf("enter an option number, s or q")
	}
	_, err = session.SelectAnswer(n - 1)
	return err
}

// printEvent renders one session event; it reports true once the result is printed.
func printEvent(out io.Writer, ev app.SessionEvent) bool {
	switch ev.Type {
	case app.EventQuestion:
		q := ev.View
		fmt.Fprintf(out, "\nQuestion %d/%d (%s left, %d pt)\n%s\n", q.Position+1, q.Total, domain.FormatClock(ev.Remaining), q.Points, q.Prompt)
		for i, opt := range q.Options {
			fmt.Fprintf(out, "  %d) %s\n", i+1, opt)
		}
	case app.EventFeedback:
		fb := ev.Feedback
		if fb.Correct {
			fmt.Fprintf(out, "  Correct! +%d\n", fb.Awarded)
		} else {
			fmt.Fprintf(out, "  Wrong. The answer was %d) %s\n", fb.CorrectIndex+1, ev.View.Options[fb.CorrectIndex])
		}
		if fb.Explanation != "" {
			fmt.Fprintf(out, "  %s\n", fb.Explanation)
		}
	case app.EventTick:
		if ev.Remaining > 0 && (ev.Remaining <= 10 || ev.Remaining%60 == 0) {
			fmt.Fprintf(out, "  [%s left]\n", domain.FormatClock(ev.Remaining))
		}
	case app.EventFinished:
		printSummary(out, domain.Summarize(*ev.Result))
		return true
	}
	return false
}

func printSummary(out io.Writer, s domain.ResultSummary) {
	if s.Reason == domain.FinishTimeout {
		fmt.Fprintln(out, "\nTime's up!")
	}
	fmt.Fprintf(out, "\nScore: %d/%d (%d%%) %s\n", s.Score, s.MaxScore, s.Percentage, s.Performance)
	fmt.Fprintf(out, "Correct answers: %d of %d, time taken %s\n", s.CorrectCount, len(s.Questions), s.Elapsed)
	for _, a := range s.Achievements {
		fmt.Fprintf(out, "Achievement: %s (%s)\n", a.Title, a.Description)
	}
}
