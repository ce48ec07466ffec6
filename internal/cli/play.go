// Package cli runs the quiz and the mastery report in a terminal.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/vytor/mriflash/internal/models"
	"github.com/vytor/mriflash/internal/quiz"
	"github.com/vytor/mriflash/internal/services"
)

// Play drives svc from line input until the session reaches results or in
// runs out. A session left in progress is resumed; one in results is reset
// and a new one started with length.
func Play(ctx context.Context, svc services.QuizService, length models.SessionLength, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	readLine := func() (string, bool) {
		if !scanner.Scan() {
			return "", false
		}
		return strings.ToLower(strings.TrimSpace(scanner.Text())), true
	}

	view := svc.View(ctx)
	if view.Phase == models.PhaseResults {
		view = svc.Reset(ctx)
	}
	if view.Phase != models.PhaseSetup {
		fmt.Fprintf(out, "Resuming session (%d/%d answered)\n", view.TotalAnswered, view.Target)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if view.Condition == quiz.ConditionInconsistent {
			fmt.Fprintln(out, "The saved session is damaged and was reset.")
			view = svc.Reset(ctx)
		}

		switch view.Phase {
		case models.PhaseSetup:
			var err error
			view, err = svc.Start(ctx, length)
			if err != nil {
				return err
			}
			if view.Condition == quiz.ConditionEmpty {
				fmt.Fprintln(out, "No images available.")
				svc.Reset(ctx)
				return nil
			}
			fmt.Fprintf(out, "Session of %d images. Answer 1 (T1) or 2 (T2), q to finish.\n", view.Target)

		case models.PhaseQuestion:
			if view.Current == nil {
				fmt.Fprintln(out, "No images available.")
				return nil
			}
			fmt.Fprintf(out, "\n[%d/%d] %s (%s)\n> ", view.Position, view.Target, view.Current.URL, view.Current.Subject)
			line, ok := readLine()
			if !ok {
				return nil
			}
			if line == "q" {
				view = svc.Finish(ctx)
				continue
			}
			label, err := models.ParseCategory(line)
			if err != nil {
				fmt.Fprintln(out, "Answer 1 (T1), 2 (T2) or q.")
				continue
			}
			if view, err = svc.Submit(ctx, label); err != nil {
				return err
			}

		case models.PhaseExplanation:
			if err := printExplanation(ctx, svc, out); err != nil {
				return err
			}
			fmt.Fprint(out, "Press Enter to continue, q to finish. ")
			line, ok := readLine()
			if !ok {
				return nil
			}
			if line == "q" {
				view = svc.Finish(ctx)
				continue
			}
			var err error
			if view, err = svc.Advance(ctx); err != nil {
				return err
			}

		case models.PhaseResults:
			printSummary(out, svc.Summary(ctx))
			return nil
		}
	}
}

func printExplanation(ctx context.Context, svc services.QuizService, out io.Writer) error {
	e, err := svc.Explanation(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, e.Feedback)
	for _, c := range e.Characteristics {
		fmt.Fprintf(out, "  - %s\n", c)
	}
	fmt.Fprintf(out, "Memory aid: %s\n", e.MemoryAid)
	return nil
}

func printSummary(out io.Writer, s services.SummaryView) {
	sum := s.Summary
	fmt.Fprintf(out, "\nScore: %d/%d (%.1f%%)\n%s\n", sum.Score, sum.Total, sum.Percentage, sum.Feedback)
	for _, b := range sum.Breakdown {
		fmt.Fprintf(out, "  %s: %d/%d\n", b.Category, b.Correct, b.Total)
	}
	if len(s.Attempts) > 0 {
		fmt.Fprintln(out, "Missed images:")
		for _, a := range s.Attempts {
			fmt.Fprintf(out, "  %s: %s (%d of %d wrong)\n", a.ImageID, a.Status, a.IncorrectCount, a.TotalCount)
		}
	}
}
