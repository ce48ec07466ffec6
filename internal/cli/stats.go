package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/vytor/mriflash/internal/models"
	"github.com/vytor/mriflash/internal/services"
)

// Stats prints the per-category mastery totals followed by one line per
// image matching filter. When sessions is positive, the most recent sessions
// are listed last.
func Stats(ctx context.Context, svc services.QuizService, filter models.MasteryFilter, sessions int, out io.Writer) error {
	view, err := svc.Mastery(ctx, filter)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tIMAGES\tSEEN\tCORRECT\tAVG EASE\tDUE")
	for _, s := range view.Stats {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.2f\t%d\n", s.Category, s.Images, s.TimesSeen, s.TimesCorrect, s.AvgEaseFactor, s.Due)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(view.Records) == 0 {
		fmt.Fprintln(out, "\nNo images reviewed yet.")
	} else {
		fmt.Fprintln(out)
		tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "IMAGE\tCATEGORY\tEASE\tINTERVAL\tSEEN\tCORRECT\tNEXT REVIEW")
		for _, r := range view.Records {
			fmt.Fprintf(tw, "%s\t%s\t%.2f\t%dd\t%d\t%d\t%s\n",
				r.ImageID, r.Category, r.EaseFactor, r.IntervalDays, r.TimesSeen, r.TimesCorrect,
				r.NextReviewAt.Local().Format(time.DateTime))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if sessions <= 0 {
		return nil
	}
	return recentSessions(ctx, svc, sessions, out)
}

func recentSessions(ctx context.Context, svc services.QuizService, limit int, out io.Writer) error {
	history, err := svc.History(ctx, limit)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Fprintln(out, "\nNo sessions recorded yet.")
		return nil
	}

	fmt.Fprintln(out)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tSTARTED\tLENGTH\tSCORE\tANSWERS\tSTATUS")
	for _, h := range history {
		correct := 0
		for _, a := range h.Answers {
			if a.Correct {
				correct++
			}
		}
		status := "open"
		if h.CompletedAt != nil {
			status = "completed"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%d (%d correct)\t%s\n",
			h.ID, h.StartedAt.Local().Format(time.DateTime), h.SessionLength,
			h.Score, h.Target, len(h.Answers), correct, status)
	}
	return tw.Flush()
}
