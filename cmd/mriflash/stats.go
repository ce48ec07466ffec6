package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/vytor/mriflash/internal/cli"
	"github.com/vytor/mriflash/internal/errors"
	"github.com/vytor/mriflash/internal/models"
)

func newStatsCmd(root *rootOptions) *cobra.Command {
	var (
		category string
		due      bool
		limit    int
		sessions int
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print per-image mastery and recent sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := models.MasteryFilter{Limit: limit}
			if category != "" {
				c, err := models.ParseCategory(category)
				if err != nil {
					return errors.NewValidationError("category", err.Error())
				}
				filter.Category = string(c)
			}
			if due {
				now := time.Now()
				filter.DueAt = &now
			}

			a, err := openApp(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer a.Close()

			return cli.Stats(cmd.Context(), a.Quiz, filter, sessions, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "only T1 or T2 images")
	cmd.Flags().BoolVar(&due, "due", false, "only images due for review")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of images (0 for all)")
	cmd.Flags().IntVar(&sessions, "sessions", 5, "number of recent sessions to list (0 to hide)")
	return cmd
}
