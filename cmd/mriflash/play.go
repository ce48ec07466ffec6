package main

import (
	"github.com/spf13/cobra"

	"github.com/vytor/mriflash/internal/cli"
	"github.com/vytor/mriflash/internal/errors"
	"github.com/vytor/mriflash/internal/models"
)

func newPlayCmd(root *rootOptions) *cobra.Command {
	var length string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Run a quiz session in the terminal",
		Long: "Run a quiz session in the terminal. Answer 1/t1 or 2/t2, press Enter to move on, q to finish.\n" +
			"An unfinished session is resumed.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := models.ParseSessionLength(length)
			if err != nil {
				return errors.NewValidationError("length", err.Error())
			}

			a, err := openApp(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer a.Close()

			return cli.Play(cmd.Context(), a.Quiz, l, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&length, "length", "n", "20", "session length: 20, 50, 100 or all")
	return cmd
}
