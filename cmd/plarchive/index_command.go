package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newIndexCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Regenerate the index from the catalog without fetching",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			runner, err := ctx.runner(logger)
			if err != nil {
				return err
			}
			path, err := runner.WriteStaticIndex()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Index written to %s\n", path)
			return nil
		},
	}
}
