package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTrainCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Rebuild the assistant's knowledge from the institute website",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := opts.client().Train(cmd.Context())
			if err != nil {
				return err
			}
			if res.Status != "success" {
				return fmt.Errorf("training failed: %s", res.Message)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d intents)\n", res.Message, res.IntentsCount)
			return nil
		},
	}
}
