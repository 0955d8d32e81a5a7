package main

import (
	"errors"

	"github.com/spf13/cobra"
)

type deleteOptions struct {
	yes bool
}

func newDeleteCmd(root *rootOptions) *cobra.Command {
	var opts deleteOptions

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete every entity created by earlier imports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.yes {
				return withCode(exitSafetyNet, errors.New("refusing to delete imported content without --yes"))
			}

			s, err := root.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			result, err := s.app.Service.DeleteImportedContent(s.ctx)
			if err != nil {
				_ = writeJSONLine(cmd.OutOrStdout(), result)
				return runError(err)
			}
			return writeJSONLine(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().BoolVar(&opts.yes, "yes", false, "Confirm destructive delete")
	return cmd
}
