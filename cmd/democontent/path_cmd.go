package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/penyaskito/dashboard-initiative/internal/core"
)

type pathOutput struct {
	Langcode string `json:"langcode"`
	Kind     string `json:"kind"`
	ID       string `json:"id"`
	Alias    string `json:"alias"`
}

func newPathCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path <langcode> <kind> <id>",
		Short: "Print the path alias a source row is imported with",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			langcode, kind, id := args[0], args[1], args[2]

			s, err := root.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			slug, ok, err := s.app.Service.ResolvePath(langcode, core.Kind(kind), id)
			if err != nil {
				return runError(err)
			}
			if !ok {
				return withCode(exitValidation, fmt.Errorf("no %s row %q in language %q", kind, id, langcode))
			}

			out := pathOutput{Langcode: langcode, Kind: kind, ID: id}
			if slug != "" {
				out.Alias = "/" + slug
			}
			return writeJSONLine(cmd.OutOrStdout(), out)
		},
	}
}
