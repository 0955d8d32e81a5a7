package main

import (
	"github.com/spf13/cobra"
)

type statusOutput struct {
	Tracked int            `json:"tracked"`
	ByType  map[string]int `json:"by_type"`
	Targets []string       `json:"targets"`
	Warning string         `json:"warning,omitempty"`
}

func newStatusCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show how many imported entities are tracked for deletion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := root.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			counts, err := s.app.Service.TrackedCounts(s.ctx)
			if err != nil {
				return runError(err)
			}

			out := statusOutput{ByType: counts}
			for _, n := range counts {
				out.Tracked += n
			}
			for _, t := range s.app.Service.Targets() {
				out.Targets = append(out.Targets, t.String())
			}
			if out.Tracked > 0 {
				out.Warning = "importing again creates duplicates; run delete first"
			}
			return writeJSONLine(cmd.OutOrStdout(), out)
		},
	}
}
