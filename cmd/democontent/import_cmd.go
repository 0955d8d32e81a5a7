package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/penyaskito/dashboard-initiative/internal/core"
)

func newImportCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [entity_type/bundle]",
		Short: "Import demo content (all targets, or a single entity_type/bundle)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var target *core.Target
			if len(args) == 1 {
				t, err := parseTarget(args[0])
				if err != nil {
					return withCode(exitUsage, err)
				}
				target = &t
			}

			s, err := root.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			warnTracked(s)

			if target != nil {
				result, err := s.app.Service.ImportOne(s.ctx, target.EntityType, target.Kind)
				if err != nil {
					return runError(err)
				}
				return writeJSONLine(cmd.OutOrStdout(), result)
			}

			result, err := s.app.Service.ImportContent(s.ctx)
			if err != nil {
				// Entities created before the failure remain tracked.
				_ = writeJSONLine(cmd.OutOrStdout(), result)
				return runError(err)
			}
			return writeJSONLine(cmd.OutOrStdout(), result)
		},
	}

	return cmd
}

// parseTarget reads "entity_type/bundle".
func parseTarget(arg string) (core.Target, error) {
	entityType, bundle, ok := strings.Cut(strings.TrimSpace(arg), "/")
	if !ok || entityType == "" || bundle == "" || strings.Contains(bundle, "/") {
		return core.Target{}, fmt.Errorf("invalid target %q: want entity_type/bundle, e.g. node/article", arg)
	}
	return core.Target{EntityType: entityType, Kind: core.Kind(bundle)}, nil
}

// warnTracked notes that importing over tracked content creates duplicates.
func warnTracked(s *session) {
	counts, err := s.app.Service.TrackedCounts(s.ctx)
	if err != nil {
		slog.Warn("could not read provenance registry", "error", err)
		return
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	if total > 0 {
		slog.Warn("content from an earlier import is still present; importing again creates duplicates",
			"tracked", total)
	}
}
