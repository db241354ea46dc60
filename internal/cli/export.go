package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/wordsync/api/internal/export"
)

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions, open Opener) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:          "export",
		Short:        "Write the full snapshot as json, csv or markdown",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			return runExport(cmd, rootOpts, open, f, output)
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "output format (json|csv|md)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}

func runExport(cmd *cobra.Command, opts *RootOptions, open Opener, format export.Format, output string) error {
	return withEnv(cmd, open, func(env *Env) error {
		words, err := env.Engine.PullAll(cmd.Context())
		if err != nil {
			return err
		}

		var (
			w    io.Writer = cmd.OutOrStdout()
			file *os.File
		)
		if output != "" {
			file, err = os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			defer file.Close()
			w = file
		}

		if err := export.Render(w, format, words); err != nil {
			return fmt.Errorf("render %s: %w", format, err)
		}
		if file != nil {
			if err := file.Close(); err != nil {
				return fmt.Errorf("close %s: %w", output, err)
			}
		}
		verbosef(opts, cmd.ErrOrStderr(), "exported %d records as %s", len(words), format)
		return nil
	})
}
