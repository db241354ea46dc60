package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/wordsync/api/internal/model"
	"github.com/wordsync/api/internal/reconcile"
)

const defaultImportBatch = 500

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions, open Opener) *cobra.Command {
	var batchSize int

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Merge records from a JSON file into the store",
		Long: `Merge a JSON array of word records into the store.

Records go through the same last-write-wins rule as POST /sync, so running an
import twice changes nothing. The whole file is validated before the first
write. Use "-" to read from stdin.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, rootOpts, open, args[0], batchSize)
		},
	}

	cmd.Flags().IntVarP(&batchSize, "batch", "b", defaultImportBatch, "records per transaction")

	return cmd
}

func runImport(cmd *cobra.Command, opts *RootOptions, open Opener, path string, batchSize int) error {
	if batchSize < 1 {
		return fmt.Errorf("batch size must be positive, got %d", batchSize)
	}

	payloads, err := readPayloads(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}

	return withEnv(cmd, open, func(env *Env) error {
		ctx := cmd.Context()

		if _, err := env.Engine.Validate(payloads); err != nil {
			return err
		}

		var total reconcile.BatchResult
		for start := 0; start < len(payloads); start += batchSize {
			end := min(start+batchSize, len(payloads))
			result, err := env.Engine.ApplyBatch(ctx, payloads[start:end])
			if err != nil {
				return fmt.Errorf("records %d-%d: %w", start, end-1, err)
			}
			total.Applied += result.Applied
			total.Discarded += result.Discarded
			verbosef(opts, cmd.ErrOrStderr(), "batch %d-%d: %d applied, %d discarded",
				start, end-1, result.Applied, result.Discarded)
		}

		if total.Applied > 0 && env.Invalidate != nil {
			if err := env.Invalidate(ctx); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: snapshot cache not invalidated: %v\n", err)
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "imported %d records: %d applied, %d discarded\n",
			len(payloads), total.Applied, total.Discarded)
		return nil
	})
}

func readPayloads(stdin io.Reader, path string) ([]model.WordPayload, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var payloads []model.WordPayload
	if err := json.Unmarshal(data, &payloads); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, fmt.Errorf("parse %s at offset %d: %w", path, syntaxErr.Offset, err)
		}
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return payloads, nil
}
