// Package cli implements wordctl, the operator tool for the word store.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/wordsync/api/internal/reconcile"
)

// Env is what a command runs against.
type Env struct {
	Engine *reconcile.Engine
	// Invalidate drops the server's cached snapshot after a write. Nil when
	// no cache is configured.
	Invalidate func(ctx context.Context) error
	Close      func() error
}

// Opener connects to the configured store.
type Opener func(ctx context.Context) (*Env, error)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
}

// NewRootCommand creates the wordctl command tree.
func NewRootCommand(open Opener) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "wordctl",
		Short: "wordctl - operate the word sync store",
		Long:  "Import, audit and export the vocabulary records served by the sync API.",
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewImportCommand(opts, open))
	cmd.AddCommand(NewAuditCommand(opts, open))
	cmd.AddCommand(NewExportCommand(opts, open))

	return cmd
}

// withEnv opens the store, runs fn and closes the store again.
func withEnv(cmd *cobra.Command, open Opener, fn func(env *Env) error) (err error) {
	env, err := open(cmd.Context())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if env.Close == nil {
			return
		}
		if cerr := env.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close store: %w", cerr)
		}
	}()
	return fn(env)
}

func verbosef(opts *RootOptions, w io.Writer, format string, args ...any) {
	if opts.Verbose {
		fmt.Fprintf(w, format+"\n", args...)
	}
}
