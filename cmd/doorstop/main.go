// Package main provides the doorstop CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jcb91/doorstop/internal/tree"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		rootDir string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "doorstop",
		Short: "Manage a hierarchy of requirements documents",
		Long: `Manage a hierarchy of requirements documents.

Documents are directories holding numbered item files; each document
names its parent document by prefix. Running doorstop with no arguments
builds the tree from the current working copy and prints it.

Examples:
  doorstop                         # Build and show the document tree
  doorstop new REQ ./reqs          # Create a root document
  doorstop new HLT ./tests --parent REQ
  doorstop add REQ                 # Add the next item to REQ
  doorstop link HLT001 REQ001      # Link a child item to a parent item
  doorstop import specs.md REQ     # Import requirements from a source file
  doorstop publish REQ --format html
`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := buildTree(rootDir, newLogger(verbose))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.String())
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&rootDir, "root", "", "Working-copy root (default: auto-detect)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(
		checkCmd(&rootDir, &verbose),
		newCmd(&rootDir, &verbose),
		addCmd(&rootDir, &verbose),
		linkCmd(&rootDir, &verbose),
		editCmd(&rootDir, &verbose),
		importCmd(&rootDir, &verbose),
		publishCmd(&rootDir, &verbose),
	)

	return cmd
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// buildTree assembles the tree from rootDir, or from the current
// directory's working copy when rootDir is empty.
func buildTree(rootDir string, log *slog.Logger) (*tree.Tree, error) {
	cwd := rootDir
	if cwd == "" {
		var err error
		cwd, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
	}
	return tree.Build(cwd, log)
}
