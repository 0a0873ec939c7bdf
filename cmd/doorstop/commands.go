package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jcb91/doorstop/internal/importer"
	"github.com/jcb91/doorstop/internal/publish"
	"github.com/spf13/cobra"
)

func checkCmd(rootDir *string, verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate every document in the tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := buildTree(*rootDir, newLogger(*verbose))
			if err != nil {
				return err
			}
			if err := t.Validate(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "valid: %s\n", t)
			return nil
		},
	}
}

func newCmd(rootDir *string, verbose *bool) *cobra.Command {
	var (
		parent string
		digits int
	)
	cmd := &cobra.Command{
		Use:   "new PREFIX PATH",
		Short: "Create a document and place it in the tree",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix, path := args[0], args[1]
			t, err := buildTree(*rootDir, newLogger(*verbose))
			if err != nil {
				return err
			}
			abs, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolve %s: %w", path, err)
			}
			doc, err := t.CreateDocument(abs, prefix, parent, digits)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created document: %s (%s)\n", doc.Prefix(), doc.Path())
			return nil
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "Parent document's prefix (omit for the root document)")
	cmd.Flags().IntVar(&digits, "digits", 0, "Item-number width (default 3)")
	return cmd
}

func addCmd(rootDir *string, verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "add PREFIX",
		Short: "Add the next item to a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := buildTree(*rootDir, newLogger(*verbose))
			if err != nil {
				return err
			}
			it, err := t.AddItem(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added item: %s (%s)\n", it.ID(), it.Path())
			return nil
		},
	}
}

func linkCmd(rootDir *string, verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "link CHILD PARENT",
		Short: "Link a child item to a parent item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := buildTree(*rootDir, newLogger(*verbose))
			if err != nil {
				return err
			}
			child, parent, err := t.Link(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "linked: %s -> %s\n", child.ID(), parent.ID())
			return nil
		},
	}
}

func editCmd(rootDir *string, verbose *bool) *cobra.Command {
	var launch bool
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Open an item for editing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := buildTree(*rootDir, newLogger(*verbose))
			if err != nil {
				return err
			}
			it, err := t.Edit(args[0], launch)
			if err != nil {
				return err
			}
			if !launch {
				fmt.Fprintln(cmd.OutOrStdout(), it.Path())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&launch, "launch", true, "Open the item with the default editor")
	return cmd
}

func importCmd(rootDir *string, verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE PREFIX",
		Short: "Import requirements from a source file into a document",
		Long: `Import requirements from a source file into a document.

Supported sources: .txt, .md, .csv, .html, .pdf, .docx. Each section or
paragraph of the source becomes one new item.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, prefix := args[0], args[1]
			log := newLogger(*verbose)
			t, err := buildTree(*rootDir, log)
			if err != nil {
				return err
			}
			items, err := importer.Import(t, prefix, file, log)
			if err != nil {
				return err
			}
			for _, it := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "added item: %s\n", it.ID())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d items into %s\n", len(items), prefix)
			return nil
		},
	}
}

func publishCmd(rootDir *string, verbose *bool) *cobra.Command {
	var (
		formatName string
		output     string
	)
	cmd := &cobra.Command{
		Use:   "publish [PREFIX]",
		Short: "Render documents to text, markdown, or HTML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := publish.ParseFormat(formatName)
			if err != nil {
				return err
			}
			t, err := buildTree(*rootDir, newLogger(*verbose))
			if err != nil {
				return err
			}

			// No prefix: publish the whole tree, which needs an output dir.
			if len(args) == 0 {
				if output == "" {
					return fmt.Errorf("publishing the whole tree requires --output")
				}
				paths, err := publish.WriteTree(output, t, format)
				if err != nil {
					return err
				}
				for _, p := range paths {
					fmt.Fprintln(cmd.OutOrStdout(), p)
				}
				return nil
			}

			doc := t.FindDocument(args[0])
			if doc == nil {
				return fmt.Errorf("no matching document prefix: %s", args[0])
			}
			if output == "" {
				return publish.Document(cmd.OutOrStdout(), doc, format)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			defer f.Close()
			return publish.Document(f, doc, format)
		},
	}
	cmd.Flags().StringVar(&formatName, "format", "markdown", "Output format: text, markdown, or html")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (single document) or directory (whole tree)")
	return cmd
}
