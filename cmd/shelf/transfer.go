package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/shelf/internal/exporter"
	"github.com/nikbrunner/shelf/internal/importer"
)

func newImportCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import bookmarks from an HTML, JSON or CSV export",
		Long: `Import bookmarks from a file. The format follows the extension:

  .html  Netscape bookmark file as browsers export it; folders become collections
  .json  array of {"url", "title", "description", "tags", "collections"}
  .csv   header row with url, title, description, tags, collections (lists ";" separated)

URLs already stored are skipped.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			format, err := importer.FormatFromPath(args[0])
			if err != nil {
				return err
			}

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening file: %w", err)
			}
			defer file.Close()

			doc, err := importer.Parse(file, format)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", format, err)
			}
			if len(doc.Entries) == 0 {
				return fmt.Errorf("no bookmarks found in %s", args[0])
			}

			e, err := openEnv(ctx, *configFile)
			if err != nil {
				return err
			}
			defer e.Close()

			summary, err := importer.New(e.backend, e.log).Import(ctx, doc)
			if err != nil {
				return fmt.Errorf("importing: %w", err)
			}

			fmt.Printf("Imported %d bookmarks, %d collections", summary.Added, summary.Collections)
			if summary.Duplicates > 0 {
				fmt.Printf(" (%d duplicates skipped)", summary.Duplicates)
			}
			if summary.Invalid > 0 {
				fmt.Printf(" (%d invalid skipped)", summary.Invalid)
			}
			fmt.Println()
			return nil
		},
	}
}

func newExportCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "export [path]",
		Short: "Export bookmarks to a browser HTML file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var outputPath string
			if len(args) == 1 {
				outputPath = args[0]
			} else {
				var err error
				outputPath, err = exporter.DefaultExportPath()
				if err != nil {
					return fmt.Errorf("getting default export path: %w", err)
				}
			}

			e, err := openEnv(ctx, *configFile)
			if err != nil {
				return err
			}
			defer e.Close()

			ctrl, err := e.controller(ctx)
			if err != nil {
				return err
			}
			snap := ctrl.Snapshot()
			if err := exporter.WriteFile(outputPath, snap); err != nil {
				return fmt.Errorf("writing file: %w", err)
			}

			fmt.Printf("Exported %d bookmarks, %d collections to %s\n",
				len(snap.Bookmarks), len(snap.Collections), outputPath)
			return nil
		},
	}
}
