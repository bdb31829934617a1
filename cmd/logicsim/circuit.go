package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"logicsim/internal/codec"
	"logicsim/internal/domain"
	"logicsim/internal/logging"
	"logicsim/internal/repository"
	"logicsim/internal/service"
	"logicsim/internal/watcher"
)

func newSimulateCmd(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "simulate <file>",
		Short: "Simulate a circuit document and print the settled values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := simulateFile(cmd.Context(), args[0], format)
			if view != nil {
				if werr := writeView(cmd.OutOrStdout(), view); werr != nil {
					return werr
				}
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "document format (json, yaml); inferred from the extension by default")
	return cmd
}

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-simulate a circuit document whenever it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := logging.FromContext(ctx)
			out := cmd.OutOrStdout()

			run := func(path string) {
				view, err := simulateFile(ctx, path, format)
				if view != nil {
					if werr := writeView(out, view); werr != nil {
						logger.Error("failed to write result", "error", werr)
					}
				}
				if err != nil {
					logger.Error("simulation failed", "path", path, "error", err)
				}
			}
			run(args[0])

			w := watcher.New(args[0], run).
				WithDebounce(opts.cfg.Watch.Debounce.Duration()).
				WithLogger(logger)
			if err := w.Watch(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "document format (json, yaml); inferred from the extension by default")
	return cmd
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the stored circuit with a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo, err := openRepository(ctx, opts.cfg.Database)
			if err != nil {
				return err
			}
			defer closeQuietly(ctx, repo)

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			svc := service.NewCircuitService(repo, nil, service.Options{
				Name:   opts.cfg.Circuit.Name,
				Logger: logging.FromContext(ctx),
			})
			result, err := svc.Import(ctx, f, formatFor(args[0], format))
			if result != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "imported %s into %q: %d nodes, %d edges, %d dropped\n",
					args[0], svc.Name(), result.Nodes, result.Edges, len(result.Dropped))
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "document format (json, yaml); inferred from the extension by default")
	return cmd
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the stored circuit as a document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo, err := openRepository(ctx, opts.cfg.Database)
			if err != nil {
				return err
			}
			defer closeQuietly(ctx, repo)

			svc := service.NewCircuitService(repo, nil, service.Options{
				Name:   opts.cfg.Circuit.Name,
				Logger: logging.FromContext(ctx),
			})
			if err := svc.Load(ctx); err != nil {
				return err
			}

			if output == "" {
				if format == "" {
					format = "json"
				}
				return svc.Export(ctx, cmd.OutOrStdout(), format)
			}

			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := svc.Export(ctx, f, formatFor(output, format)); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "document format (json, yaml)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored circuits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo, err := openRepository(ctx, opts.cfg.Database)
			if err != nil {
				return err
			}
			defer closeQuietly(ctx, repo)

			circuits, err := repo.ListCircuits(ctx)
			if err != nil {
				return err
			}
			return writeCircuits(cmd.OutOrStdout(), circuits)
		},
	}
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored circuit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo, err := openRepository(ctx, opts.cfg.Database)
			if err != nil {
				return err
			}
			defer closeQuietly(ctx, repo)

			if err := repo.DeleteDocument(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %q\n", args[0])
			return nil
		},
	}
}

// simulateFile decodes a document into a throwaway session and settles it.
// Documents with a feedback loop or a bad handle are rejected without a view.
func simulateFile(ctx context.Context, path, format string) (*domain.GraphView, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	svc := service.NewCircuitService(nil, nil, service.Options{
		Name:   filepath.Base(path),
		Logger: logging.FromContext(ctx),
	})
	result, err := svc.Import(ctx, f, formatFor(path, format))
	if result == nil {
		return nil, err
	}
	return svc.Circuit(), err
}

func formatFor(path, format string) string {
	if format != "" {
		return format
	}
	return codec.FormatFromPath(path)
}

func writeView(w io.Writer, view *domain.GraphView) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}

func writeCircuits(w io.Writer, circuits []repository.CircuitInfo) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tREVISION\tUPDATED")
	for _, c := range circuits {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", c.Name, c.Revision, c.UpdatedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}
