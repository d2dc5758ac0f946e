package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/cli"
	"github.com/jsamuelsen/quotekeeper/internal/app"
	"github.com/jsamuelsen/quotekeeper/internal/domain"
)

// stdio is the argument naming stdin or stdout in place of a file.
const stdio = "-"

// commandEnv is what a one-shot command runs against.
type commandEnv struct {
	core    *core
	service *app.QuoteService
	out     io.Writer
}

// envOptions selects the optional parts of a commandEnv.
type envOptions struct {
	show    cli.Show
	publish bool
	sync    bool
}

// runWithEnv loads config, opens storage, loads the collection and runs fn.
// Logs go to stderr so stdout carries only command output.
func runWithEnv(ctx context.Context, opts *options, eo envOptions, fn func(context.Context, *commandEnv) error) (err error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger := newLogger(cfg, opts.errOut)

	c, err := openCore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeWith(c, &err)

	p := cli.NewPresenter(opts.out, eo.show)
	deps := serviceDeps{presenter: p}

	publish := eo.publish && cfg.Remote.Publish
	if publish || eo.sync {
		remote, err := newRemote(cfg, logger, Version)
		if err != nil {
			return err
		}

		if publish {
			deps.publisher = remote
		}

		if eo.sync {
			deps.sync = c.newSyncAgent(remote, p, nil)
		}
	}

	service := c.newService(deps)
	defer service.Close()

	service.Load(ctx)

	return fn(ctx, &commandEnv{core: c, service: service, out: opts.out})
}

func randomCmd(opts *options) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "random",
		Short: "Show a random quote",
		Long: `Show a random quote from the saved category. With --category the
category is saved first, as the filter in the web view does.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithEnv(cmd.Context(), opts, envOptions{show: cli.ShowQuotes}, func(ctx context.Context, env *commandEnv) error {
				if cmd.Flags().Changed("category") {
					env.service.ChangeCategoryFilter(ctx, category)
					return nil
				}

				env.service.RequestRandomQuote(ctx)

				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&category, "category", "k", "", "Category to pick from, or all")

	return cmd
}

func addCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "add TEXT CATEGORY",
		Short: "Add a quote",
		Long:  `Add a quote. Both fields are trimmed; the category is stored lower-cased.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithEnv(cmd.Context(), opts, envOptions{publish: true}, func(ctx context.Context, env *commandEnv) error {
				q, err := env.service.SubmitNewQuote(ctx, args[0], args[1])
				if err != nil {
					return err
				}

				_, err = fmt.Fprintf(env.out, "Added %q (%s)\n", q.Text, q.Category)

				return err
			})
		},
	}
}

func listCmd(opts *options) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List quotes in insertion order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithEnv(cmd.Context(), opts, envOptions{}, func(ctx context.Context, env *commandEnv) error {
				cli.WriteQuotes(env.out, env.service.ListQuotes(ctx, category))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&category, "category", "k", domain.CategoryAll, "Only list this category")

	return cmd
}

func categoriesCmd(opts *options) *cobra.Command {
	var selectCategory string

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List categories and the saved filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithEnv(cmd.Context(), opts, envOptions{}, func(ctx context.Context, env *commandEnv) error {
				if cmd.Flags().Changed("select") {
					env.service.ChangeCategoryFilter(ctx, selectCategory)
				}

				options, selected := env.service.Categories(ctx)
				cli.WriteCategories(env.out, options, selected)

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&selectCategory, "select", "", "Save this category as the filter first")

	return cmd
}

func exportCmd(opts *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the collection as JSON",
		Long:  `Write the collection as pretty-printed JSON, to quotes.json by default or "-" for stdout.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithEnv(cmd.Context(), opts, envOptions{}, func(ctx context.Context, env *commandEnv) error {
				filename, data, err := env.service.Export(ctx)
				if err != nil {
					return err
				}

				if output == stdio {
					_, err = env.out.Write(data)
					return err
				}

				path := output
				if path == "" {
					path = filename
				}

				if err := os.WriteFile(path, data, 0o600); err != nil {
					return fmt.Errorf("writing %s: %w", path, err)
				}

				cli.WriteExported(env.out, path, len(data), env.core.store.Len())

				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, or - for stdout (default quotes.json)")

	return cmd
}

func importCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Append the quotes of an exported file",
		Long:  `Append the quotes of a JSON export. Nothing is added unless every record is valid. Use "-" for stdin.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithEnv(cmd.Context(), opts, envOptions{}, func(ctx context.Context, env *commandEnv) error {
				r, closeFn, err := openInput(cmd.InOrStdin(), args[0])
				if err != nil {
					return err
				}
				defer closeFn()

				n, err := env.service.Import(ctx, r)
				if err != nil {
					return err
				}

				cli.WriteImported(env.out, n, env.core.store.Len())

				return nil
			})
		},
	}
}

// openInput opens path, or returns stdin for "-".
func openInput(stdin io.Reader, path string) (io.Reader, func(), error) {
	if path == stdio {
		return stdin, func() {}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}

	return f, func() { _ = f.Close() }, nil
}

func syncCmd(opts *options) *cobra.Command {
	var accept, keep bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Compare the collection with the remote endpoint",
		Long: `Run one sync cycle. When the remote snapshot differs, --accept replaces
local quotes with it and --keep keeps local quotes. Without either flag the
difference is only reported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eo := envOptions{show: cli.ShowConflicts, sync: true}

			return runWithEnv(cmd.Context(), opts, eo, func(ctx context.Context, env *commandEnv) error {
				status, err := env.service.SyncNow(ctx)
				if err != nil {
					return err
				}

				if status.State == app.SyncConflictPending {
					switch {
					case accept:
						err = env.service.AcceptRemote(ctx)
					case keep:
						err = env.service.KeepLocal(ctx)
					}

					if err != nil {
						return err
					}
				}

				status, err = env.service.SyncStatus()
				if err != nil {
					return err
				}

				cli.WriteSyncStatus(env.out, status, time.Now())

				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&accept, "accept", false, "Replace local quotes with the remote snapshot on conflict")
	cmd.Flags().BoolVar(&keep, "keep", false, "Keep local quotes on conflict")
	cmd.MarkFlagsMutuallyExclusive("accept", "keep")

	return cmd
}

func versionCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(opts.out, "quotekeeper %s (commit %s, built %s)\n", Version, Commit, BuildTime)
			return err
		},
	}
}
