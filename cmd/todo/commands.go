package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"todo/internal/config"
	"todo/internal/logging"
	"todo/internal/storage"
	"todo/internal/ui"
)

// app bundles what every command needs: config, logger and an open store.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	store  *storage.Store
	closer io.Closer
}

func openApp(configPath string) (*app, error) {
	if configPath == "" {
		configPath = config.ResolveConfigPath()
	}
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, closer, err := logging.Open(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	store, err := storage.Open(cfg.DBPath, logger)
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	logger.Debug("started", "config", configPath, "db", cfg.DBPath)
	return &app{cfg: cfg, logger: logger, store: store, closer: closer}, nil
}

func (a *app) Close() error {
	return errors.Join(a.store.Close(), a.closer.Close())
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		listTitle  string
	)

	root := &cobra.Command{
		Use:           "todo",
		Short:         "Current and completed tasks of a task list, in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			title := listTitle
			if strings.TrimSpace(title) == "" {
				title = a.cfg.DefaultList
			}
			list, err := a.store.EnsureList(cmd.Context(), title)
			if err != nil {
				return err
			}
			return ui.Run(a.store, a.cfg, list, a.logger)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $"+config.EnvConfigPath+" or the user config dir)")
	root.Flags().StringVarP(&listTitle, "list", "l", "", "task list to open (default from config)")

	root.AddCommand(newListsCmd(&configPath))
	return root
}

func newListsCmd(configPath *string) *cobra.Command {
	lists := &cobra.Command{
		Use:   "lists",
		Short: "Show task lists with their task counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()
			return printSummaries(cmd.Context(), cmd.OutOrStdout(), a.store)
		},
	}

	lists.AddCommand(&cobra.Command{
		Use:   "add TITLE",
		Short: "Create a task list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()
			list, err := a.store.CreateList(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %q\n", list.Title)
			return nil
		},
	})

	lists.AddCommand(&cobra.Command{
		Use:   "rm TITLE",
		Short: "Delete a task list and all of its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()
			list, err := a.store.ListByTitle(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := a.store.DeleteList(cmd.Context(), list.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %q\n", list.Title)
			return nil
		},
	})
	return lists
}

func printSummaries(ctx context.Context, w io.Writer, store *storage.Store) error {
	sums, err := store.Summaries(ctx)
	if err != nil {
		return err
	}
	if len(sums) == 0 {
		fmt.Fprintln(w, "no task lists")
		return nil
	}
	for _, s := range sums {
		fmt.Fprintf(w, "%-24s %3d current %3d completed\n", s.Title, s.Current, s.Completed)
	}
	return nil
}
