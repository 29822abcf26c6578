package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdulachik/releasebot/internal/app"
	"github.com/abdulachik/releasebot/internal/config"
	"github.com/abdulachik/releasebot/internal/seenset"
)

var seenCmd = &cobra.Command{
	Use:   "seen",
	Short: "Inspect and manage the seen set",
}

var seenListCmd = &cobra.Command{
	Use:   "list",
	Short: "List announced track ids",
	Args:  cobra.NoArgs,
	RunE:  runSeenList,
}

var seenImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import ids from an announced_tracks.txt file",
	Long: `Import a newline-delimited list of track ids into the configured
seen set. Use it to move an existing file log into SQLite; ids already
present are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runSeenImport,
}

func init() {
	seenCmd.AddCommand(seenListCmd, seenImportCmd)
	rootCmd.AddCommand(seenCmd)
}

// importer is implemented by stores that can bulk insert.
type importer interface {
	Import(ctx context.Context, ids []string) (int, error)
}

func openSeen(ctx context.Context) (seenset.Store, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateForStorage(); err != nil {
		return nil, nil, fmt.Errorf("validate config: %w", err)
	}

	store, err := app.OpenSeenStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return store, cfg, nil
}

func runSeenList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	store, _, err := openSeen(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	ids, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("list seen tracks: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, id := range ids {
		fmt.Fprintln(out, id)
	}
	return nil
}

func runSeenImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	ids, err := seenset.ReadFile(args[0])
	if err != nil {
		return err
	}

	store, cfg, err := openSeen(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	added, err := importIDs(ctx, store, ids)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d ids into %s store\n", added, len(ids), cfg.SeenStore)
	return nil
}

func importIDs(ctx context.Context, store seenset.Store, ids []string) (int, error) {
	if imp, ok := store.(importer); ok {
		added, err := imp.Import(ctx, ids)
		if err != nil {
			return 0, fmt.Errorf("import: %w", err)
		}
		return added, nil
	}

	added := 0
	for _, id := range ids {
		seen, err := store.Contains(ctx, id)
		if err != nil {
			return added, fmt.Errorf("check %s: %w", id, err)
		}
		if seen {
			continue
		}
		if err := store.Add(ctx, id); err != nil {
			return added, fmt.Errorf("add %s: %w", id, err)
		}
		added++
	}
	return added, nil
}
