package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mrlokans/lullabies/internal/config"
	"github.com/mrlokans/lullabies/internal/entities"
	"github.com/mrlokans/lullabies/internal/entrypoint"
	"github.com/mrlokans/lullabies/internal/tasks"
)

// SyncCommand refreshes the local content cache from the content API
type SyncCommand struct {
	Family       string
	Force        bool
	DatabasePath string
	EnvFile      string
}

// NewSyncCommand creates a new SyncCommand
func NewSyncCommand() *SyncCommand {
	return &SyncCommand{}
}

// ParseFlags parses command line flags
func (cmd *SyncCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)

	fs.StringVar(&cmd.Family, "family", "", "Content family to sync: lullabies or stories (default: all)")
	fs.BoolVar(&cmd.Force, "force", false, "Sync even when the cache is fresh")
	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to the database file (default: DATABASE_PATH)")
	fs.StringVar(&cmd.EnvFile, "env", "", "Path to a .env file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s sync [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Fetch lullabies and stories from the content API into the local cache.\n")
		fmt.Fprintf(os.Stderr, "Families synced within SYNC_STALE_THRESHOLD are skipped unless -force is set.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s sync\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s sync -family stories -force\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	switch entities.SyncType(cmd.Family) {
	case "", entities.SyncTypeLullabies, entities.SyncTypeStories:
	default:
		return fmt.Errorf("unknown family %q: expected lullabies or stories", cmd.Family)
	}

	return nil
}

// Run executes the sync command
func (cmd *SyncCommand) Run() error {
	var cfg *config.Config
	if cmd.EnvFile != "" {
		cfg = config.NewConfig(cmd.EnvFile)
	} else {
		cfg = config.NewConfig()
	}
	if cmd.DatabasePath != "" {
		cfg.Database.Path = cmd.DatabasePath
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := entrypoint.NewApp(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer app.Close()

	fmt.Printf("Database: %s\n", cfg.Database.Path)
	fmt.Printf("Content API: %s\n", cfg.Remote.BaseURL)

	syncErr := tasks.RunSync(ctx, entities.SyncType(cmd.Family), cmd.Force, app.Syncers()...)

	for _, s := range app.Syncers() {
		if cmd.Family != "" && string(s.Family()) != cmd.Family {
			continue
		}
		progress, err := app.SyncState.GetSyncProgress(ctx, s.Family())
		if err != nil {
			return err
		}
		printProgress(s.Family(), progress)
	}

	if syncErr != nil {
		return fmt.Errorf("sync failed: %w", syncErr)
	}
	fmt.Println("Sync complete")
	return nil
}

func printProgress(family entities.SyncType, progress *entities.SyncProgress) {
	if progress == nil {
		fmt.Printf("%-10s never synced\n", family)
		return
	}
	fmt.Printf("%-10s %-9s items=%d stored=%d skipped=%d", family, progress.Status, progress.TotalItems, progress.Succeeded, progress.Skipped)
	if progress.LastSucceededAt != nil {
		fmt.Printf(" last_success=%s", progress.LastSucceededAt.Format("2006-01-02 15:04:05"))
	}
	if progress.Error != "" {
		fmt.Printf(" error=%q", progress.Error)
	}
	fmt.Println()
}
