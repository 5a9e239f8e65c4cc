// Package chronicle parses command flags and runs the document CLI.
package chronicle

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/mosaic-games/chronicle/internal/config"
	"github.com/mosaic-games/chronicle/internal/export"
	"github.com/mosaic-games/chronicle/internal/game"
	"github.com/mosaic-games/chronicle/internal/snapshot"
	"github.com/mosaic-games/chronicle/internal/storage"
	boltstore "github.com/mosaic-games/chronicle/internal/storage/bbolt"
	"github.com/mosaic-games/chronicle/internal/storage/sqlite"
)

// Config holds chronicle command configuration.
type Config struct {
	DataDir       string `env:"CHRONICLE_DATA_DIR" envDefault:"."`
	HistoryLimit  int    `env:"CHRONICLE_HISTORY_LIMIT" envDefault:"50"`
	SnapshotLimit int    `env:"CHRONICLE_SNAPSHOT_LIMIT" envDefault:"50"`
}

// ParseConfig parses environment and flags into a Config, returning the
// remaining positional arguments.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, []string, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, nil, err
	}
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Directory holding the document and snapshot databases")
	fs.IntVar(&cfg.HistoryLimit, "history-limit", cfg.HistoryLimit, "Maximum undoable actions per session")
	fs.IntVar(&cfg.SnapshotLimit, "snapshot-limit", cfg.SnapshotLimit, "Maximum retained snapshots per document")
	if err := fs.Parse(args); err != nil {
		return Config{}, nil, err
	}
	return cfg, fs.Args(), nil
}

// Stores bundles the two persistence backends the CLI operates on.
type Stores struct {
	Games     storage.GameStore
	Snapshots storage.SnapshotStore
}

// OpenStores opens the document and snapshot databases under the data
// directory.
func OpenStores(cfg Config) (*Stores, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	games, err := boltstore.Open(filepath.Join(cfg.DataDir, "chronicle.db"))
	if err != nil {
		return nil, fmt.Errorf("open document store: %w", err)
	}
	snapshots, err := sqlite.Open(filepath.Join(cfg.DataDir, "snapshots.db"))
	if err != nil {
		_ = games.Close()
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	return &Stores{Games: games, Snapshots: snapshots}, nil
}

// Close closes both stores.
func (s *Stores) Close() {
	if s == nil {
		return
	}
	if s.Games != nil {
		_ = s.Games.Close()
	}
	if s.Snapshots != nil {
		_ = s.Snapshots.Close()
	}
}

// Run dispatches one CLI subcommand against the stores.
func Run(ctx context.Context, cfg Config, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return usageError()
	}

	stores, err := OpenStores(cfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	command, rest := args[0], args[1:]
	switch command {
	case "create":
		return runCreate(ctx, stores, rest, stdout)
	case "list":
		return runList(ctx, stores, stdout)
	case "show":
		return runShow(ctx, stores, rest, stdout)
	case "delete":
		return runDelete(ctx, stores, rest, stdout)
	case "export":
		return runExport(ctx, stores, rest, stdout)
	case "import":
		return runImport(ctx, stores, rest, stdout)
	case "snapshots":
		return runSnapshots(ctx, cfg, stores, rest, stdout)
	default:
		return usageError()
	}
}

func usageError() error {
	return fmt.Errorf("usage: chronicle [flags] <create|list|show|delete|export|import|snapshots> ...")
}

func runCreate(ctx context.Context, stores *Stores, args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: chronicle create <name>")
	}

	g, err := game.NewGame(args[0], nil, nil)
	if err != nil {
		return err
	}
	if err := stores.Games.Create(ctx, g); err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	fmt.Fprintf(stdout, "created %s (%s)\n", g.Name, g.ID)
	return nil
}

func runList(ctx context.Context, stores *Stores, stdout io.Writer) error {
	list, err := stores.Games.List(ctx)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	if len(list) == 0 {
		fmt.Fprintln(stdout, "no documents")
		return nil
	}

	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tUPDATED")
	for _, meta := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\n", meta.ID, meta.Name, meta.UpdatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

func runShow(ctx context.Context, stores *Stores, args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: chronicle show <id>")
	}

	g, err := stores.Games.Load(ctx, args[0])
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	fmt.Fprintf(stdout, "%s (%s)\n", g.Name, g.ID)
	fmt.Fprintf(stdout, "periods: %d, legacies: %d, anchors: %d\n", len(g.Periods), len(g.Legacies), len(g.Anchors))
	for _, period := range g.Periods {
		fmt.Fprintf(stdout, "  %s (%d events)\n", period.Name, len(period.Events))
	}
	return nil
}

func runDelete(ctx context.Context, stores *Stores, args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: chronicle delete <id>")
	}

	id := args[0]
	if err := stores.Games.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if err := stores.Snapshots.DeleteByGame(ctx, id); err != nil {
		return fmt.Errorf("delete document snapshots: %w", err)
	}
	fmt.Fprintf(stdout, "deleted %s\n", id)
	return nil
}

func runExport(ctx context.Context, stores *Stores, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	format := fs.String("format", "json", "Export format: json or markdown")
	withHistory := fs.Bool("with-history", false, "Include snapshot history in JSON exports")
	output := fs.String("o", "", "Output file (defaults to stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: chronicle export [-format json|markdown] [-with-history] [-o file] <id>")
	}

	g, err := stores.Games.Load(ctx, fs.Arg(0))
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	var payload []byte
	switch *format {
	case "json":
		var history []snapshot.Snapshot
		if *withHistory {
			metas, err := stores.Snapshots.List(ctx, g.ID)
			if err != nil {
				return fmt.Errorf("list snapshots: %w", err)
			}
			for _, meta := range metas {
				snap, err := stores.Snapshots.Get(ctx, meta.ID)
				if err != nil {
					return fmt.Errorf("load snapshot %s: %w", meta.ID, err)
				}
				history = append(history, snap)
			}
		}
		payload, err = export.ToJSONWithHistory(g, history, nil)
		if err != nil {
			return err
		}
	case "markdown", "md":
		payload = []byte(export.ToMarkdown(g, nil))
	default:
		return fmt.Errorf("unknown export format %q", *format)
	}

	if *output == "" {
		_, err = stdout.Write(append(payload, '\n'))
		return err
	}
	if err := os.WriteFile(*output, payload, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(stdout, "exported %s to %s\n", g.ID, *output)
	return nil
}

func runImport(ctx context.Context, stores *Stores, args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: chronicle import <file>")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}

	parsed, history, err := export.ParseEnvelope(data)
	if err != nil {
		return err
	}
	g, snaps, err := export.FromImport(parsed, history, nil, nil)
	if err != nil {
		return err
	}

	if err := stores.Games.Create(ctx, g); err != nil {
		return fmt.Errorf("store imported document: %w", err)
	}
	for _, snap := range snaps {
		if err := stores.Snapshots.Put(ctx, snap); err != nil {
			return fmt.Errorf("store imported snapshot: %w", err)
		}
	}
	fmt.Fprintf(stdout, "imported %s as %s\n", g.Name, g.ID)
	return nil
}

func runSnapshots(ctx context.Context, cfg Config, stores *Stores, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("snapshots", flag.ContinueOnError)
	capture := fs.Bool("capture", false, "Capture a new snapshot of the document's current state")
	versionName := fs.String("name", "", "Version name for a captured snapshot")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: chronicle snapshots [-capture] [-name version] <id>")
	}
	gameID := fs.Arg(0)

	if *capture {
		g, err := stores.Games.Load(ctx, gameID)
		if err != nil {
			return fmt.Errorf("load document: %w", err)
		}
		snap, err := captureSnapshot(ctx, stores.Snapshots, g, *versionName, cfg.SnapshotLimit)
		if err != nil {
			return err
		}
		if snap == nil {
			fmt.Fprintln(stdout, "no changes since the last snapshot")
			return nil
		}
		fmt.Fprintf(stdout, "captured %s: %s\n", snap.ID, snap.ChangeSummary)
		return nil
	}

	metas, err := stores.Snapshots.List(ctx, gameID)
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}
	if len(metas) == 0 {
		fmt.Fprintln(stdout, "no snapshots")
		return nil
	}
	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tNAME\tSUMMARY")
	for _, meta := range metas {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", meta.ID, meta.CreatedAt.Format(time.RFC3339), meta.VersionName, meta.ChangeSummary)
	}
	return w.Flush()
}

func captureSnapshot(ctx context.Context, store storage.SnapshotStore, g *game.Game, versionName string, limit int) (*snapshot.Snapshot, error) {
	var previous *game.Game
	latest, err := store.Latest(ctx, g.ID)
	switch {
	case err == nil:
		previous = &latest.Data
		if snapshot.Equal(previous, g) {
			return nil, nil
		}
	case errors.Is(err, storage.ErrNotFound):
	default:
		return nil, fmt.Errorf("load latest snapshot: %w", err)
	}

	snap, err := snapshot.New(g, versionName, snapshot.ChangeSummary(previous, g), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("build snapshot: %w", err)
	}
	if err := store.Put(ctx, snap); err != nil {
		return nil, fmt.Errorf("store snapshot: %w", err)
	}
	if _, err := store.Prune(ctx, g.ID, limit); err != nil {
		return nil, fmt.Errorf("prune snapshots: %w", err)
	}
	return &snap, nil
}
