package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dosewatch/dosewatch/internal/api"
	"github.com/dosewatch/dosewatch/internal/config"
	"github.com/dosewatch/dosewatch/internal/logger"
	"github.com/dosewatch/dosewatch/internal/notify"
	"github.com/dosewatch/dosewatch/internal/reconcile"
	"github.com/dosewatch/dosewatch/internal/registry"
	"github.com/dosewatch/dosewatch/internal/scheduler"
	"github.com/dosewatch/dosewatch/internal/storage"
	"github.com/dosewatch/dosewatch/internal/update"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "dosewatch failed: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "dosewatch",
		Short:        "Terminal supplement tracker with dose reminders.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI()
		},
	}
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the dosewatch version.",
		Run: func(*cobra.Command, []string) {
			fmt.Println(version)
		},
	})
	return root
}

func runTUI() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogPath)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if err := os.MkdirAll(filepath.Dir(cfg.CachePath), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	cache, err := storage.OpenSQLite(cfg.CachePath)
	if err != nil {
		return fmt.Errorf("open snapshot cache: %w", err)
	}
	defer func() { _ = cache.Close() }()

	client := api.NewClient(cfg.APIBaseURL, cfg.APIToken, log)
	store := storage.NewCachedStore(client, cache, log)
	reg := registry.New()
	rec := reconcile.New(store, reg, log)

	engine := scheduler.NewEngine(cfg.SchedulerBuffer)
	planner := scheduler.NewPlanner(engine, log)
	engine.Start()
	defer engine.Stop()

	var notifier notify.Notifier = notify.Noop{}
	if cfg.DesktopNotifications {
		notifier = notify.NewDesktop()
	}

	offline, staleDay, err := initialLoad(rec, reg, planner, cache, log)
	if err != nil {
		return err
	}

	m := update.NewModelWithRuntime(update.Deps{
		Registry:   reg,
		Reconciler: rec,
		Planner:    planner,
		Engine:     engine,
		Chat:       client,
		Notifier:   notifier,
		Logger:     log,
	}, cfg.DesktopNotifications)
	m.Offline = offline
	m.StaleDay = staleDay

	program := tea.NewProgram(m)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// initialLoad fetches today's data, falling back to the cached snapshot when
// the backend is unreachable. With neither available the app still starts,
// just empty.
func initialLoad(rec *reconcile.Reconciler, reg *registry.Registry, planner *scheduler.Planner, cache *storage.SQLiteCache, log *zap.Logger) (offline bool, staleDay string, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, loadErr := rec.Reload(ctx); loadErr != nil {
		if api.IsAuth(loadErr) {
			return false, "", fmt.Errorf("authentication failed, check DOSEWATCH_API_TOKEN: %w", loadErr)
		}
		log.Warn("initial load failed, trying cached snapshot", zap.Error(loadErr))

		snap, cacheErr := cache.LoadSnapshot(ctx)
		if cacheErr != nil {
			if !errors.Is(cacheErr, storage.ErrNoSnapshot) {
				log.Warn("snapshot load failed", zap.Error(cacheErr))
			}
			return true, "", nil
		}
		now := time.Now()
		reg.Rebuild(registry.BuildInstances(snap.Supplements, snap.Logs, now))
		if snap.Stale(now) {
			staleDay = snap.Day.Format("2006-01-02")
		}
		// Reminders are local, so the cached session still arms its timers.
		planner.Rebuild(reg.Instances(), now)
		return true, staleDay, nil
	}

	planner.Rebuild(reg.Instances(), time.Now())
	return false, "", nil
}
