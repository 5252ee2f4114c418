package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/ironsheep/spectra-mcp/internal/config"
	"github.com/ironsheep/spectra-mcp/internal/frequency"
	"github.com/ironsheep/spectra-mcp/internal/project"
	"github.com/ironsheep/spectra-mcp/internal/report"
)

// Editors often write a file in several steps; wait for them to settle.
const (
	watchDebounce   = 250 * time.Millisecond
	watchLoadTries  = 4
	watchRetryDelay = 200 * time.Millisecond
)

var watchCmd = &cobra.Command{
	Use:   "watch [project.json]",
	Short: "Reprint assignments and frequencies whenever the project file changes",
	Long: `Watch a project file and, after every change, reload it, reassign all
detections and print the per-section frequency report (or the project summary
when no frequency table is configured). Changes to the config file are picked
up too. Stop with Ctrl+C.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat()
		if err != nil {
			return err
		}
		path, err := projectPath(args)
		if err != nil {
			return err
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create watcher: %w", err)
		}
		defer watcher.Close()
		// Watch the directory so rename-on-save editors keep working.
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
		}

		tablePath := cfg.FrequencyTable
		configChanged := make(chan *config.Config, 1)
		if cfgManager.ConfigFile() != "" {
			cfgManager.OnChange(func(c *config.Config) {
				select {
				case configChanged <- c:
				default:
				}
			})
			cfgManager.WatchConfig()
		}

		ctx := cmd.Context()
		p := project.New(logger.With("component", "project"))
		refresh := func() {
			if err := watchRefresh(ctx, p, abs, tablePath, format); err != nil {
				logger.Error("refresh failed", "path", abs, "error", err)
			}
		}
		refresh()

		timer := time.NewTimer(watchDebounce)
		timer.Stop()
		logger.Info("watching project", "path", abs)
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				timer.Reset(watchDebounce)
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				logger.Warn("watcher error", "error", err)
			case c := <-configChanged:
				if c.FrequencyTable != tablePath {
					logger.Info("frequency table changed", "path", c.FrequencyTable)
					tablePath = c.FrequencyTable
					refresh()
				}
			case <-timer.C:
				refresh()
			}
		}
	},
}

// watchRefresh reloads the project and prints the current report. A file
// caught half-written fails to parse, so loading is retried briefly.
func watchRefresh(ctx context.Context, p *project.Project, path, tablePath string, format report.Format) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	err := retry.Do(
		func() error { return p.Load(path) },
		retry.Context(ctx),
		retry.Attempts(watchLoadTries),
		retry.Delay(watchRetryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return err
	}
	stats := p.Reassign()
	logger.Info("project reloaded", "detections", stats.Detections, "fallback", stats.Fallback)

	if tablePath == "" {
		return report.Write(os.Stdout, format, p.Summary())
	}
	table, err := frequency.LoadTable(tablePath)
	if err != nil {
		return err
	}
	results, err := p.Results(table, nil)
	if err != nil {
		return err
	}
	return report.WriteResults(os.Stdout, format, results)
}
