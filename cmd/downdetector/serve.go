package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/excoffierleonard/downdetector/internal/config"
	"github.com/excoffierleonard/downdetector/internal/httpapi"
	"github.com/excoffierleonard/downdetector/internal/logging"
	"github.com/excoffierleonard/downdetector/internal/monitor"
)

var watchFlag bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Monitor the configured sites until interrupted",
	Long: `Probe every configured site on its schedule and post Discord
notifications on up/down transitions. Runs until Ctrl+C or SIGTERM.

With --watch, rewriting the config file restarts monitoring with the
new settings; a rewrite that fails validation keeps the old ones.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&watchFlag, "watch", false, "reload when the config file changes")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	path, err := config.ResolvePath(configFlag)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reload := make(chan *config.Config, 1)
	if watchFlag {
		go func() {
			err := config.Watch(ctx, log, path, func(next *config.Config) {
				select {
				case reload <- next:
				default:
				}
			})
			if err != nil {
				log.Warn("config_watch_failed", zap.Error(err))
			}
		}()
	}

	for {
		targets := cfg.Targets()
		if len(targets) == 0 {
			log.Warn("no_sites_configured",
				zap.String("config", path),
				zap.String("hint", "add urls to the [sites] table"))
		}

		m := monitor.New(log, monitor.Options{
			Targets:    targets,
			WebhookURL: cfg.Options.WebhookURL,
			MentionID:  cfg.MentionID(),
		})

		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			m.Run(runCtx)
			close(done)
		}()

		// nil channel when the API is disabled; its case never fires
		var apiDone chan error
		if cfg.API.Addr != "" {
			apiDone = make(chan error, 1)
			api := httpapi.NewServer(log, m)
			go func() { apiDone <- api.Run(runCtx, cfg.API.Addr) }()
		}

		select {
		case <-ctx.Done():
			cancel()
			<-done
			waitAPI(apiDone)
			log.Info("shutdown_complete")
			return nil

		case next := <-reload:
			log.Info("config_changed_restarting")
			cancel()
			<-done
			waitAPI(apiDone)
			cfg = next

		case err := <-apiDone:
			cancel()
			<-done
			if err != nil {
				return fmt.Errorf("status api: %w", err)
			}
			return nil
		}
	}
}

func waitAPI(apiDone chan error) {
	if apiDone == nil {
		return
	}
	<-apiDone
}
