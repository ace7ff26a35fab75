package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"gatebot/internal/access"
	"gatebot/internal/bot"
	"gatebot/internal/buildinfo"
	"gatebot/internal/config"
	"gatebot/internal/health"
	"gatebot/internal/logger"
	"gatebot/internal/nav"
	"gatebot/internal/session"
	"gatebot/internal/symbol"
	"gatebot/internal/table"
	"gatebot/internal/telegram"
	"gatebot/internal/throttle"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "gatebot",
		Short:         "Telegram bot guiding users to room codes with timed group access",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config (or GATEBOT_CONFIG)")

	root.AddCommand(runCmd(&configPath))
	root.AddCommand(checkDataCmd(&configPath))
	root.AddCommand(versionCmd())
	return root
}

func resolveConfigPath(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env := os.Getenv("GATEBOT_CONFIG"); env != "" {
		return env, nil
	}
	return "", fmt.Errorf("config path not provided via --config or GATEBOT_CONFIG")
}

func loadAll(flag string) (*config.Config, *symbol.Interner, *table.Cache, error) {
	path, err := resolveConfigPath(flag)
	if err != nil {
		return nil, nil, nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := logger.Init(logger.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format}); err != nil {
		return nil, nil, nil, err
	}

	src, err := buildSource(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	syms := symbol.NewInterner()
	cache := table.NewCache(src, syms)
	// A dataset failure here is fatal: the bot must not serve traffic
	// without valid data.
	if err := cache.Load(); err != nil {
		return nil, nil, nil, err
	}
	return cfg, syms, cache, nil
}

func buildSource(cfg *config.Config) (table.Source, error) {
	switch cfg.Dataset.Kind {
	case config.DatasetPostgres:
		if err := table.RunMigrations(cfg.Dataset.Database); err != nil {
			return nil, err
		}
		db, err := table.Connect(cfg.Dataset.Database)
		if err != nil {
			return nil, err
		}
		return table.NewPostgresSource(db), nil
	default:
		return table.NewCSVSource(cfg.Dataset.Path), nil
	}
}

func runCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the bot and the ops endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, syms, cache, err := loadAll(*configPath)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector())
			metrics := health.NewMetrics(reg)

			tb, err := telegram.NewBot(cfg)
			if err != nil {
				return err
			}

			manager := access.NewManager(telegram.NewChannel(tb), access.Options{
				ChannelID:   cfg.Channel.ChatID,
				AdminID:     cfg.Telegram.AdminID,
				RevokeDelay: time.Duration(cfg.Channel.RevokeDelayMinutes) * time.Minute,
				OnGrant:     metrics.Grants.Inc,
				OnRevoke:    metrics.Revocations.Inc,
			})
			// Pending revocations do not survive restarts; after a deploy
			// the exposure window is at most the revoke delay.
			logger.Access.Info("revocation scheduler ready",
				"event", "access.init",
				"revoke_delay_minutes", cfg.Channel.RevokeDelayMinutes,
			)

			ttl := time.Duration(cfg.Dataset.CacheTTLSeconds) * time.Second
			ops := health.NewServer(cfg.Ops.Listen, cache, 3*ttl, reg)
			opsErr := make(chan error, 1)
			go func() { opsErr <- ops.Run(ctx) }()

			app := bot.New(cfg, tb, bot.Deps{
				Cache:    cache,
				Engine:   nav.NewEngine(syms),
				Gate: throttle.NewGate(
					time.Duration(cfg.Throttle.WindowSeconds)*time.Second,
					cfg.Throttle.MaxRequests,
				),
				Sessions: session.NewStore(),
				Access:   manager,
				Metrics:  metrics,
			})

			if err := app.Run(ctx); err != nil {
				return err
			}
			return <-opsErr
		},
	}
}

func checkDataCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "checkdata",
		Short: "Load and validate the dataset, then print tree statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, syms, cache, err := loadAll(*configPath)
			if err != nil {
				return err
			}
			rows := cache.Snapshot()

			keys := make(map[string]struct{})
			terminals := 0
			for _, r := range rows {
				if r.Key == "" {
					continue
				}
				keys[r.Key] = struct{}{}
				if r.Terminal != "" {
					terminals++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"rows: %d\nkeys: %d\nterminals: %d\nsymbols: %d\n",
				len(rows), len(keys), terminals, syms.Len())
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gatebot %s (%s) %s\n",
				buildinfo.Version, buildinfo.Commit, buildinfo.Date)
		},
	}
}
