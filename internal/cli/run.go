package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/talabot/talabot/internal/bot"
	"github.com/talabot/talabot/internal/channel"
	"github.com/talabot/talabot/internal/channel/telegram"
	"github.com/talabot/talabot/internal/config"
	"github.com/talabot/talabot/internal/dialog"
	"github.com/talabot/talabot/internal/domain"
	"github.com/talabot/talabot/internal/ledger"
	"github.com/talabot/talabot/internal/logging"
	"github.com/talabot/talabot/internal/render"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}
			if logLevel == "" {
				log = logging.New(nil, cfg.Logging.Level)
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				for _, issue := range issues {
					log.Error().Msg(issue.Message)
				}
				return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
			}
			if cfg.Telegram.Token == "" {
				return fmt.Errorf("no telegram token configured (set telegram.token or TALABOT_TOKEN)")
			}

			if err := paths.EnsureDirs(); err != nil {
				return fmt.Errorf("creating data directories: %w", err)
			}

			store, err := ledger.NewStore(paths.Data, log)
			if err != nil {
				return err
			}
			directory := ledger.NewDirectory(paths.Users, log)

			renderer, err := render.New(paths.Exports, cfg.Render.FontPath, log)
			if err != nil {
				return err
			}
			if cfg.Render.FontPath == "" {
				log.Warn().Msg("no render.fontPath configured; invoices will use the fallback bitmap face")
			}

			tg, err := telegram.New(cfg.Telegram.Token, log)
			if err != nil {
				return err
			}

			router := bot.New(
				tg,
				dialog.NewMachine(log),
				dialog.NewMemoryStore(),
				store,
				directory,
				renderer,
				domain.Identity(cfg.Admin.ChatID),
				cfg.Session.CommandPolicy,
				log,
			)
			router.Wire()

			registry := channel.NewRegistry(log)
			registry.Register(tg)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			registry.StartAll(ctx)
			log.Info().Str("policy", cfg.Session.CommandPolicy).Msg("talabot running")

			<-ctx.Done()
			registry.StopAll(context.Background())
			log.Info().Msg("talabot stopped")
			return nil
		},
	}
}
