package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/talabot/talabot/internal/config"
	"github.com/talabot/talabot/internal/domain"
	"github.com/talabot/talabot/internal/ledger"
	"github.com/talabot/talabot/internal/logging"
	"github.com/talabot/talabot/internal/render"
)

func newExportCmd() *cobra.Command {
	var (
		chatID string
		format string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a user's transaction history to a file without the bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			if chatID == "" {
				return fmt.Errorf("--chat-id is required")
			}

			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}
			log = logging.New(nil, cfg.Logging.Level)

			store, err := ledger.NewStore(paths.Data, log)
			if err != nil {
				return err
			}
			renderer, err := render.New(paths.Exports, cfg.Render.FontPath, log)
			if err != nil {
				return err
			}

			id := domain.Identity(chatID)
			history, err := store.Read(id)
			if err != nil {
				return err
			}

			var path string
			switch format {
			case "csv":
				path, err = renderer.CSV(id, history)
			case "xlsx":
				path, err = renderer.XLSX(id, history)
			case "pdf":
				path, err = renderer.PDF(id, history)
			default:
				return fmt.Errorf("unknown format %q (want csv, xlsx, or pdf)", format)
			}
			if err != nil {
				return err
			}

			fmt.Println(path)
			return nil
		},
	}

	cmd.Flags().StringVar(&chatID, "chat-id", "", "identity (Telegram chat id) to export")
	cmd.Flags().StringVar(&format, "format", "csv", "export format: csv, xlsx, or pdf")

	return cmd
}
