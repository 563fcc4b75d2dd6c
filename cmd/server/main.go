package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/Datash/backend/internal/domain/share"
	"github.com/GriffinCanCode/Datash/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/Datash/backend/internal/infrastructure/server"
)

var errConflictingShare = errors.New("--share-text and --share-file cannot be combined")

type options struct {
	configPath string
	port       string
	host       string
	downloads  string
	dev        bool
	shareText  string
	shareFiles []string
}

func main() {
	cmd := NewServerCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// NewServerCommand builds the root command
func NewServerCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "datash",
		Short: "Run the Datash bridge host",
		Example: `  datash --port 8000 --downloads ~/Downloads
  datash --dev --share-file ./report.pdf --share-file ./photo.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			launch, ok, err := launchShare(cmd, opts)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg, launch, ok)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file (defaults to $CONFIG_FILE)")
	cmd.Flags().StringVarP(&opts.port, "port", "p", "", "HTTP port")
	cmd.Flags().StringVar(&opts.host, "host", "", "HTTP bind host")
	cmd.Flags().StringVar(&opts.downloads, "downloads", "", "directory completed transfers are written to")
	cmd.Flags().BoolVarP(&opts.dev, "dev", "d", false, "development mode: console logs at debug level")
	cmd.Flags().StringVar(&opts.shareText, "share-text", "", "text delivered to the surface once it is ready")
	cmd.Flags().StringArrayVar(&opts.shareFiles, "share-file", nil, "file delivered to the surface once it is ready (repeatable)")

	return cmd
}

// loadConfig layers flags that were set explicitly over file and env config
func loadConfig(cmd *cobra.Command, opts options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Server.Port = opts.port
	}
	if flags.Changed("host") {
		cfg.Server.Host = opts.host
	}
	if flags.Changed("downloads") {
		cfg.Storage.DownloadsDir = opts.downloads
	}
	if opts.dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func launchShare(cmd *cobra.Command, opts options) (share.Event, bool, error) {
	hasText := cmd.Flags().Changed("share-text")
	switch {
	case hasText && len(opts.shareFiles) > 0:
		return share.Event{}, false, errConflictingShare
	case hasText:
		return share.NewTextEvent(opts.shareText), true, nil
	case len(opts.shareFiles) > 0:
		return share.NewFilesEvent(opts.shareFiles...), true, nil
	}
	return share.Event{}, false, nil
}

func run(ctx context.Context, cfg *config.Config, launch share.Event, hasLaunch bool) error {
	srv, err := server.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer srv.Close()

	if hasLaunch {
		srv.Share(launch)
	}

	return srv.Run(ctx)
}
