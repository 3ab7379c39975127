package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"coleta/internal/api"
	"coleta/internal/db"
	"coleta/internal/detail"
	"coleta/internal/location"
	"coleta/internal/logging"
	"coleta/internal/ui"
	"coleta/internal/upload"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const photoCacheTTL = 10 * time.Minute

// Execute runs the coleta command line.
func Execute(version string) error {
	if err := loadDotEnv(".env", ".env.local"); err != nil {
		return err
	}
	return newRootCmd(viper.New(), version).Execute()
}

func newRootCmd(v *viper.Viper, version string) *cobra.Command {
	var config *Config
	var bindErr error

	root := &cobra.Command{
		Use:          "coleta",
		Short:        "Find recycling collection points from the terminal",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if bindErr != nil {
				return bindErr
			}
			var err error
			config, err = loadConfig(v)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(config)
		},
	}
	bindErr = bindFlags(v, root.PersistentFlags())

	root.AddCommand(&cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a collection-point photo and print its URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, closer, err := logging.New(config.Log)
			if err != nil {
				return err
			}
			defer closer.Close()

			store, err := newStore(cmd.Context(), config)
			if err != nil {
				return err
			}
			res, err := upload.NewUploader(store, logger).UploadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.URL)
			return nil
		},
	})

	return root
}

// newStore returns the bucket store when an endpoint is configured, and the
// upload directory otherwise.
func newStore(ctx context.Context, config *Config) (upload.Store, error) {
	if config.Minio.Endpoint == "" {
		return upload.NewDiskStore(config.UploadDir, config.UploadBaseURL), nil
	}
	store, err := upload.NewMinioStore(config.Minio)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func runTUI(config *Config) error {
	settings, err := loadOnboardingSettings(config.ConfigDir)
	if err != nil {
		return fmt.Errorf("failed to load onboarding settings: %w", err)
	}
	if shouldRunOnboarding(settings) {
		settings, err = runOnboarding(config.ConfigDir, config.APIURL)
		if err != nil {
			return fmt.Errorf("failed to run onboarding: %w", err)
		}
	}
	config.applyOnboarding(settings)

	logger, closer, err := logging.New(config.Log)
	if err != nil {
		return err
	}
	defer closer.Close()

	database, err := db.Open(config.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	deps := newDeps(config, logger, ui.DetectTerminalCapabilities())
	deps.DB = database

	logger.Info("starting coleta",
		slog.String("api", config.APIURL),
		slog.Bool("ip_locate", config.IPLocate),
		slog.Bool("fixed_location", config.Location != nil),
	)

	p := tea.NewProgram(ui.New(deps), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running app: %w", err)
	}
	return nil
}

// newDeps wires the API client and services the UI runs on.
func newDeps(config *Config, logger *slog.Logger, caps ui.TerminalCapabilities) ui.Deps {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	client := api.NewClient(config.APIURL, api.WithLogger(logger))

	return ui.Deps{
		Catalog:   client,
		Points:    client,
		Locator:   location.NewProvider(config.locationSource(), logger),
		Details:   detail.NewService(client, logger),
		Photos:    detail.NewPhotos(client, ui.PhotoRenderer(caps), photoCacheTTL),
		Fallback:  config.FallbackItems,
		Logger:    logger,
		PrefsPath: filepath.Join(config.ConfigDir, "ui_prefs.json"),
	}
}
