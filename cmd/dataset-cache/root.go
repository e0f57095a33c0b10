package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ducnd58233/dataset-cache/internal/adapter/filesystem"
	"github.com/ducnd58233/dataset-cache/internal/adapter/httpclient"
	"github.com/ducnd58233/dataset-cache/internal/adapter/sqlite"
	"github.com/ducnd58233/dataset-cache/internal/config"
	"github.com/ducnd58233/dataset-cache/internal/logger"
	"github.com/ducnd58233/dataset-cache/internal/mimetype"
	"github.com/ducnd58233/dataset-cache/internal/service/archive"
	"github.com/ducnd58233/dataset-cache/internal/service/extractor"
	"github.com/ducnd58233/dataset-cache/internal/service/fetcher"
	"github.com/ducnd58233/dataset-cache/internal/service/janitor"
	"github.com/ducnd58233/dataset-cache/internal/service/pipeline"
)

var errOperationFailed = errors.New("operation failed")

// app holds the wired component graph for one command invocation.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   *sqlite.Store
	service *archive.Service
	janitor *janitor.Janitor
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
	if a.logger != nil {
		a.logger.Sync()
	}
}

func newApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	zapLogger, err := logger.New(logger.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	fsManager, err := filesystem.NewManager(cfg.Cache.RootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	store, err := sqlite.Open(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	client := httpclient.New(httpclient.Options{
		TransferTimeout: cfg.HTTP.GetTransferTimeout(),
		ProbeTimeout:    cfg.HTTP.GetProbeTimeout(),
		UserAgent:       "dataset-cache/" + version,
	})

	classifier := mimetype.NewClassifier(client, zapLogger)
	fetchSvc := fetcher.New(client, classifier, fsManager, zapLogger)
	extractSvc := extractor.New(fsManager, zapLogger)
	pipelineSvc := pipeline.New(fetchSvc, extractSvc, fsManager, zapLogger)

	janitorSvc := janitor.New(&janitor.Config{
		SweepInterval: cfg.Janitor.GetSweepInterval(),
		Retention:     cfg.Cache.GetRetention(),
	}, fsManager, store, zapLogger)

	return &app{
		cfg:     cfg,
		logger:  zapLogger,
		store:   store,
		service: archive.New(fetchSvc, extractSvc, pipelineSvc, janitorSvc, store, zapLogger),
		janitor: janitorSvc,
	}, nil
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "dataset-cache",
		Short:         "Download, validate and extract remote dataset archives with a local cache.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to configuration file")

	rootCmd.AddCommand(
		newDownloadCmd(&configPath),
		newExtractCmd(&configPath),
		newGetCmd(&configPath),
		newCleanupCmd(&configPath),
		newJanitorCmd(&configPath),
		newHistoryCmd(&configPath),
	)

	return rootCmd
}

func newDownloadCmd(configPath *string) *cobra.Command {
	var (
		output     string
		force      bool
		noValidate bool
	)

	cmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Download a file, validating it is a compressed archive.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			result := a.service.Download(cmd.Context(), args[0], output, force, !noValidate)
			if result.MIMEType != "" {
				fmt.Printf("%s (%s)\n", result.Message, result.MIMEType)
			} else {
				fmt.Println(result.Message)
			}
			if !result.Succeeded {
				return errOperationFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "destination file path")
	cmd.Flags().BoolVar(&force, "force", false, "re-download even if the destination exists")
	cmd.Flags().BoolVar(&noValidate, "no-validate", false, "skip archive type validation")
	cmd.MarkFlagRequired("output")

	return cmd
}

func newExtractCmd(configPath *string) *cobra.Command {
	var (
		destDir       string
		removeArchive bool
	)

	cmd := &cobra.Command{
		Use:   "extract <archive>",
		Short: "Extract an archive into a directory.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			result := a.service.Extract(cmd.Context(), args[0], destDir, removeArchive)
			fmt.Println(result.Message)
			if !result.Succeeded {
				return errOperationFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&destDir, "dest", "d", "", "extraction destination directory")
	cmd.Flags().BoolVar(&removeArchive, "remove", false, "remove the archive after extraction")
	cmd.MarkFlagRequired("dest")

	return cmd
}

func newGetCmd(configPath *string) *cobra.Command {
	var (
		destDir     string
		keepArchive bool
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "get <url>",
		Short: "Download an archive and extract it in one step.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			result := a.service.DownloadAndExtract(cmd.Context(), args[0], destDir, keepArchive, force)
			fmt.Println(result.Message)
			if !result.Succeeded {
				return errOperationFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&destDir, "dest", "d", "", "extraction destination directory")
	cmd.Flags().BoolVar(&keepArchive, "keep-archive", false, "keep the downloaded archive in the cache")
	cmd.Flags().BoolVar(&force, "force", false, "re-download even if cached")
	cmd.MarkFlagRequired("dest")

	return cmd
}

func newCleanupCmd(configPath *string) *cobra.Command {
	var maxAgeDays int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove cache files older than the retention threshold.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			if maxAgeDays < 0 {
				maxAgeDays = a.cfg.Cache.RetentionDays
			}
			a.service.CleanupCache(maxAgeDays)
			return nil
		},
	}

	cmd.Flags().IntVar(&maxAgeDays, "max-age-days", -1, "delete files older than this many days (default: configured retention)")

	return cmd
}

func newJanitorCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "janitor",
		Short: "Run the periodic cache sweep until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-sigChan
				a.logger.Info("shutdown signal received, stopping janitor...")
				cancel()
			}()

			return a.janitor.Start(ctx)
		},
	}
}

func newHistoryCmd(configPath *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent operations.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			ops, err := a.store.Recent(limit)
			if err != nil {
				return err
			}

			for _, op := range ops {
				status := "FAIL"
				if op.Succeeded {
					status = "OK"
				}
				fmt.Printf("%s  %-4s %-20s %s\n",
					op.CreatedAt.Format("2006-01-02 15:04:05"), status, op.Kind, op.Message)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of operations to show")

	return cmd
}
