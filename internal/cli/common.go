package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/vvka-141/trackpipe/internal/config"
	"github.com/vvka-141/trackpipe/internal/logging"
	"github.com/vvka-141/trackpipe/pkg/trackpipe"
)

// loadProjectConfig loads .env and the project file.
// An explicit --config must exist; the default ./trackpipe.yaml is optional.
func loadProjectConfig(cmd *cobra.Command) (*config.ProjectConfig, error) {
	_ = godotenv.Load()

	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		projectCfg, err := config.LoadOptional(config.ConfigFileName)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w: %w", config.ConfigFileName, trackpipe.ErrInvalidConfig, err)
		}
		return projectCfg, nil
	}

	projectCfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("config file %s: %w: %w", path, trackpipe.ErrInvalidConfig, err)
		}
		return nil, fmt.Errorf("failed to load %s: %w: %w", path, trackpipe.ErrInvalidConfig, err)
	}
	return projectCfg, nil
}

// resolveEffectiveTimeout returns the effective timeout, preferring trackpipe.yaml if flag wasn't set.
func resolveEffectiveTimeout(cmd *cobra.Command, projectCfg *config.ProjectConfig, flagTimeout time.Duration) (time.Duration, error) {
	if projectCfg != nil && projectCfg.Timeout != "" && !cmd.Flags().Changed("timeout") {
		parsed, err := projectCfg.TimeoutDuration()
		if err != nil {
			return 0, fmt.Errorf("%w: %w", trackpipe.ErrInvalidConfig, err)
		}
		return parsed, nil
	}
	return flagTimeout, nil
}

// resolveLogFile picks --log-file, then log_file from the project file, then the stage default.
func resolveLogFile(cmd *cobra.Command, projectCfg *config.ProjectConfig, stageDefault string) string {
	if cmd.Flags().Changed("log-file") {
		path, _ := cmd.Flags().GetString("log-file")
		return path
	}
	if projectCfg != nil && projectCfg.LogFile != "" {
		return projectCfg.LogFile
	}
	return stageDefault
}

// newStageLogger fans out to stderr and, unless path is empty, the stage log file.
// The returned close function is always non-nil.
func newStageLogger(path, stage, runID string, verbose bool) (trackpipe.Logger, func(), error) {
	console := logging.NewConsoleLogger(verbose)
	if path == "" {
		return console, func() {}, nil
	}

	file, err := logging.NewFileLogger(path, stage, runID, verbose)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return logging.Multi{console, file}, func() { file.Close() }, nil
}

// signalContext is cancelled by SIGINT/SIGTERM and, when timeout > 0, by the deadline.
func signalContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}
