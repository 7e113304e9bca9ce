package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/vvka-141/trackpipe/internal/db"
	"github.com/vvka-141/trackpipe/internal/engine"
	"github.com/vvka-141/trackpipe/internal/load"
	"github.com/vvka-141/trackpipe/internal/report"
	"github.com/vvka-141/trackpipe/internal/schema"
	"github.com/vvka-141/trackpipe/internal/services"
	"github.com/vvka-141/trackpipe/pkg/trackpipe"
)

var loadCmd = &cobra.Command{
	Use:   "load <input_dir> <pg_user> <pg_password> <pg_dbname> <pg_host> <pg_port>",
	Short: "Create the warehouse tables and bulk-load the transformed datasets",
	Long: `Load creates the five warehouse tables if they do not exist, then loads
each transformed parquet dataset under input_dir into its table:

  stage2/master_table               -> master_table               (append)
  stage3/recommendations_exploded   -> recommendations_exploded   (overwrite)
  stage3/artist_track               -> artist_track               (overwrite)
  stage3/track_metadata             -> track_metadata             (overwrite)
  stage3/artist_metadata            -> artist_metadata            (overwrite)

A dataset directory may hold part files (part-*.parquet) or a single file.
Overwrite replaces a table's rows in one transaction; a failed overwrite
leaves the previous rows in place.

Each table is loaded independently: a missing dataset or a write failure
is logged as "Error loading <table>" and the remaining tables still load.
The command exits 0 once every table has been attempted.

Arguments:
  input_dir     Root directory holding stage2/ and stage3/
  pg_user       PostgreSQL user
  pg_password   PostgreSQL password ("" falls back to $PGPASSWORD, then ~/.pgpass)
  pg_dbname     Destination database
  pg_host       PostgreSQL host
  pg_port       PostgreSQL port

Examples:
  trackpipe load ./data/transformed loader secret music localhost 5432

  # Cap the compute engine and log verbosely
  trackpipe load ./data/transformed loader secret music db.internal 5432 \
    --threads 4 --memory-limit 4GB -v`,
	Args: RequireLoadArgs,
	RunE: runLoad,
}

type loadFlagValues struct {
	threads     int
	memoryLimit string
	timeout     time.Duration
}

var loadFlags loadFlagValues

func init() {
	rootCmd.AddCommand(loadCmd)

	loadCmd.Flags().IntVar(&loadFlags.threads, "threads", 0,
		"Compute engine worker threads (default: engine.threads in trackpipe.yaml, else all cores)")
	loadCmd.Flags().StringVar(&loadFlags.memoryLimit, "memory-limit", "",
		"Compute engine memory limit, e.g. 4GB (default: engine.memory_limit in trackpipe.yaml)")

	// Timeout flag - catastrophic failure protection, not normal timeout control
	loadCmd.Flags().DurationVar(&loadFlags.timeout, "timeout", 0,
		"Catastrophic failure protection timeout (default: none)\n"+
			"Examples: 30m, 2h")
}

// buildLoadConfig builds a LoadConfig from arguments, flags, environment and trackpipe.yaml.
func buildLoadConfig(cmd *cobra.Command, args []string, verbose bool) (trackpipe.LoadConfig, string, error) {
	inputDir, connArgs, err := parseLoadArgs(args)
	if err != nil {
		return trackpipe.LoadConfig{}, "", err
	}

	projectCfg, err := loadProjectConfig(cmd)
	if err != nil {
		return trackpipe.LoadConfig{}, "", err
	}

	connConfig, err := db.ResolveConnection(connArgs, db.LoadFromEnvironment(), projectCfg)
	if err != nil {
		return trackpipe.LoadConfig{}, "", err
	}

	timeout, err := resolveEffectiveTimeout(cmd, projectCfg, loadFlags.timeout)
	if err != nil {
		return trackpipe.LoadConfig{}, "", err
	}

	threads, memoryLimit := loadFlags.threads, loadFlags.memoryLimit
	if !cmd.Flags().Changed("threads") {
		threads = projectCfg.Engine.Threads
	}
	if !cmd.Flags().Changed("memory-limit") {
		memoryLimit = projectCfg.Engine.MemoryLimit
	}

	config := trackpipe.LoadConfig{
		InputDir:          inputDir,
		Connection:        *connConfig,
		EngineThreads:     threads,
		EngineMemoryLimit: memoryLimit,
		Timeout:           timeout,
		Verbose:           verbose,
		RunID:             uuid.New(),
	}
	return config, resolveLogFile(cmd, projectCfg, trackpipe.LoadLogFile), nil
}

func runLoad(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)

	config, logFile, err := buildLoadConfig(cmd, args, verbose)
	if err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, closeLog, err := newStageLogger(logFile, "load", config.RunID.String(), verbose)
	if err != nil {
		return err
	}
	defer closeLog()

	if err := services.CheckInputDir(config.InputDir); err != nil {
		logger.Error("Error: Input directory %s does not exist", config.InputDir)
		return err
	}

	if verbose {
		logger.Verbose("Connection resolved: %s@%s/%s (sslmode=%s, auth=%s)",
			config.Connection.Username, config.Connection.Address(), config.Connection.Database,
			config.Connection.SSLMode, config.Connection.AuthMethod)
	}

	ctx, cancel := signalContext(config.Timeout)
	defer cancel()

	manifest := load.DefaultManifest()
	if err := load.ValidateManifest(manifest); err != nil {
		return err
	}

	session, err := engine.Open(ctx, engine.Options{
		Threads:     config.EngineThreads,
		MemoryLimit: config.EngineMemoryLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to start compute engine: %w", err)
	}
	defer session.Close()

	connectorFactory := db.NewConnectorFactory(db.WithRetryLogger(logger))
	target := config.Connection
	orchestrator := load.NewOrchestrator(
		load.EngineReader(session),
		load.NewBulkWriter(connectorFactory, &target, logger),
		manifest,
		logger,
	)
	stage := services.NewLoadStage(schema.NewProvisioner(connectorFactory, logger), orchestrator, logger)

	result, err := stage.Run(ctx, config)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := report.Render(out, result, report.UseColor(out)); err != nil {
		logger.Warn("Failed to write load report: %v", err)
	}

	if ctx.Err() != nil {
		return fmt.Errorf("load interrupted: %w", ctx.Err())
	}
	return nil
}
