package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/vvka-141/trackpipe/internal/extract"
	"github.com/vvka-141/trackpipe/internal/services"
	"github.com/vvka-141/trackpipe/pkg/trackpipe"
)

var extractCmd = &cobra.Command{
	Use:   "extract <extract_path>",
	Short: "Download, unpack and normalize the raw catalog archive",
	Long: `Extract downloads the raw catalog archive into extract_path as
downloaded.zip, unpacks it there and removes the archive, then rewrites
dict_artists.json as fixed_da.json with one {"id", "related_ids"} record
per line and removes the original.

The archive location is an http(s):// URL or s3://bucket/key.
Precedence: --url > $TRACKPIPE_ARCHIVE_URL > archive.url in trackpipe.yaml

Examples:
  trackpipe extract ./data/extraction --url https://example.com/catalog.zip
  TRACKPIPE_ARCHIVE_URL=s3://raw-drops/catalog.zip trackpipe extract ./data/extraction`,
	Args: RequireExtractPath,
	RunE: runExtract,
}

type extractFlagValues struct {
	url     string
	sha256  string
	timeout time.Duration
}

var extractFlags extractFlagValues

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractFlags.url, "url", "",
		"Archive location: http(s):// URL or s3://bucket/key")
	extractCmd.Flags().StringVar(&extractFlags.sha256, "sha256", "",
		"Expected SHA-256 of the archive; a mismatch fails the stage\n"+
			"(default: archive.sha256 in trackpipe.yaml, else not checked)")
	extractCmd.Flags().DurationVar(&extractFlags.timeout, "timeout", 0,
		"Catastrophic failure protection timeout (default: none)")
}

func buildExtractConfig(cmd *cobra.Command, outputDir string, verbose bool) (trackpipe.ExtractConfig, string, error) {
	projectCfg, err := loadProjectConfig(cmd)
	if err != nil {
		return trackpipe.ExtractConfig{}, "", err
	}

	timeout, err := resolveEffectiveTimeout(cmd, projectCfg, extractFlags.timeout)
	if err != nil {
		return trackpipe.ExtractConfig{}, "", err
	}

	url := extractFlags.url
	if url == "" {
		url = os.Getenv("TRACKPIPE_ARCHIVE_URL")
	}
	if url == "" {
		url = projectCfg.Archive.URL
	}

	sum := extractFlags.sha256
	if sum == "" {
		sum = projectCfg.Archive.SHA256
	}

	config := trackpipe.ExtractConfig{
		OutputDir:     outputDir,
		ArchiveURL:    url,
		ArchiveSHA256: sum,
		Timeout:       timeout,
		Verbose:       verbose,
	}
	return config, resolveLogFile(cmd, projectCfg, trackpipe.ExtractLogFile), nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)

	config, logFile, err := buildExtractConfig(cmd, args[0], verbose)
	if err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, closeLog, err := newStageLogger(logFile, "extract", uuid.NewString(), verbose)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := signalContext(config.Timeout)
	defer cancel()

	stage := services.NewExtractStage(extract.NewFetcher(logger), logger)
	return stage.Run(ctx, config)
}
