package trackpipe

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Stage completed (individual table failures do not change this)
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration
	ExitConnectionError = 11 // Failed to connect to database
	ExitDownloadFailed  = 12 // Archive could not be fetched
	ExitExtractFailed   = 13 // Archive could not be unpacked or normalized
	ExitInputNotFound   = 14 // Input directory does not exist
)

const (
	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 30 * time.Second

	// DefaultRetryMaxAttempts is the default maximum number of retry attempts.
	DefaultRetryMaxAttempts = 3

	// DefaultPort is the PostgreSQL port used when none is given.
	DefaultPort = 5432

	// DefaultDatabase is the database used when none is given.
	DefaultDatabase = "postgres"

	// DefaultAppName is reported to PostgreSQL as application_name.
	DefaultAppName = "trackpipe"

	// LoadLogFile and ExtractLogFile are the default per-stage log files.
	LoadLogFile    = "load.log"
	ExtractLogFile = "extract.log"

	// ArchiveFileName is the local name of the downloaded archive.
	ArchiveFileName = "downloaded.zip"

	// RawArtistsFile is the wide JSON object rewritten by the extract stage.
	RawArtistsFile = "dict_artists.json"

	// NormalizedArtistsFile holds one record per line after normalization.
	NormalizedArtistsFile = "fixed_da.json"

	// DownloadChunkSize is the buffer size used while streaming an archive to disk.
	DownloadChunkSize = 8192
)
