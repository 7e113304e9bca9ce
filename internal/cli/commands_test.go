package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/trackpipe/pkg/trackpipe"
)

// executeCommand runs the root command from a clean working directory with
// every flag back at its default.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	rootCmd.PersistentFlags().VisitAll(reset)
	for _, c := range []*cobra.Command{loadCmd, extractCmd} {
		c.Flags().VisitAll(reset)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestLoadCmd_ArgsValidation(t *testing.T) {
	for _, n := range []int{0, 3, 5, 7} {
		args := make([]string, n)
		err := loadCmd.Args(loadCmd, args)
		require.Error(t, err)
		assert.Equal(t, trackpipe.ExitUsageError, trackpipe.ExitCodeForError(err), "args=%d", n)
		assert.Contains(t, err.Error(), "Usage:")
	}
	assert.NoError(t, loadCmd.Args(loadCmd, make([]string, 6)))
}

func TestLoadCmd_WrongArgCountIsUsageError(t *testing.T) {
	_, err := executeCommand(t, "load", "./in", "user", "pw")
	assert.Equal(t, trackpipe.ExitUsageError, trackpipe.ExitCodeForError(err))
}

func TestLoadCmd_NonIntegerPort(t *testing.T) {
	_, err := executeCommand(t, "load", t.TempDir(), "user", "pw", "music", "localhost", "five-four-three-two")
	require.Error(t, err)
	assert.Equal(t, trackpipe.ExitUsageError, trackpipe.ExitCodeForError(err))
	assert.Contains(t, err.Error(), "pg_port")
}

func TestLoadCmd_MissingInputDir(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	logFile := filepath.Join(t.TempDir(), "load.log")

	_, err := executeCommand(t, "load", missing, "user", "pw", "music", "localhost", "5432", "--log-file", logFile)
	require.Error(t, err)
	assert.Equal(t, trackpipe.ExitInputNotFound, trackpipe.ExitCodeForError(err))

	logged, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(logged), "Error: Input directory "+missing+" does not exist")
	assert.Contains(t, string(logged), "stage=load")
}

func TestLoadCmd_ExplicitConfigMustExist(t *testing.T) {
	_, err := executeCommand(t, "load", t.TempDir(), "user", "pw", "music", "localhost", "5432",
		"--config", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Equal(t, trackpipe.ExitConfigError, trackpipe.ExitCodeForError(err))
}

func TestExtractCmd_ArgsValidation(t *testing.T) {
	err := extractCmd.Args(extractCmd, nil)
	require.Error(t, err)
	assert.Equal(t, trackpipe.ExitUsageError, trackpipe.ExitCodeForError(err))
	assert.Contains(t, err.Error(), "extraction path is required")

	err = extractCmd.Args(extractCmd, []string{"a", "b"})
	assert.Equal(t, trackpipe.ExitUsageError, trackpipe.ExitCodeForError(err))
}

func TestExtractCmd_MissingURL(t *testing.T) {
	t.Setenv("TRACKPIPE_ARCHIVE_URL", "")
	_, err := executeCommand(t, "extract", t.TempDir(), "--log-file", "")
	require.Error(t, err)
	assert.Equal(t, trackpipe.ExitConfigError, trackpipe.ExitCodeForError(err))
	assert.Contains(t, err.Error(), "archive URL is required")
}

func TestUnknownFlagIsUsageError(t *testing.T) {
	_, err := executeCommand(t, "extract", t.TempDir(), "--bogus")
	assert.Equal(t, trackpipe.ExitUsageError, trackpipe.ExitCodeForError(err))
}

func TestVersionCmd(t *testing.T) {
	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "trackpipe "), out)
}

func TestResolveVersionInfo_LdflagsOverride(t *testing.T) {
	original := version
	defer func() { version = original }()

	version = "1.2.3"
	v, _, _ := resolveVersionInfo()
	assert.Equal(t, "1.2.3", v)
}
