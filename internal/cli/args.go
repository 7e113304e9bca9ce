package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/vvka-141/trackpipe/internal/db"
	"github.com/vvka-141/trackpipe/pkg/trackpipe"
)

// RequireLoadArgs validates that exactly the six positional load arguments are provided.
func RequireLoadArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 6 {
		return fmt.Errorf(`%w: expected 6 arguments, received %d

Usage: %s

Example:
  %s ./data/transformed loader secret music localhost 5432`, trackpipe.ErrUsage, len(args), cmd.UseLine(), cmd.CommandPath())
	}
	return nil
}

// RequireExtractPath validates that exactly one extract_path argument is provided.
func RequireExtractPath(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`%w: extraction path is required

Usage: %s

Example:
  %s ./data/extraction --url https://example.com/catalog.zip`, trackpipe.ErrUsage, cmd.UseLine(), cmd.CommandPath())
	}
	if len(args) > 1 {
		return fmt.Errorf("%w: accepts 1 arg(s), received %d", trackpipe.ErrUsage, len(args))
	}
	return nil
}

// parseLoadArgs splits <input_dir> <pg_user> <pg_password> <pg_dbname> <pg_host> <pg_port>.
func parseLoadArgs(args []string) (string, *db.ConnArgs, error) {
	port, err := strconv.Atoi(args[5])
	if err != nil || port <= 0 || port > 65535 {
		return "", nil, fmt.Errorf("%w: pg_port must be an integer between 1 and 65535, got %q", trackpipe.ErrUsage, args[5])
	}
	return args[0], &db.ConnArgs{
		Username: args[1],
		Password: args[2],
		Database: args[3],
		Host:     args[4],
		Port:     port,
	}, nil
}
