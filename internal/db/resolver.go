package db

import (
	"fmt"
	"os"
	"strconv"

	"github.com/vvka-141/trackpipe/internal/config"
	"github.com/vvka-141/trackpipe/pkg/trackpipe"
)

// ConnArgs holds the connection values given on the command line.
// Empty fields (and a zero Port) fall through to the environment and the
// project file.
type ConnArgs struct {
	Username string
	Password string
	Database string
	Host     string
	Port     int
}

// EnvVars holds the PostgreSQL, cloud identity and trackpipe environment.
// See https://www.postgresql.org/docs/current/libpq-envars.html
type EnvVars struct {
	PGHOST     string
	PGPORT     string
	PGUSER     string
	PGPASSWORD string
	PGDATABASE string
	PGSSLMODE  string

	TRACKPIPE_AUTH_METHOD     string
	TRACKPIPE_GOOGLE_INSTANCE string
	AWS_REGION                string

	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string
}

// LoadFromEnvironment snapshots the variables EnvVars knows about.
func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		PGHOST:                    os.Getenv("PGHOST"),
		PGPORT:                    os.Getenv("PGPORT"),
		PGUSER:                    os.Getenv("PGUSER"),
		PGPASSWORD:                os.Getenv("PGPASSWORD"),
		PGDATABASE:                os.Getenv("PGDATABASE"),
		PGSSLMODE:                 os.Getenv("PGSSLMODE"),
		TRACKPIPE_AUTH_METHOD:     os.Getenv("TRACKPIPE_AUTH_METHOD"),
		TRACKPIPE_GOOGLE_INSTANCE: os.Getenv("TRACKPIPE_GOOGLE_INSTANCE"),
		AWS_REGION:                os.Getenv("AWS_REGION"),
		AZURE_TENANT_ID:           os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:           os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET:       os.Getenv("AZURE_CLIENT_SECRET"),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// ResolveConnection builds the single connection target shared by the
// provisioner and the bulk writer.
//
// Precedence for every parameter:
//  1. Command-line arguments
//  2. Environment variables (PGHOST, PGPORT, ..., TRACKPIPE_AUTH_METHOD)
//  3. trackpipe.yaml
//  4. Defaults (localhost:5432/postgres, sslmode=prefer, standard auth)
//
// Passwords never come from the project file.
func ResolveConnection(args *ConnArgs, env *EnvVars, projectConfig *config.ProjectConfig) (*trackpipe.ConnectionConfig, error) {
	if args == nil {
		args = &ConnArgs{}
	}
	if env == nil {
		env = &EnvVars{}
	}
	var pc config.ConnectionConfig
	if projectConfig != nil {
		pc = projectConfig.Connection
	}

	cfg := defaultConnectionConfig()
	cfg.AppName = trackpipe.DefaultAppName

	cfg.Host = firstNonEmpty(args.Host, env.PGHOST, pc.Host, cfg.Host)
	cfg.Username = firstNonEmpty(args.Username, env.PGUSER, pc.Username)
	cfg.Password = firstNonEmpty(args.Password, env.PGPASSWORD)
	cfg.Database = firstNonEmpty(args.Database, env.PGDATABASE, pc.Database, cfg.Database)
	cfg.SSLMode = firstNonEmpty(env.PGSSLMODE, pc.SSLMode, cfg.SSLMode)

	switch {
	case args.Port != 0:
		cfg.Port = args.Port
	case env.PGPORT != "":
		port, err := strconv.Atoi(env.PGPORT)
		if err != nil {
			return nil, fmt.Errorf("invalid $PGPORT value '%s': must be an integer: %w", env.PGPORT, trackpipe.ErrInvalidConfig)
		}
		cfg.Port = port
	case pc.Port != 0:
		cfg.Port = pc.Port
	}

	method, err := trackpipe.ParseAuthMethod(firstNonEmpty(env.TRACKPIPE_AUTH_METHOD, pc.AuthMethod))
	if err != nil {
		return nil, err
	}
	cfg.AuthMethod = method
	cfg.AWSRegion = firstNonEmpty(env.AWS_REGION, pc.AWSRegion)
	cfg.GoogleInstance = firstNonEmpty(env.TRACKPIPE_GOOGLE_INSTANCE, pc.GoogleInstance)
	cfg.AzureTenantID = firstNonEmpty(env.AZURE_TENANT_ID, pc.AzureTenantID)
	cfg.AzureClientID = firstNonEmpty(env.AZURE_CLIENT_ID, pc.AzureClientID)
	cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET

	return cfg, nil
}
