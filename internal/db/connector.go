package db

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/trackpipe/internal/retry"
	"github.com/vvka-141/trackpipe/pkg/trackpipe"
)

// Every provisioning and write step opens its own short-lived pool.
const (
	DefaultMaxConns        = 2
	DefaultMinConns        = 0
	DefaultMaxConnIdleTime = 5 * time.Minute
)

func configurePool(poolConfig *pgxpool.Config) {
	poolConfig.MaxConns = DefaultMaxConns
	poolConfig.MinConns = DefaultMinConns
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime
	if poolConfig.ConnConfig.RuntimeParams["application_name"] == "" {
		poolConfig.ConnConfig.RuntimeParams["application_name"] = trackpipe.DefaultAppName
	}
}

// ConnectorOption configures the retry behaviour of a connector.
type ConnectorOption func(*retry.Executor) *retry.Executor

// WithRetryStrategy replaces the default backoff strategy.
func WithRetryStrategy(strategy trackpipe.BackoffStrategy) ConnectorOption {
	return func(*retry.Executor) *retry.Executor {
		return retry.NewExecutor(retry.NewPostgreSQLErrorClassifier(), strategy)
	}
}

// WithRetryLogger reports every retry through logger.
func WithRetryLogger(logger trackpipe.Logger) ConnectorOption {
	return func(e *retry.Executor) *retry.Executor {
		return e.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			logger.Verbose("connection attempt %d failed, retrying in %v: %v", attempt+1, delay, err)
		})
	}
}

func newConnectExecutor(opts []ConnectorOption) *retry.Executor {
	executor := retry.NewExecutor(
		retry.NewPostgreSQLErrorClassifier(),
		retry.NewExponentialBackoff(trackpipe.DefaultRetryMaxAttempts,
			retry.WithInitialDelay(trackpipe.DefaultRetryInitialDelay),
			retry.WithMaxDelay(trackpipe.DefaultRetryMaxDelay),
		),
	)
	for _, opt := range opts {
		executor = opt(executor)
	}
	return executor
}

// openPool parses connStr, opens a pool and pings it once.
func openPool(ctx context.Context, connStr string, target *trackpipe.ConnectionConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}
	configurePool(poolConfig)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, wrapConnectionError(err, target.Host, target.Port, target.Database)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, wrapConnectionError(err, target.Host, target.Port, target.Database)
	}
	return pool, nil
}

// StandardConnector connects with username and password, retrying transient failures.
type StandardConnector struct {
	config        *trackpipe.ConnectionConfig
	retryExecutor *retry.Executor
}

// NewStandardConnector creates a connector that authenticates with the
// username and password in config.
func NewStandardConnector(config *trackpipe.ConnectionConfig, opts ...ConnectorOption) *StandardConnector {
	return &StandardConnector{
		config:        config,
		retryExecutor: newConnectExecutor(opts),
	}
}

func (c *StandardConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	connStr := BuildConnectionString(c.config)

	err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		p, err := openPool(ctx, connStr, c.config)
		if err != nil {
			return err
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// NewConnector creates the Connector matching config.AuthMethod.
// It satisfies trackpipe.ConnectorFactory.
func NewConnector(config *trackpipe.ConnectionConfig) (trackpipe.Connector, error) {
	return newConnector(config, nil)
}

// NewConnectorFactory returns a factory whose password and token connectors
// retry with opts applied.
func NewConnectorFactory(opts ...ConnectorOption) trackpipe.ConnectorFactory {
	return func(config *trackpipe.ConnectionConfig) (trackpipe.Connector, error) {
		return newConnector(config, opts)
	}
}

func newConnector(config *trackpipe.ConnectionConfig, opts []ConnectorOption) (trackpipe.Connector, error) {
	switch config.AuthMethod {
	case trackpipe.AuthMethodStandard:
		return NewStandardConnector(config, opts...), nil
	case trackpipe.AuthMethodAWSIAM:
		return newAWSConnector(config, opts)
	case trackpipe.AuthMethodGoogleIAM:
		return newGoogleConnector(config)
	case trackpipe.AuthMethodAzureEntraID:
		return newAzureConnector(config, opts)
	default:
		return nil, fmt.Errorf("unsupported auth method %v: %w", config.AuthMethod, trackpipe.ErrUnsupportedAuthMethod)
	}
}

var _ trackpipe.ConnectorFactory = NewConnector

// wrapConnectionError adds guidance to raw pgx connection errors.
// Every result wraps trackpipe.ErrConnectionFailed.
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	var hint string
	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		hint = fmt.Sprintf(`connection refused to %s

Possible causes:
  - PostgreSQL is not running (check: pg_isready -h %s -p %d)
  - Wrong host or port passed to "trackpipe load"`, addr, host, port)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		hint = fmt.Sprintf(`cannot resolve host "%s"

Possible causes:
  - Hostname is misspelled
  - DNS is not configured or reachable`, host)

	case strings.Contains(errStr, "password authentication failed"):
		hint = fmt.Sprintf(`password authentication failed for database "%s"

Possible causes:
  - Wrong password or username
  - User does not have access to the database`, database)

	case strings.Contains(errStr, "does not exist"):
		hint = fmt.Sprintf(`database "%s" does not exist

To create it:
  createdb %s`, database, database)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		hint = fmt.Sprintf(`connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - Firewall silently dropping packets`, addr)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		hint = `SSL/TLS connection error

Possible causes:
  - Server requires SSL but sslmode is wrong (set PGSSLMODE or connection.sslmode)
  - Certificate verification failed (try sslmode=require)`

	case strings.Contains(errStr, "too many connections"):
		hint = fmt.Sprintf(`too many connections to database "%s"

Possible causes:
  - max_connections limit reached in postgresql.conf
  - Another load run is still holding connections`, database)

	default:
		return fmt.Errorf("failed to connect to database: %w: %w", trackpipe.ErrConnectionFailed, err)
	}

	return fmt.Errorf("%s\n\nOriginal error: %w: %w", hint, trackpipe.ErrConnectionFailed, err)
}

func newAWSConnector(config *trackpipe.ConnectionConfig, opts []ConnectorOption) (trackpipe.Connector, error) {
	tokenProvider, err := NewAWSIAMTokenProvider(config.Address(), config.AWSRegion, config.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS IAM token provider: %w", err)
	}
	return NewTokenBasedConnector(config, tokenProvider, "AWS IAM", opts...), nil
}

func newGoogleConnector(config *trackpipe.ConnectionConfig) (trackpipe.Connector, error) {
	if config.GoogleInstance == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires connection.google_instance (project:region:instance): %w", trackpipe.ErrInvalidConfig)
	}
	if config.Username == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires a username: %w", trackpipe.ErrInvalidConfig)
	}
	return NewGoogleCloudSQLConnector(config, config.GoogleInstance), nil
}

// newAzureConnector uses Service Principal credentials when all three are set,
// otherwise the DefaultAzureCredential chain.
func newAzureConnector(config *trackpipe.ConnectionConfig, opts []ConnectorOption) (trackpipe.Connector, error) {
	var tokenProvider TokenProvider
	var err error

	if config.AzureTenantID != "" && config.AzureClientID != "" && config.AzureClientSecret != "" {
		tokenProvider, err = NewAzureServicePrincipalProvider(config.AzureTenantID, config.AzureClientID, config.AzureClientSecret)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Service Principal provider: %w", err)
		}
	} else {
		tokenProvider, err = NewAzureDefaultCredentialProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Default Credential provider: %w", err)
		}
	}

	return NewTokenBasedConnector(config, tokenProvider, "Azure", opts...), nil
}

// Release closes pool and then, if the connector holds resources of its own
// (a Cloud SQL dialer), the connector too. Safe with a nil pool.
func Release(connector trackpipe.Connector, pool *pgxpool.Pool) {
	if pool != nil {
		pool.Close()
	}
	if closer, ok := connector.(io.Closer); ok {
		_ = closer.Close()
	}
}
