package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/trackpipe/internal/retry"
	"github.com/vvka-141/trackpipe/pkg/trackpipe"
)

// minTokenLifetime is the shortest token validity accepted without a fresh fetch.
const minTokenLifetime = 5 * time.Minute

// TokenBasedConnector authenticates with a short-lived cloud token used as the password.
type TokenBasedConnector struct {
	config        *trackpipe.ConnectionConfig
	tokenProvider TokenProvider
	retryExecutor *retry.Executor
	providerName  string
}

// NewTokenBasedConnector creates a connector that uses a token from
// tokenProvider as the password. Each Connect fetches a new token.
// providerName appears in error messages.
func NewTokenBasedConnector(config *trackpipe.ConnectionConfig, tokenProvider TokenProvider, providerName string, opts ...ConnectorOption) *TokenBasedConnector {
	return &TokenBasedConnector{
		config:        config,
		tokenProvider: tokenProvider,
		retryExecutor: newConnectExecutor(opts),
		providerName:  providerName,
	}
}

func (c *TokenBasedConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool

	err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		token, expiresOn, err := c.tokenProvider.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("failed to acquire %s token: %w", c.providerName, err)
		}
		if time.Until(expiresOn) < minTokenLifetime {
			return fmt.Errorf("%s token expires in %v: %w", c.providerName,
				time.Until(expiresOn).Round(time.Second), trackpipe.ErrConnectionFailed)
		}

		withToken := *c.config
		withToken.Password = token

		p, err := openPool(ctx, BuildConnectionString(&withToken), c.config)
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
