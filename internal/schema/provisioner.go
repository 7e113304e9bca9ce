package schema

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/trackpipe/internal/db"
	"github.com/vvka-141/trackpipe/pkg/trackpipe"
)

// Provisioner creates the destination tables if they do not exist yet.
// Existing tables are never dropped or altered.
type Provisioner struct {
	connectorFactory trackpipe.ConnectorFactory
	tables           []Table
	logger           trackpipe.Logger
}

// NewProvisioner creates a provisioner that reaches the database through
// connectorFactory.
func NewProvisioner(connectorFactory trackpipe.ConnectorFactory, logger trackpipe.Logger) *Provisioner {
	return &Provisioner{
		connectorFactory: connectorFactory,
		tables:           Tables,
		logger:           logger,
	}
}

// Provision opens one connection to target and creates every table inside a
// single transaction, committed only when all statements succeed. The
// connection is released on every path.
func (p *Provisioner) Provision(ctx context.Context, target *trackpipe.ConnectionConfig) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("%w: %w", trackpipe.ErrProvisionFailed, err)
		}
	}()

	connector, err := p.connectorFactory(target)
	if err != nil {
		return err
	}
	pool, err := connector.Connect(ctx)
	defer db.Release(connector, pool)
	if err != nil {
		return err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := p.createTables(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	p.logger.Verbose("Provisioned %d tables on %s/%s", len(p.tables), target.Address(), target.Database)
	return nil
}

func (p *Provisioner) createTables(ctx context.Context, tx pgx.Tx) error {
	for _, t := range p.tables {
		stmt, err := t.CreateSQL()
		if err != nil {
			return err
		}
		p.logger.Verbose("Creating table %s if absent", t.Name)
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create table %s: %w", t.Name, err)
		}
	}
	return nil
}
