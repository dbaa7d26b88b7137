// Package cypher provides an ogm driver for Neo4j over bolt.
package cypher

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rlch/ogm"
)

//nolint:gochecknoinits // Driver self-registration pattern
func init() {
	ogm.RegisterDriver("neo4j", New)
}

// Driver implements ogm.Driver on top of the Neo4j Go driver.
type Driver struct {
	driver neo4j.DriverWithContext
}

// New creates a Driver from the given configuration and verifies connectivity.
func New(cfg ogm.ConnectionConfig) (ogm.Driver, error) { //nolint:ireturn // Factory returns interface per Driver pattern
	auth := neo4j.NoAuth()
	if cfg.Username != "" {
		auth = neo4j.BasicAuth(cfg.Username, cfg.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth)
	if err != nil {
		return nil, fmt.Errorf("cypher: failed to create driver: %w", err)
	}

	ctx := context.Background()

	err = driver.VerifyConnectivity(ctx)
	if err != nil {
		_ = driver.Close(ctx)

		return nil, fmt.Errorf("cypher: failed to connect: %w", err)
	}

	return Wrap(driver), nil
}

// Wrap adapts an existing Neo4j driver.
func Wrap(driver neo4j.DriverWithContext) *Driver {
	return &Driver{driver: driver}
}

// NewSession opens a session in the given mode.
func (d *Driver) NewSession(ctx context.Context, mode ogm.AccessMode, database string) ogm.Session { //nolint:ireturn
	cfg := neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite}
	if mode == ogm.AccessModeRead {
		cfg.AccessMode = neo4j.AccessModeRead
	}

	if database != "" {
		cfg.DatabaseName = database
	}

	return &Session{session: d.driver.NewSession(ctx, cfg)}
}

// Close releases the database connection pool.
func (d *Driver) Close(ctx context.Context) error {
	err := d.driver.Close(ctx)
	if err != nil {
		return fmt.Errorf("cypher: failed to close driver: %w", err)
	}

	return nil
}

// Session wraps a Neo4j session.
type Session struct {
	session neo4j.SessionWithContext
}

// Run runs a statement in an auto-commit transaction and collects its records.
func (s *Session) Run(ctx context.Context, query string, params map[string]any) (*ogm.Result, error) {
	result, err := s.session.Run(ctx, query, params)

	return collect(ctx, result, err)
}

// BeginTransaction opens an explicit transaction on the session.
func (s *Session) BeginTransaction(ctx context.Context) (ogm.Transaction, error) { //nolint:ireturn
	tx, err := s.session.BeginTransaction(ctx)
	if err != nil {
		return nil, fmt.Errorf("cypher: failed to begin transaction: %w", err)
	}

	return &Transaction{tx: tx}, nil
}

// Close closes the session.
func (s *Session) Close(ctx context.Context) error {
	err := s.session.Close(ctx)
	if err != nil {
		return fmt.Errorf("cypher: failed to close session: %w", err)
	}

	return nil
}

// Transaction wraps a Neo4j explicit transaction.
type Transaction struct {
	tx neo4j.ExplicitTransaction
}

// Run runs a statement within the transaction.
func (t *Transaction) Run(ctx context.Context, query string, params map[string]any) (*ogm.Result, error) {
	result, err := t.tx.Run(ctx, query, params)

	return collect(ctx, result, err)
}

// Commit commits the transaction.
func (t *Transaction) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback aborts the transaction.
func (t *Transaction) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// collect reads every record of a result.
func collect(ctx context.Context, result neo4j.ResultWithContext, err error) (*ogm.Result, error) {
	if err != nil {
		return nil, fmt.Errorf("cypher: query execution failed: %w", err)
	}

	keys, err := result.Keys()
	if err != nil {
		return nil, fmt.Errorf("cypher: failed to read keys: %w", err)
	}

	records, err := result.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("cypher: failed to collect results: %w", err)
	}

	return &ogm.Result{Keys: keys, Records: records}, nil
}

// Ensure the wrappers implement the ogm interfaces.
var (
	_ ogm.Driver      = (*Driver)(nil)
	_ ogm.Session     = (*Session)(nil)
	_ ogm.Transaction = (*Transaction)(nil)
)
