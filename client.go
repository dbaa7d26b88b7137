// Package ogm maps declared models onto a property graph.
//
// Models are declared with a Schema of typed fields. Fields whose type is one of
// relationship, relationships, node or nodes declare traversals to other models;
// every other field is a Property. The Client keeps the registry of models,
// installs their constraints and indexes, runs statements through a Driver and
// hydrates the results into Node and Relationship instances.
package ogm

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"
)

var errStatementPanicked = errors.New("statement panicked")

// Client is the entry point of the mapper. It owns the model registry for its
// whole lifetime.
type Client struct {
	driver     Driver
	models     *ModelMap
	factory    *Factory
	migrator   *Migrator
	database   string
	enterprise bool
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithDatabase sets the default database for all sessions.
func WithDatabase(database string) Option {
	return func(c *Client) {
		c.database = database
	}
}

// WithEnterprise enables features that need an enterprise server, such as
// property existence constraints.
func WithEnterprise(enabled bool) Option {
	return func(c *Client) {
		c.enterprise = enabled
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client on top of driver.
func New(driver Driver, opts ...Option) *Client {
	c := &Client{
		driver: driver,
		models: NewModelMap(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.factory = &Factory{client: c}
	c.migrator = &Migrator{client: c}

	return c
}

// Models returns the model registry.
func (c *Client) Models() *ModelMap { return c.models }

// Migrator returns the schema migrator for the registered models.
func (c *Client) Migrator() *Migrator { return c.migrator }

// Factory returns the hydration engine.
func (c *Client) Factory() *Factory { return c.factory }

// Logger returns the client's logger.
func (c *Client) Logger() *zap.Logger { return c.logger }

func (c *Client) SetDatabase(database string) { c.database = database }

func (c *Client) Database() string { return c.database }

func (c *Client) SetEnterprise(enabled bool) { c.enterprise = enabled }

// Enterprise reports whether the client runs in enterprise mode.
func (c *Client) Enterprise() bool { return c.enterprise }

// Define builds a model from schema and registers it, replacing any model of the same name.
func (c *Client) Define(name string, schema Schema) (*Model, error) {
	m, err := NewModel(name, schema)
	if err != nil {
		return nil, err
	}

	c.models.Set(m)
	c.logger.Debug("defined model", zap.String("model", name), zap.Strings("labels", m.Labels()))

	return m, nil
}

// With defines several models at once, in name order.
func (c *Client) With(schemas map[string]Schema) error {
	for _, name := range slices.Sorted(maps.Keys(schemas)) {
		_, err := c.Define(name, schemas[name])
		if err != nil {
			return err
		}
	}

	return nil
}

// Model returns the model called name.
func (c *Client) Model(name string) (*Model, error) {
	return c.models.Get(name)
}

// Extend registers a copy of model base under the name as, with overrides merged in.
func (c *Client) Extend(base, as string, overrides Schema) (*Model, error) {
	return c.models.Extend(base, as, overrides)
}

// Session opens a session in the given mode against the default database.
func (c *Client) Session(ctx context.Context, mode AccessMode) Session { //nolint:ireturn
	return c.driver.NewSession(ctx, mode, c.database)
}

// ReadSession opens a read session.
func (c *Client) ReadSession(ctx context.Context) Session { //nolint:ireturn
	return c.Session(ctx, AccessModeRead)
}

// WriteSession opens a write session.
func (c *Client) WriteSession(ctx context.Context) Session { //nolint:ireturn
	return c.Session(ctx, AccessModeWrite)
}

// Cypher runs a single statement on its own session. Driver failures are
// returned as *DriverError carrying the statement and params.
func (c *Client) Cypher(ctx context.Context, mode AccessMode, query string, params map[string]any) (*Result, error) {
	session := c.Session(ctx, mode)

	defer func() {
		err := session.Close(ctx)
		if err != nil {
			c.logger.Warn("failed to close session", zap.Error(err))
		}
	}()

	res, err := runStatement(ctx, session, Statement{Query: query, Params: params})
	if err != nil {
		return nil, &DriverError{Statement: query, Params: params, Err: err}
	}

	return res, nil
}

// ReadCypher runs a statement on a read session.
func (c *Client) ReadCypher(ctx context.Context, query string, params map[string]any) (*Result, error) {
	return c.Cypher(ctx, AccessModeRead, query, params)
}

// WriteCypher runs a statement on a write session.
func (c *Client) WriteCypher(ctx context.Context, query string, params map[string]any) (*Result, error) {
	return c.Cypher(ctx, AccessModeWrite, query, params)
}

// Tx is an explicit transaction bound to its own session. The session is closed
// by Commit or Rollback.
type Tx struct {
	Transaction

	session Session
}

// Commit commits the transaction and closes its session.
func (t *Tx) Commit(ctx context.Context) error {
	err := t.Transaction.Commit(ctx)

	return errors.Join(err, t.session.Close(ctx))
}

// Rollback rolls the transaction back and closes its session.
func (t *Tx) Rollback(ctx context.Context) error {
	err := t.Transaction.Rollback(ctx)

	return errors.Join(err, t.session.Close(ctx))
}

// Transaction opens a session and begins a transaction on it.
func (c *Client) Transaction(ctx context.Context, mode AccessMode) (*Tx, error) {
	session := c.Session(ctx, mode)

	tx, err := session.BeginTransaction(ctx)
	if err != nil {
		_ = session.Close(ctx)

		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	return &Tx{Transaction: tx, session: session}, nil
}

// Batch runs statements in order inside one write transaction. Every statement
// is attempted even when an earlier one failed. The transaction is committed
// only when none failed; otherwise it is rolled back and a *TransactionError
// listing every failure is returned. Results are in statement order.
func (c *Client) Batch(ctx context.Context, statements []Statement) ([]*Result, error) {
	tx, err := c.Transaction(ctx, AccessModeWrite)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("running batch", zap.Int("statements", len(statements)))

	results := make([]*Result, len(statements))

	var failures []StatementFailure

	for i, s := range statements {
		res, err := runStatement(ctx, tx, s)
		if err != nil {
			c.logger.Warn("batch statement failed",
				zap.String("statement", s.Query),
				zap.Error(err))

			failures = append(failures, StatementFailure{Statement: s.Query, Params: s.Params, Err: err})

			continue
		}

		results[i] = res
	}

	if len(failures) > 0 {
		err := tx.Rollback(ctx)
		if err != nil {
			c.logger.Error("failed to roll back batch", zap.Error(err))
		}

		c.logger.Debug("rolled back batch", zap.Int("failures", len(failures)))

		return nil, &TransactionError{Failures: failures}
	}

	err = tx.Commit(ctx)
	if err != nil {
		return nil, fmt.Errorf("commit batch: %w", err)
	}

	c.logger.Debug("committed batch")

	return results, nil
}

// runStatement runs s on r, turning a panic while issuing it into an error.
func runStatement(ctx context.Context, r Runner, s Statement) (res *Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", errStatementPanicked, p)
		}
	}()

	params := s.Params
	if params == nil {
		params = map[string]any{}
	}

	return r.Run(ctx, s.Query, params)
}

// Hydrate converts the nodes in column alias of res into a Collection.
// A nil definition resolves each node's model from its labels.
func (c *Client) Hydrate(res *Result, alias string, definition *Model) (*Collection[*Node], error) {
	return c.factory.Hydrate(res, alias, definition)
}

// HydrateFirst hydrates the node in column alias of the first record.
func (c *Client) HydrateFirst(res *Result, alias string, definition *Model) (*Node, error) {
	return c.factory.HydrateFirst(res, alias, definition)
}

// ToCollection wraps nodes in a Collection.
func (c *Client) ToCollection(nodes []*Node) *Collection[*Node] {
	return NewCollection(nodes)
}

// Close closes the underlying driver.
func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}
