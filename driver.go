package ogm

import (
	"context"
	"fmt"
	"slices"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// AccessMode selects the routing of a session.
type AccessMode int

const (
	AccessModeRead AccessMode = iota
	AccessModeWrite
)

func (m AccessMode) String() string {
	if m == AccessModeRead {
		return "READ"
	}

	return "WRITE"
}

// Result is the outcome of running one statement.
type Result struct {
	Keys    []string
	Records []*neo4j.Record
}

// Runner runs a parameterized statement. Sessions and transactions are both runners.
type Runner interface {
	Run(ctx context.Context, statement string, params map[string]any) (*Result, error)
}

// Session is a logical connection to a database.
type Session interface {
	Runner

	// BeginTransaction opens an explicit transaction on the session.
	BeginTransaction(ctx context.Context) (Transaction, error)

	// Close releases the session.
	Close(ctx context.Context) error
}

// Transaction is an explicit transaction. Work is discarded unless Commit succeeds.
type Transaction interface {
	Runner

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Driver opens sessions against a graph database.
type Driver interface {
	// NewSession opens a session in the given mode against database.
	// An empty database selects the server default.
	NewSession(ctx context.Context, mode AccessMode, database string) Session

	// Close releases any resources held by the driver.
	Close(ctx context.Context) error
}

// DriverFactory creates a Driver from connection configuration.
type DriverFactory func(cfg ConnectionConfig) (Driver, error)

// ConnectionConfig holds connection settings for a driver.
type ConnectionConfig struct {
	// Connection URI (e.g., "bolt://localhost:7687", "neo4j+s://host")
	URI string `yaml:"uri"`

	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`

	// Default database for sessions. Empty selects the server default.
	Database string `yaml:"database,omitempty"`

	// Driver-specific options
	Options map[string]any `yaml:"options,omitempty"`
}

var drivers = make(map[string]DriverFactory)

// RegisterDriver registers a driver factory by name.
// Drivers call this from their init() function.
func RegisterDriver(name string, factory DriverFactory) {
	drivers[name] = factory
}

// OpenDriver creates a driver instance by name.
func OpenDriver(name string, cfg ConnectionConfig) (Driver, error) { //nolint:ireturn
	factory, ok := drivers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, name)
	}

	return factory(cfg)
}

// RegisteredDrivers returns the names of all registered drivers, sorted.
func RegisteredDrivers() []string {
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Statement is a statement with its parameters, as accepted by Batch.
type Statement struct {
	Query  string
	Params map[string]any
}

// Stmt builds a Statement without parameters.
func Stmt(query string) Statement {
	return Statement{Query: query}
}
