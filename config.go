package ogm

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the .ogm.yaml configuration file.
type Config struct {
	// Driver name, defaults to "neo4j"
	Driver string `yaml:"driver,omitempty"`

	// Connection settings for the driver
	Connection ConnectionConfig `yaml:"connection"`

	// Enterprise enables existence constraints
	Enterprise bool `yaml:"enterprise,omitempty"`

	// Model declaration files, relative to the config file
	Models []string `yaml:"models,omitempty"`

	// dir is the directory the config was loaded from
	dir string
}

// DefaultDriver is used when the config names no driver.
const DefaultDriver = "neo4j"

// DefaultConfigNames are the filenames we search for.
var DefaultConfigNames = []string{".ogm.yaml", ".ogm.yml", "ogm.yaml", "ogm.yml"}

// LoadConfig finds and loads the nearest .ogm.yaml walking up from dir.
func LoadConfig(dir string) (*Config, error) {
	path, err := FindConfig(dir)
	if err != nil {
		return nil, err
	}

	return LoadConfigFile(path)
}

// FindConfig searches for a config file starting from dir and walking up.
func FindConfig(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for dir := absDir; ; {
		for _, name := range DefaultConfigNames {
			path := filepath.Join(dir, name)

			_, err := os.Stat(path)
			if err == nil {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrConfigNotFound
		}

		dir = parent
	}
}

// LoadConfigFile loads a config from a specific path.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	var cfg Config

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, err
	}

	cfg.dir = filepath.Dir(path)

	if cfg.Driver == "" {
		cfg.Driver = DefaultDriver
	}

	return &cfg, nil
}

// ModelPaths returns the model files resolved against the config's directory.
func (c *Config) ModelPaths() []string {
	paths := make([]string, len(c.Models))
	for i, p := range c.Models {
		if filepath.IsAbs(p) || c.dir == "" {
			paths[i] = p
		} else {
			paths[i] = filepath.Join(c.dir, p)
		}
	}

	return paths
}

// Open opens the configured driver and returns a Client with the configured
// models defined.
func Open(cfg *Config, opts ...Option) (*Client, error) {
	name := cfg.Driver
	if name == "" {
		name = DefaultDriver
	}

	driver, err := OpenDriver(name, cfg.Connection)
	if err != nil {
		return nil, err
	}

	opts = append([]Option{
		WithDatabase(cfg.Connection.Database),
		WithEnterprise(cfg.Enterprise),
	}, opts...)

	client := New(driver, opts...)

	for _, path := range cfg.ModelPaths() {
		err := client.LoadModelsFile(path)
		if err != nil {
			return nil, err
		}
	}

	return client, nil
}
