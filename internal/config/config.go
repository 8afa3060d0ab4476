// Package config loads the TOML configuration of a quadkey store.
package config

import (
	"math/bits"
	"os"
	"strings"

	"github.com/aleksaelezovic/quadkey/pkg/quad"
	"github.com/aleksaelezovic/quadkey/pkg/store"
	"github.com/cockroachdb/errors"
	toml "github.com/pelletier/go-toml"
)

// Config represents the configuration of a quadkey store.
type Config struct {
	// DataDir is the badger directory. Ignored when InMemory is set.
	DataDir string `toml:"data-dir" default:"./quadkey_data"`

	InMemory   bool `toml:"in-memory"`
	SyncWrites bool `toml:"sync-writes"`

	// Indexes is a comma separated list of field order tags, e.g. "spoc,posc".
	// The first index also serves unselective scans.
	Indexes string `toml:"indexes" default:"spoc,posc"`

	// CacheSize is the key cache slot count per index. It must be zero or a
	// power of two.
	CacheSize int `toml:"cache-size" default:"1024"`

	LogLevel  string `toml:"log-level" default:"info"`
	LogFormat string `toml:"log-format" default:"text"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		DataDir:   "./quadkey_data",
		Indexes:   "spoc,posc",
		CacheSize: 1024,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	c, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return c, nil
}

// Parse decodes TOML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrap(err, "decoding toml")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if _, err := c.Orders(); err != nil {
		return err
	}
	if c.CacheSize < 0 || bits.OnesCount(uint(c.CacheSize)) > 1 {
		return errors.Newf("cache-size %d is not zero or a power of two", c.CacheSize)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return errors.Newf("invalid log-level %q", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return errors.Newf("invalid log-format %q", c.LogFormat)
	}
	if !c.InMemory && c.DataDir == "" {
		return errors.New("data-dir is required unless in-memory is set")
	}
	return nil
}

// Orders resolves the configured index tags.
func (c *Config) Orders() ([]*quad.Order, error) {
	var orders []*quad.Order
	seen := make(map[string]bool)
	for _, tag := range strings.Split(c.Indexes, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		o, err := quad.ForTag(tag)
		if err != nil {
			return nil, errors.Wrap(err, "indexes")
		}
		if seen[o.Tag()] {
			return nil, errors.Newf("index %s listed twice", o.Tag())
		}
		seen[o.Tag()] = true
		orders = append(orders, o)
	}
	if len(orders) == 0 {
		return nil, errors.New("at least one index is required")
	}
	if len(orders) > store.MaxIndexes {
		return nil, errors.Newf("%d indexes exceed the limit of %d", len(orders), store.MaxIndexes)
	}
	return orders, nil
}

// Marshal encodes the config as TOML.
func (c *Config) Marshal() ([]byte, error) {
	buf, err := toml.Marshal(*c)
	if err != nil {
		return nil, errors.Wrap(err, "encoding toml")
	}
	return buf, nil
}
