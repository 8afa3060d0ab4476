package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	orders, err := c.Orders()
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "spoc", orders[0].Tag())
	assert.Equal(t, "posc", orders[1].Tag())
}

func TestParse(t *testing.T) {
	c, err := Parse([]byte(`
in-memory = true
indexes = "cspo, ospc ,spoc"
cache-size = 256
log-level = "debug"
`))
	require.NoError(t, err)

	assert.True(t, c.InMemory)
	assert.Equal(t, 256, c.CacheSize)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "text", c.LogFormat, "unset keys keep defaults")
	assert.Equal(t, "./quadkey_data", c.DataDir)

	orders, err := c.Orders()
	require.NoError(t, err)
	var tags []string
	for _, o := range orders {
		tags = append(tags, o.Tag())
	}
	assert.Equal(t, []string{"cspo", "ospc", "spoc"}, tags)
}

func TestParseInvalid(t *testing.T) {
	for name, doc := range map[string]string{
		"syntax":         `indexes = `,
		"unknown order":  `indexes = "spoq"`,
		"short tag":      `indexes = "spo"`,
		"duplicate":      `indexes = "spoc,posc,spoc"`,
		"no index":       `indexes = " , "`,
		"cache size":     `cache-size = 1000`,
		"negative cache": `cache-size = -2`,
		"log level":      `log-level = "loud"`,
		"log format":     `log-format = "xml"`,
		"no data dir":    `data-dir = ""`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestCacheSizeZero(t *testing.T) {
	c, err := Parse([]byte(`cache-size = 0`))
	require.NoError(t, err)
	assert.Equal(t, 0, c.CacheSize)
}

func TestLoadRoundTrip(t *testing.T) {
	c := Default()
	c.DataDir = "/var/lib/quadkey"
	c.SyncWrites = true
	c.Indexes = "cspo,spoc"

	buf, err := c.Marshal()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "quadkey.toml")
	require.NoError(t, os.WriteFile(path, buf, 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
