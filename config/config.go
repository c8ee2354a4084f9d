package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"humres/drawing"
	"humres/encoding"
	"humres/render"

	"github.com/sirupsen/logrus"
)

const (
	DefaultPath     = "humres.json"
	defaultListen   = ":6688"
	defaultCacheTtl = time.Minute * 120
)

type Config struct {
	Path     string    `json:"-"`
	LoadedAt time.Time `json:"-"`

	Listen          string         `json:"listen"`
	Compression     string         `json:"compression"`
	Strict          bool           `json:"strict"`
	NoCache         bool           `json:"no_cache"`
	CacheTtlSeconds int            `json:"cache_ttl_seconds"`
	CacheMaxEntries int            `json:"cache_max_entries"`
	Render          render.Options `json:"render"`
	LogLevel        string         `json:"log_level"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Listen:          defaultListen,
		Compression:     encoding.NameZlib,
		CacheTtlSeconds: int(defaultCacheTtl / time.Second),
		CacheMaxEntries: defaultCacheMaxEntries,
		Render:          render.DefaultOptions(),
		LogLevel:        logrus.InfoLevel.String(),
	}
}

// Load reads the config file at path on top of the defaults. A missing file
// is not an error.
func Load(path string) (*Config, error) {
	c := Default()
	c.Path = path

	configFile, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		logrus.WithField("path", path).Info("No config file, using defaults")
	} else {
		err = json.NewDecoder(configFile).Decode(c)
		_ = configFile.Close()
		if err != nil {
			return nil, fmt.Errorf("error decoding config file %s: %w", path, err)
		}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.Render = c.Render.Sanitize()
	c.LoadedAt = time.Now()

	logrus.WithFields(c.LogrusFields()).Info("Loaded config")
	return c, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Listen == "" {
		errs = append(errs, errors.New("listen address is empty"))
	}
	if _, err := encoding.ForName(c.Compression); err != nil {
		errs = append(errs, fmt.Errorf("compression: %w", err))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.CacheTtlSeconds < 0 {
		errs = append(errs, fmt.Errorf("cache_ttl_seconds is negative: %d", c.CacheTtlSeconds))
	}
	if c.CacheMaxEntries < 0 {
		errs = append(errs, fmt.Errorf("cache_max_entries is negative: %d", c.CacheMaxEntries))
	}
	return errors.Join(errs...)
}

// Codec builds the drawing codec described by the config.
func (c *Config) Codec() (*drawing.Codec, error) {
	compression, err := encoding.ForName(c.Compression)
	if err != nil {
		return nil, err
	}
	codec := drawing.NewCodec()
	codec.Compression = compression
	codec.Strict = c.Strict
	return codec, nil
}

func (c *Config) CacheTtl() time.Duration {
	return time.Duration(c.CacheTtlSeconds) * time.Second
}

// ApplyLogLevel sets the global logrus level.
func (c *Config) ApplyLogLevel() {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logrus.WithError(err).Warn("Ignoring invalid log level")
		return
	}
	logrus.SetLevel(level)
}

func (c *Config) LogrusFields() logrus.Fields {
	return logrus.Fields{
		"path":        c.Path,
		"listen":      c.Listen,
		"compression": c.Compression,
		"strict":      c.Strict,
		"no_cache":    c.NoCache,
	}
}

func (c *Config) LogrusFieldsWithAction(action string) logrus.Fields {
	fields := c.LogrusFields()
	fields["action"] = action
	return fields
}
