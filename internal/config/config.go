// Package config resolves the process configuration: defaults, then an
// optional YAML file, then TEEVEE_* environment variables (a .env file is
// loaded first), then command-line flags applied by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/teevee/internal/logging"
)

// EnvPrefix namespaces every environment variable.
const EnvPrefix = "TEEVEE"

// Backend names.
const (
	CatalogCSV    = "csv"
	CatalogSQLite = "sqlite"

	TaggerLexicon = "lexicon"
	TaggerHTTP    = "http"

	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config holds every tunable of the process.
type Config struct {
	DataDir string `yaml:"data_dir" envconfig:"DATA_DIR"`
	Catalog string `yaml:"catalog" envconfig:"CATALOG"`
	DBPath  string `yaml:"db_path" envconfig:"DB_PATH"`

	Tagger      string `yaml:"tagger" envconfig:"TAGGER"`
	NERURL      string `yaml:"ner_url" envconfig:"NER_URL"`
	LexiconPath string `yaml:"lexicon" envconfig:"LEXICON"`

	OntologyPath string `yaml:"ontology" envconfig:"ONTOLOGY"`
	FlowPath     string `yaml:"flow" envconfig:"FLOW"`

	Store         string        `yaml:"store" envconfig:"STORE"`
	SessionDir    string        `yaml:"session_dir" envconfig:"SESSION_DIR"`
	RedisAddr     string        `yaml:"redis_addr" envconfig:"REDIS_ADDR"`
	RedisPassword string        `yaml:"redis_password" envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db" envconfig:"REDIS_DB"`
	RedisTTL      time.Duration `yaml:"redis_ttl" envconfig:"REDIS_TTL"`

	// SessionKey (base64, 32 bytes) encrypts saved sessions. Retired keys in
	// SessionOldKeys still decrypt.
	SessionKey     string   `yaml:"session_key" envconfig:"SESSION_KEY"`
	SessionOldKeys []string `yaml:"session_old_keys" envconfig:"SESSION_OLD_KEYS"`

	MaxResults  int    `yaml:"max_results" envconfig:"MAX_RESULTS"`
	LogLevel    string `yaml:"log_level" envconfig:"LOG_LEVEL"`
	MetricsAddr string `yaml:"metrics_addr" envconfig:"METRICS_ADDR"`
	// Seed fixes the random choices of the bot. Zero seeds from entropy.
	Seed uint64 `yaml:"seed" envconfig:"SEED"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataDir:    "data",
		Catalog:    CatalogCSV,
		DBPath:     filepath.Join(".teevee", "catalog.db"),
		Tagger:     TaggerLexicon,
		NERURL:     "http://localhost:8090/ents",
		Store:      StoreMemory,
		SessionDir: filepath.Join(".teevee", "sessions"),
		RedisAddr:  "localhost:6379",
		MaxResults: 50,
		LogLevel:   "info",
	}
}

// Load layers the YAML file at path (optional), the .env files (missing ones
// are skipped; the default is ".env") and the environment over Default.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// godotenv never overrides variables that are already set.
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects unknown backends and impossible values.
func (c *Config) Validate() error {
	var errs []error
	oneOf := func(field, v string, allowed ...string) {
		for _, a := range allowed {
			if v == a {
				return
			}
		}
		errs = append(errs, fmt.Errorf("%s: unknown value %q (want one of %v)", field, v, allowed))
	}

	oneOf("catalog", c.Catalog, CatalogCSV, CatalogSQLite)
	oneOf("tagger", c.Tagger, TaggerLexicon, TaggerHTTP)
	oneOf("store", c.Store, StoreMemory, StoreFile, StoreRedis)

	if c.MaxResults <= 0 {
		errs = append(errs, fmt.Errorf("max_results must be positive, got %d", c.MaxResults))
	}
	if c.RedisTTL < 0 {
		errs = append(errs, fmt.Errorf("redis_ttl must not be negative"))
	}
	if c.Tagger == TaggerHTTP && c.NERURL == "" {
		errs = append(errs, errors.New("ner_url is required with the http tagger"))
	}
	if len(c.SessionOldKeys) > 0 && c.SessionKey == "" {
		errs = append(errs, errors.New("session_old_keys requires session_key"))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
