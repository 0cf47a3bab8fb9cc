// Package config provides configuration structures for the question answering service.
// It defines server, storage, NLP, triple store, ontology and logging settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config is the process-wide configuration. It is loaded once at startup and
// passed by reference; nothing reloads it per request.
type Config struct {
	Server    ServerConfig   `toml:"server" yaml:"server"`
	Storage   StorageConfig  `toml:"storage" yaml:"storage"`
	NLP       NLPConfig      `toml:"nlp" yaml:"nlp"`
	SPARQL    SPARQLConfig   `toml:"sparql" yaml:"sparql"`
	Ontology  OntologyConfig `toml:"ontology" yaml:"ontology"`
	Question  QuestionConfig `toml:"question" yaml:"question"`
	Logging   LoggingConfig  `toml:"logging" yaml:"logging"`
	Stopwords []string       `toml:"stopwords" yaml:"stopwords"` // Overrides the built-in English list when non-empty
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Port           int     `toml:"port" yaml:"port" validate:"min=1,max=65535"`
	MaxUploadBytes int64   `toml:"max_upload_bytes" yaml:"max_upload_bytes" validate:"gt=0"`
	RateLimit      float64 `toml:"rate_limit" yaml:"rate_limit" validate:"gte=0"` // Requests per second, 0 disables limiting
	RateBurst      int     `toml:"rate_burst" yaml:"rate_burst" validate:"gte=0"`
}

// StorageConfig locates the relational store and the file directories.
type StorageConfig struct {
	DatabasePath string `toml:"database_path" yaml:"database_path" validate:"required"`
	UploadDir    string `toml:"upload_dir" yaml:"upload_dir" validate:"required"`
	OntologyDir  string `toml:"ontology_dir" yaml:"ontology_dir" validate:"required"`
}

// NLPConfig points at the tagging/lemmatization/NER sidecar.
type NLPConfig struct {
	BaseURL      string   `toml:"base_url" yaml:"base_url" validate:"required,url"`
	DefaultModel string   `toml:"default_model" yaml:"default_model" validate:"required"` // Used for lemmas and answer entities
	CustomModel  string   `toml:"custom_model" yaml:"custom_model" validate:"required"`   // Used for ontology entities (emits VERB spans)
	Timeout      Duration `toml:"timeout" yaml:"timeout"`
}

// SPARQLConfig points at the triple store query endpoint.
type SPARQLConfig struct {
	Endpoint string   `toml:"endpoint" yaml:"endpoint" validate:"required,url"`
	Timeout  Duration `toml:"timeout" yaml:"timeout"`
}

// OntologyConfig defines the namespace generated triples live under.
type OntologyConfig struct {
	PrefixName string `toml:"prefix_name" yaml:"prefix_name" validate:"required,alphanum"`
	Namespace  string `toml:"namespace" yaml:"namespace" validate:"required,endswith=#"`
	Version    string `toml:"version" yaml:"version"`
}

// QuestionConfig holds the fixed tokens used by keyword extraction.
type QuestionConfig struct {
	DisallowedNoun     string   `toml:"disallowed_noun" yaml:"disallowed_noun"`         // Dropped from noun keywords on the extraction path
	AnchorTerm         string   `toml:"anchor_term" yaml:"anchor_term"`                 // Kept when it is the only noun of an annotation question
	AnnotationExcluded []string `toml:"annotation_excluded" yaml:"annotation_excluded"` // Dropped from annotation subjects
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `toml:"format" yaml:"format" validate:"oneof=console json"`
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// Load reads a TOML or YAML configuration file (chosen by extension), applies
// defaults and validates the result. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- path comes from the operator
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".toml":
			err = toml.Unmarshal(data, cfg)
		case ".yaml", ".yml":
			err = yaml.Unmarshal(data, cfg)
		default:
			return nil, fmt.Errorf("unsupported config format %q (expected .toml, .yaml or .yml)", filepath.Ext(path))
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults fills every unset field with its default value.
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.MaxUploadBytes == 0 {
		c.Server.MaxUploadBytes = 32 << 20
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst == 0 {
		c.Server.RateBurst = int(c.Server.RateLimit) + 1
	}

	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = "./kms_data/kms.db"
	}
	if c.Storage.UploadDir == "" {
		c.Storage.UploadDir = "./kms_data/uploaded_files"
	}
	if c.Storage.OntologyDir == "" {
		c.Storage.OntologyDir = "./kms_data/owl_file"
	}

	if c.NLP.BaseURL == "" {
		c.NLP.BaseURL = "http://localhost:8001"
	}
	if c.NLP.DefaultModel == "" {
		c.NLP.DefaultModel = "en_core_web_sm"
	}
	if c.NLP.CustomModel == "" {
		c.NLP.CustomModel = "coffee_ner"
	}
	if c.NLP.Timeout.Duration == 0 {
		c.NLP.Timeout = Duration{30 * time.Second}
	}

	if c.SPARQL.Endpoint == "" {
		c.SPARQL.Endpoint = "http://localhost:3030/coffee/query"
	}
	if c.SPARQL.Timeout.Duration == 0 {
		c.SPARQL.Timeout = Duration{15 * time.Second}
	}

	if c.Ontology.PrefixName == "" {
		c.Ontology.PrefixName = "coffee"
	}
	if c.Ontology.Namespace == "" {
		c.Ontology.Namespace = "http://www.semanticweb.org/ariana/coffee#"
	}
	if c.Ontology.Version == "" {
		c.Ontology.Version = "1.0"
	}

	if c.Question.DisallowedNoun == "" {
		c.Question.DisallowedNoun = "coffee"
	}
	if c.Question.AnchorTerm == "" {
		c.Question.AnchorTerm = "coffee"
	}
	if c.Question.AnnotationExcluded == nil {
		c.Question.AnnotationExcluded = []string{"coffee", "definition"}
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}

// Validate checks struct constraints and returns a single error listing every violation.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		messages := make([]string, 0, len(validationErrors))
		for _, fe := range validationErrors {
			messages = append(messages, fmt.Sprintf("%s failed '%s'", fe.Namespace(), fe.Tag()))
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(messages, "; "))
	}
	return nil
}

// Duration is a time.Duration written as a string ("15s") in config files.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText renders the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalYAML parses a scalar duration node.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}
