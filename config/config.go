package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const (
	StoreBackendMemory = "memory"
	StoreBackendValkey = "valkey"
)

type Config struct {
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	KeywordCount  int    `envconfig:"KEYWORD_COUNT" default:"5"`
	BatchWorkers  int    `envconfig:"BATCH_WORKERS" default:"4"`
	DefaultDate   string `envconfig:"DEFAULT_DATE" default:"N/A"`
	StopWordsPath string `envconfig:"STOPWORDS_PATH"`

	StoreBackend string `envconfig:"STORE_BACKEND" default:"memory"`
	SessionID    string `envconfig:"SESSION_ID" default:"default"`

	ValkeyAddress  string `envconfig:"VALKEY_INIT_ADDRESS" default:"localhost:6379"`
	ValkeyPassword string `envconfig:"VALKEY_PASSWORD"`
	ValkeyTLS      bool   `envconfig:"VALKEY_TLS" default:"false"`

	ArchiveEnabled bool   `envconfig:"ARCHIVE_ENABLED" default:"false"`
	AWSEndpoint    string `envconfig:"AWS_ENDPOINT" default:"http://localhost:8000"`
	AWSRegion      string `envconfig:"AWS_REGION" default:"us-west-2"`

	KafkaBroker         string `envconfig:"KAFKA_BROKER" default:"localhost:29092"`
	KafkaGroupID        string `envconfig:"KAFKA_CONSUMER_GROUP_ID" default:"sentidash-consumer-group"`
	KafkaPublishResults bool   `envconfig:"KAFKA_PUBLISH_RESULTS" default:"false"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// Load reads the typed configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("[Config] failed to process environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))
	switch c.StoreBackend {
	case StoreBackendMemory, StoreBackendValkey:
	default:
		return fmt.Errorf("[Config] invalid STORE_BACKEND %q: must be %q or %q",
			c.StoreBackend, StoreBackendMemory, StoreBackendValkey)
	}
	if c.KeywordCount < 0 {
		return fmt.Errorf("[Config] KEYWORD_COUNT must not be negative, got %d", c.KeywordCount)
	}
	if c.BatchWorkers < 1 {
		c.BatchWorkers = 1
	}
	return nil
}
