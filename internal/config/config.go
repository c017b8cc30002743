package config

import (
	"time"

	"github.com/IBM/sarama"
	"github.com/kelseyhightower/envconfig"
)

var singleConfig *Config = nil

type Config struct {
	Database *dbConfig
	Service  *svcConfig
}

type dbConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"pgsql"`
	Hostname string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"compliance"`
	User     string `envconfig:"DB_USER" default:"admin"`
	Password string `envconfig:"DB_PASS" default:"adminpass"`
}

type svcConfig struct {
	LogLevel string `envconfig:"COMPLIANCE_API_LOG_LEVEL" default:"info"`
	// CalculationTimeout bounds the execution of a single calculator run; a
	// calculation hitting it ends in the failed state.
	CalculationTimeout time.Duration `envconfig:"COMPLIANCE_API_CALC_TIMEOUT" default:"2m"`
	MigrationFolder    string        `envconfig:"COMPLIANCE_API_MIGRATIONS_FOLDER" default:""`
	MetricsAddress     string        `envconfig:"COMPLIANCE_API_METRICS_ADDRESS" default:":8080"`
	Kafka              kafkaConfig
}

type kafkaConfig struct {
	Brokers  []string            `envconfig:"COMPLIANCE_API_KAFKA_BROKERS" default:""`
	Topic    string              `envconfig:"COMPLIANCE_API_KAFKA_TOPIC" default:""`
	Version  sarama.KafkaVersion `envconfig:"COMPLIANCE_API_KAFKA_VERSION" default:""`
	ClientID string              `envconfig:"COMPLIANCE_API_KAFKA_CLIENT_ID" default:""`

	SaramaConfig *sarama.Config
}

func New() (*Config, error) {
	if singleConfig == nil {
		singleConfig = new(Config)
		if err := envconfig.Process("", singleConfig); err != nil {
			return nil, err
		}
	}
	return singleConfig, nil
}

// NewDefault builds a fresh configuration without touching the singleton. Used by
// tests that need an isolated config.
func NewDefault() *Config {
	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		panic(err)
	}
	return cfg
}
