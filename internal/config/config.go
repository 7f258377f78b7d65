package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Storage  StorageConfig  `yaml:"storage"`
	Google   GoogleConfig   `yaml:"google"`
	Sync     SyncConfig     `yaml:"sync"`
	Workers  WorkersConfig  `yaml:"workers"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type AppConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Env     string `yaml:"env"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	Charset            string        `yaml:"charset"`
	ParseTime          bool          `yaml:"parse_time"`
	Loc                string        `yaml:"loc"`
	MaxConnections     int           `yaml:"max_connections"`
	MaxIdleConnections int           `yaml:"max_idle_connections"`
	ConnectionLifetime time.Duration `yaml:"connection_lifetime"`
}

type RedisConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Password       string `yaml:"password"`
	DB             int    `yaml:"db"`
	PoolSize       int    `yaml:"pool_size"`
	SyncQueue      string `yaml:"sync_queue"`
	IngestionQueue string `yaml:"ingestion_queue"`
	DLQSuffix      string `yaml:"dlq_suffix"`
}

type StorageConfig struct {
	S3 S3Config `yaml:"s3"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type GoogleConfig struct {
	// Path to the service-account key JSON used when no per-admin OAuth
	// tokens accompany the request.
	ServiceAccountFile string `yaml:"service_account_file"`
	// Workspace user the service account impersonates (domain-wide delegation).
	ImpersonateSubject string `yaml:"impersonate_subject"`

	OAuthClientID     string   `yaml:"oauth_client_id"`
	OAuthClientSecret string   `yaml:"oauth_client_secret"`
	Scopes            []string `yaml:"scopes"`

	// Base URLs are overridable so tests and proxies can point the client
	// elsewhere. Empty means the public Google endpoints.
	ClassroomBaseURL string        `yaml:"classroom_base_url"`
	DirectoryBaseURL string        `yaml:"directory_base_url"`
	Timeout          time.Duration `yaml:"timeout"`
	RetryAttempts    int           `yaml:"retry_attempts"`
	RetryDelay       time.Duration `yaml:"retry_delay"`
}

type SyncConfig struct {
	PageSize   int           `yaml:"page_size"`
	RunTimeout time.Duration `yaml:"run_timeout"`
}

type WorkersConfig struct {
	Sync      SyncWorkerConfig      `yaml:"sync"`
	Ingestion IngestionWorkerConfig `yaml:"ingestion"`
	Scheduler SchedulerConfig       `yaml:"scheduler"`
}

type SyncWorkerConfig struct {
	Count int `yaml:"count"`
}

type IngestionWorkerConfig struct {
	Count     int `yaml:"count"`
	BatchSize int `yaml:"batch_size"`
}

type SchedulerConfig struct {
	Interval   time.Duration `yaml:"interval"`
	RunOnStart bool          `yaml:"run_on_start"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Sync.PageSize <= 0 || c.Sync.PageSize > 100 {
		c.Sync.PageSize = 100
	}
	if c.Sync.RunTimeout <= 0 {
		c.Sync.RunTimeout = 30 * time.Minute
	}
	if c.Google.Timeout <= 0 {
		c.Google.Timeout = 60 * time.Second
	}
	if c.Google.RetryAttempts <= 0 {
		c.Google.RetryAttempts = 3
	}
	if c.Google.RetryDelay <= 0 {
		c.Google.RetryDelay = time.Second
	}
	if c.Workers.Sync.Count <= 0 {
		c.Workers.Sync.Count = 1
	}
	if c.Workers.Ingestion.Count <= 0 {
		c.Workers.Ingestion.Count = 2
	}
}

// MySQL DSN format: [username[:password]@][protocol[(address)]]/dbname[?param1=value1&...&paramN=valueN]
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port,
		c.Database.Name, c.Database.Charset, c.Database.ParseTime, c.Database.Loc)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
