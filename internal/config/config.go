package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ProviderSettings configures one AI backend.
type ProviderSettings struct {
	BaseURL string  `mapstructure:"base_url"`
	APIKey  string  `mapstructure:"api_key"`
	Model   string  `mapstructure:"model"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

// Config holds the configuration for the application.
type Config struct {
	Server struct {
		Addr            string        `mapstructure:"addr"`
		ReadTimeout     time.Duration `mapstructure:"read_timeout"`
		WriteTimeout    time.Duration `mapstructure:"write_timeout"`
		IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"server"`
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
	AI struct {
		ActiveProvider string           `mapstructure:"active_provider"`
		RequestTimeout time.Duration    `mapstructure:"request_timeout"`
		Ollama         ProviderSettings `mapstructure:"ollama"`
		OpenAI         ProviderSettings `mapstructure:"openai"`
		Perplexity     ProviderSettings `mapstructure:"perplexity"`
	} `mapstructure:"ai"`
	Search struct {
		Endpoint  string        `mapstructure:"endpoint"`
		Timeout   time.Duration `mapstructure:"timeout"`
		CacheSize int           `mapstructure:"cache_size"`
		CacheTTL  time.Duration `mapstructure:"cache_ttl"`
	} `mapstructure:"search"`
	Storage struct {
		Backend   string `mapstructure:"backend"`
		DataDir   string `mapstructure:"data_dir"`
		CacheSize int    `mapstructure:"cache_size"`
		S3        struct {
			Endpoint  string `mapstructure:"endpoint"`
			Region    string `mapstructure:"region"`
			AccessKey string `mapstructure:"access_key"`
			SecretKey string `mapstructure:"secret_key"`
			Bucket    string `mapstructure:"bucket"`
			UseSSL    bool   `mapstructure:"use_ssl"`
		} `mapstructure:"s3"`
	} `mapstructure:"storage"`
	DB struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
	} `mapstructure:"db"`
	TLS struct {
		Enable    bool     `mapstructure:"enable"`
		CertFile  string   `mapstructure:"cert_file"`
		KeyFile   string   `mapstructure:"key_file"`
		Hostnames []string `mapstructure:"hostnames"`
	} `mapstructure:"tls"`
}

// Storage backends.
const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
	StorageS3       = "s3"
)

// DSN returns the pgx connection string for the DB section.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Name, c.DB.SSLMode,
	)
}

// LoadConfig loads the configuration from an optional .env file, an optional
// config.yaml and the environment, in increasing order of precedence.
func LoadConfig(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	setDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Names used by the desktop build of the app.
	_ = viper.BindEnv("ai.openai.api_key", "AI_OPENAI_API_KEY", "OPENAI_API_KEY", "VITE_OPENAI_API_KEY")
	_ = viper.BindEnv("ai.perplexity.api_key", "AI_PERPLEXITY_API_KEY", "PERPLEXITY_API_KEY", "VITE_PERPLEXITY_API_KEY")
	_ = viper.BindEnv("ai.ollama.base_url", "AI_OLLAMA_BASE_URL", "OLLAMA_BASE_URL")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	normalize(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.read_timeout", 15*time.Second)
	viper.SetDefault("server.write_timeout", 5*time.Minute)
	viper.SetDefault("server.idle_timeout", 60*time.Second)
	viper.SetDefault("server.shutdown_timeout", 30*time.Second)

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	viper.SetDefault("ai.active_provider", "ollama")
	viper.SetDefault("ai.request_timeout", 2*time.Minute)
	viper.SetDefault("ai.ollama.base_url", "http://localhost:11434")
	viper.SetDefault("ai.ollama.model", "llama2")
	viper.SetDefault("ai.ollama.rps", 0)
	viper.SetDefault("ai.ollama.burst", 0)
	viper.SetDefault("ai.openai.base_url", "https://api.openai.com/v1")
	viper.SetDefault("ai.openai.api_key", "")
	viper.SetDefault("ai.openai.model", "gpt-3.5-turbo")
	viper.SetDefault("ai.openai.rps", 0)
	viper.SetDefault("ai.openai.burst", 0)
	viper.SetDefault("ai.perplexity.base_url", "https://api.perplexity.ai")
	viper.SetDefault("ai.perplexity.api_key", "")
	viper.SetDefault("ai.perplexity.model", "llama-3.1-sonar-small-128k-online")
	viper.SetDefault("ai.perplexity.rps", 0)
	viper.SetDefault("ai.perplexity.burst", 0)

	viper.SetDefault("search.endpoint", "https://html.duckduckgo.com/html")
	viper.SetDefault("search.timeout", 15*time.Second)
	viper.SetDefault("search.cache_size", 128)
	viper.SetDefault("search.cache_ttl", 10*time.Minute)

	viper.SetDefault("storage.backend", StorageFile)
	viper.SetDefault("storage.data_dir", "./data")
	viper.SetDefault("storage.cache_size", 64)
	viper.SetDefault("storage.s3.endpoint", "")
	viper.SetDefault("storage.s3.region", "us-east-1")
	viper.SetDefault("storage.s3.access_key", "")
	viper.SetDefault("storage.s3.secret_key", "")
	viper.SetDefault("storage.s3.bucket", "thought-organizer")
	viper.SetDefault("storage.s3.use_ssl", false)

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", 5432)
	viper.SetDefault("db.user", "postgres")
	viper.SetDefault("db.password", "")
	viper.SetDefault("db.name", "thought_organizer")
	viper.SetDefault("db.sslmode", "disable")

	viper.SetDefault("tls.enable", false)
	viper.SetDefault("tls.cert_file", "")
	viper.SetDefault("tls.key_file", "")
}

// normalize trims user-supplied URLs so "http://host/" and "http://host"
// behave the same when paths are appended.
func normalize(c *Config) {
	c.AI.Ollama.BaseURL = trimURL(c.AI.Ollama.BaseURL)
	c.AI.OpenAI.BaseURL = trimURL(c.AI.OpenAI.BaseURL)
	c.AI.Perplexity.BaseURL = trimURL(c.AI.Perplexity.BaseURL)
	c.Search.Endpoint = trimURL(c.Search.Endpoint)
	c.AI.ActiveProvider = strings.ToLower(strings.TrimSpace(c.AI.ActiveProvider))
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
}

func trimURL(input string) string {
	return strings.TrimRight(strings.TrimSpace(input), "/")
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case StorageFile, StoragePostgres, StorageS3:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	switch c.AI.ActiveProvider {
	case "ollama", "openai", "perplexity":
	default:
		return fmt.Errorf("unknown active provider %q", c.AI.ActiveProvider)
	}
	if c.TLS.Enable && (c.TLS.CertFile == "" || c.TLS.KeyFile == "") {
		return errors.New("tls enabled but cert_file or key_file not set")
	}
	return nil
}
