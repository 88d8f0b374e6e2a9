package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	// Mode selects the log format: development logs in color, anything else as JSON.
	Mode     string `mapstructure:"mode"`
	Handlers struct {
		Prometheus struct {
			Port      string `mapstructure:"port"`
			CertFile  string `mapstructure:"certFile"`
			KeyFile   string `mapstructure:"keyFile"`
			EnableTLS bool   `mapstructure:"enableTLS"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Repositories struct {
		Postgres struct {
			Host              string `mapstructure:"host"`
			Password          string `mapstructure:"password"`
			Port              string `mapstructure:"port"`
			Username          string `mapstructure:"username"`
			DB                string `mapstructure:"db"`
			SSLMODE           string `mapstructure:"SSLMODE"`
			MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
		} `mapstructure:"postgres"`
		Redis struct {
			Addr     string `mapstructure:"addr"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
		} `mapstructure:"redis"`
	} `mapstructure:"repositories"`
	Affinity struct {
		// Store selects the affinity backend: postgres, redis or memory.
		Store string `mapstructure:"store"`
	} `mapstructure:"affinity"`
	Providers struct {
		Places struct {
			BaseURL         string        `mapstructure:"baseURL"`
			APIKey          string        `mapstructure:"apiKey"`
			Timeout         time.Duration `mapstructure:"timeout"`
			CacheTTL        time.Duration `mapstructure:"cacheTTL"`
			BreakerFailures uint32        `mapstructure:"breakerFailures"`
			BreakerTimeout  time.Duration `mapstructure:"breakerTimeout"`
		} `mapstructure:"places"`
		Classifier struct {
			Enabled bool          `mapstructure:"enabled"`
			Model   string        `mapstructure:"model"`
			APIKey  string        `mapstructure:"apiKey"`
			Timeout time.Duration `mapstructure:"timeout"`
		} `mapstructure:"classifier"`
		Recommender struct {
			BaseURL string        `mapstructure:"baseURL"`
			Timeout time.Duration `mapstructure:"timeout"`
			TopN    int           `mapstructure:"topN"`
		} `mapstructure:"recommender"`
	} `mapstructure:"providers"`
	Auth struct {
		JWTSecret string `mapstructure:"jwtSecret"`
	} `mapstructure:"auth"`
	CORS struct {
		AllowedOrigins []string `mapstructure:"allowedOrigins"`
	} `mapstructure:"cors"`
	RateLimit struct {
		Requests int           `mapstructure:"requests"`
		Window   time.Duration `mapstructure:"window"`
	} `mapstructure:"rateLimit"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
}

func InitConfig() (Config, error) {
	v := viper.New()

	// Add file-based config paths
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// GEOGUIDE_PROVIDERS_PLACES_APIKEY overrides providers.places.apiKey
	v.SetEnvPrefix("geoguide")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Try to load file-based config
	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	return unmarshal(v)
}

// LoadEmbedded reads only the compiled-in defaults.
func LoadEmbedded() (Config, error) {
	v := viper.New()
	v.SetConfigType("yml")
	if err := v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
		return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
	}
	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	applyDefaults(&config)
	return config, nil
}

func applyDefaults(c *Config) {
	if c.Mode == "" {
		c.Mode = "development"
	}
	if c.Handlers.Prometheus.Port == "" {
		c.Handlers.Prometheus.Port = "9090"
	}
	if c.Affinity.Store == "" {
		c.Affinity.Store = "postgres"
	}
	if c.Providers.Places.Timeout <= 0 {
		c.Providers.Places.Timeout = 5 * time.Second
	}
	if c.Providers.Classifier.Model == "" {
		c.Providers.Classifier.Model = "gemini-2.0-flash"
	}
	if c.Providers.Classifier.Timeout <= 0 {
		c.Providers.Classifier.Timeout = 4 * time.Second
	}
	if c.Providers.Recommender.Timeout <= 0 {
		c.Providers.Recommender.Timeout = 5 * time.Second
	}
	if c.Providers.Recommender.TopN <= 0 {
		c.Providers.Recommender.TopN = 5
	}
	if c.Server.HTTPPort == "" {
		c.Server.HTTPPort = "8000"
	}
	if c.Server.Timeout <= 0 {
		c.Server.Timeout = 30 * time.Second
	}
}
