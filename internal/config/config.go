package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultOMDBBaseURL = "https://www.omdbapi.com/"

type SeedUser struct {
	Username string `yaml:"username"`
	Name     string `yaml:"name"`
}

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Game struct {
		PairAttempts int `yaml:"pair_attempts"`
	} `yaml:"game"`
	Ranking struct {
		CacheTTL string `yaml:"cache_ttl"`
	} `yaml:"ranking"`
	Movies struct {
		TTL string `yaml:"ttl"`
	} `yaml:"movies"`
	OMDB struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"omdb"`
	Seed struct {
		Users      []SeedUser `yaml:"users"`
		TitlesFile string     `yaml:"titles_file"`
	} `yaml:"seed"`
}

// Load reads YAML config from path. A missing file yields the defaults so the
// service can boot fully in memory.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("POSTGRES_URL"); v != "" {
		c.Postgres.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("OMDB_API_KEY"); v != "" {
		c.OMDB.APIKey = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Game.PairAttempts <= 0 {
		c.Game.PairAttempts = 1000
	}
	if c.OMDB.BaseURL == "" {
		c.OMDB.BaseURL = DefaultOMDBBaseURL
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
