package config

import (
	"fmt"
	"os"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port   int    `yaml:"port"`
		APIKey string `yaml:"apiKey"`
		// Requests per client; each processing request fans out LLM calls.
		RateLimitCapacity int `yaml:"rateLimitCapacity"`
		RateLimitRefill   int `yaml:"rateLimitRefill"`
	} `yaml:"server"`

	Cases struct {
		Dir   string `yaml:"dir"`
		Actor string `yaml:"actor"`
	} `yaml:"cases"`

	OpenRouter struct {
		APIKey             string `yaml:"apiKey"`
		BaseURL            string `yaml:"baseURL"`
		Model              string `yaml:"model"`
		TaskTimeoutSeconds int    `yaml:"taskTimeoutSeconds"`
		Workers            int    `yaml:"workers"`
	} `yaml:"openrouter"`

	Instagram struct {
		SessionID string `yaml:"sessionId"`
		DSUserID  string `yaml:"dsUserId"`
		CSRFToken string `yaml:"csrfToken"`
	} `yaml:"instagram"`

	Database struct {
		Driver   string `yaml:"driver"` // "mysql", "postgres" or empty to disable
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Minio struct {
		Enabled    bool   `yaml:"enabled"`
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`
}

// Load baca file config.yaml, lalu terapkan override dari environment.
// Secrets (API keys, session cookies) selalu lebih aman lewat env.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("API_KEY"); v != "" {
		c.Server.APIKey = v
	}
	if v := os.Getenv("CASES_DIR"); v != "" {
		c.Cases.Dir = v
	}
	if v := os.Getenv("OPENROUTER_API_KEY"); v != "" {
		c.OpenRouter.APIKey = v
	}
	if v := os.Getenv("OPENROUTER_BASE_URL"); v != "" {
		c.OpenRouter.BaseURL = v
	}
	if v := os.Getenv("OPENROUTER_MODEL"); v != "" {
		c.OpenRouter.Model = v
	}
	if v := os.Getenv("INSTAGRAM_SESSIONID"); v != "" {
		c.Instagram.SessionID = v
	}
	if v := os.Getenv("INSTAGRAM_DS_USER_ID"); v != "" {
		c.Instagram.DSUserID = v
	}
	if v := os.Getenv("INSTAGRAM_CSRFTOKEN"); v != "" {
		c.Instagram.CSRFToken = v
	}
	if v := os.Getenv("DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		c.Minio.AccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		c.Minio.SecretKey = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.RateLimitCapacity == 0 {
		c.Server.RateLimitCapacity = 30
	}
	if c.Server.RateLimitRefill == 0 {
		c.Server.RateLimitRefill = 1
	}
	if c.Cases.Dir == "" {
		c.Cases.Dir = "cases"
	}
	if c.Cases.Actor == "" {
		c.Cases.Actor = "socmint"
	}
	if c.OpenRouter.TaskTimeoutSeconds == 0 {
		c.OpenRouter.TaskTimeoutSeconds = 30
	}
	if c.OpenRouter.Workers == 0 {
		c.OpenRouter.Workers = 3
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server, validation.By(func(any) error {
			if c.Server.Port < 1 || c.Server.Port > 65535 {
				return fmt.Errorf("server port %d out of range", c.Server.Port)
			}
			return nil
		})),
		validation.Field(&c.Database, validation.By(func(any) error {
			switch c.Database.Driver {
			case "", "mysql", "postgres":
				return nil
			}
			return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
		})),
	)
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN builds a lib/pq connection string
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
