package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string         `toml:"environment"` // "development" or "production"
	Server      ServerConfig   `toml:"server"`
	Storage     StorageConfig  `toml:"storage"`
	Pipeline    PipelineConfig `toml:"pipeline"`
	Upload      UploadConfig   `toml:"upload"`
	Logging     LoggingConfig  `toml:"logging"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gt=0,lte=65535"`
	Host string `toml:"host" validate:"required"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
	Files  FilesConfig  `toml:"files"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"` // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"`         // Delete database on startup for clean test runs
}

// FilesConfig is the root of the local blob store (PDFs and page images)
type FilesConfig struct {
	Path string `toml:"path" validate:"required"`
}

// PipelineConfig bounds the extraction pipeline
type PipelineConfig struct {
	Timeout      time.Duration `toml:"timeout" validate:"gt=0"`  // wall-clock bound per processing run
	MaxPDFSize   int64         `toml:"max_pdf_size"`             // reject parsing above this many bytes
	ImageScale   float64       `toml:"image_scale" validate:"gt=0"` // page render scale factor
	MinImageSize int           `toml:"min_image_size"`           // skip PNG writes below this many bytes
	SweepSchedule string       `toml:"sweep_schedule"`           // cron expression for the stuck-book janitor
}

// UploadConfig bounds the upload endpoint
type UploadConfig struct {
	MaxFileSize int64   `toml:"max_file_size"` // reject multipart files above this many bytes
	RatePerSec  float64 `toml:"rate_per_sec"`  // upload rate limit (requests/second)
	RateBurst   int     `toml:"rate_burst"`
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// NewDefaultConfig returns the built-in defaults, overridden by config
// files, environment variables and CLI flags in that order.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8085,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:           "./data/folio.db",
				ResetOnStartup: false,
			},
			Files: FilesConfig{
				Path: "./data/storage",
			},
		},
		Pipeline: PipelineConfig{
			Timeout:       10 * time.Minute,
			MaxPDFSize:    100 * 1024 * 1024, // 100 MB parse ceiling
			ImageScale:    1.5,
			MinImageSize:  1024,
			SweepSchedule: "* * * * *", // every minute
		},
		Upload: UploadConfig{
			MaxFileSize: 50 * 1024 * 1024, // 50 MB upload ceiling
			RatePerSec:  2,
			RateBurst:   5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier
// files; environment variables override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := Validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the resolved configuration for structural errors.
func Validate(config *Config) error {
	if err := validator.New().Struct(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ApplyFlagOverrides applies command-line flag values (highest priority).
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FOLIO_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("FOLIO_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("FOLIO_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if badgerPath := os.Getenv("FOLIO_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if filesPath := os.Getenv("FOLIO_FILES_PATH"); filesPath != "" {
		config.Storage.Files.Path = filesPath
	}

	if timeout := os.Getenv("FOLIO_PIPELINE_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.Pipeline.Timeout = d
		}
	}

	if level := os.Getenv("FOLIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("FOLIO_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
}
