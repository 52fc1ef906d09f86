package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"

	EnvPrefix = "LABELX"
)

type Config struct {
	ServerPort         string
	MaxFileSize        int64
	MaxMultipartMemory int64

	TesseractDataPath string
	OCREnabled        bool
	OCRMinText        int

	StoreDriver string
	SQLitePath  string

	KafkaBroker string
	KafkaTopic  string

	LogLevel string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_port", "8080")
	v.SetDefault("max_file_size", 10*1024*1024)         // 10 MB
	v.SetDefault("max_multipart_memory", 32*1024*1024) // 32 MB
	v.SetDefault("tessdata_prefix", "/usr/share/tesseract-ocr/5/tessdata/")
	v.SetDefault("ocr_enabled", true)
	v.SetDefault("ocr_min_text", 20)
	v.SetDefault("store_driver", StoreMemory)
	v.SetDefault("sqlite_path", "labels.db")
	v.SetDefault("kafka_broker", "")
	v.SetDefault("kafka_topic", "shipments.extracted")
	v.SetDefault("log_level", "info")
}

// BindFlags registers the configuration flags on fs.
func BindFlags(fs *pflag.FlagSet) {
	fs.String("server-port", "8080", "HTTP port")
	fs.String("store-driver", StoreMemory, "batch store: memory or sqlite")
	fs.String("sqlite-path", "labels.db", "SQLite database file (store-driver=sqlite)")
	fs.String("kafka-broker", "", "Kafka broker address; empty disables event publishing")
	fs.Bool("ocr-enabled", true, "OCR scanned labels with Tesseract when a PDF has no text layer")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
}

// LoadConfig reads configuration from LABELX_* environment variables and,
// when fs is non-nil, from flags registered with BindFlags.
func LoadConfig(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		fs.VisitAll(func(f *pflag.Flag) {
			if f.Changed {
				_ = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
			}
		})
	}

	cfg := &Config{
		ServerPort:         v.GetString("server_port"),
		MaxFileSize:        v.GetInt64("max_file_size"),
		MaxMultipartMemory: v.GetInt64("max_multipart_memory"),
		TesseractDataPath:  v.GetString("tessdata_prefix"),
		OCREnabled:         v.GetBool("ocr_enabled"),
		OCRMinText:         v.GetInt("ocr_min_text"),
		StoreDriver:        v.GetString("store_driver"),
		SQLitePath:         v.GetString("sqlite_path"),
		KafkaBroker:        v.GetString("kafka_broker"),
		KafkaTopic:         v.GetString("kafka_topic"),
		LogLevel:           v.GetString("log_level"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.ServerPort == "" {
		return errors.New("server port cannot be empty")
	}
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}
	if c.OCRMinText < 0 {
		return errors.New("ocr_min_text cannot be negative")
	}

	switch c.StoreDriver {
	case StoreMemory:
	case StoreSQLite:
		if c.SQLitePath == "" {
			return errors.New("sqlite_path is required for the sqlite store")
		}
	default:
		return fmt.Errorf("unknown store driver: %s (must be memory or sqlite)", c.StoreDriver)
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}
	return nil
}

// KafkaEnabled reports whether batch events should be published.
func (c *Config) KafkaEnabled() bool {
	return c.KafkaBroker != ""
}

func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}
