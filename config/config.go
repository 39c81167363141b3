// Package config loads converter settings from a JSON file and
// DOCSHIFT_ environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/docshift/docshift/ocr"
)

// Config holds all converter settings.
type Config struct {
	// TargetFormat is the default output format name.
	TargetFormat string        `mapstructure:"target_format"`
	Workers      int           `mapstructure:"workers"`
	Timeout      time.Duration `mapstructure:"timeout"`
	// MaxFileSizeMB bounds input files.
	MaxFileSizeMB int64     `mapstructure:"max_file_size_mb"`
	OCR           OCRConfig `mapstructure:"ocr"`
}

// OCRConfig holds OCR chain settings.
type OCRConfig struct {
	Language string `mapstructure:"language"`
	// ConfidenceThreshold is the minimum accepted confidence (0-100).
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`
	CacheSize           int     `mapstructure:"cache_size"`
	Google              GoogleConfig
	AWS                 AWSConfig `mapstructure:"aws"`
	Azure               AzureConfig
}

// GoogleConfig holds Google Cloud Vision credentials.
type GoogleConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// AWSConfig holds AWS Textract credentials.
type AWSConfig struct {
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// AzureConfig holds Azure Computer Vision credentials.
type AzureConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Key      string `mapstructure:"key"`
}

// MaxFileSize returns the input size limit in bytes.
func (c *Config) MaxFileSize() int64 {
	return c.MaxFileSizeMB << 20
}

// Engines builds the OCR engine set. The local engine is always
// present; cloud engines are added only when their credentials are
// configured. The chain orders them by priority at run time.
func (c *Config) Engines() []ocr.Engine {
	engines := []ocr.Engine{ocr.NewTesseract()}
	if c.OCR.Google.APIKey != "" {
		engines = append(engines, ocr.NewGoogleVision(c.OCR.Google.APIKey))
	}
	if c.OCR.AWS.AccessKey != "" && c.OCR.AWS.SecretKey != "" {
		engines = append(engines, ocr.NewTextract(ocr.TextractCredentials{
			Region:    c.OCR.AWS.Region,
			AccessKey: c.OCR.AWS.AccessKey,
			SecretKey: c.OCR.AWS.SecretKey,
		}))
	}
	if c.OCR.Azure.Endpoint != "" && c.OCR.Azure.Key != "" {
		engines = append(engines, ocr.NewAzureVision(c.OCR.Azure.Endpoint, c.OCR.Azure.Key))
	}
	return engines
}

// Load reads configuration from the JSON file at path, layered over
// defaults and DOCSHIFT_ environment variables. An empty path loads
// defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DOCSHIFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("target_format", "markdown")
	v.SetDefault("workers", 4)
	v.SetDefault("timeout", "30s")
	v.SetDefault("max_file_size_mb", 100)

	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.confidence_threshold", 0.0)
	v.SetDefault("ocr.cache_size", ocr.DefaultCacheSize)
	v.SetDefault("ocr.google.api_key", "")
	v.SetDefault("ocr.aws.region", "us-east-1")
	v.SetDefault("ocr.aws.access_key", "")
	v.SetDefault("ocr.aws.secret_key", "")
	v.SetDefault("ocr.azure.endpoint", "")
	v.SetDefault("ocr.azure.key", "")

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("config: workers must be positive, got %d", cfg.Workers)
	}
	if cfg.OCR.ConfidenceThreshold < 0 || cfg.OCR.ConfidenceThreshold > 100 {
		return nil, fmt.Errorf("config: confidence_threshold must be within 0-100, got %v",
			cfg.OCR.ConfidenceThreshold)
	}
	return &cfg, nil
}
