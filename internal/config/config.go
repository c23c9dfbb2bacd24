package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tomomini0815/ainance-v2-sub004/internal/matcher"
	"github.com/tomomini0815/ainance-v2-sub004/pkg/validation"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	AnalysisTimeout    time.Duration
	MaxRequestBodySize int64

	// Capture sources
	StorageType        string
	AzureAccountName   string
	AzureAccountKey    string
	AllowedSourceHosts []string

	// Recognition
	OCRLanguages        []string
	StoreVariationsFile string

	Quality validation.QualityThresholds
	Match   matcher.Options
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

func LoadFromEnv() (*Config, error) {
	quality := validation.DefaultQualityThresholds()
	quality.BlurCutoff = parseFloatOrDefault("BLUR_CUTOFF", quality.BlurCutoff)
	quality.EdgeThreshold = parseFloatOrDefault("EDGE_THRESHOLD", quality.EdgeThreshold)
	quality.MinEdgeCount = int(parseIntOrDefault("MIN_EDGE_COUNT", int64(quality.MinEdgeCount)))
	quality.MinAspectRatio = parseFloatOrDefault("ASPECT_RATIO_MIN", quality.MinAspectRatio)
	quality.MaxAspectRatio = parseFloatOrDefault("ASPECT_RATIO_MAX", quality.MaxAspectRatio)
	quality.MinBrightness = parseFloatOrDefault("BRIGHTNESS_MIN", quality.MinBrightness)
	quality.MaxBrightness = parseFloatOrDefault("BRIGHTNESS_MAX", quality.MaxBrightness)
	quality.MinContrast = parseFloatOrDefault("MIN_CONTRAST", quality.MinContrast)
	quality.MinOverallScore = parseFloatOrDefault("GOOD_QUALITY_SCORE", quality.MinOverallScore)

	match := matcher.DefaultOptions()
	match.FuzzyFloor = int(parseIntOrDefault("FUZZY_MATCH_FLOOR", int64(match.FuzzyFloor)))

	cfg := &Config{
		Host:                getEnvOrDefault("HOST", "0.0.0.0"),
		Port:                getEnvOrDefault("PORT", "8080"),
		RequestTimeout:      parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		ImageFetchTimeout:   parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		AnalysisTimeout:     parseDurationOrDefault("ANALYSIS_TIMEOUT", 20*time.Second),
		MaxRequestBodySize:  parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 20*1024*1024), // 20MB, base64 phone photos
		StorageType:         strings.ToLower(getEnvOrDefault("STORAGE_TYPE", "http")),
		AzureAccountName:    os.Getenv("AZURE_STORAGE_ACCOUNT"),
		AzureAccountKey:     os.Getenv("AZURE_STORAGE_KEY"),
		AllowedSourceHosts:  parseListOrDefault("ALLOWED_SOURCE_HOSTS", nil),
		OCRLanguages:        parseListOrDefault("OCR_LANGUAGES", []string{"jpn", "eng"}),
		StoreVariationsFile: os.Getenv("STORE_VARIATIONS_FILE"),
		Quality:             quality,
		Match:               match,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded configuration for inconsistent values
func (c *Config) Validate() error {
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.RequestTimeout <= 0 || c.ImageFetchTimeout <= 0 || c.AnalysisTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s, analysis=%s)",
			c.RequestTimeout, c.ImageFetchTimeout, c.AnalysisTimeout)
	}
	switch c.StorageType {
	case "http":
	case "azure":
		if c.AzureAccountName == "" || c.AzureAccountKey == "" {
			return fmt.Errorf("STORAGE_TYPE=azure requires AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_TYPE: %q", c.StorageType)
	}
	if len(c.OCRLanguages) == 0 {
		return fmt.Errorf("OCR_LANGUAGES must name at least one language")
	}
	if err := c.Quality.Validate(); err != nil {
		return fmt.Errorf("invalid quality thresholds: %w", err)
	}
	if err := c.Match.Validate(); err != nil {
		return fmt.Errorf("invalid match options: %w", err)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// parseListOrDefault reads a comma separated list, dropping empty items
func parseListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
