package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aman-zulfiqar/solana-meme-detector/internal/constants"
)

type Config struct {
	// Service settings
	AppName  string
	Version  string
	Debug    bool
	LogLevel string

	// API settings
	APIAddr            string
	RateLimitPerMinute int

	// RPC settings
	HeliusAPIKey string
	HeliusRPCURL string
	SolanaRPCURL string

	// Market data
	DexScreenerBaseURL string

	// Redis settings (empty = in-process cache)
	RedisAddr string

	// Detector defaults
	CacheTTL            time.Duration
	MaxTokensLimit      int
	DefaultTokensLimit  int
	DefaultMinLiquidity float64

	// HTTP client settings
	HTTPTimeout  time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

func Load() *Config {
	return &Config{
		// Service
		AppName:  getEnv("APP_NAME", "Solana Meme Coin Detector API"),
		Version:  getEnv("APP_VERSION", "1.0.0"),
		Debug:    getBoolEnv("DEBUG", false),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// API
		APIAddr:            getEnv("API_ADDR", ":8000"),
		RateLimitPerMinute: getIntEnv("RATE_LIMIT_PER_MINUTE", 30),

		// RPC
		HeliusAPIKey: getEnv("HELIUS_API_KEY", ""),
		HeliusRPCURL: getEnv("HELIUS_RPC_URL", constants.HeliusRPCURL),
		SolanaRPCURL: getEnv("SOLANA_RPC_URL", constants.SolanaRPCURL),

		// Market data
		DexScreenerBaseURL: getEnv("DEXSCREENER_BASE_URL", constants.DexScreenerBaseURL),

		// Redis
		RedisAddr: getEnv("REDIS_ADDR", ""),

		// Detector
		CacheTTL:            getDurationEnv("CACHE_TTL", 60*time.Second),
		MaxTokensLimit:      getIntEnv("MAX_TOKENS_LIMIT", 50),
		DefaultTokensLimit:  getIntEnv("DEFAULT_TOKENS_LIMIT", 10),
		DefaultMinLiquidity: getFloatEnv("DEFAULT_MIN_LIQUIDITY", 1000.0),

		// HTTP
		HTTPTimeout:  getDurationEnv("HTTP_TIMEOUT", 30*time.Second),
		MaxRetries:   getIntEnv("MAX_RETRIES", 3),
		RetryBackoff: getDurationEnv("RETRY_BACKOFF", time.Second),
	}
}

// Validate rejects settings the detector cannot run with.
func (c *Config) Validate() error {
	if c.MaxTokensLimit < 1 {
		return fmt.Errorf("MAX_TOKENS_LIMIT must be >= 1, got %d", c.MaxTokensLimit)
	}
	if c.DefaultTokensLimit < 1 || c.DefaultTokensLimit > c.MaxTokensLimit {
		return fmt.Errorf("DEFAULT_TOKENS_LIMIT must be in [1,%d], got %d", c.MaxTokensLimit, c.DefaultTokensLimit)
	}
	if c.DefaultMinLiquidity < 0 {
		return fmt.Errorf("DEFAULT_MIN_LIQUIDITY must be >= 0")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("MAX_RETRIES must be >= 1")
	}
	if strings.TrimSpace(c.DexScreenerBaseURL) == "" {
		return fmt.Errorf("DEXSCREENER_BASE_URL is required")
	}
	if c.RPCURL() == "" {
		return fmt.Errorf("SOLANA_RPC_URL or HELIUS_API_KEY is required")
	}
	return nil
}

// RPCURL returns the Helius endpoint when an API key is configured, else the public RPC.
func (c *Config) RPCURL() string {
	if c.HeliusAPIKey != "" {
		return fmt.Sprintf("%s/?api-key=%s", strings.TrimRight(c.HeliusRPCURL, "/"), c.HeliusAPIKey)
	}
	return c.SolanaRPCURL
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getFloatEnv(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
