package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"tapown/database"
)

// Tap reward modes
const (
	TapRewardModeFixed  = "fixed"
	TapRewardModeRandom = "random"
)

// Referral reward schemes
const (
	ReferralSchemeTiered = "tiered"
	ReferralSchemeFlat   = "flat"
)

// Config holds all application configuration
type Config struct {
	// Telegram configuration (membership verifier)
	TelegramToken string

	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// Reward configuration
	TapRewardMode  string // "fixed" or "random"
	TapRewardFixed int64
	TapRewardMin   int
	TapRewardMax   int

	ReferralScheme     string // "tiered" or "flat"
	FlatReferralReward int64

	BoostReward int64
	BoostRange  int // secret drawn uniformly from [1, BoostRange]

	// Leaderboard configuration
	LeaderboardSize int

	// Mission verification configuration
	SweepInterval      time.Duration
	VerificationWindow time.Duration // delay before a pending mission is swept
	VerifierTimeout    time.Duration

	// NATS configuration
	NATSServers string // NATS server addresses (comma-separated), empty disables publishing

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Telegram
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),

		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// Reward defaults; both tap modes and both referral schemes were
		// observed in deployments, so each is selectable
		TapRewardMode:  getEnvWithDefault("TAP_REWARD_MODE", TapRewardModeRandom),
		TapRewardFixed: 1,
		TapRewardMin:   1,
		TapRewardMax:   10,

		ReferralScheme:     getEnvWithDefault("REFERRAL_SCHEME", ReferralSchemeTiered),
		FlatReferralReward: 25000,

		BoostReward: 300000,
		BoostRange:  10,

		LeaderboardSize: 50,

		SweepInterval:      24 * time.Hour,
		VerificationWindow: 24 * time.Hour,
		VerifierTimeout:    5 * time.Second,

		// NATS
		NATSServers: os.Getenv("NATS_SERVERS"),

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if reward := os.Getenv("BOOST_REWARD"); reward != "" {
		if parsed, err := strconv.ParseInt(reward, 10, 64); err == nil {
			config.BoostReward = parsed
		}
	}
	if size := os.Getenv("LEADERBOARD_SIZE"); size != "" {
		if parsed, err := strconv.Atoi(size); err == nil && parsed > 0 {
			config.LeaderboardSize = parsed
		}
	}
	if interval := os.Getenv("SWEEP_INTERVAL"); interval != "" {
		if parsed, err := time.ParseDuration(interval); err == nil {
			config.SweepInterval = parsed
		}
	}
	if window := os.Getenv("VERIFICATION_WINDOW"); window != "" {
		if parsed, err := time.ParseDuration(window); err == nil {
			config.VerificationWindow = parsed
		}
	}
	if timeout := os.Getenv("VERIFIER_TIMEOUT"); timeout != "" {
		if parsed, err := time.ParseDuration(timeout); err == nil {
			config.VerifierTimeout = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.TelegramToken == "" {
			return nil, fmt.Errorf("TELEGRAM_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	switch config.TapRewardMode {
	case TapRewardModeFixed, TapRewardModeRandom:
	default:
		return nil, fmt.Errorf("invalid TAP_REWARD_MODE %q", config.TapRewardMode)
	}
	switch config.ReferralScheme {
	case ReferralSchemeTiered, ReferralSchemeFlat:
	default:
		return nil, fmt.Errorf("invalid REFERRAL_SCHEME %q", config.ReferralScheme)
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:        "test",
		TapRewardMode:      TapRewardModeFixed,
		TapRewardFixed:     1,
		TapRewardMin:       1,
		TapRewardMax:       10,
		ReferralScheme:     ReferralSchemeTiered,
		FlatReferralReward: 25000,
		BoostReward:        300000,
		BoostRange:         10,
		LeaderboardSize:    50,
		SweepInterval:      24 * time.Hour,
		VerificationWindow: 24 * time.Hour,
		VerifierTimeout:    time.Second,
	}
}
