package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment variables
// Provide sane defaults for local development.
type Config struct {
	AppName  string
	Env      string // development, production
	LogLevel string
	GinMode  string

	// Database
	DatabaseDialect   string // postgres, mysql, sqlite
	DatabaseURL       string
	DBMaxConns        int32
	DBMinConns        int32
	DBMaxConnLife     time.Duration
	DBAcquireTimeout  time.Duration
	MigrationsEnabled bool

	// Discord
	BotToken        string
	DiscordGuildIDs string // comma-separated; empty registers commands globally

	// Shown by /about
	AboutTitle       string
	AboutDescription string
	SourceCodeURL    string

	// Edit sessions
	EditSessionTimeout time.Duration
	EditCooldownLimit  int
	EditCooldownWindow time.Duration

	// Redis; empty address disables the edit cooldown
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// RabbitMQ; empty url disables profile events
	RabbitMQURL          string
	RabbitMQProfileQueue string

	// Ops HTTP server; empty disables it
	HTTPAddr string
}

var dialects = map[string]bool{"postgres": true, "mysql": true, "sqlite": true}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %v, using default %v", key, err, def)
			return def
		}
		return b
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid int for %s: %v, using default %d", key, err, def)
			return def
		}
		return i
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			log.Printf("invalid duration for %s: %q, using default %v", key, v, def)
			return def
		}
		return d
	}
	return def
}

// LoadDotenv pre-loads the file named by DOTENV (default .env). A missing
// file is not an error; variables already set win.
func LoadDotenv() error {
	path := getenv("DOTENV", ".env")
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		AppName:  getenv("APP_NAME", "cipher"),
		Env:      getenv("APP_ENV", "development"),
		LogLevel: getenv("LOG_LEVEL", "info"),
		GinMode:  getenv("GIN_MODE", "release"),

		DatabaseDialect:   strings.ToLower(getenv("DATABASE_DIALECT", "")),
		DatabaseURL:       getenv("DATABASE_URL", ""),
		DBMaxConns:        int32(getint("DB_MAX_CONNS", 10)),
		DBMinConns:        int32(getint("DB_MIN_CONNS", 2)),
		DBMaxConnLife:     getdur("DB_MAX_CONN_LIFETIME", time.Hour),
		DBAcquireTimeout:  getdur("DB_ACQUIRE_TIMEOUT", 5*time.Second),
		MigrationsEnabled: getbool("MIGRATIONS_ENABLED", true),

		BotToken:        getenv("BOT_TOKEN", ""),
		DiscordGuildIDs: getenv("DISCORD_GUILD_IDS", ""),

		AboutTitle:       getenv("ABOUT_TITLE", "Cipher"),
		AboutDescription: getenv("ABOUT_DESCRIPTION", "Trainer profiles and friend codes for your server."),
		SourceCodeURL:    getenv("SOURCE_CODE_URL", "https://github.com/oksasatya/cipher"),

		EditSessionTimeout: getdur("EDIT_SESSION_TIMEOUT", 5*time.Minute),
		EditCooldownLimit:  getint("EDIT_COOLDOWN_LIMIT", 5),
		EditCooldownWindow: getdur("EDIT_COOLDOWN_WINDOW", time.Minute),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getint("REDIS_DB", 0),

		RabbitMQURL:          getenv("RABBITMQ_URL", ""),
		RabbitMQProfileQueue: getenv("RABBITMQ_PROFILE_QUEUE", "profile_events"),

		HTTPAddr: getenv("HTTP_ADDR", ":8080"),
	}
}

// ValidateDatabase checks the settings needed to open the backend.
func (c *Config) ValidateDatabase() error {
	var errs []error
	if !dialects[c.DatabaseDialect] {
		errs = append(errs, fmt.Errorf("DATABASE_DIALECT must be one of postgres, mysql, sqlite (got %q)", c.DatabaseDialect))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	// migrations and the pool open separate connections, so a private
	// in-memory database would never see the schema
	if c.DatabaseDialect == "sqlite" && isMemoryDSN(c.DatabaseURL) {
		errs = append(errs, errors.New("DATABASE_URL must point to a sqlite file, in-memory databases are not supported"))
	}
	return errors.Join(errs...)
}

func isMemoryDSN(dsn string) bool {
	dsn = strings.TrimPrefix(strings.TrimPrefix(dsn, "sqlite://"), "file:")
	return strings.HasPrefix(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// Validate checks everything the bot process needs.
func (c *Config) Validate() error {
	var errs []error
	if err := c.ValidateDatabase(); err != nil {
		errs = append(errs, err)
	}
	if c.BotToken == "" {
		errs = append(errs, errors.New("BOT_TOKEN is required"))
	}
	return errors.Join(errs...)
}

// GuildIDs returns the guilds to register commands in.
func (c *Config) GuildIDs() []string {
	parts := strings.Split(c.DiscordGuildIDs, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}

func (c *Config) IsDevelopment() bool { return c.Env == "development" }
