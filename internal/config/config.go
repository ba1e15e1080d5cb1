// Package config loads process configuration from defaults, an optional
// liste.env file and LISTE_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/dukerupert/liste/internal/catalog"
)

// Configuration keys, also the environment variable names.
const (
	Port     = "LISTE_PORT"
	DBPath   = "LISTE_DB_PATH"
	BaseURL  = "LISTE_BASE_URL"
	Locale   = "LISTE_LOCALE"
	LogLevel = "LISTE_LOG_LEVEL"
	LogFmt   = "LISTE_LOG_FORMAT"

	Stores     = "LISTE_STORES"
	Categories = "LISTE_CATEGORIES"
	Occasions  = "LISTE_OCCASIONS"
	Users      = "LISTE_USERS"

	RateLimit = "LISTE_RATE_LIMIT"

	RedisAddr     = "LISTE_REDIS_ADDR"
	RedisPassword = "LISTE_REDIS_PASSWORD"
	RedisDB       = "LISTE_REDIS_DB"

	VAPIDPublicKey  = "LISTE_VAPID_PUBLIC_KEY"
	VAPIDPrivateKey = "LISTE_VAPID_PRIVATE_KEY"

	S3Endpoint       = "LISTE_S3_ENDPOINT"
	S3Bucket         = "LISTE_S3_BUCKET"
	S3Region         = "LISTE_S3_REGION"
	S3AccessKey      = "LISTE_S3_ACCESS_KEY"
	S3SecretKey      = "LISTE_S3_SECRET_KEY"
	BackupPassphrase = "LISTE_BACKUP_PASSPHRASE"
	BackupOnClear    = "LISTE_BACKUP_ON_CLEAR"
	BackupInterval   = "LISTE_BACKUP_INTERVAL"
)

type Config struct {
	Server  ServerConfig
	Logging LoggingConfig
	Catalog catalog.Catalog
	Redis   RedisConfig
	Push    PushConfig
	Backup  BackupConfig
}

type ServerConfig struct {
	Port    string
	DBPath  string
	BaseURL string
	Locale  string
	// RateLimit is the number of writes allowed per client IP per minute.
	RateLimit int
}

type LoggingConfig struct {
	Level  string
	Format string
}

// RedisConfig enables the cross-instance relay when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// PushConfig enables web push when both keys are set.
type PushConfig struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
}

// BackupConfig enables archives to S3-compatible storage when Bucket and the
// credentials are set.
type BackupConfig struct {
	Endpoint   string
	Bucket     string
	Region     string
	AccessKey  string
	SecretKey  string
	Passphrase string
	OnClear    bool
	// Interval between scheduled archives; zero disables the schedule.
	Interval time.Duration
}

// Load reads the configuration. dirs lists the directories searched for
// liste.env; a missing file is not an error.
func Load(dirs ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("liste")
	v.SetConfigType("env")
	if len(dirs) == 0 {
		dirs = []string{"."}
	}
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}

	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:      v.GetString(Port),
			DBPath:    v.GetString(DBPath),
			BaseURL:   v.GetString(BaseURL),
			Locale:    v.GetString(Locale),
			RateLimit: v.GetInt(RateLimit),
		},
		Logging: LoggingConfig{
			Level:  v.GetString(LogLevel),
			Format: v.GetString(LogFmt),
		},
		Catalog: catalog.Catalog{
			Stores:     splitList(v.GetString(Stores)),
			Categories: splitList(v.GetString(Categories)),
			Occasions:  splitList(v.GetString(Occasions)),
			Users:      splitList(v.GetString(Users)),
		},
		Redis: RedisConfig{
			Addr:     v.GetString(RedisAddr),
			Password: v.GetString(RedisPassword),
			DB:       v.GetInt(RedisDB),
		},
		Push: PushConfig{
			VAPIDPublicKey:  v.GetString(VAPIDPublicKey),
			VAPIDPrivateKey: v.GetString(VAPIDPrivateKey),
		},
		Backup: BackupConfig{
			Endpoint:   v.GetString(S3Endpoint),
			Bucket:     v.GetString(S3Bucket),
			Region:     v.GetString(S3Region),
			AccessKey:  v.GetString(S3AccessKey),
			SecretKey:  v.GetString(S3SecretKey),
			Passphrase: v.GetString(BackupPassphrase),
			OnClear:    v.GetBool(BackupOnClear),
			Interval:   v.GetDuration(BackupInterval),
		},
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = "http://localhost:" + cfg.Server.Port
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(Port, "8080")
	v.SetDefault(DBPath, "liste.db")
	v.SetDefault(Locale, "fr")
	v.SetDefault(LogLevel, "info")
	v.SetDefault(LogFmt, "text")
	v.SetDefault(RateLimit, 120)

	// Lists are comma-separated: store and category names contain spaces.
	v.SetDefault(Stores, strings.Join(catalog.DefaultStores, ","))
	v.SetDefault(Categories, strings.Join(catalog.DefaultCategories, ","))
	v.SetDefault(Occasions, strings.Join(catalog.DefaultOccasions, ","))
	v.SetDefault(Users, strings.Join(catalog.DefaultUsers, ","))

	v.SetDefault(RedisDB, 0)
	v.SetDefault(S3Region, "auto")
	v.SetDefault(BackupOnClear, true)
	v.SetDefault(BackupInterval, "0s")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate reports the first configuration error.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.DBPath == "" {
		return fmt.Errorf("database path is required")
	}
	if len(c.Catalog.Stores) == 0 {
		return fmt.Errorf("at least one store is required")
	}
	if len(c.Catalog.Categories) == 0 {
		return fmt.Errorf("at least one category is required")
	}
	if len(c.Catalog.Occasions) == 0 {
		return fmt.Errorf("at least one occasion is required")
	}
	if len(c.Catalog.Users) == 0 {
		return fmt.Errorf("at least one user is required")
	}
	if c.Server.RateLimit < 1 {
		return fmt.Errorf("rate limit must be positive")
	}
	if (c.Push.VAPIDPublicKey == "") != (c.Push.VAPIDPrivateKey == "") {
		return fmt.Errorf("both VAPID keys must be set to enable push")
	}
	if c.Backup.Interval < 0 {
		return fmt.Errorf("backup interval must not be negative")
	}
	return nil
}

// BackupEnabled reports whether archives can be uploaded.
func (c *Config) BackupEnabled() bool {
	b := c.Backup
	return b.Bucket != "" && b.AccessKey != "" && b.SecretKey != "" && b.Passphrase != ""
}
