package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers understood by the service.
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// AppConfig holds the values the service is started with. It is built once at boot and
// passed explicitly to the components that need it.
type AppConfig struct {
	AppPort            string
	AllowedOrigins     []string
	RateLimitPerMinute int
	MaxUploadSizeMB    int
	// Storage
	StorageDriver string
	UploadDir     string
	S3Bucket      string
	S3Region      string
	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string
	S3Prefix      string
	// Metadata journal; empty DatabaseURI disables it
	DBDriver    string
	DatabaseURI string
	// Gin framework configuration
	GinMode string
	GinPath string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

// keys maps viper keys (grouped like config.json) to the environment variables overriding them.
var keys = map[string]string{
	"app.port":                  "APP_PORT",
	"app.allowed_origins":       "ALLOWED_ORIGINS",
	"app.rate_limit_per_minute": "RATE_LIMIT_PER_MINUTE",
	"app.max_upload_size_mb":    "MAX_UPLOAD_SIZE_MB",
	"storage.driver":            "STORAGE_DRIVER",
	"storage.upload_dir":        "UPLOAD_DIR",
	"s3.bucket":                 "S3_BUCKET",
	"s3.region":                 "S3_REGION",
	"s3.endpoint":               "S3_ENDPOINT",
	"s3.access_key":             "S3_ACCESS_KEY",
	"s3.secret_key":             "S3_SECRET_KEY",
	"s3.prefix":                 "S3_PREFIX",
	"database.driver":           "DB_DRIVER",
	"database.uri":              "DATABASE_URI",
	"gin.mode":                  "GIN_MODE",
	"gin.path":                  "GIN_PATH",
	"log.level":                 "LOG_LEVEL",
	"log.path":                  "LOG_PATH",
	"log.max_size_mb":           "LOG_MAX_SIZE_MB",
	"log.max_backups":           "LOG_MAX_BACKUPS",
	"log.max_age_days":          "LOG_MAX_AGE_DAYS",
	"log.compress":              "LOG_COMPRESS",
}

// Load reads configuration with precedence config/config.json -> defaults -> environment.
// A .env file in the working directory is loaded into the environment first when present.
func Load() (AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return AppConfig{}, fmt.Errorf("load .env: %w", err)
	}
	return LoadFile(filepath.Join("config", "config.json"))
}

// LoadFile is Load without the .env step, reading the JSON file at path if it exists.
func LoadFile(path string) (AppConfig, error) {
	v := viper.New()
	applyDefaults(v)

	for key, env := range keys {
		if err := v.BindEnv(key, env); err != nil {
			return AppConfig{}, err
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("json")
			if err := v.ReadInConfig(); err != nil {
				return AppConfig{}, fmt.Errorf("read %s: %w", path, err)
			}
		}
	}

	cfg := AppConfig{
		AppPort:            v.GetString("app.port"),
		AllowedOrigins:     stringList(v.Get("app.allowed_origins")),
		RateLimitPerMinute: v.GetInt("app.rate_limit_per_minute"),
		MaxUploadSizeMB:    v.GetInt("app.max_upload_size_mb"),
		StorageDriver:      strings.ToLower(strings.TrimSpace(v.GetString("storage.driver"))),
		UploadDir:          v.GetString("storage.upload_dir"),
		S3Bucket:           v.GetString("s3.bucket"),
		S3Region:           v.GetString("s3.region"),
		S3Endpoint:         v.GetString("s3.endpoint"),
		S3AccessKey:        v.GetString("s3.access_key"),
		S3SecretKey:        v.GetString("s3.secret_key"),
		S3Prefix:           v.GetString("s3.prefix"),
		DBDriver:           strings.ToLower(v.GetString("database.driver")),
		DatabaseURI:        v.GetString("database.uri"),
		GinMode:            v.GetString("gin.mode"),
		GinPath:            v.GetString("gin.path"),
		LogLevel:           v.GetString("log.level"),
		LogPath:            v.GetString("log.path"),
		LogMaxSizeMB:       v.GetInt("log.max_size_mb"),
		LogMaxBackups:      v.GetInt("log.max_backups"),
		LogMaxAgeDays:      v.GetInt("log.max_age_days"),
		LogCompress:        v.GetBool("log.compress"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// applyDefaults sets sane defaults for every key.
func applyDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "5000")
	v.SetDefault("app.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("app.rate_limit_per_minute", 0)
	v.SetDefault("app.max_upload_size_mb", 0)
	v.SetDefault("storage.driver", StorageLocal)
	v.SetDefault("storage.upload_dir", "uploads")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("gin.mode", "release")
	v.SetDefault("gin.path", "logs/go_gin.log")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 7)
}

func (c AppConfig) validate() error {
	switch c.StorageDriver {
	case StorageLocal:
		if strings.TrimSpace(c.UploadDir) == "" {
			return errors.New("UPLOAD_DIR must not be empty")
		}
	case StorageS3:
		if c.S3Bucket == "" {
			return errors.New("S3_BUCKET must be set when STORAGE_DRIVER=s3")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if len(c.AllowedOrigins) == 0 {
		return errors.New("ALLOWED_ORIGINS must list at least one origin")
	}
	for _, o := range c.AllowedOrigins {
		if o != "*" && !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			return fmt.Errorf("allowed origin %q must start with http:// or https://", o)
		}
	}
	if c.RateLimitPerMinute < 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must not be negative")
	}
	if c.MaxUploadSizeMB < 0 {
		return errors.New("MAX_UPLOAD_SIZE_MB must not be negative")
	}
	return nil
}

// stringList accepts a JSON array or a comma separated string (as set from the environment).
func stringList(raw any) []string {
	var items []string
	switch t := raw.(type) {
	case string:
		items = strings.Split(t, ",")
	case []string:
		items = t
	case []any:
		for _, it := range t {
			if s, ok := it.(string); ok {
				items = append(items, s)
			}
		}
	}
	res := make([]string, 0, len(items))
	for _, it := range items {
		if s := strings.TrimSpace(it); s != "" {
			res = append(res, s)
		}
	}
	return res
}
