package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"coleta/internal/api"
	"coleta/internal/location"
	"coleta/internal/logging"
	"coleta/internal/model"
	"coleta/internal/upload"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds CLI configuration.
type Config struct {
	ConfigDir     string
	APIURL        string
	DBPath        string
	Location      *model.Coordinate
	IPLocate      bool
	IPLookupURL   string
	Log           logging.Options
	FallbackItems []int64
	UploadDir     string
	UploadBaseURL string
	Minio         upload.MinioConfig

	// explicit records keys set by a flag, the environment or a config file.
	explicit map[string]bool
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	flags.String("api-url", api.DefaultBaseURL, "Base URL of the collection-point API")
	flags.String("db", "", "Path to SQLite database file (default: ~/.coleta/coleta.db)")
	flags.Float64("lat", 0, "Fixed latitude used instead of location lookup")
	flags.Float64("lon", 0, "Fixed longitude used instead of location lookup")
	flags.Bool("ip-locate", false, "Approximate the location from the public IP address")
	flags.String("ip-url", location.DefaultIPLookupURL, "IP geolocation endpoint")
	flags.String("log-file", "", "Log file (default: ~/.coleta/coleta.log)")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.String("log-format", "text", "Log format: text or json")
	flags.String("fallback-items", "", "Comma-separated item ids queried when nothing is selected")
	flags.String("upload-dir", "", "Directory for uploaded photos (default: ~/.coleta/uploads)")
	flags.String("upload-base-url", "", "Public base URL of the upload directory")
	flags.String("minio-endpoint", "", "S3-compatible endpoint; enables bucket uploads")
	flags.String("minio-access-key", "", "Bucket access key")
	flags.String("minio-secret-key", "", "Bucket secret key")
	flags.String("minio-bucket", "uploads", "Bucket for uploaded photos")
	flags.String("minio-region", "", "Bucket region")
	flags.Bool("minio-ssl", false, "Use TLS for the bucket endpoint")
	return v.BindPFlags(flags)
}

// loadDotEnv loads .env files. Variables already set in the environment win.
func loadDotEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

func defaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".coleta"), nil
}

// loadConfig resolves configuration from flags, COLETA_* variables and an
// optional config.yml, in that order of precedence.
func loadConfig(v *viper.Viper) (*Config, error) {
	configDir, err := defaultConfigDir()
	if err != nil {
		return nil, err
	}

	v.SetEnvPrefix("COLETA")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(".")
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	fallback, err := parseItemIDs(v.GetString("fallback-items"))
	if err != nil {
		return nil, err
	}

	config := &Config{
		ConfigDir:   configDir,
		APIURL:      strings.TrimSpace(v.GetString("api-url")),
		DBPath:      v.GetString("db"),
		IPLocate:    v.GetBool("ip-locate"),
		IPLookupURL: v.GetString("ip-url"),
		Log: logging.Options{
			Path:   v.GetString("log-file"),
			Level:  v.GetString("log-level"),
			Format: v.GetString("log-format"),
		},
		FallbackItems: fallback,
		UploadDir:     v.GetString("upload-dir"),
		UploadBaseURL: v.GetString("upload-base-url"),
		Minio: upload.MinioConfig{
			Endpoint:  v.GetString("minio-endpoint"),
			AccessKey: v.GetString("minio-access-key"),
			SecretKey: v.GetString("minio-secret-key"),
			Bucket:    v.GetString("minio-bucket"),
			Region:    v.GetString("minio-region"),
			UseSSL:    v.GetBool("minio-ssl"),
		},
		explicit: map[string]bool{
			"api-url":   v.IsSet("api-url"),
			"ip-locate": v.IsSet("ip-locate"),
		},
	}

	if v.IsSet("lat") || v.IsSet("lon") {
		c := model.Coordinate{Latitude: v.GetFloat64("lat"), Longitude: v.GetFloat64("lon")}
		if !c.Resolved() {
			return nil, fmt.Errorf("lat/lon %.5f,%.5f is not a usable location", c.Latitude, c.Longitude)
		}
		config.Location = &c
	}

	if config.DBPath == "" {
		config.DBPath = filepath.Join(configDir, "coleta.db")
	}
	if config.Log.Path == "" {
		config.Log.Path = filepath.Join(configDir, "coleta.log")
	}
	if config.UploadDir == "" {
		config.UploadDir = filepath.Join(configDir, "uploads")
	}

	return config, nil
}

// applyOnboarding fills in the answers of the first-run setup where no
// explicit setting overrides them.
func (c *Config) applyOnboarding(settings OnboardingSettings) {
	if !c.explicit["ip-locate"] {
		c.IPLocate = settings.IPLocate
	}
	if !c.explicit["api-url"] && strings.TrimSpace(settings.APIURL) != "" {
		c.APIURL = strings.TrimSpace(settings.APIURL)
	}
}

// locationSource picks how the position is acquired: a fixed coordinate,
// an IP lookup, or none.
func (c *Config) locationSource() location.Source {
	switch {
	case c.Location != nil:
		return location.Fixed(*c.Location)
	case c.IPLocate:
		return location.NewIPLookup(c.IPLookupURL)
	default:
		return location.Unavailable{}
	}
}

func parseItemIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid item id %q in fallback-items", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
