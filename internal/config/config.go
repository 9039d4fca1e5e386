package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no explicit config path is given. It is optional.
const DefaultFile = "planningbee.yaml"

type Config struct {
	Port     string   `yaml:"port"`
	Log      Log      `yaml:"log"`
	Store    Store    `yaml:"store"`
	Delivery Delivery `yaml:"delivery"`
	Document Document `yaml:"document"`
}

type Log struct {
	// Level is a zap level name: debug, info, warn, error.
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

const (
	DriverMemory    = "memory"
	DriverSQLite    = "sqlite"
	DriverCouchbase = "couchbase"
)

type Store struct {
	Driver     string    `yaml:"driver"`
	SQLitePath string    `yaml:"sqlite_path"`
	Couchbase  Couchbase `yaml:"couchbase"`
}

type Couchbase struct {
	URL      string `yaml:"url"`
	Bucket   string `yaml:"bucket"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type Delivery struct {
	// URL of the email-sending function. Delivery is disabled when empty.
	URL      string `yaml:"url"`
	Subject  string `yaml:"subject"`
	Message  string `yaml:"message"`
	Filename string `yaml:"filename"`
}

type Document struct {
	ImageFetchTimeoutSec int  `yaml:"image_fetch_timeout_sec"`
	ImageConcurrency     int  `yaml:"image_concurrency"`
	Compress             bool `yaml:"compress"`
}

func Default() *Config {
	return &Config{
		Port: "8080",
		Log:  Log{Level: "info"},
		Store: Store{
			Driver:     DriverMemory,
			SQLitePath: "planningbee.db",
		},
		Delivery: Delivery{
			Subject:  "Your Planning Bee instructions",
			Message:  "Please find attached a copy of the instructions taken at your appointment.",
			Filename: "planning-bee-instructions.pdf",
		},
		Document: Document{
			ImageFetchTimeoutSec: 10,
			ImageConcurrency:     4,
			Compress:             true,
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path, a
// .env file in the working directory and finally the process environment.
// A missing file at DefaultFile is not an error; a missing explicit path is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("loading .env: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Port, "PORT")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setBool(&cfg.Log.Development, "LOG_DEVELOPMENT")
	setString(&cfg.Store.Driver, "STORE_DRIVER")
	setString(&cfg.Store.SQLitePath, "SQLITE_PATH")
	setString(&cfg.Store.Couchbase.URL, "CB_URL")
	setString(&cfg.Store.Couchbase.Bucket, "CB_BUCKET")
	setString(&cfg.Store.Couchbase.User, "CB_USER")
	setString(&cfg.Store.Couchbase.Password, "CB_PASS")
	setString(&cfg.Delivery.URL, "DELIVERY_URL")
	setString(&cfg.Delivery.Subject, "DELIVERY_SUBJECT")
	setInt(&cfg.Document.ImageFetchTimeoutSec, "IMAGE_FETCH_TIMEOUT_SEC")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("store.sqlite_path is required for the sqlite driver")
		}
	case DriverCouchbase:
		if c.Store.Couchbase.URL == "" || c.Store.Couchbase.Bucket == "" {
			return errors.New("store.couchbase.url and store.couchbase.bucket are required for the couchbase driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.Document.ImageConcurrency < 1 {
		c.Document.ImageConcurrency = 1
	}
	return nil
}
