// Package config loads the server configuration. Values are layered:
// defaults, then an optional .env file, then an optional YAML file, then
// environment variables, then command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"

	DriverPQ  = "postgres"
	DriverPGX = "pgx"
)

type Config struct {
	HTTPAddr        string        `yaml:"http_addr"`
	H2C             bool          `yaml:"h2c"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	StoreDriver string `yaml:"store_driver"`

	DBDriver    string `yaml:"db_driver"`
	DBHost      string `yaml:"db_host"`
	DBPort      int    `yaml:"db_port"`
	DBUser      string `yaml:"db_user"`
	DBPassword  string `yaml:"db_password"`
	DBName      string `yaml:"db_name"`
	DatabaseDSN string `yaml:"database_dsn"`
	Migrate     bool   `yaml:"migrate"`

	MongoURI      string `yaml:"mongodb_uri"`
	MongoDatabase string `yaml:"mongodb_database"`

	JWTSecret  string `yaml:"jwt_secret"`
	BcryptCost int    `yaml:"bcrypt_cost"`

	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns development defaults. JWTSecret is deliberately empty.
func Default() *Config {
	return &Config{
		HTTPAddr:           ":8080",
		ShutdownTimeout:    10 * time.Second,
		StoreDriver:        StorePostgres,
		DBDriver:           DriverPQ,
		DBHost:             "localhost",
		DBPort:             5432,
		DBUser:             "postgres",
		DBName:             "goals",
		Migrate:            true,
		MongoURI:           "mongodb://localhost:27017",
		MongoDatabase:      "goals",
		BcryptCost:         10,
		CORSAllowedOrigins: []string{"*"},
		LogLevel:           "info",
		LogFormat:          "text",
	}
}

// Load builds the configuration from args (without the program name) and
// the process environment.
func Load(args []string) (*Config, error) {
	set, fl := newFlagSet()
	if err := set.Parse(args); err != nil {
		return nil, err
	}

	cfg := Default()

	if err := loadEnvFile(fl.envFile); err != nil {
		return nil, err
	}

	file := fl.configFile
	if file == "" {
		file = os.Getenv("CONFIG_FILE")
	}
	if file != "" {
		if err := cfg.loadYAML(file); err != nil {
			return nil, err
		}
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}

	fl.apply(set, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.StoreDriver {
	case StoreMemory, StorePostgres, StoreMongo:
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.StoreDriver))
	}
	switch c.DBDriver {
	case DriverPQ, DriverPGX:
	default:
		errs = append(errs, fmt.Errorf("unknown db driver %q", c.DBDriver))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", c.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown timeout must be positive"))
	}

	return errors.Join(errs...)
}

// ConnString returns DatabaseDSN when set, otherwise a keyword/value DSN
// built from the DB_* fields. Both lib/pq and pgx accept it.
func (c *Config) ConnString() string {
	if c.DatabaseDSN != "" {
		return c.DatabaseDSN
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}

func loadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadYAML(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	var errs []error

	envString("HTTP_ADDR", &c.HTTPAddr)
	errs = append(errs, envBool("HTTP_H2C", &c.H2C))
	errs = append(errs, envDuration("SHUTDOWN_TIMEOUT", &c.ShutdownTimeout))

	envString("STORE_DRIVER", &c.StoreDriver)
	envString("DB_DRIVER", &c.DBDriver)
	envString("DB_HOST", &c.DBHost)
	errs = append(errs, envInt("DB_PORT", &c.DBPort))
	envString("DB_USER", &c.DBUser)
	envString("DB_PASSWORD", &c.DBPassword)
	envString("DB_NAME", &c.DBName)
	envString("DATABASE_DSN", &c.DatabaseDSN)
	errs = append(errs, envBool("DB_MIGRATE", &c.Migrate))

	envString("MONGODB_URI", &c.MongoURI)
	envString("MONGODB_DATABASE", &c.MongoDatabase)

	envString("JWT_SECRET", &c.JWTSecret)
	errs = append(errs, envInt("BCRYPT_COST", &c.BcryptCost))

	if v, ok := os.LookupEnv("CORS_ALLOWED_ORIGINS"); ok {
		c.CORSAllowedOrigins = splitList(v)
	}

	envString("LOG_LEVEL", &c.LogLevel)
	envString("LOG_FORMAT", &c.LogFormat)

	return errors.Join(errs...)
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = strings.TrimSpace(v)
	}
}

func envInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func envBool(key string, dst *bool) error {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func envDuration(key string, dst *time.Duration) error {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type flagValues struct {
	configFile string
	envFile    string

	httpAddr    string
	h2c         bool
	storeDriver string
	dbDriver    string
	dsn         string
	migrate     bool
	mongoURI    string
	logLevel    string
	logFormat   string
}

func newFlagSet() (*pflag.FlagSet, *flagValues) {
	fl := &flagValues{}
	set := pflag.NewFlagSet("goal-tracker", pflag.ContinueOnError)

	set.StringVarP(&fl.configFile, "config", "c", "", "path to YAML config file")
	set.StringVar(&fl.envFile, "env-file", "", "path to .env file (default .env, optional)")
	set.StringVarP(&fl.httpAddr, "addr", "a", "", "HTTP listen address")
	set.BoolVar(&fl.h2c, "h2c", false, "serve HTTP/2 without TLS")
	set.StringVar(&fl.storeDriver, "store", "", "goal store: postgres, mongo or memory")
	set.StringVar(&fl.dbDriver, "db-driver", "", "SQL driver: postgres (lib/pq) or pgx")
	set.StringVarP(&fl.dsn, "dsn", "d", "", "PostgreSQL DSN")
	set.BoolVar(&fl.migrate, "migrate", true, "run database migrations at startup")
	set.StringVar(&fl.mongoURI, "mongodb-uri", "", "MongoDB connection URI")
	set.StringVar(&fl.logLevel, "log-level", "", "log level: debug, info, warn, error")
	set.StringVar(&fl.logFormat, "log-format", "", "log format: text or json")

	return set, fl
}

// apply copies only the flags the user actually set.
func (fl *flagValues) apply(set *pflag.FlagSet, c *Config) {
	if set.Changed("addr") {
		c.HTTPAddr = fl.httpAddr
	}
	if set.Changed("h2c") {
		c.H2C = fl.h2c
	}
	if set.Changed("store") {
		c.StoreDriver = fl.storeDriver
	}
	if set.Changed("db-driver") {
		c.DBDriver = fl.dbDriver
	}
	if set.Changed("dsn") {
		c.DatabaseDSN = fl.dsn
	}
	if set.Changed("migrate") {
		c.Migrate = fl.migrate
	}
	if set.Changed("mongodb-uri") {
		c.MongoURI = fl.mongoURI
	}
	if set.Changed("log-level") {
		c.LogLevel = fl.logLevel
	}
	if set.Changed("log-format") {
		c.LogFormat = fl.logFormat
	}
}
