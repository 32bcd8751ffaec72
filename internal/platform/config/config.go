package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// 環境変数による上書きのキーです。
const (
	EnvHTTPListenAddr   = "HRMS_HTTP_LISTEN_ADDR"
	EnvDatabaseHost     = "HRMS_DATABASE_HOST"
	EnvDatabasePassword = "HRMS_DATABASE_PASSWORD"
	EnvLogLevel         = "HRMS_LOG_LEVEL"
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	CORS     CORSConfig     `yaml:"cors"`
	Log      LogConfig      `yaml:"log"`
	Employee EmployeeConfig `yaml:"employee"`
}

// ServerConfig は HTTP / gRPC サーバーに関する設定です。
type ServerConfig struct {
	HTTPListenAddr     string        `yaml:"http_listen_addr"`
	GRPCListenAddr     string        `yaml:"grpc_listen_addr"`
	ShutdownTimeout    time.Duration `yaml:"-"`
	HealthInterval     time.Duration `yaml:"-"`
	SlowRequest        time.Duration `yaml:"-"`
	ShutdownTimeoutRaw string        `yaml:"shutdown_timeout"`
	HealthIntervalRaw  string        `yaml:"health_interval"`
	SlowRequestRaw     string        `yaml:"slow_request_threshold"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	SSLMode            string        `yaml:"ssl_mode"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
}

// CORSConfig はブラウザからのクロスオリジンアクセス設定です。
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// LogConfig はログ出力の設定です。
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// EmployeeConfig は社員ディレクトリの設定です。
type EmployeeConfig struct {
	AllowedEmailDomains []string `yaml:"allowed_email_domains"`
}

// Load は .env を読み込んだうえで指定されたパスから設定ファイルを読み込み、環境変数で上書きします。
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	cfg.applyEnv(os.LookupEnv)

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvHTTPListenAddr); ok && v != "" {
		c.Server.HTTPListenAddr = v
	}
	if v, ok := lookup(EnvDatabaseHost); ok && v != "" {
		c.Database.Host = v
	}
	if v, ok := lookup(EnvDatabasePassword); ok && v != "" {
		c.Database.Password = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
}

func (c *Config) validateAndNormalize() error {
	if err := c.Server.validateAndNormalize(); err != nil {
		return err
	}

	db := &c.Database
	if err := db.validateAndNormalize(); err != nil {
		return err
	}

	c.CORS.normalize()

	if err := c.Log.validateAndNormalize(); err != nil {
		return err
	}

	return nil
}

func (s *ServerConfig) validateAndNormalize() error {
	if s.HTTPListenAddr == "" {
		return fmt.Errorf("config: server.http_listen_addr must be set")
	}

	shutdown, err := parseDurationAllowEmpty(s.ShutdownTimeoutRaw)
	if err != nil {
		return fmt.Errorf("config: server.shutdown_timeout: %w", err)
	}
	if shutdown == 0 {
		shutdown = 10 * time.Second
	}
	s.ShutdownTimeout = shutdown

	interval, err := parseDurationAllowEmpty(s.HealthIntervalRaw)
	if err != nil {
		return fmt.Errorf("config: server.health_interval: %w", err)
	}
	if interval == 0 {
		interval = 15 * time.Second
	}
	s.HealthInterval = interval

	slow, err := parseDurationAllowEmpty(s.SlowRequestRaw)
	if err != nil {
		return fmt.Errorf("config: server.slow_request_threshold: %w", err)
	}
	if slow == 0 {
		slow = time.Second
	}
	s.SlowRequest = slow

	return nil
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

func (c *CORSConfig) normalize() {
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	}
}

func (l *LogConfig) validateAndNormalize() error {
	l.Level = strings.ToLower(strings.TrimSpace(l.Level))
	switch l.Level {
	case "":
		l.Level = "info"
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is not supported", l.Level)
	}

	l.Format = strings.ToLower(strings.TrimSpace(l.Format))
	switch l.Format {
	case "":
		l.Format = "json"
	case "json", "text":
	default:
		return fmt.Errorf("config: log.format %q is not supported", l.Format)
	}
	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// DSN は pgx 用の接続文字列を返します。認証情報は URL エスケープされます。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}
