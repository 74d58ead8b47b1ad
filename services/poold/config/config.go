package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"vusdpool/native/pool"
	"vusdpool/observability/logging"
	telemetry "vusdpool/observability/otel"
	"vusdpool/storage/sqldb"
)

const (
	defaultListen        = ":50053"
	defaultMetricsListen = ":9107"
	defaultDataDir       = "data"
	defaultRateLimit     = 600
	defaultMaxConns      = 256

	JournalLevelDB = "leveldb"
	JournalBolt    = "bolt"
	JournalMemory  = "memory"
)

// Config captures the runtime settings for the pool daemon.
type Config struct {
	ListenAddress        string           `yaml:"listen"`
	MetricsListenAddress string           `yaml:"metrics_listen"`
	Environment          string           `yaml:"env"`
	DataDir              string           `yaml:"data_dir"`
	MaxConnections       int              `yaml:"max_connections"`
	RateLimitPerMin      int              `yaml:"rate_limit_per_min"`
	Journal              JournalConfig    `yaml:"journal"`
	Database             DatabaseConfig   `yaml:"database"`
	TLS                  TLSConfig        `yaml:"tls"`
	Auth                 AuthConfig       `yaml:"auth"`
	Identity             IdentityConfig   `yaml:"identity"`
	Logging              LoggingConfig    `yaml:"logging"`
	Telemetry            telemetry.Config `yaml:"telemetry"`
	Settlement           SettlementConfig `yaml:"settlement"`
	Pool                 pool.Config      `yaml:"pool"`
}

// JournalConfig selects the KV store that persists ledger snapshots.
type JournalConfig struct {
	Backend string `yaml:"backend"`
	// Path defaults to <data_dir>/journal.
	Path string `yaml:"path"`
}

// DatabaseConfig points at the relational store for the registries and the
// settlement outbox.
type DatabaseConfig struct {
	Driver          string        `yaml:"driver"`
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	LogQueries      bool          `yaml:"log_queries"`
}

// TLSConfig describes the TLS material for the gRPC server.
type TLSConfig struct {
	CertPath      string `yaml:"cert"`
	KeyPath       string `yaml:"key"`
	ClientCAPath  string `yaml:"client_ca"`
	AllowInsecure bool   `yaml:"allow_insecure"`
}

// AuthConfig lists the authenticators accepted by the service.
type AuthConfig struct {
	APITokens []string       `yaml:"api_tokens"`
	MTLS      MTLSAuthConfig `yaml:"mtls"`
	JWT       JWTConfig      `yaml:"jwt"`
}

// MTLSAuthConfig enumerates the allowed client certificate identities.
type MTLSAuthConfig struct {
	AllowedCommonNames []string `yaml:"allowed_common_names"`
}

// JWTConfig enables HS256 bearer tokens. SecretEnv names an environment
// variable that overrides Secret.
type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	SecretEnv  string        `yaml:"secret_env"`
	Issuer     string        `yaml:"issuer"`
	Audience   string        `yaml:"audience"`
	ScopeClaim string        `yaml:"scope_claim"`
	Leeway     time.Duration `yaml:"leeway"`
}

// IdentityConfig controls account id canonicalisation.
type IdentityConfig struct {
	AddressFormat string `yaml:"address_format"`
	Bech32HRP     string `yaml:"bech32_hrp"`
}

// LoggingConfig mirrors logging.Options.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Options converts the section for logging.SetupWithOptions.
func (c LoggingConfig) Options() logging.Options {
	return logging.Options{
		Level:      c.Level,
		File:       c.File,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// SettlementConfig tunes the outbox dispatcher.
type SettlementConfig struct {
	Interval    time.Duration `yaml:"interval"`
	MaxAttempts int           `yaml:"max_attempts"`
	BatchSize   int           `yaml:"batch_size"`
}

// LogAttrs summarises the effective configuration for the startup log.
// Credentials go through logging.MaskField.
func (c Config) LogAttrs() []any {
	return []any{
		slog.String("listen", c.ListenAddress),
		slog.String("metrics_listen", c.MetricsListenAddress),
		slog.String("env", c.Environment),
		slog.String("journal", c.Journal.Backend),
		slog.String("database_driver", c.Database.Driver),
		logging.MaskField("database_dsn", c.Database.DSN),
		logging.MaskField("jwt_secret", c.Auth.JWT.Secret),
		slog.Int("api_tokens", len(c.Auth.APITokens)),
		slog.Bool("tls", c.TLS.CertPath != ""),
	}
}

// Load reads the YAML configuration from disk and validates the result.
func Load(path string) (Config, error) {
	cfg := Config{
		ListenAddress: defaultListen,
		Pool:          pool.DefaultConfig(),
	}
	if path == "" {
		return cfg, fmt.Errorf("config path required")
	}
	file, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg *Config) normalize() {
	if cfg == nil {
		return
	}
	cfg.ListenAddress = strings.TrimSpace(cfg.ListenAddress)
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = defaultListen
	}
	cfg.MetricsListenAddress = strings.TrimSpace(cfg.MetricsListenAddress)
	if cfg.MetricsListenAddress == "" {
		cfg.MetricsListenAddress = defaultMetricsListen
	}
	cfg.Environment = strings.ToLower(strings.TrimSpace(cfg.Environment))
	if env := strings.TrimSpace(os.Getenv("VUSD_ENV")); env != "" {
		cfg.Environment = strings.ToLower(env)
	}
	cfg.DataDir = strings.TrimSpace(cfg.DataDir)
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir
	}
	if cfg.MaxConnections == 0 {
		cfg.MaxConnections = defaultMaxConns
	}
	if cfg.RateLimitPerMin == 0 {
		cfg.RateLimitPerMin = defaultRateLimit
	}
	cfg.Journal.normalize(cfg.DataDir)
	cfg.Database.normalize(cfg.DataDir)
	cfg.TLS.normalize()
	cfg.Auth.normalize()
	cfg.Identity.AddressFormat = strings.ToLower(strings.TrimSpace(cfg.Identity.AddressFormat))
	cfg.Identity.Bech32HRP = strings.ToLower(strings.TrimSpace(cfg.Identity.Bech32HRP))
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Logging.File = strings.TrimSpace(cfg.Logging.File)
	cfg.Telemetry.Endpoint = strings.TrimSpace(cfg.Telemetry.Endpoint)
	cfg.Pool.GateEvent = strings.TrimSpace(cfg.Pool.GateEvent)
}

func (cfg *Config) validate() error {
	if cfg == nil {
		return fmt.Errorf("configuration is missing")
	}
	if cfg.MaxConnections < 0 {
		return fmt.Errorf("max_connections must not be negative")
	}
	if cfg.RateLimitPerMin < 0 {
		return fmt.Errorf("rate_limit_per_min must not be negative")
	}
	if err := cfg.Journal.validate(); err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	if err := cfg.Database.validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := cfg.TLS.validate(); err != nil {
		return fmt.Errorf("tls: %w", err)
	}
	if err := cfg.Auth.validate(cfg.TLS); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	switch cfg.Identity.AddressFormat {
	case "", "any", "hex":
		if cfg.Identity.Bech32HRP != "" {
			return fmt.Errorf("identity: bech32_hrp requires address_format bech32")
		}
	case "bech32":
		if cfg.Identity.Bech32HRP == "" {
			return fmt.Errorf("identity: bech32_hrp required for bech32 addresses")
		}
	default:
		return fmt.Errorf("identity: unknown address_format %q", cfg.Identity.AddressFormat)
	}
	if _, err := logging.ParseLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if cfg.Settlement.Interval < 0 || cfg.Settlement.MaxAttempts < 0 || cfg.Settlement.BatchSize < 0 {
		return fmt.Errorf("settlement: interval, max_attempts and batch_size must not be negative")
	}
	if err := cfg.Pool.Validate(); err != nil {
		return fmt.Errorf("pool: %w", err)
	}
	return nil
}

func (cfg *JournalConfig) normalize(dataDir string) {
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	if cfg.Backend == "" {
		cfg.Backend = JournalLevelDB
	}
	cfg.Path = strings.TrimSpace(cfg.Path)
	if cfg.Path == "" && cfg.Backend != JournalMemory {
		name := "journal"
		if cfg.Backend == JournalBolt {
			name = "journal.bolt"
		}
		cfg.Path = filepath.Join(dataDir, name)
	}
}

func (cfg JournalConfig) validate() error {
	switch cfg.Backend {
	case JournalLevelDB, JournalBolt, JournalMemory:
		return nil
	default:
		return fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func (cfg *DatabaseConfig) normalize(dataDir string) {
	cfg.Driver = strings.ToLower(strings.TrimSpace(cfg.Driver))
	if cfg.Driver == "" {
		cfg.Driver = sqldb.DriverSQLite
	}
	cfg.DSN = strings.TrimSpace(cfg.DSN)
	if cfg.DSN == "" && cfg.Driver == sqldb.DriverSQLite {
		cfg.DSN = "file:" + filepath.Join(dataDir, "poold.db") + "?_pragma=busy_timeout(5000)"
	}
}

func (cfg DatabaseConfig) validate() error {
	switch cfg.Driver {
	case sqldb.DriverSQLite, sqldb.DriverPostgres:
	default:
		return fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
	if cfg.DSN == "" {
		return fmt.Errorf("dsn required for %s", cfg.Driver)
	}
	if cfg.MaxOpenConns < 0 || cfg.MaxIdleConns < 0 {
		return fmt.Errorf("connection limits must not be negative")
	}
	return nil
}

// Options converts the section for sqldb.Open.
func (cfg DatabaseConfig) Options() sqldb.Options {
	return sqldb.Options{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		LogQueries:      cfg.LogQueries,
	}
}

func (cfg *TLSConfig) normalize() {
	if cfg == nil {
		return
	}
	cfg.CertPath = strings.TrimSpace(cfg.CertPath)
	cfg.KeyPath = strings.TrimSpace(cfg.KeyPath)
	cfg.ClientCAPath = strings.TrimSpace(cfg.ClientCAPath)
}

func (cfg TLSConfig) validate() error {
	hasCert := cfg.CertPath != ""
	hasKey := cfg.KeyPath != ""
	if hasCert != hasKey {
		return fmt.Errorf("cert and key must either both be provided or both be empty")
	}
	if !cfg.AllowInsecure && !hasCert {
		return fmt.Errorf("cert and key are required unless allow_insecure=true")
	}
	if cfg.ClientCAPath != "" && !hasCert {
		return fmt.Errorf("client_ca requires a server certificate and key")
	}
	return nil
}

func (cfg *AuthConfig) normalize() {
	if cfg == nil {
		return
	}
	cfg.APITokens = trimAll(cfg.APITokens)
	cfg.MTLS.AllowedCommonNames = trimAll(cfg.MTLS.AllowedCommonNames)
	cfg.JWT.Secret = strings.TrimSpace(cfg.JWT.Secret)
	if name := strings.TrimSpace(cfg.JWT.SecretEnv); name != "" {
		if secret := strings.TrimSpace(os.Getenv(name)); secret != "" {
			cfg.JWT.Secret = secret
		}
	}
	cfg.JWT.Issuer = strings.TrimSpace(cfg.JWT.Issuer)
	cfg.JWT.Audience = strings.TrimSpace(cfg.JWT.Audience)
	cfg.JWT.ScopeClaim = strings.TrimSpace(cfg.JWT.ScopeClaim)
}

func (cfg AuthConfig) validate(tls TLSConfig) error {
	hasTokens := len(cfg.APITokens) > 0
	hasMTLS := len(cfg.MTLS.AllowedCommonNames) > 0
	hasJWT := cfg.JWT.Secret != ""
	if !hasTokens && !hasMTLS && !hasJWT {
		return fmt.Errorf("at least one api token, jwt secret or mTLS common name must be configured")
	}
	if hasMTLS && strings.TrimSpace(tls.ClientCAPath) == "" {
		return fmt.Errorf("mtls.allowed_common_names requires tls.client_ca to be configured")
	}
	if hasJWT && len(cfg.JWT.Secret) < 32 {
		return fmt.Errorf("jwt.secret must be at least 32 bytes")
	}
	if cfg.JWT.Leeway < 0 {
		return fmt.Errorf("jwt.leeway must not be negative")
	}
	return nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
