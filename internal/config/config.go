package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Log       LogConfig
	CORS      CORSConfig
	Auth      AuthConfig
	S3        S3Config
	Enrich    EnrichConfig
	Embedding EmbeddingConfig
	Extract   ExtractConfig
	Vector    VectorConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
	MaxUploadMB  int64         `mapstructure:"max_upload_mb"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AuthConfig holds API access settings. An empty APIKey disables auth.
type AuthConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// S3Config holds settings for best-effort archival of uploaded source
// documents. An empty bucket disables archival.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// Enabled reports whether source archival is configured.
func (s *S3Config) Enabled() bool {
	return s.Bucket != ""
}

// EnrichProviderConfig holds settings for a single LLM enrichment provider.
type EnrichProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// EnrichConfig holds LLM enrichment settings with primary/secondary fallback.
type EnrichConfig struct {
	Primary   EnrichProviderConfig `mapstructure:"primary"`
	Secondary EnrichProviderConfig `mapstructure:"secondary"`
	MaxChars  int                  `mapstructure:"max_chars"`
}

// PrimaryConfig returns the primary provider config, or nil if not configured.
func (e *EnrichConfig) PrimaryConfig() *EnrichProviderConfig {
	if e.Primary.Provider != "" {
		return &e.Primary
	}
	return nil
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (e *EnrichConfig) SecondaryConfig() *EnrichProviderConfig {
	if e.Secondary.Provider != "" {
		return &e.Secondary
	}
	return nil
}

// EmbeddingConfig holds text embedding settings for the vector store.
type EmbeddingConfig struct {
	Provider   string `mapstructure:"provider"`
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	Dimensions int    `mapstructure:"dimensions"`
}

// ExtractConfig holds heuristic extraction settings.
type ExtractConfig struct {
	// HeaderScanRows is how many leading rows of a sheet are examined for a
	// header candidate.
	HeaderScanRows int `mapstructure:"header_scan_rows"`
	// MinObjectives is the structured-pass yield below which the fallback
	// extractor runs.
	MinObjectives int `mapstructure:"min_objectives"`
	// DefaultDepartments is substituted when extraction discovers no
	// departments at all.
	DefaultDepartments []string `mapstructure:"default_departments"`
}

// VectorConfig holds vector store indexing settings.
type VectorConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	ChunkSize    int  `mapstructure:"chunk_size"`
	ChunkOverlap int  `mapstructure:"chunk_overlap"`
}

// DefaultDepartments is the built-in fallback department list, taken from the
// RCM layouts this tool was first built against.
var DefaultDepartments = []string{
	"Employee Master Maintenance",
	"Attendance & Payroll Processing",
	"Payroll and Personnel",
	"Leave Management",
	"Separation",
}

// Load reads configuration from environment variables with the RCMAN_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RCMAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.max_upload_mb", 25)

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "rcman")
	v.SetDefault("db.password", "rcman_secret")
	v.SetDefault("db.name", "rcman_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Auth defaults
	v.SetDefault("auth.api_key", "")

	// S3 defaults (archival disabled unless a bucket is set)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Enrichment defaults
	v.SetDefault("enrich.primary.provider", "")
	v.SetDefault("enrich.primary.api_key", "")
	v.SetDefault("enrich.primary.default_model", "")
	v.SetDefault("enrich.primary.timeout_secs", 120)
	v.SetDefault("enrich.secondary.provider", "")
	v.SetDefault("enrich.secondary.api_key", "")
	v.SetDefault("enrich.secondary.default_model", "")
	v.SetDefault("enrich.secondary.timeout_secs", 120)
	v.SetDefault("enrich.max_chars", 30000)

	// Embedding defaults
	v.SetDefault("embedding.provider", "")
	v.SetDefault("embedding.api_key", "")
	v.SetDefault("embedding.model", "text-embedding-004")
	v.SetDefault("embedding.dimensions", 768)

	// Extraction defaults
	v.SetDefault("extract.header_scan_rows", 10)
	v.SetDefault("extract.min_objectives", 5)
	v.SetDefault("extract.default_departments", strings.Join(DefaultDepartments, ","))

	// Vector store defaults
	v.SetDefault("vector.enabled", false)
	v.SetDefault("vector.chunk_size", 1000)
	v.SetDefault("vector.chunk_overlap", 100)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                    "RCMAN_SERVER_PORT",
		"server.read_timeout":            "RCMAN_SERVER_READ_TIMEOUT",
		"server.write_timeout":           "RCMAN_SERVER_WRITE_TIMEOUT",
		"server.environment":             "RCMAN_SERVER_ENVIRONMENT",
		"server.max_upload_mb":           "RCMAN_SERVER_MAX_UPLOAD_MB",
		"db.host":                        "RCMAN_DB_HOST",
		"db.port":                        "RCMAN_DB_PORT",
		"db.user":                        "RCMAN_DB_USER",
		"db.password":                    "RCMAN_DB_PASSWORD",
		"db.name":                        "RCMAN_DB_NAME",
		"db.sslmode":                     "RCMAN_DB_SSLMODE",
		"db.max_open":                    "RCMAN_DB_MAX_OPEN",
		"db.max_idle":                    "RCMAN_DB_MAX_IDLE",
		"log.level":                      "RCMAN_LOG_LEVEL",
		"log.format":                     "RCMAN_LOG_FORMAT",
		"cors.allowed_origins":           "RCMAN_CORS_ALLOWED_ORIGINS",
		"auth.api_key":                   "RCMAN_AUTH_API_KEY",
		"s3.region":                      "RCMAN_S3_REGION",
		"s3.bucket":                      "RCMAN_S3_BUCKET",
		"s3.endpoint":                    "RCMAN_S3_ENDPOINT",
		"s3.access_key":                  "RCMAN_S3_ACCESS_KEY",
		"s3.secret_key":                  "RCMAN_S3_SECRET_KEY",
		"s3.presign_expiry":              "RCMAN_S3_PRESIGN_EXPIRY",
		"enrich.primary.provider":        "RCMAN_ENRICH_PRIMARY_PROVIDER",
		"enrich.primary.api_key":         "RCMAN_ENRICH_PRIMARY_API_KEY",
		"enrich.primary.default_model":   "RCMAN_ENRICH_PRIMARY_DEFAULT_MODEL",
		"enrich.primary.timeout_secs":    "RCMAN_ENRICH_PRIMARY_TIMEOUT_SECS",
		"enrich.secondary.provider":      "RCMAN_ENRICH_SECONDARY_PROVIDER",
		"enrich.secondary.api_key":       "RCMAN_ENRICH_SECONDARY_API_KEY",
		"enrich.secondary.default_model": "RCMAN_ENRICH_SECONDARY_DEFAULT_MODEL",
		"enrich.secondary.timeout_secs":  "RCMAN_ENRICH_SECONDARY_TIMEOUT_SECS",
		"enrich.max_chars":               "RCMAN_ENRICH_MAX_CHARS",
		"embedding.provider":             "RCMAN_EMBEDDING_PROVIDER",
		"embedding.api_key":              "RCMAN_EMBEDDING_API_KEY",
		"embedding.model":                "RCMAN_EMBEDDING_MODEL",
		"embedding.dimensions":           "RCMAN_EMBEDDING_DIMENSIONS",
		"extract.header_scan_rows":       "RCMAN_EXTRACT_HEADER_SCAN_ROWS",
		"extract.min_objectives":         "RCMAN_EXTRACT_MIN_OBJECTIVES",
		"extract.default_departments":    "RCMAN_EXTRACT_DEFAULT_DEPARTMENTS",
		"vector.enabled":                 "RCMAN_VECTOR_ENABLED",
		"vector.chunk_size":              "RCMAN_VECTOR_CHUNK_SIZE",
		"vector.chunk_overlap":           "RCMAN_VECTOR_CHUNK_OVERLAP",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if RCMAN_SERVER_PORT
	// is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("RCMAN_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
		MaxUploadMB:  v.GetInt64("server.max_upload_mb"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitTrimmed(v.GetString("cors.allowed_origins")),
	}
	cfg.Auth = AuthConfig{
		APIKey: v.GetString("auth.api_key"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Enrich = EnrichConfig{
		Primary: EnrichProviderConfig{
			Provider:     v.GetString("enrich.primary.provider"),
			APIKey:       v.GetString("enrich.primary.api_key"),
			DefaultModel: v.GetString("enrich.primary.default_model"),
			TimeoutSecs:  v.GetInt("enrich.primary.timeout_secs"),
		},
		Secondary: EnrichProviderConfig{
			Provider:     v.GetString("enrich.secondary.provider"),
			APIKey:       v.GetString("enrich.secondary.api_key"),
			DefaultModel: v.GetString("enrich.secondary.default_model"),
			TimeoutSecs:  v.GetInt("enrich.secondary.timeout_secs"),
		},
		MaxChars: v.GetInt("enrich.max_chars"),
	}
	cfg.Embedding = EmbeddingConfig{
		Provider:   v.GetString("embedding.provider"),
		APIKey:     v.GetString("embedding.api_key"),
		Model:      v.GetString("embedding.model"),
		Dimensions: v.GetInt("embedding.dimensions"),
	}
	cfg.Extract = ExtractConfig{
		HeaderScanRows:     v.GetInt("extract.header_scan_rows"),
		MinObjectives:      v.GetInt("extract.min_objectives"),
		DefaultDepartments: splitTrimmed(v.GetString("extract.default_departments")),
	}
	cfg.Vector = VectorConfig{
		Enabled:      v.GetBool("vector.enabled"),
		ChunkSize:    v.GetInt("vector.chunk_size"),
		ChunkOverlap: v.GetInt("vector.chunk_overlap"),
	}

	return cfg, nil
}

// splitTrimmed splits a comma-separated string, trimming whitespace and
// dropping empty entries.
func splitTrimmed(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
