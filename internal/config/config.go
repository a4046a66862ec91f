package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DatabaseConfig holds PostgreSQL database connection settings.
// The database backs the credential vault and is optional.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// Enabled reports whether enough settings exist to open a connection.
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// MinIOConfig holds object storage settings for MinIO or any S3-compatible endpoint.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// VaultConfig selects where webhook credentials come from.
type VaultConfig struct {
	Backend  string // env, postgres
	SecretID string
}

// TemporalConfig holds the workflow engine connection and the workflow the intake starts.
type TemporalConfig struct {
	HostPort           string
	Namespace          string
	TaskQueue          string
	WorkflowName       string
	ActivityTimeoutSec int
	MaxAttempts        int
}

// LLMConfig configures the generative analysis backend.
type LLMConfig struct {
	Provider        string // anthropic, gemini
	AnthropicAPIKey string
	AnthropicURL    string
	GeminiAPIKey    string
	Model           string // empty selects the provider default
	MaxTokens       int
	PromptChars     int
	PreviewChars    int
}

// StageConfig holds the per-stage error policies ("report" or "propagate").
type StageConfig struct {
	UploadsErrorPolicy   string
	ContractsErrorPolicy string
	AnalysisErrorPolicy  string
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string
	Format string // json, console
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables and an optional YAML file.
type AppConfig struct {
	Port     string
	Database DatabaseConfig
	MinIO    MinIOConfig
	Vault    VaultConfig
	Temporal TemporalConfig
	LLM      LLMConfig
	Stages   StageConfig
	Log      LogConfig
}

var defaults = map[string]any{
	"PORT":                          "8080",
	"DB_PORT":                       "5432",
	"DB_SSLMODE":                    "disable",
	"DB_MAX_OPEN_CONNS":             10,
	"DB_MAX_IDLE_CONNS":             5,
	"DB_CONN_MAX_LIFETIME_SEC":      300,
	"MINIO_USE_SSL":                 false,
	"VAULT_BACKEND":                 "env",
	"TEMPORAL_HOST_PORT":            "localhost:7233",
	"TEMPORAL_NAMESPACE":            "default",
	"TEMPORAL_TASK_QUEUE":           "docflow",
	"WORKFLOW_NAME":                 "ProcessDocument",
	"WORKFLOW_ACTIVITY_TIMEOUT_SEC": 300,
	"WORKFLOW_MAX_ATTEMPTS":         1,
	"LLM_PROVIDER":                  "anthropic",
	"LLM_MAX_TOKENS":                2000,
	"LLM_PROMPT_CHARS":              4000,
	"RESULT_PREVIEW_CHARS":          1000,
	"UPLOADS_ERROR_POLICY":          "propagate",
	"CONTRACTS_ERROR_POLICY":        "report",
	"ANALYSIS_ERROR_POLICY":         "report",
	"LOG_LEVEL":                     "info",
	"LOG_FORMAT":                    "json",
}

// Load reads configuration from environment variables and, when path is not
// empty, from a YAML file. Real environment variables take precedence.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
//
// Collaborator settings (bucket, secret id, workflow name) are not validated
// here; a missing value surfaces when the dependent call fails.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	bucket := v.GetString("DOCUMENT_BUCKET")
	if bucket == "" {
		bucket = v.GetString("MINIO_BUCKET")
	}

	return &AppConfig{
		Port: v.GetString("PORT"),
		Database: DatabaseConfig{
			Host:               v.GetString("DB_HOST"),
			Port:               v.GetString("DB_PORT"),
			User:               v.GetString("DB_USER"),
			Password:           v.GetString("DB_PASSWORD"),
			Name:               v.GetString("DB_NAME"),
			SSLMode:            v.GetString("DB_SSLMODE"),
			MaxOpenConns:       v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:       v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetimeSec: v.GetInt("DB_CONN_MAX_LIFETIME_SEC"),
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			Bucket:    bucket,
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
		},
		Vault: VaultConfig{
			Backend:  v.GetString("VAULT_BACKEND"),
			SecretID: v.GetString("SECRET_ID"),
		},
		Temporal: TemporalConfig{
			HostPort:           v.GetString("TEMPORAL_HOST_PORT"),
			Namespace:          v.GetString("TEMPORAL_NAMESPACE"),
			TaskQueue:          v.GetString("TEMPORAL_TASK_QUEUE"),
			WorkflowName:       v.GetString("WORKFLOW_NAME"),
			ActivityTimeoutSec: v.GetInt("WORKFLOW_ACTIVITY_TIMEOUT_SEC"),
			MaxAttempts:        v.GetInt("WORKFLOW_MAX_ATTEMPTS"),
		},
		LLM: LLMConfig{
			Provider:        v.GetString("LLM_PROVIDER"),
			AnthropicAPIKey: v.GetString("ANTHROPIC_API_KEY"),
			AnthropicURL:    v.GetString("ANTHROPIC_BASE_URL"),
			GeminiAPIKey:    v.GetString("GEMINI_API_KEY"),
			Model:           v.GetString("LLM_MODEL"),
			MaxTokens:       v.GetInt("LLM_MAX_TOKENS"),
			PromptChars:     v.GetInt("LLM_PROMPT_CHARS"),
			PreviewChars:    v.GetInt("RESULT_PREVIEW_CHARS"),
		},
		Stages: StageConfig{
			UploadsErrorPolicy:   v.GetString("UPLOADS_ERROR_POLICY"),
			ContractsErrorPolicy: v.GetString("CONTRACTS_ERROR_POLICY"),
			AnalysisErrorPolicy:  v.GetString("ANALYSIS_ERROR_POLICY"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}, nil
}

// InitLogger builds a zap logger from cfg and installs it as the global logger.
func InitLogger(cfg LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return logger, nil
}
