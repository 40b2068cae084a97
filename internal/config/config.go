package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/footylytics/matchseer/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	HTTPAddr       string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration

	CORSAllowedOrigins []string
	LogLevel           logging.Level

	DBEnabled               bool
	DBURL                   string
	DBDisablePreparedBinary bool

	HistoryCapacity int

	FootballAPIBaseURL            string
	FootballAPIKey                string
	FootballAPIHost               string
	FootballSeason                int
	FootballBookmaker             int
	FootballTimeout               time.Duration
	FootballMaxRetries            int
	FootballCircuitEnabled        bool
	FootballCircuitFailureCount   int
	FootballCircuitOpenTimeout    time.Duration
	FootballCircuitHalfOpenMaxReq int
	StandingsCacheTTL             time.Duration

	OpenAIAPIKey    string
	OpenAIModel     string
	OpenAIMaxTokens int
	OpenAITimeout   time.Duration

	AnalysisWorkers int

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration

	PprofEnabled bool
	PprofAddr    string
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	dbEnabled, err := strconv.ParseBool(getEnv("DB_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_ENABLED: %w", err)
	}
	dbURL := strings.TrimSpace(getEnv("DB_URL", ""))
	if dbEnabled && dbURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required when DB_ENABLED=true")
	}
	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	historyCapacity, err := getEnvAsInt("HISTORY_CAPACITY", 200)
	if err != nil {
		return Config{}, fmt.Errorf("parse HISTORY_CAPACITY: %w", err)
	}
	if historyCapacity < 1 {
		return Config{}, fmt.Errorf("HISTORY_CAPACITY must be >= 1")
	}

	footballAPIKey := strings.TrimSpace(getEnv("FOOTBALL_API_KEY", ""))
	if footballAPIKey == "" {
		return Config{}, fmt.Errorf("FOOTBALL_API_KEY is required")
	}
	footballSeason, err := getEnvAsInt("FOOTBALL_SEASON", 2024)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_SEASON: %w", err)
	}
	if footballSeason < 1 {
		return Config{}, fmt.Errorf("FOOTBALL_SEASON must be >= 1")
	}
	footballBookmaker, err := getEnvAsInt("FOOTBALL_BOOKMAKER_ID", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_BOOKMAKER_ID: %w", err)
	}
	if footballBookmaker < 1 {
		return Config{}, fmt.Errorf("FOOTBALL_BOOKMAKER_ID must be >= 1")
	}
	footballTimeout, err := time.ParseDuration(getEnv("FOOTBALL_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_TIMEOUT: %w", err)
	}
	if footballTimeout <= 0 {
		return Config{}, fmt.Errorf("FOOTBALL_TIMEOUT must be > 0")
	}
	footballMaxRetries, err := getEnvAsInt("FOOTBALL_MAX_RETRIES", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_MAX_RETRIES: %w", err)
	}
	if footballMaxRetries < 0 {
		return Config{}, fmt.Errorf("FOOTBALL_MAX_RETRIES must be >= 0")
	}
	footballCircuitEnabled, err := strconv.ParseBool(getEnv("FOOTBALL_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_CIRCUIT_ENABLED: %w", err)
	}
	footballCircuitFailureCount, err := getEnvAsInt("FOOTBALL_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if footballCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("FOOTBALL_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	footballCircuitOpenTimeout, err := time.ParseDuration(getEnv("FOOTBALL_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if footballCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("FOOTBALL_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	footballCircuitHalfOpenMaxReq, err := getEnvAsInt("FOOTBALL_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if footballCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("FOOTBALL_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}
	standingsCacheTTL, err := time.ParseDuration(getEnv("STANDINGS_CACHE_TTL", "10m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STANDINGS_CACHE_TTL: %w", err)
	}
	if standingsCacheTTL < 0 {
		return Config{}, fmt.Errorf("STANDINGS_CACHE_TTL must be >= 0")
	}

	openAIAPIKey := strings.TrimSpace(getEnv("OPENAI_API_KEY", ""))
	if openAIAPIKey == "" {
		return Config{}, fmt.Errorf("OPENAI_API_KEY is required")
	}
	openAIMaxTokens, err := getEnvAsInt("OPENAI_MAX_TOKENS", 300)
	if err != nil {
		return Config{}, fmt.Errorf("parse OPENAI_MAX_TOKENS: %w", err)
	}
	if openAIMaxTokens < 1 {
		return Config{}, fmt.Errorf("OPENAI_MAX_TOKENS must be >= 1")
	}
	openAITimeout, err := time.ParseDuration(getEnv("OPENAI_TIMEOUT", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse OPENAI_TIMEOUT: %w", err)
	}
	if openAITimeout <= 0 {
		return Config{}, fmt.Errorf("OPENAI_TIMEOUT must be > 0")
	}

	analysisWorkers, err := getEnvAsInt("ANALYSIS_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse ANALYSIS_WORKERS: %w", err)
	}
	if analysisWorkers < 1 {
		return Config{}, fmt.Errorf("ANALYSIS_WORKERS must be >= 1")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	cfg := Config{
		AppEnv:         appEnv,
		ServiceName:    getEnv("APP_SERVICE_NAME", "matchseer-api"),
		ServiceVersion: getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:       getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:           parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),

		DBEnabled:               dbEnabled,
		DBURL:                   dbURL,
		DBDisablePreparedBinary: dbDisablePreparedBinary,

		HistoryCapacity: historyCapacity,

		FootballAPIBaseURL:            strings.TrimSpace(getEnv("FOOTBALL_API_BASE_URL", "https://api-football-v1.p.rapidapi.com/v3")),
		FootballAPIKey:                footballAPIKey,
		FootballAPIHost:               strings.TrimSpace(getEnv("FOOTBALL_API_HOST", "api-football-v1.p.rapidapi.com")),
		FootballSeason:                footballSeason,
		FootballBookmaker:             footballBookmaker,
		FootballTimeout:               footballTimeout,
		FootballMaxRetries:            footballMaxRetries,
		FootballCircuitEnabled:        footballCircuitEnabled,
		FootballCircuitFailureCount:   footballCircuitFailureCount,
		FootballCircuitOpenTimeout:    footballCircuitOpenTimeout,
		FootballCircuitHalfOpenMaxReq: footballCircuitHalfOpenMaxReq,
		StandingsCacheTTL:             standingsCacheTTL,

		OpenAIAPIKey:    openAIAPIKey,
		OpenAIModel:     strings.TrimSpace(getEnv("OPENAI_MODEL", "gpt-4-turbo-preview")),
		OpenAIMaxTokens: openAIMaxTokens,
		OpenAITimeout:   openAITimeout,

		AnalysisWorkers: analysisWorkers,

		UptraceEnabled: uptraceEnabled,
		UptraceDSN:     uptraceDSN,

		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,

		PprofEnabled: pprofEnabled,
		PprofAddr:    pprofAddr,
	}

	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	return cfg, nil
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}
