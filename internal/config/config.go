package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/cricket-analytics/internal/platform/logging"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config stores runtime configuration for the service and the operator CLI.
type Config struct {
	AppEnv                        string
	ServiceName                   string
	ServiceVersion                string
	HTTPAddr                      string
	ReadTimeout                   time.Duration
	WriteTimeout                  time.Duration
	CORSAllowedOrigins            []string
	SwaggerEnabled                bool
	AdminToken                    string
	DBDriver                      string
	DBURL                         string
	DBReadOnlyURL                 string
	DBMaxOpenConns                int
	DBMaxIdleConns                int
	DBConnMaxLifetime             time.Duration
	DBSeedOnStart                 bool
	CacheEnabled                  bool
	CacheQueryTTL                 time.Duration
	QueryTimeout                  time.Duration
	QueryCustomMaxRows            int
	CricbuzzBaseURL               string
	CricbuzzHost                  string
	CricbuzzAPIKey                string
	CricbuzzTimeout               time.Duration
	CricbuzzMaxRetries            int
	CricbuzzBackoffBase           time.Duration
	CricbuzzRatePerSecond         float64
	CricbuzzCircuitEnabled        bool
	CricbuzzCircuitFailureCount   int
	CricbuzzCircuitOpenTimeout    time.Duration
	CricbuzzCircuitHalfOpenMaxReq int
	IngestWorkers                 int
	QStashBaseURL                 string
	QStashToken                   string
	QStashTargetBaseURL           string
	QStashRetries                 int
	QStashTimeout                 time.Duration
	QStashDedupWindow             time.Duration
	UptraceEnabled                bool
	UptraceDSN                    string
	UptraceLogsEnabled            bool
	PyroscopeEnabled              bool
	PyroscopeServerAddress        string
	PyroscopeAppName              string
	PyroscopeAuthToken            string
	PyroscopeBasicAuthUser        string
	PyroscopeBasicAuthPassword    string
	PyroscopeUploadRate           time.Duration
	PprofEnabled                  bool
	PprofAddr                     string
	BetterStackEnabled            bool
	BetterStackEndpoint           string
	BetterStackToken              string
	BetterStackTimeout            time.Duration
	BetterStackMinLevel           logging.Level
	LogLevel                      logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:                 appEnv,
		ServiceName:            getEnv("APP_SERVICE_NAME", "cricket-analytics"),
		ServiceVersion:         getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:               getEnv("APP_HTTP_ADDR", ":8080"),
		CORSAllowedOrigins:     splitCSV(getEnv("APP_CORS_ALLOWED_ORIGINS", "*")),
		AdminToken:             strings.TrimSpace(getEnv("APP_ADMIN_TOKEN", "")),
		DBURL:                  strings.TrimSpace(getEnv("DB_URL", "")),
		DBReadOnlyURL:          strings.TrimSpace(getEnv("DB_READONLY_URL", "")),
		CricbuzzBaseURL:        strings.TrimRight(getEnv("CRICBUZZ_BASE_URL", "https://cricbuzz-cricket.p.rapidapi.com"), "/"),
		CricbuzzHost:           getEnv("CRICBUZZ_HOST", "cricbuzz-cricket.p.rapidapi.com"),
		CricbuzzAPIKey:         strings.TrimSpace(getEnv("CRICBUZZ_API_KEY", "")),
		QStashBaseURL:          strings.TrimRight(getEnv("QSTASH_BASE_URL", "https://qstash.upstash.io"), "/"),
		QStashToken:            strings.TrimSpace(getEnv("QSTASH_TOKEN", "")),
		QStashTargetBaseURL:    strings.TrimRight(strings.TrimSpace(getEnv("QSTASH_TARGET_BASE_URL", "")), "/"),
		UptraceDSN:             strings.TrimSpace(getEnv("UPTRACE_DSN", "")),
		PyroscopeServerAddress: strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", "")),
		PyroscopeAppName:       getEnv("PYROSCOPE_APP_NAME", "cricket-analytics"),
		PyroscopeAuthToken:     strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		// Passwords may legitimately carry surrounding spaces.
		PyroscopeBasicAuthPassword: getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", ""),
		PprofAddr:                  getEnv("PPROF_ADDR", "127.0.0.1:6060"),
		BetterStackEndpoint:        strings.TrimSpace(getEnv("BETTERSTACK_ENDPOINT", "")),
		BetterStackToken:           strings.TrimSpace(getEnv("BETTERSTACK_TOKEN", "")),
		BetterStackMinLevel:        parseLogLevel(getEnv("BETTERSTACK_MIN_LEVEL", "warn")),
		LogLevel:                   parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}

	cfg.DBDriver, err = parseDriver(getEnv("DB_DRIVER", DriverSQLite))
	if err != nil {
		return Config{}, err
	}
	if cfg.DBURL == "" {
		if cfg.DBDriver != DriverSQLite {
			return Config{}, fmt.Errorf("DB_URL is required when DB_DRIVER=%s", cfg.DBDriver)
		}
		cfg.DBURL = "cricket.db"
	}

	durations := []struct {
		key      string
		fallback string
		dst      *time.Duration
	}{
		{"APP_READ_TIMEOUT", "10s", &cfg.ReadTimeout},
		{"APP_WRITE_TIMEOUT", "30s", &cfg.WriteTimeout},
		{"DB_CONN_MAX_LIFETIME", "30m", &cfg.DBConnMaxLifetime},
		{"CACHE_QUERY_TTL", "30s", &cfg.CacheQueryTTL},
		{"QUERY_TIMEOUT", "15s", &cfg.QueryTimeout},
		{"CRICBUZZ_TIMEOUT", "10s", &cfg.CricbuzzTimeout},
		{"CRICBUZZ_BACKOFF_BASE", "500ms", &cfg.CricbuzzBackoffBase},
		{"CRICBUZZ_CIRCUIT_OPEN_TIMEOUT", "30s", &cfg.CricbuzzCircuitOpenTimeout},
		{"QSTASH_TIMEOUT", "10s", &cfg.QStashTimeout},
		{"QSTASH_DEDUP_WINDOW", "1m", &cfg.QStashDedupWindow},
		{"PYROSCOPE_UPLOAD_RATE", "15s", &cfg.PyroscopeUploadRate},
		{"BETTERSTACK_TIMEOUT", "3s", &cfg.BetterStackTimeout},
	}
	for _, d := range durations {
		value, err := time.ParseDuration(getEnv(d.key, d.fallback))
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", d.key, err)
		}
		if value <= 0 {
			return Config{}, fmt.Errorf("%s must be > 0", d.key)
		}
		*d.dst = value
	}

	ints := []struct {
		key      string
		fallback int
		min      int
		dst      *int
	}{
		{"DB_MAX_OPEN_CONNS", 10, 1, &cfg.DBMaxOpenConns},
		{"DB_MAX_IDLE_CONNS", 5, 0, &cfg.DBMaxIdleConns},
		{"QUERY_CUSTOM_MAX_ROWS", 1000, 1, &cfg.QueryCustomMaxRows},
		{"CRICBUZZ_MAX_RETRIES", 2, 0, &cfg.CricbuzzMaxRetries},
		{"CRICBUZZ_CIRCUIT_FAILURE_COUNT", 5, 1, &cfg.CricbuzzCircuitFailureCount},
		{"CRICBUZZ_CIRCUIT_HALF_OPEN_MAX_REQ", 1, 1, &cfg.CricbuzzCircuitHalfOpenMaxReq},
		{"INGEST_WORKERS", 4, 1, &cfg.IngestWorkers},
		{"QSTASH_RETRIES", 3, 0, &cfg.QStashRetries},
	}
	for _, item := range ints {
		value, err := getEnvAsInt(item.key, item.fallback)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", item.key, err)
		}
		if value < item.min {
			if item.min == 1 {
				return Config{}, fmt.Errorf("%s must be > 0", item.key)
			}
			return Config{}, fmt.Errorf("%s must be >= %d", item.key, item.min)
		}
		*item.dst = value
	}

	bools := []struct {
		key      string
		fallback string
		dst      *bool
	}{
		{"APP_SWAGGER_ENABLED", "true", &cfg.SwaggerEnabled},
		{"DB_SEED_ON_START", "false", &cfg.DBSeedOnStart},
		{"CACHE_ENABLED", "true", &cfg.CacheEnabled},
		{"CRICBUZZ_CIRCUIT_ENABLED", "true", &cfg.CricbuzzCircuitEnabled},
		{"UPTRACE_ENABLED", "false", &cfg.UptraceEnabled},
		{"UPTRACE_LOGS_ENABLED", "true", &cfg.UptraceLogsEnabled},
		{"PYROSCOPE_ENABLED", "false", &cfg.PyroscopeEnabled},
		{"PPROF_ENABLED", "false", &cfg.PprofEnabled},
		{"BETTERSTACK_ENABLED", "false", &cfg.BetterStackEnabled},
	}
	for _, b := range bools {
		value, err := strconv.ParseBool(getEnv(b.key, b.fallback))
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", b.key, err)
		}
		*b.dst = value
	}

	cfg.CricbuzzRatePerSecond, err = strconv.ParseFloat(getEnv("CRICBUZZ_RATE_PER_SECOND", "5"), 64)
	if err != nil {
		return Config{}, fmt.Errorf("parse CRICBUZZ_RATE_PER_SECOND: %w", err)
	}
	if cfg.CricbuzzRatePerSecond <= 0 {
		return Config{}, fmt.Errorf("CRICBUZZ_RATE_PER_SECOND must be > 0")
	}

	if cfg.AppEnv == EnvProd && cfg.AdminToken == "" {
		return Config{}, fmt.Errorf("APP_ADMIN_TOKEN is required when APP_ENV=%s", EnvProd)
	}
	if cfg.QStashToken != "" && cfg.QStashTargetBaseURL == "" {
		return Config{}, fmt.Errorf("QSTASH_TARGET_BASE_URL is required when QSTASH_TOKEN is set")
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	if cfg.BetterStackEnabled && cfg.BetterStackEndpoint == "" {
		return Config{}, fmt.Errorf("BETTERSTACK_ENDPOINT is required when BETTERSTACK_ENABLED=true")
	}
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}

	return cfg, nil
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

func parseDriver(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case DriverPostgres, "postgresql", "pg":
		return DriverPostgres, nil
	case DriverSQLite, "sqlite3":
		return DriverSQLite, nil
	default:
		return "", fmt.Errorf("invalid DB_DRIVER %q: valid values are %s, %s", v, DriverPostgres, DriverSQLite)
	}
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
