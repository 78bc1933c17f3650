package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// The business rules the pipeline treats as data rather than code (district
// scope, the "not provided" sentinel, the legacy varos labels) live here so
// the pipeline can be pointed at another city's export without code changes.
type Config struct {
	AppEnv string

	SaleCSVPath    string
	RentalCSVPath  string
	PreparedCSVDir string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Districts is the in-scope administrative district set.
	Districts []string
	// SentinelToken is the "unspecified" marker the source site emits.
	SentinelToken string
	// VarosLegacyLabels are coarse area labels that duplicate finer varos
	// levels already present; they are recoded to missing.
	VarosLegacyLabels []string

	TrainFraction float64
	SplitSeed     int64
	SplitBuckets  int

	SearchBudget  int
	SearchSeed    int64
	SearchWorkers int

	// Search interval for the flat size dimension, m².
	AreaMin float64
	AreaMax float64
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		AppEnv: getEnv("APP_ENV", "prod"),

		SaleCSVPath:    getEnv("SALE_CSV_PATH", "./data/extraction_elado.txt"),
		RentalCSVPath:  getEnv("RENTAL_CSV_PATH", "./data/extraction_kiado.txt"),
		PreparedCSVDir: getEnv("PREPARED_CSV_DIR", "./output"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "market"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "market123"),
		PostgresDB:       getEnv("POSTGRES_DB", "budapest_market"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		Districts:         getEnvList("DISTRICTS", "5,6,7"),
		SentinelToken:     getEnv("SENTINEL_TOKEN", "nincs megadva"),
		VarosLegacyLabels: getEnvList("VAROS_LEGACY_LABELS", "Belváros,Nagykörúton belül"),

		TrainFraction: getEnvFloat("TRAIN_FRACTION", 0.8),
		SplitSeed:     int64(getEnvInt("SPLIT_SEED", 42)),
		SplitBuckets:  getEnvInt("SPLIT_BUCKETS", 5),

		SearchBudget:  getEnvInt("SEARCH_BUDGET", 200),
		SearchSeed:    int64(getEnvInt("SEARCH_SEED", 7)),
		SearchWorkers: getEnvInt("SEARCH_WORKERS", 4),

		AreaMin: getEnvFloat("AREA_MIN", 30),
		AreaMax: getEnvFloat("AREA_MAX", 150),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	raw := getEnv(key, fallback)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
