package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	HomeCurrency     string
	HomeTaxRate      float64
	RateLookbackDays int
	DataDirectory    string
	InputFile        string
	OutputFile       string
	DatabasePath     string
	LogLevel         string
	Port             string
	NBPArchiveURL    string
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	homeTaxRate := getEnvAsFloat("HOME_TAX_RATE", 0.19)
	if homeTaxRate < 0 || homeTaxRate > 1 {
		log.Fatalf("FATAL: HOME_TAX_RATE must be between 0 and 1, got %v", homeTaxRate)
	}

	rateLookbackDays := getEnvAsInt("RATE_LOOKBACK_DAYS", 10)
	if rateLookbackDays < 1 {
		log.Printf("WARNING: Invalid RATE_LOOKBACK_DAYS %d. Using default 10.", rateLookbackDays)
		rateLookbackDays = 10
	}

	Cfg = &AppConfig{
		HomeCurrency:     getEnv("HOME_CURRENCY", "PLN"),
		HomeTaxRate:      homeTaxRate,
		RateLookbackDays: rateLookbackDays,
		DataDirectory:    getEnv("DATA_DIRECTORY", "data"),
		InputFile:        getEnv("INPUT_FILE", "data/demo_XTB_broker_statement_currency_PLN.xlsx"),
		OutputFile:       getEnv("OUTPUT_FILE", "output/for_google_spreadsheet.tsv"),
		DatabasePath:     getEnv("DATABASE_PATH", "./dividendtax.db"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		Port:             getEnv("PORT", "8080"),
		NBPArchiveURL:    getEnv("NBP_ARCHIVE_URL", "https://nbp.pl/statystyka-i-sprawozdawczosc/kursy/archiwum-tabela-a-csv-xls/"),
	}

	log.Printf("Configuration loaded: HomeCurrency=%s, HomeTaxRate=%.2f, DataDirectory=%s, LogLevel=%s",
		Cfg.HomeCurrency, Cfg.HomeTaxRate, Cfg.DataDirectory, Cfg.LogLevel)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Integer value for %s not set or empty, using default: %d", key, fallback)
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Float value for %s not set or empty, using default: %v", key, fallback)
		return fallback
	}
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	log.Printf("Invalid float value for %s ('%s'), using default: %v", key, valueStr, fallback)
	return fallback
}
