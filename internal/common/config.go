package common

import (
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Tools   ToolsConfig
	Extract ExtractConfig
	Run     RunConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr      string
	UploadDir string
}

// ToolsConfig holds paths to the external binaries the pipeline shells out to.
// Empty values fall back to the bare binary name on PATH.
type ToolsConfig struct {
	Tesseract   string
	Pdftoppm    string
	Unrar       string
	SevenZip    string
	TessdataDir string
}

// ExtractConfig holds extraction tuning knobs.
type ExtractConfig struct {
	Language string // tesseract language profile
	DPI      int    // rasterization DPI for scanned pages
	MinYear  int    // issue dates below this year are rejected

	// DropPartialRecords restores the historical behavior of discarding
	// records whose amount could not be extracted. Default keeps them with
	// an explicit missing-value sentinel.
	DropPartialRecords bool
}

// RunConfig holds per-run scheduling and filesystem configuration.
type RunConfig struct {
	ScratchDir string
	Workers    int
	DocTimeout time.Duration
}

// LoadConfig loads configuration from the environment, reading a .env file
// first when one is present.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Addr:      getEnv("HTTP_ADDR", ":8080"),
			UploadDir: getEnv("UPLOAD_DIR", "./uploads"),
		},
		Tools: ToolsConfig{
			Tesseract:   getEnv("TESSERACT_PATH", "tesseract"),
			Pdftoppm:    getEnv("PDFTOPPM_PATH", "pdftoppm"),
			Unrar:       getEnv("UNRAR_PATH", "unrar"),
			SevenZip:    getEnv("SEVENZIP_PATH", ""),
			TessdataDir: getEnv("TESSDATA_PREFIX", ""),
		},
		Extract: ExtractConfig{
			Language:           getEnv("OCR_LANG", "por"),
			DPI:                getEnvAsInt("OCR_DPI", 300),
			MinYear:            getEnvAsInt("MIN_ISSUE_YEAR", 2020),
			DropPartialRecords: getEnvAsBool("DROP_PARTIAL_RECORDS", false),
		},
		Run: RunConfig{
			ScratchDir: getEnv("SCRATCH_DIR", "./tmp/notas"),
			Workers:    getEnvAsInt("WORKERS", runtime.NumCPU()),
			DocTimeout: getEnvAsDuration("DOC_TIMEOUT", 90*time.Second),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Run.Workers <= 0 {
		return NewAppError("CONFIG_ERROR", "WORKERS must be positive", ErrInvalidInput)
	}
	if c.Extract.DPI < 300 {
		return NewAppError("CONFIG_ERROR", "OCR_DPI must be at least 300", ErrInvalidInput)
	}
	if c.Run.ScratchDir == "" {
		return NewAppError("CONFIG_ERROR", "SCRATCH_DIR is required", ErrInvalidInput)
	}
	return nil
}
