package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Ollama    OllamaConfig
	Groq      GroqConfig
	OCR       OCRConfig
	Raster    RasterConfig
	Extract   ExtractConfig
	Retrieval RetrievalConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port          string        `mapstructure:"port"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	Environment   string        `mapstructure:"environment"`
	MaxFileSizeMB int64         `mapstructure:"max_file_size_mb"`
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

// RateLimitConfig holds per-client request rate limiting settings.
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

// OllamaConfig holds settings for the local Ollama backend.
type OllamaConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
	EmbedModel  string `mapstructure:"embed_model"`
}

// GroqConfig holds settings for the Groq cloud backend.
type GroqConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	APIKey      string `mapstructure:"api_key"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// OCRConfig holds OCR engine settings. Concurrency bounds how many page
// images are recognized in parallel; 1 means strictly sequential in page
// order, which is the safe default for engines that are not thread-safe.
type OCRConfig struct {
	Engine      string   `mapstructure:"engine"`
	Languages   []string `mapstructure:"languages"`
	Concurrency int      `mapstructure:"concurrency"`
}

// RasterConfig holds PDF rasterization settings.
type RasterConfig struct {
	Engine      string `mapstructure:"engine"`
	DPI         int    `mapstructure:"dpi"`
	EnhancedDPI int    `mapstructure:"enhanced_dpi"`
}

// ExtractConfig holds native text extraction settings. ScannedThreshold is a
// heuristic: documents whose native text is shorter are treated as scanned
// and routed through OCR. Very short legitimate documents may misclassify.
type ExtractConfig struct {
	ScannedThreshold int `mapstructure:"scanned_threshold"`
}

// RetrievalConfig holds retrieval-augmented context settings for the
// prompt + cloud path.
type RetrievalConfig struct {
	ChunkSize    int `mapstructure:"chunk_size"`
	ChunkOverlap int `mapstructure:"chunk_overlap"`
	TopK         int `mapstructure:"top_k"`
}

// Load reads configuration from environment variables with the DOCLENS_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DOCLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "300s")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.max_file_size_mb", 50)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://localhost:5173,http://localhost:8080")

	// Rate limit defaults
	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.rps", 5.0)
	v.SetDefault("ratelimit.burst", 10)

	// Backend defaults
	v.SetDefault("ollama.base_url", "http://localhost:11434")
	v.SetDefault("ollama.timeout_secs", 600)
	v.SetDefault("ollama.embed_model", "nomic-embed-text")
	v.SetDefault("groq.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("groq.api_key", "")
	v.SetDefault("groq.timeout_secs", 120)

	// OCR / raster defaults
	v.SetDefault("ocr.engine", "tesseract")
	v.SetDefault("ocr.languages", "eng")
	v.SetDefault("ocr.concurrency", 1)
	v.SetDefault("raster.engine", "mupdf")
	v.SetDefault("raster.dpi", 150)
	v.SetDefault("raster.enhanced_dpi", 300)

	// Extraction / retrieval defaults
	v.SetDefault("extract.scanned_threshold", 50)
	v.SetDefault("retrieval.chunk_size", 1000)
	v.SetDefault("retrieval.chunk_overlap", 200)
	v.SetDefault("retrieval.top_k", 5)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":               "DOCLENS_SERVER_PORT",
		"server.read_timeout":       "DOCLENS_SERVER_READ_TIMEOUT",
		"server.write_timeout":      "DOCLENS_SERVER_WRITE_TIMEOUT",
		"server.environment":        "DOCLENS_SERVER_ENVIRONMENT",
		"server.max_file_size_mb":   "DOCLENS_SERVER_MAX_FILE_SIZE_MB",
		"log.level":                 "DOCLENS_LOG_LEVEL",
		"log.format":                "DOCLENS_LOG_FORMAT",
		"cors.allowed_origins":      "DOCLENS_CORS_ALLOWED_ORIGINS",
		"ratelimit.enabled":         "DOCLENS_RATELIMIT_ENABLED",
		"ratelimit.rps":             "DOCLENS_RATELIMIT_RPS",
		"ratelimit.burst":           "DOCLENS_RATELIMIT_BURST",
		"ollama.base_url":           "DOCLENS_OLLAMA_BASE_URL",
		"ollama.timeout_secs":       "DOCLENS_OLLAMA_TIMEOUT_SECS",
		"ollama.embed_model":        "DOCLENS_OLLAMA_EMBED_MODEL",
		"groq.base_url":             "DOCLENS_GROQ_BASE_URL",
		"groq.api_key":              "DOCLENS_GROQ_API_KEY",
		"groq.timeout_secs":         "DOCLENS_GROQ_TIMEOUT_SECS",
		"ocr.engine":                "DOCLENS_OCR_ENGINE",
		"ocr.languages":             "DOCLENS_OCR_LANGUAGES",
		"ocr.concurrency":           "DOCLENS_OCR_CONCURRENCY",
		"raster.engine":             "DOCLENS_RASTER_ENGINE",
		"raster.dpi":                "DOCLENS_RASTER_DPI",
		"raster.enhanced_dpi":       "DOCLENS_RASTER_ENHANCED_DPI",
		"extract.scanned_threshold": "DOCLENS_EXTRACT_SCANNED_THRESHOLD",
		"retrieval.chunk_size":      "DOCLENS_RETRIEVAL_CHUNK_SIZE",
		"retrieval.chunk_overlap":   "DOCLENS_RETRIEVAL_CHUNK_OVERLAP",
		"retrieval.top_k":           "DOCLENS_RETRIEVAL_TOP_K",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if DOCLENS_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("DOCLENS_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:          serverPort,
		ReadTimeout:   v.GetDuration("server.read_timeout"),
		WriteTimeout:  v.GetDuration("server.write_timeout"),
		Environment:   v.GetString("server.environment"),
		MaxFileSizeMB: v.GetInt64("server.max_file_size_mb"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.RateLimit = RateLimitConfig{
		Enabled: v.GetBool("ratelimit.enabled"),
		RPS:     v.GetFloat64("ratelimit.rps"),
		Burst:   v.GetInt("ratelimit.burst"),
	}
	cfg.Ollama = OllamaConfig{
		BaseURL:     v.GetString("ollama.base_url"),
		TimeoutSecs: v.GetInt("ollama.timeout_secs"),
		EmbedModel:  v.GetString("ollama.embed_model"),
	}
	cfg.Groq = GroqConfig{
		BaseURL:     v.GetString("groq.base_url"),
		APIKey:      v.GetString("groq.api_key"),
		TimeoutSecs: v.GetInt("groq.timeout_secs"),
	}
	cfg.OCR = OCRConfig{
		Engine:      v.GetString("ocr.engine"),
		Languages:   splitList(v.GetString("ocr.languages")),
		Concurrency: v.GetInt("ocr.concurrency"),
	}
	cfg.Raster = RasterConfig{
		Engine:      v.GetString("raster.engine"),
		DPI:         v.GetInt("raster.dpi"),
		EnhancedDPI: v.GetInt("raster.enhanced_dpi"),
	}
	cfg.Extract = ExtractConfig{
		ScannedThreshold: v.GetInt("extract.scanned_threshold"),
	}
	cfg.Retrieval = RetrievalConfig{
		ChunkSize:    v.GetInt("retrieval.chunk_size"),
		ChunkOverlap: v.GetInt("retrieval.chunk_overlap"),
		TopK:         v.GetInt("retrieval.top_k"),
	}

	return cfg, nil
}

// splitList parses a comma-separated string into trimmed non-empty entries.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
