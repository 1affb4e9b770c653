package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// ConstantEnvFilename is the optional dotenv file read by LoadServer.
	ConstantEnvFilename = ".env"

	DefaultServerHost     = "127.0.0.1"
	DefaultServerPort     = 8090
	DefaultLogLevel       = "info"
	DefaultCacheSizeMB    = 256
	DefaultCacheTTL       = 10 * time.Minute
	DefaultRampCacheSize  = 64
	DefaultMaxPoints      = 1024
	DefaultMaxSurfaceSide = 2048

	// DefaultMaxEvaluations bounds points x field pixels for one render,
	// the number of weight evaluations pass 1 performs.
	DefaultMaxEvaluations = 1 << 28
)

// DefaultCORSOrigins are allowed when TEMPMAP_CORS_ORIGINS is unset.
var DefaultCORSOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

// Server holds the HTTP server settings, read from the environment.
type Server struct {
	Host           string
	Port           int
	CORSOrigins    []string
	LogLevel       string
	CacheSizeMB    int
	CacheTTL       time.Duration
	RampCacheSize  int
	MaxPoints      int
	MaxSurfaceSide int
	MaxEvaluations int
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Validate rejects settings the server cannot run with.
func (s *Server) Validate() error {
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("invalid port %d", s.Port)
	}
	if s.CacheSizeMB <= 0 {
		return fmt.Errorf("invalid cache size %d MB", s.CacheSizeMB)
	}
	if s.RampCacheSize <= 0 {
		return fmt.Errorf("invalid ramp cache size %d", s.RampCacheSize)
	}
	if s.MaxPoints <= 0 || s.MaxSurfaceSide <= 0 || s.MaxEvaluations <= 0 {
		return fmt.Errorf("invalid render limits: %d points, %d pixels, %d evaluations",
			s.MaxPoints, s.MaxSurfaceSide, s.MaxEvaluations)
	}
	return nil
}

// LoadServer reads an optional dotenv file, then the TEMPMAP_* environment
// variables. Variables already set in the environment take precedence over
// the file.
func LoadServer(filename string) *Server {
	if filename == "" {
		filename = ConstantEnvFilename
	}
	_ = godotenv.Load(filename)

	return &Server{
		Host:           getEnv("TEMPMAP_HOST", DefaultServerHost),
		Port:           getEnvInt("TEMPMAP_PORT", DefaultServerPort),
		CORSOrigins:    getEnvList("TEMPMAP_CORS_ORIGINS", DefaultCORSOrigins),
		LogLevel:       getEnv("TEMPMAP_LOG_LEVEL", DefaultLogLevel),
		CacheSizeMB:    getEnvInt("TEMPMAP_CACHE_SIZE_MB", DefaultCacheSizeMB),
		CacheTTL:       getEnvDuration("TEMPMAP_CACHE_TTL", DefaultCacheTTL),
		RampCacheSize:  getEnvInt("TEMPMAP_RAMP_CACHE_SIZE", DefaultRampCacheSize),
		MaxPoints:      getEnvInt("TEMPMAP_MAX_POINTS", DefaultMaxPoints),
		MaxSurfaceSide: getEnvInt("TEMPMAP_MAX_SURFACE_SIDE", DefaultMaxSurfaceSide),
		MaxEvaluations: getEnvInt("TEMPMAP_MAX_EVALUATIONS", DefaultMaxEvaluations),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
