package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config centraliza a configuração do núcleo do app carregada do ambiente.
type Config struct {
	APIURL      string
	APITimeout  time.Duration
	StoragePath string
	RedisURL    string
}

// DevServerConfig configura o stub local da API de identidade.
type DevServerConfig struct {
	Port      int
	JWTSecret string
	AccessTTL time.Duration
}

// Load carrega variáveis de ambiente para o núcleo cliente e aplica defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.APIURL = strings.TrimSpace(getEnv("API_URL", ""))
	if cfg.APIURL == "" {
		return nil, errors.New("API_URL obrigatória")
	}

	timeout, err := parseDurationEnv("API_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.APITimeout = timeout

	cfg.StoragePath = strings.TrimSpace(getEnv("STORAGE_PATH", ""))
	if cfg.StoragePath == "" {
		cfg.StoragePath = defaultStoragePath()
	}

	cfg.RedisURL = strings.TrimSpace(getEnv("REDIS_URL", ""))

	return cfg, nil
}

// LoadDevServer carrega a configuração do stub da API.
func LoadDevServer() (*DevServerConfig, error) {
	_ = godotenv.Load()

	cfg := &DevServerConfig{}

	portStr := getEnv("DEVSERVER_PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return nil, errors.New("DEVSERVER_PORT inválida")
	}
	cfg.Port = port

	cfg.JWTSecret = strings.TrimSpace(getEnv("DEVSERVER_JWT_SECRET", ""))
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("DEVSERVER_JWT_SECRET deve ter pelo menos 32 caracteres")
	}

	accessTTL, err := parseDurationEnv("DEVSERVER_ACCESS_TTL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.AccessTTL = accessTTL

	return cfg, nil
}

func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "sessao.json"
	}
	return filepath.Join(home, ".condomais", "sessao.json")
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}
