package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	APIBaseURL       string
	Auth0Domain      string
	Auth0ClientID    string
	Auth0Audience    string
	Auth0RedirectURI string
	Auth0ReturnTo    string
	StatePath        string
}

// Load builds Config from environment with sensible defaults. A .env file in
// the working directory is read first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		APIBaseURL:       getEnv("API_BASE_URL", "http://localhost:8080"),
		Auth0Domain:      getEnv("AUTH0_DOMAIN", "https://greenthumb.us.auth0.com"),
		Auth0ClientID:    os.Getenv("AUTH0_CLIENT_ID"),
		Auth0Audience:    os.Getenv("AUTH0_AUDIENCE"),
		Auth0RedirectURI: getEnv("AUTH0_REDIRECT_URI", "http://localhost:3000/callback"),
		Auth0ReturnTo:    getEnv("AUTH0_RETURN_TO", "http://localhost:3000"),
		StatePath:        getEnv("STATE_PATH", defaultStatePath()),
	}
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "greenthumb-state.json"
	}
	return filepath.Join(home, ".greenthumb", "state.json")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
