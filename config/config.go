package config

import (
	"fmt"
	"os"
	"strings"
)

type Config struct {
	postgresHost string
	postgresPort string
	postgresUser string
	postgresPass string
	postgresDB   string

	spotifyClientID     string
	spotifyClientSecret string
	spotifyRedirectURL  string

	encryptionKey string
	sessionSecret []byte
	env           string
}

var (
	config Config
)

func init() {
	config = Config{
		postgresHost: os.Getenv("POSTGRES_HOST"),
		postgresPort: os.Getenv("POSTGRES_PORT"),
		postgresUser: os.Getenv("POSTGRES_USER"),
		postgresPass: os.Getenv("POSTGRES_PASS"),
		postgresDB:   os.Getenv("POSTGRES_DB"),

		spotifyClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
		spotifyClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
		spotifyRedirectURL:  os.Getenv("SPOTIFY_REDIRECT_URI"),

		encryptionKey: os.Getenv("ENCRYPTION_KEY"),
		sessionSecret: []byte(os.Getenv("SESSION_SECRET")),
		env:           os.Getenv("ENV"),
	}
	if len(config.sessionSecret) == 0 {
		config.sessionSecret = []byte("crimson-dev-secret")
	}
	if config.env == "" {
		config.env = "LOCAL"
	}
}

func GetEncryptionKey() string {
	return config.encryptionKey
}

func GetSessionSecret() []byte {
	return config.sessionSecret
}

func GetSpotifyClientID() string {
	return config.spotifyClientID
}

func GetSpotifyClientSecret() string {
	return config.spotifyClientSecret
}

// GetSpotifyRedirect returns the fixed callback URL, or "" when the callback
// should be derived from the incoming request's headers.
func GetSpotifyRedirect() string {
	return config.spotifyRedirectURL
}

// HasPostgres reports whether a durable store was configured; without one the
// server runs on the in-memory store.
func HasPostgres() bool {
	return config.postgresHost != ""
}

func GetDBString() string {
	switch strings.ToUpper(config.env) {
	case "LOCAL":
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s connect_timeout=5 sslmode=disable",
			config.postgresHost, config.postgresPort, config.postgresUser, config.postgresPass, config.postgresDB)
	default:
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s connect_timeout=5",
			config.postgresHost, config.postgresPort, config.postgresUser, config.postgresPass, config.postgresDB)
	}
}
