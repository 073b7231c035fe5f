package config

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               string
	AppEnv             string
	DatabaseURL        string
	DatabaseAuthToken  string
	Auth0Domain        string
	Auth0Audience      string
	Auth0Issuer        string
	Auth0JWKSURL       string
	Auth0Algorithms    []string
	Auth0ClientID      string
	Auth0ClientSecret  string
	JWKSCacheTTL       time.Duration
	CORSAllowedOrigins []string
}

func Load() *Config {
	_ = godotenv.Load() // Ignore error if .env not found (e.g. prod)

	return &Config{
		Port:               getEnv("PORT", "8000"),
		AppEnv:             getEnv("APP_ENV", "local"),
		DatabaseURL:        getEnv("DATABASE_URL", "file:linkcomment.db"),
		DatabaseAuthToken:  getEnv("DATABASE_AUTH_TOKEN", ""),
		Auth0Domain:        getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience:      getEnv("AUTH0_AUDIENCE", ""),
		Auth0Issuer:        getEnv("AUTH0_ISSUER", ""),
		Auth0JWKSURL:       getEnv("AUTH0_JWKS_URL", ""),
		Auth0Algorithms:    splitList(getEnv("AUTH0_ALGORITHMS", "RS256")),
		Auth0ClientID:      getEnv("AUTH0_CLIENT_ID", ""),
		Auth0ClientSecret:  getEnv("AUTH0_CLIENT_SECRET", ""),
		JWKSCacheTTL:       getDuration("JWKS_CACHE_TTL", 10*time.Minute),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}
}

// Validate reports settings the API server cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.Auth0Domain == "" && (c.Auth0Issuer == "" || c.Auth0JWKSURL == "") {
		errs = append(errs, errors.New("AUTH0_DOMAIN is required (or both AUTH0_ISSUER and AUTH0_JWKS_URL)"))
	}
	if c.Auth0Audience == "" {
		errs = append(errs, errors.New("AUTH0_AUDIENCE is required"))
	}
	if len(c.Auth0Algorithms) == 0 {
		errs = append(errs, errors.New("AUTH0_ALGORITHMS must list at least one algorithm"))
	}
	return errors.Join(errs...)
}

// Issuer is the expected iss claim, https://{domain}/ unless overridden.
func (c *Config) Issuer() string {
	if c.Auth0Issuer != "" {
		return c.Auth0Issuer
	}
	return "https://" + c.Auth0Domain + "/"
}

// JWKSURL is the key-discovery document of the identity provider.
func (c *Config) JWKSURL() string {
	if c.Auth0JWKSURL != "" {
		return c.Auth0JWKSURL
	}
	return "https://" + c.Auth0Domain + "/.well-known/jwks.json"
}

// TokenURL is the provider's OAuth token endpoint.
func (c *Config) TokenURL() string {
	return "https://" + c.Auth0Domain + "/oauth/token"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Invalid %s=%q, using %s: %v", key, value, fallback, err)
		return fallback
	}
	return d
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
