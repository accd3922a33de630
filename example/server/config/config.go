package config

import (
	"os"
	"strings"
)

const (
	// default port for the http server to run
	DefaultPort = "9998"
)

type Config struct {
	Port          string
	Issuer        string
	CookieHashKey string
	RedirectURI   []string
}

// FromEnvVars loads configuration parameters from environment
// variables. If there is no such variable defined, then use default
// values.
func FromEnvVars(defaults *Config) *Config {
	if defaults == nil {
		defaults = &Config{}
	}
	cfg := &Config{
		Port:          defaults.Port,
		Issuer:        defaults.Issuer,
		CookieHashKey: defaults.CookieHashKey,
		RedirectURI:   defaults.RedirectURI,
	}
	if value, ok := os.LookupEnv("PORT"); ok {
		cfg.Port = value
	}
	if value, ok := os.LookupEnv("ISSUER"); ok {
		cfg.Issuer = value
	}
	if value, ok := os.LookupEnv("COOKIE_HASH_KEY"); ok {
		cfg.CookieHashKey = value
	}
	if value, ok := os.LookupEnv("REDIRECT_URI"); ok {
		cfg.RedirectURI = strings.Split(value, ",")
	}
	return cfg
}
