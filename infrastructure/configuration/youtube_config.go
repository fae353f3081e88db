package configuration

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
)

// TokenFile is where the OAuth consent flow stores tokens
const TokenFile = "token.json"

// ErrMissingCredentials is returned when neither an API key nor OAuth tokens are configured
var ErrMissingCredentials = errors.New("youtube credentials not configured: set YOUTUBE_API_KEY or OAuth tokens")

// YouTubeConfig represents YouTube API configuration
type YouTubeConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
	AccessToken  string `mapstructure:"access_token"`
	RefreshToken string `mapstructure:"refresh_token"`
	APIKey       string `mapstructure:"api_key"`
	Endpoint     string `mapstructure:"endpoint"`
	WebHost      string `mapstructure:"web_host"`
}

// HasOAuth reports whether token based access is configured
func (c *YouTubeConfig) HasOAuth() bool {
	return c.AccessToken != "" && c.RefreshToken != ""
}

// GetYouTubeConfig returns YouTube configuration from JSON config with environment variable fallback
func GetYouTubeConfig() (*YouTubeConfig, error) {
	config := &YouTubeConfig{
		ClientID:     getConfigValue(C.YouTube.ClientID, "YOUTUBE_CLIENT_ID", ""),
		ClientSecret: getConfigValue(C.YouTube.ClientSecret, "YOUTUBE_CLIENT_SECRET", ""),
		RedirectURL:  getConfigValue(C.YouTube.RedirectURI, "YOUTUBE_REDIRECT_URL", ""),
		AccessToken:  getEnv("YOUTUBE_ACCESS_TOKEN", ""),
		RefreshToken: getEnv("YOUTUBE_REFRESH_TOKEN", ""),
		APIKey:       getConfigValue(C.YouTube.APIKey, "YOUTUBE_API_KEY", ""),
		Endpoint:     getConfigValue(C.YouTube.Endpoint, "YOUTUBE_ENDPOINT", ""),
		WebHost:      getConfigValue(C.YouTube.WebHost, "YOUTUBE_WEB_HOST", "www.youtube.com"),
	}

	// Fallback: token.json produced by an earlier OAuth consent flow
	if config.AccessToken == "" || config.RefreshToken == "" {
		if data, err := os.ReadFile(TokenFile); err == nil {
			var tokenFile struct {
				AccessToken  string `json:"access_token"`
				RefreshToken string `json:"refresh_token"`
			}
			if jsonErr := json.Unmarshal(data, &tokenFile); jsonErr == nil {
				if config.AccessToken == "" && tokenFile.AccessToken != "" {
					config.AccessToken = tokenFile.AccessToken
				}
				if config.RefreshToken == "" && tokenFile.RefreshToken != "" {
					config.RefreshToken = tokenFile.RefreshToken
				}
			}
		}
	}

	if config.APIKey == "" && !config.HasOAuth() {
		return config, ErrMissingCredentials
	}
	return config, nil
}

// getConfigValue gets value from config first, then environment variable, then default
func getConfigValue(configValue, envKey, defaultValue string) string {
	// Environment variable takes precedence when provided
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	// Placeholders such as YOUR_API_KEY count as unset
	if configValue != "" && !strings.HasPrefix(configValue, "YOUR_") {
		return configValue
	}
	return defaultValue
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
