package http

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	youtubeclient "yt-channel-report/infrastructure/clients/youtube"
	"yt-channel-report/infrastructure/configuration"
	"yt-channel-report/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const stateCookie = "oauth_state"

// IYouTubeAuthHandler defines the interface for YouTube authentication handlers
type IYouTubeAuthHandler interface {
	GetAuthURL(ctx *gin.Context)
	HandleCallback(ctx *gin.Context)
}

// YouTubeAuthHandler runs the OAuth2 consent flow and stores the resulting tokens
// in tokenFile, where GetYouTubeConfig picks them up on the next start.
type YouTubeAuthHandler struct {
	oauth2Config *oauth2.Config
	tokenFile    string
}

// NewYouTubeAuthHandler creates a new YouTube auth handler
func NewYouTubeAuthHandler(config *configuration.YouTubeConfig, tokenFile string) (IYouTubeAuthHandler, error) {
	if config == nil || config.ClientID == "" || config.ClientSecret == "" || config.RedirectURL == "" {
		return nil, errors.New("youtube oauth requires client id, client secret and redirect url")
	}

	oauth2Config := &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		RedirectURL:  config.RedirectURL,
		Scopes:       youtubeclient.ReadonlyScopes,
		Endpoint:     google.Endpoint,
	}

	return &YouTubeAuthHandler{
		oauth2Config: oauth2Config,
		tokenFile:    tokenFile,
	}, nil
}

// GetAuthURL handles GET /auth/youtube
func (h *YouTubeAuthHandler) GetAuthURL(ctx *gin.Context) {
	state, err := generateRandomState()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate state"})
		return
	}
	ctx.SetCookie(stateCookie, state, 600, "/", "", false, true)

	authURL := h.oauth2Config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	ctx.JSON(http.StatusOK, gin.H{
		"auth_url": authURL,
	})
}

// HandleCallback handles GET /auth/youtube/callback
func (h *YouTubeAuthHandler) HandleCallback(ctx *gin.Context) {
	// Check for OAuth error first
	if errorParam := ctx.Query("error"); errorParam != "" {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":       fmt.Sprintf("OAuth error: %s", errorParam),
			"description": ctx.Query("error_description"),
		})
		return
	}

	state := ctx.Query("state")
	expected, err := ctx.Cookie(stateCookie)
	if state == "" || err != nil || subtle.ConstantTimeCompare([]byte(state), []byte(expected)) != 1 {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":  "State parameter missing or mismatched",
			"action": "Visit /auth/youtube to start over",
		})
		return
	}

	code := ctx.Query("code")
	if code == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error": "Authorization code not found",
		})
		return
	}

	token, err := h.oauth2Config.Exchange(ctx.Request.Context(), code)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("OAuth code exchange failed")
		ctx.JSON(http.StatusBadGateway, gin.H{
			"error":   "Failed to exchange code for token",
			"message": err.Error(),
		})
		return
	}

	// Clear the state cookie
	ctx.SetCookie(stateCookie, "", -1, "/", "", false, true)

	if err := saveToken(h.tokenFile, token); err != nil {
		logger.GetLogger().WithField("file", h.tokenFile).WithField("error", err).Error("Failed to store OAuth token")
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to store token",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":    true,
		"token_file": h.tokenFile,
		"expiry":     token.Expiry,
		"message":    "Authentication successful. Restart the application to use the stored tokens.",
	})
}

type tokenFile struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	Expiry       time.Time `json:"expiry"`
}

func saveToken(path string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(tokenFile{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Expiry:       token.Expiry,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// generateRandomState generates a random state parameter for OAuth2
func generateRandomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
