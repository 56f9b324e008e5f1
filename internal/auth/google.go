package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"placement-backend/internal/placement"
	sharedauth "placement-backend/internal/shared/auth"
	"placement-backend/internal/shared/server/respond"
	"placement-backend/internal/shared/telemetry"
)

// ProfileCreator creates the placement profile for a user on first sign-in.
type ProfileCreator interface {
	EnsureUser(ctx context.Context, userID, name, email string) (placement.User, error)
}

// GoogleService handles Google OAuth flows.
type GoogleService struct {
	oauthConfig *oauth2.Config
	uiRedirect  string
	stateTTL    time.Duration
	states      StateStore
	profiles    ProfileCreator
}

// NewGoogleService builds a GoogleService. profiles may be nil; a nil states
// keeps OAuth state in memory.
func NewGoogleService(clientID, clientSecret, redirectURL, uiRedirect string, profiles ProfileCreator, states StateStore) *GoogleService {
	if states == nil {
		states = NewMemoryStateStore()
	}
	return &GoogleService{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		uiRedirect: uiRedirect,
		stateTTL:   5 * time.Minute,
		states:     states,
		profiles:   profiles,
	}
}

// RegisterRoutes attaches Google auth routes.
func (s *GoogleService) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/google/start", s.start)
	rg.GET("/auth/google/callback", s.callback)
}

func (s *GoogleService) start(c *gin.Context) {
	if s.oauthConfig.ClientID == "" || s.oauthConfig.ClientSecret == "" || s.oauthConfig.RedirectURL == "" {
		respond.Error(c, http.StatusInternalServerError, "auth_not_configured", "Google auth not configured", nil)
		return
	}

	state := uuid.NewString()
	if err := s.states.Put(c.Request.Context(), state, s.stateTTL); err != nil {
		telemetry.Error("auth.state.store_failed", map[string]any{"error": err.Error()})
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to start sign-in", nil)
		return
	}

	url := s.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
	c.Redirect(http.StatusFound, url)
}

func (s *GoogleService) callback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "missing state or code", nil)
		return
	}

	ctx := c.Request.Context()
	ok, err := s.states.Consume(ctx, state)
	if err != nil {
		telemetry.Error("auth.state.consume_failed", map[string]any{"error": err.Error()})
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to verify state", nil)
		return
	}
	if !ok {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid or expired state", nil)
		return
	}

	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "failed to exchange code", nil)
		return
	}

	userInfo, err := s.fetchUserInfo(ctx, token)
	if err != nil {
		telemetry.Warn("auth.userinfo.failed", map[string]any{"error": err.Error()})
		respond.Error(c, http.StatusBadGateway, "auth_failed", "failed to fetch user profile", nil)
		return
	}

	if userInfo.Sub == "" {
		respond.Error(c, http.StatusBadGateway, "auth_failed", "invalid user profile", nil)
		return
	}

	userID := "google:" + userInfo.Sub
	if s.profiles != nil {
		if _, err := s.profiles.EnsureUser(ctx, userID, userInfo.Name, userInfo.Email); err != nil {
			telemetry.Error("auth.profile.create_failed", map[string]any{
				"user_id": userID,
				"error":   err.Error(),
			})
			respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to create profile", nil)
			return
		}
	}

	jwt, err := sharedauth.SignJWT(sharedauth.Claims{
		Sub:     userID,
		Email:   userInfo.Email,
		Name:    userInfo.Name,
		Picture: userInfo.Picture,
	})
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to issue token", nil)
		return
	}

	redirectURL, err := appendToken(s.uiRedirect, jwt)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to redirect", nil)
		return
	}

	c.Redirect(http.StatusFound, redirectURL)
}

type googleUserInfo struct {
	Sub     string `json:"sub"`
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (s *GoogleService) fetchUserInfo(ctx context.Context, token *oauth2.Token) (googleUserInfo, error) {
	client := s.oauthConfig.Client(ctx, token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return googleUserInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return googleUserInfo{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return googleUserInfo{}, err
	}

	// Some responses use "id" instead of "sub".
	if info.Sub == "" {
		info.Sub = info.ID
	}
	return info, nil
}

func appendToken(rawURL, token string) (string, error) {
	if rawURL == "" {
		return "", errors.New("redirect url required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
