package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"vietvisa/config"
	"vietvisa/internal/service"
)

type GoogleOAuthHandler struct {
	cfg  *config.OAuthConfig
	auth *service.AuthService
}

func NewGoogleOAuthHandler(cfg *config.OAuthConfig, auth *service.AuthService) *GoogleOAuthHandler {
	return &GoogleOAuthHandler{cfg: cfg, auth: auth}
}

func (h *GoogleOAuthHandler) OAuth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.cfg.GoogleClientID,
		ClientSecret: h.cfg.GoogleClientSecret,
		RedirectURL:  h.cfg.GoogleRedirectURL,
		Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
		Endpoint:     google.Endpoint,
	}
}

// Redirect sends staff to the Google consent screen.
func (h *GoogleOAuthHandler) Redirect(c *gin.Context) {
	if h.cfg.GoogleClientID == "" {
		fail(c, http.StatusServiceUnavailable, "Google sign-in is not configured")
		return
	}
	url := h.OAuth2Config().AuthCodeURL("state", oauth2.AccessTypeOffline)
	c.Redirect(http.StatusFound, url)
}

type googleUserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Callback exchanges the authorization code, fetches the Google profile, and
// signs in the staff member.
func (h *GoogleOAuthHandler) Callback(c *gin.Context) {
	if h.cfg.GoogleClientID == "" {
		fail(c, http.StatusServiceUnavailable, "Google sign-in is not configured")
		return
	}
	code := c.Query("code")
	if code == "" {
		fail(c, http.StatusBadRequest, "missing code")
		return
	}
	ctx := c.Request.Context()
	conf := h.OAuth2Config()
	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		fail(c, http.StatusBadRequest, "code exchange failed")
		return
	}
	client := conf.Client(ctx, tok)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil || resp.StatusCode != http.StatusOK {
		if resp != nil {
			resp.Body.Close()
		}
		fail(c, http.StatusInternalServerError, "failed to fetch user info")
		return
	}
	defer resp.Body.Close()
	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		fail(c, http.StatusInternalServerError, "invalid user info")
		return
	}
	if info.ID == "" || info.Email == "" {
		fail(c, http.StatusBadRequest, "incomplete Google profile")
		return
	}
	session, err := h.auth.LoginWithGoogle(info.ID, info.Email, info.Name)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{
		"access_token":  session.Tokens.AccessToken,
		"refresh_token": session.Tokens.RefreshToken,
		"user":          session.User,
	})
}
