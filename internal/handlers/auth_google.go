package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	authpkg "github.com/aryaseptiaw/giglink_be/internal/auth"
	"github.com/aryaseptiaw/giglink_be/internal/config"
	"github.com/aryaseptiaw/giglink_be/internal/middleware"
	"github.com/aryaseptiaw/giglink_be/internal/models"
)

type GoogleOAuthHandler struct {
	DB       *gorm.DB
	Sessions *authpkg.SessionStore
	Cfg      config.Config
}

func NewGoogleOAuthHandler(db *gorm.DB, sessions *authpkg.SessionStore, cfg config.Config) *GoogleOAuthHandler {
	return &GoogleOAuthHandler{DB: db, Sessions: sessions, Cfg: cfg}
}

func (h *GoogleOAuthHandler) oauthCfg() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.Cfg.GoogleClientID,
		ClientSecret: h.Cfg.GoogleSecret,
		RedirectURL:  h.Cfg.GoogleRedirect,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"openid", "email", "profile"},
	}
}

func randomState(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

func (h *GoogleOAuthHandler) GoogleStart(c *fiber.Ctx) error {
	next := c.Query("next", "/")
	st := randomState(32)

	c.Cookie(&fiber.Cookie{
		Name:     "oauth_state",
		Value:    st,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.Cfg.IsProduction(),
		SameSite: "Lax",
		MaxAge:   10 * 60,
	})
	c.Cookie(&fiber.Cookie{
		Name:     "oauth_next",
		Value:    next,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.Cfg.IsProduction(),
		SameSite: "Lax",
		MaxAge:   10 * 60,
	})

	authURL := h.oauthCfg().AuthCodeURL(st, oauth2.AccessTypeOffline)
	return c.Redirect(authURL, http.StatusTemporaryRedirect)
}

type googleUserInfo struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (h *GoogleOAuthHandler) GoogleCallback(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")

	if code == "" || state == "" {
		return c.Status(fiber.StatusBadRequest).SendString("Missing code/state")
	}

	stCookie := c.Cookies("oauth_state")
	next := c.Cookies("oauth_next")
	if next == "" {
		next = "/"
	}
	if stCookie == "" || stCookie != state {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid state")
	}

	tok, err := h.oauthCfg().Exchange(c.Context(), code)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Failed to exchange code")
	}

	client := h.oauthCfg().Client(c.Context(), tok)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Failed to fetch userinfo")
	}
	defer resp.Body.Close()

	var gu googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Failed to decode userinfo")
	}

	email := strings.ToLower(strings.TrimSpace(gu.Email))
	name := strings.TrimSpace(gu.Name)
	if email == "" {
		return c.Status(fiber.StatusBadRequest).SendString("Email not found from Google")
	}

	var u models.User
	err = h.DB.WithContext(c.Context()).Where("email = ?", email).First(&u).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return c.Status(fiber.StatusInternalServerError).SendString("DB error")
	}

	if err == gorm.ErrRecordNotFound {
		// The users table requires a password hash, so mint a random one;
		// it is never usable for a manual login.
		rawPass := randomState(24)
		hashed, err := authpkg.HashPassword(rawPass)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Failed to create account")
		}

		u = models.User{
			Name:     name,
			Email:    email,
			Password: hashed,
			Role:     models.RoleClient,
			Status:   models.UserStatusActive,
		}
		if err := h.DB.WithContext(c.Context()).Create(&u).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Failed to create account")
		}
	} else if name != "" && u.Name != name {
		u.Name = name
		_ = h.DB.WithContext(c.Context()).Save(&u).Error
	}

	if u.Status != models.UserStatusActive {
		u2 := h.Cfg.FrontendBaseURL + "/auth/login?err=" + url.QueryEscape("account is not active")
		return c.Redirect(u2, http.StatusTemporaryRedirect)
	}

	sess, err := h.Sessions.Create(c.Context(), u.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to create session")
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.Cfg.IsProduction(),
		SameSite: "Lax",
		MaxAge:   int(h.Cfg.SessionTTL.Seconds()),
	})

	c.Cookie(&fiber.Cookie{Name: "oauth_state", Value: "", Path: "/", MaxAge: -1, HTTPOnly: true, SameSite: "Lax"})
	c.Cookie(&fiber.Cookie{Name: "oauth_next", Value: "", Path: "/", MaxAge: -1, HTTPOnly: true, SameSite: "Lax"})

	redirectURL := h.Cfg.FrontendBaseURL + next
	if !strings.HasPrefix(next, "/") {
		redirectURL = h.Cfg.FrontendBaseURL + "/"
	}
	return c.Redirect(redirectURL, http.StatusTemporaryRedirect)
}
