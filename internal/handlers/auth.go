package handlers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aryaseptiaw/giglink_be/internal/apperr"
	"github.com/aryaseptiaw/giglink_be/internal/auth"
	"github.com/aryaseptiaw/giglink_be/internal/config"
	"github.com/aryaseptiaw/giglink_be/internal/middleware"
	"github.com/aryaseptiaw/giglink_be/internal/models"
)

type AuthHandler struct {
	DB       *gorm.DB
	Sessions *auth.SessionStore
	Cfg      config.Config
}

func NewAuthHandler(db *gorm.DB, sessions *auth.SessionStore, cfg config.Config) *AuthHandler {
	return &AuthHandler{DB: db, Sessions: sessions, Cfg: cfg}
}

type FieldErrors map[string][]string

func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func validationFail(c *fiber.Ctx, errs FieldErrors) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "validation error",
		"errors":  errs,
	})
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.Cfg.IsProduction(),
		SameSite: "Lax",
		MaxAge:   int(h.Cfg.SessionTTL.Seconds()),
	})
}

func (h *AuthHandler) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.Cfg.IsProduction(),
		SameSite: "Lax",
	})
}

type RegisterReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"` // client / freelancer (admin is never self-service)
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	password := strings.TrimSpace(req.Password)
	role := models.Role(strings.ToLower(strings.TrimSpace(req.Role)))

	errs := FieldErrors{}
	if name == "" {
		errs.Add("name", "name is required")
	}
	if email == "" {
		errs.Add("email", "email is required")
	} else if !strings.Contains(email, "@") {
		errs.Add("email", "email format is invalid")
	}
	if password == "" {
		errs.Add("password", "password is required")
	} else if len(password) < 6 {
		errs.Add("password", "password must be at least 6 characters")
	}
	switch role {
	case models.RoleClient, models.RoleFreelancer:
	case "":
		role = models.RoleClient
	default:
		errs.Add("role", "role must be client or freelancer")
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return fail(c, apperr.Wrap(apperr.Infrastructure, "failed to hash password", err))
	}

	u := models.User{
		Name:     name,
		Email:    email,
		Password: hashed,
		Role:     role,
		Status:   models.UserStatusActive,
	}
	if err := h.DB.WithContext(c.Context()).Create(&u).Error; err != nil {
		dbErr := apperr.FromDB(err, "")
		if apperr.KindOf(dbErr) == apperr.Conflict {
			return fail(c, apperr.New(apperr.Conflict, "email is already registered"))
		}
		return fail(c, dbErr)
	}

	sess, err := h.Sessions.Create(c.Context(), u.ID)
	if err != nil {
		return fail(c, err)
	}
	h.setSessionCookie(c, sess.Token)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "registered",
		"data": fiber.Map{
			"user":  u.Authenticated(),
			"token": sess.Token,
		},
	})
}

type LoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	password := strings.TrimSpace(req.Password)

	errs := FieldErrors{}
	if email == "" {
		errs.Add("email", "email is required")
	}
	if password == "" {
		errs.Add("password", "password is required")
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	var u models.User
	err := h.DB.WithContext(c.Context()).Where("email = ?", email).First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			// Same message as a wrong password so the response does not
			// reveal which accounts exist.
			return fail(c, apperr.New(apperr.Authentication, "wrong email or password"))
		}
		return fail(c, apperr.Wrap(apperr.Infrastructure, "failed to look up user", err))
	}

	if !auth.CheckPassword(u.Password, password) {
		return fail(c, apperr.New(apperr.Authentication, "wrong email or password"))
	}
	if u.Status != models.UserStatusActive {
		return fail(c, apperr.New(apperr.Authorization, "account is not active"))
	}

	sess, err := h.Sessions.Create(c.Context(), u.ID)
	if err != nil {
		return fail(c, err)
	}
	h.setSessionCookie(c, sess.Token)

	return ok(c, fiber.Map{
		"user":  u.Authenticated(),
		"token": sess.Token,
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token := middleware.TokenFromRequest(c)
	if err := h.Sessions.Delete(c.Context(), token); err != nil {
		return fail(c, err)
	}
	h.clearSessionCookie(c)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "logged out",
	})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return ok(c, middleware.CurrentUser(c))
}

type ForgotPasswordReq struct {
	Email string `json:"email"`
}

// ForgotPassword issues a short-lived signed reset token. The response is the
// same whether or not the account exists. Delivery is out of scope; the token
// is logged server-side, and echoed in the body in development only.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req ForgotPasswordReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return badRequest(c, "email is required")
	}

	resp := fiber.Map{
		"success": true,
		"message": "if the account exists, a reset link has been issued",
	}

	var u models.User
	err := h.DB.WithContext(c.Context()).Where("email = ?", email).First(&u).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return fail(c, apperr.Wrap(apperr.Infrastructure, "failed to look up user", err))
		}
		return c.JSON(resp)
	}

	token, err := auth.SignResetToken(h.Cfg.ResetTokenSecret, u.ID.String(), h.Cfg.ResetTokenTTL)
	if err != nil {
		return fail(c, apperr.Wrap(apperr.Infrastructure, "failed to sign reset token", err))
	}

	log.Printf("password reset token issued for user %s", u.ID)
	if !h.Cfg.IsProduction() {
		resp["data"] = fiber.Map{"reset_token": token}
	}
	return c.JSON(resp)
}

type ResetPasswordReq struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ResetPassword verifies the reset token, rehashes the password and revokes
// every session the user holds.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	password := strings.TrimSpace(req.Password)
	if req.Token == "" {
		return badRequest(c, "token is required")
	}
	if len(password) < 6 {
		return badRequest(c, "password must be at least 6 characters")
	}

	claims, err := auth.ParseResetToken(h.Cfg.ResetTokenSecret, req.Token)
	if err != nil {
		return fail(c, apperr.New(apperr.Authentication, "invalid or expired reset token"))
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return fail(c, apperr.New(apperr.Authentication, "invalid or expired reset token"))
	}

	var u models.User
	if err := h.DB.WithContext(c.Context()).First(&u, "id = ?", userID).Error; err != nil {
		return fail(c, apperr.FromDB(err, "user not found"))
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return fail(c, apperr.Wrap(apperr.Infrastructure, "failed to hash password", err))
	}

	if err := h.DB.WithContext(c.Context()).Model(&u).Update("password", hashed).Error; err != nil {
		return fail(c, apperr.Wrap(apperr.Infrastructure, "failed to update password", err))
	}
	if err := h.Sessions.RevokeAll(c.Context(), u.ID); err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "password updated, please log in again",
	})
}
