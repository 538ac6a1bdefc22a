package web

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mejova/bloggy/internal/application"
	"github.com/mejova/bloggy/internal/domain/repository"
	"github.com/mejova/bloggy/internal/interface/middleware"
	"github.com/mejova/bloggy/internal/session"
	"github.com/mejova/bloggy/pkg/validation"
)

type AuthHandler struct {
	Users    *application.UserService
	Sessions *session.Manager
	Logger   *logrus.Logger
}

func NewAuthHandler(users *application.UserService, sessions *session.Manager, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Users: users, Sessions: sessions, Logger: logger}
}

type registerForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required,min=6"`
}

type loginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// RegisterPage GET /register
func (h *AuthHandler) RegisterPage(c *gin.Context) {
	render(c, h.Sessions, "register.html", "Register", nil)
}

// Register POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	var form registerForm
	if err := c.ShouldBind(&form); err != nil {
		h.Sessions.Error(c, validation.FirstMessage(err))
		redirect(c, "/register")
		return
	}

	if _, err := h.Users.Register(c.Request.Context(), form.Username, form.Password); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateUsername):
			h.Sessions.Error(c, "Username already exists.")
		case errors.Is(err, application.ErrUsernameRequired),
			errors.Is(err, application.ErrPasswordTooShort):
			h.Sessions.Error(c, err.Error())
		default:
			h.Logger.WithError(err).Error("registration failed")
			h.Sessions.Error(c, "Something went wrong during registration.")
		}
		redirect(c, "/register")
		return
	}

	h.Sessions.Success(c, "Registration successful! You can now log in.")
	redirect(c, "/login")
}

// LoginPage GET /login
func (h *AuthHandler) LoginPage(c *gin.Context) {
	if _, ok := middleware.PrincipalFrom(c); ok {
		redirect(c, "/")
		return
	}
	render(c, h.Sessions, "login.html", "Login", nil)
}

// Login POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		h.Sessions.Error(c, validation.FirstMessage(err))
		redirect(c, "/login")
		return
	}

	u, err := h.Users.Authenticate(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			h.Sessions.Error(c, "Invalid username or password.")
		} else {
			h.Logger.WithError(err).Error("login failed")
			h.Sessions.Error(c, "An error occurred. Please try again later.")
		}
		redirect(c, "/login")
		return
	}

	if err := h.Sessions.Login(c, u.ID); err != nil {
		h.Logger.WithError(err).WithField("user_id", u.ID).Error("session create failed")
		h.Sessions.Error(c, "An error occurred. Please try again later.")
		redirect(c, "/login")
		return
	}

	h.Sessions.Success(c, "Welcome back!")
	redirect(c, "/")
}

// Logout GET /logout. Never fails visibly: the session is dropped and the
// cookie cleared no matter what the store reports.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Sessions.Logout(c)
	h.Sessions.Success(c, "Logged out successfully.")
	redirect(c, "/login")
}
