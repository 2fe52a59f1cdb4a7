package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"gopherauth/internal/app"
	"gopherauth/internal/metrics"
	"gopherauth/internal/session"
	"gopherauth/internal/transport/http/flash"
	"gopherauth/internal/transport/http/response"
)

const (
	PathHome     = "/"
	PathRegister = "/register"
	PathLogin    = "/login"
	PathLogout   = "/logout"
	PathUsers    = "/users"
)

type AuthHandler struct {
	authService *app.AuthService
	sessions    *session.Manager
}

func NewAuthHandler(authService *app.AuthService, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions}
}

func (h *AuthHandler) RegisterForm(c *gin.Context) {
	response.Page(c, http.StatusOK, "register.html", nil)
}

func (h *AuthHandler) Register(c *gin.Context) {
	_, err := h.authService.Register(c.Request.Context(), app.RegisterInput{
		Username: c.PostForm("username"),
		Email:    c.PostForm("email"),
		Password: c.PostForm("password"),
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInputTooLong):
			metrics.IncAuthAttempt("register", "invalid")
			response.Redirect(c, PathRegister, flash.CategoryError, "Username, email or password is too long")
		case errors.Is(err, app.ErrValidation):
			metrics.IncAuthAttempt("register", "invalid")
			response.Redirect(c, PathRegister, flash.CategoryError, "Please fill all fields")
		case errors.Is(err, app.ErrDuplicate):
			metrics.IncAuthAttempt("register", "duplicate")
			response.Redirect(c, PathRegister, flash.CategoryError, "Username or email already exists")
		default:
			metrics.IncAuthAttempt("register", "error")
			response.InternalError(c, "register", err)
		}
		return
	}

	metrics.IncAuthAttempt("register", "success")
	response.Redirect(c, PathLogin, flash.CategorySuccess, "Registration successful. Please log in.")
}

func (h *AuthHandler) LoginForm(c *gin.Context) {
	response.Page(c, http.StatusOK, "login.html", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	user, err := h.authService.Login(c.Request.Context(), app.LoginInput{
		Username: c.PostForm("username"),
		Password: c.PostForm("password"),
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidCredentials) {
			metrics.IncAuthAttempt("login", "invalid")
			response.Page(c, http.StatusOK, "login.html", nil, flash.Notice{
				Category: flash.CategoryError,
				Message:  "Invalid username or password",
			})
			return
		}
		metrics.IncAuthAttempt("login", "error")
		response.InternalError(c, "login", err)
		return
	}

	if err := h.sessions.Start(c.Writer, user.ID, user.Username); err != nil {
		metrics.IncAuthAttempt("login", "error")
		response.InternalError(c, "start session", err)
		return
	}
	metrics.IncAuthAttempt("login", "success")
	response.Redirect(c, PathHome, flash.CategorySuccess, fmt.Sprintf("Welcome, %s!", user.Username))
}

// Logout is idempotent.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.End(c.Writer)
	response.Redirect(c, PathLogin, flash.CategoryInfo, "You have logged out.")
}
