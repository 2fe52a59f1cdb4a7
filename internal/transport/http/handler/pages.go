package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gopherauth/internal/app"
	"gopherauth/internal/transport/http/flash"
	"gopherauth/internal/transport/http/middleware"
	"gopherauth/internal/transport/http/response"
)

type PageHandler struct {
	accessService *app.AccessService
}

func NewPageHandler(accessService *app.AccessService) *PageHandler {
	return &PageHandler{accessService: accessService}
}

func (h *PageHandler) Home(c *gin.Context) {
	viewer := middleware.IdentityFrom(c)
	if err := h.accessService.RequireAuthenticated(viewer); err != nil {
		c.Redirect(http.StatusFound, PathLogin)
		return
	}
	response.Page(c, http.StatusOK, "index.html", gin.H{"Username": viewer.Username})
}

func (h *PageHandler) Users(c *gin.Context) {
	users, err := h.accessService.ListUsers(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNotAuthenticated):
			response.Redirect(c, PathLogin, flash.CategoryError, "Please login first.")
		case errors.Is(err, app.ErrAccessDenied):
			response.Redirect(c, PathHome, flash.CategoryError, "Access denied! Admins only.")
		default:
			response.InternalError(c, "list users", err)
		}
		return
	}
	response.Page(c, http.StatusOK, "users.html", gin.H{"Users": users})
}
