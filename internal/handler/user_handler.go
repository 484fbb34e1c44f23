package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-estate/internal/domain"
	"github.com/weiawesome/wes-estate/pkg/log"
	"github.com/weiawesome/wes-estate/pkg/middleware"
	"github.com/weiawesome/wes-estate/pkg/response"
)

// Register creates an account.
func (h *Handler) Register(c *gin.Context) {
	l := log.Ctx(c.Request.Context())

	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("failed to bind register request")
		response.BadRequest(c, "Please provide name, a valid email and a password of at least 6 characters")
		return
	}

	res, err := h.svc.Users.Register(c.Request.Context(), &req)
	if err != nil {
		fail(c, err, "failed to register user")
		return
	}

	response.With(c, http.StatusCreated, gin.H{"token": res.Token, "user": res.User})
}

// Login exchanges credentials for a token.
func (h *Handler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Please provide email and password")
		return
	}

	res, err := h.svc.Users.Login(c.Request.Context(), &req)
	if err != nil {
		fail(c, err, "failed to log in")
		return
	}

	response.With(c, http.StatusOK, gin.H{"token": res.Token, "user": res.User})
}

// Me returns the caller's profile.
func (h *Handler) Me(c *gin.Context) {
	user, err := h.svc.Users.Me(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		fail(c, err, "failed to get current user")
		return
	}
	response.Success(c, user)
}

// UpdateUser changes the caller's name or email.
func (h *Handler) UpdateUser(c *gin.Context) {
	var req domain.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.svc.Users.Update(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		fail(c, err, "failed to update user")
		return
	}
	response.Success(c, user)
}

// UpdatePassword changes the caller's password and returns a new token.
func (h *Handler) UpdatePassword(c *gin.Context) {
	var req domain.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Please provide current and new password")
		return
	}

	res, err := h.svc.Users.UpdatePassword(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		fail(c, err, "failed to update password")
		return
	}

	response.With(c, http.StatusOK, gin.H{"token": res.Token, "message": "Password updated successfully"})
}

// FindUser looks a user up by email.
func (h *Handler) FindUser(c *gin.Context) {
	user, err := h.svc.Users.FindByEmail(c.Request.Context(), c.Query("email"))
	if err != nil {
		fail(c, err, "failed to find user")
		return
	}
	response.Success(c, user)
}
