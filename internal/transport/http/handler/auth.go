package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"plantid/internal/app"
	"plantid/internal/session"
	"plantid/internal/transport/http/middleware"
	"plantid/internal/transport/http/response"
)

type AuthHandler struct {
	authService *app.AuthService
	sessions    *session.Manager
	cookie      middleware.SessionCookie
}

type RegisterRequest struct {
	Username  string  `json:"username" binding:"required,min=3,max=64"`
	Email     string  `json:"email" binding:"required,email,max=128"`
	Password  string  `json:"password" binding:"required,min=8,max=72"`
	FirstName *string `json:"firstName" binding:"omitempty,max=64"`
	LastName  *string `json:"lastName" binding:"omitempty,max=64"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Password string `json:"password" binding:"required,max=72"`
}

type ProfileRequest struct {
	Username        *string `json:"username" binding:"omitempty,min=3,max=64"`
	Email           *string `json:"email" binding:"omitempty,email,max=128"`
	FirstName       *string `json:"firstName" binding:"omitempty,max=64"`
	LastName        *string `json:"lastName" binding:"omitempty,max=64"`
	CurrentPassword string  `json:"currentPassword" binding:"omitempty,max=72"`
	NewPassword     string  `json:"newPassword" binding:"omitempty,min=8,max=72"`
	ConfirmPassword string  `json:"confirmPassword" binding:"omitempty,max=72"`
}

func NewAuthHandler(authService *app.AuthService, sessions *session.Manager, cookie middleware.SessionCookie) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions, cookie: cookie}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "Invalid input.")
		return
	}

	user, err := h.authService.Register(c.Request.Context(), app.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "Invalid input.")
		case errors.Is(err, app.ErrUsernameExists):
			response.Error(c, http.StatusBadRequest, response.CodeUsernameExists, "Username already exists")
		case errors.Is(err, app.ErrEmailExists):
			response.Error(c, http.StatusBadRequest, response.CodeEmailExists, "Email already exists")
		default:
			internalError(c, err, "Registration failed")
		}
		return
	}

	if !h.startSession(c, user.ID, user.Username) {
		return
	}
	response.JSON(c, gin.H{"user": user, "message": "Registration successful"})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidCredentials, "Invalid username or password")
		return
	}

	user, err := h.authService.Login(c.Request.Context(), app.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidCredential) {
			response.Error(c, http.StatusBadRequest, response.CodeInvalidCredentials, "Invalid username or password")
			return
		}
		internalError(c, err, "Login failed")
		return
	}

	if !h.startSession(c, user.ID, user.Username) {
		return
	}
	response.JSON(c, gin.H{"user": user, "message": "Login successful"})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	if err := h.sessions.Destroy(c.Request.Context(), sess.ID); err != nil {
		internalError(c, err, "Could not log out")
		return
	}
	middleware.ClearSession(c)
	h.cookie.Clear(c)
	response.Message(c, "Logout successful")
}

func (h *AuthHandler) User(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	user, err := h.authService.GetUserByID(c.Request.Context(), sess.UserID)
	if err != nil {
		if errors.Is(err, app.ErrUserNotFound) {
			// The account behind a live session is gone.
			_ = h.sessions.Destroy(c.Request.Context(), sess.ID)
			h.cookie.Clear(c)
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "Authentication required")
			return
		}
		internalError(c, err, "Failed to fetch user")
		return
	}
	response.JSON(c, user)
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)

	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "Invalid input.")
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), sess.UserID, app.ProfileInput{
		Username:        req.Username,
		Email:           req.Email,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrPasswordFieldsRequired):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "All password fields are required.")
		case errors.Is(err, app.ErrPasswordMismatch):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "New passwords do not match.")
		case errors.Is(err, app.ErrWrongPassword):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "Current password is incorrect.")
		case errors.Is(err, app.ErrUsernameExists):
			response.Error(c, http.StatusBadRequest, response.CodeUsernameExists, "Username already exists")
		case errors.Is(err, app.ErrEmailExists):
			response.Error(c, http.StatusBadRequest, response.CodeEmailExists, "Email already exists")
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "Invalid input.")
		case errors.Is(err, app.ErrUserNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "User not found")
		default:
			internalError(c, err, "Failed to update profile")
		}
		return
	}

	if user.Username != sess.Username {
		if err := h.sessions.Rename(c.Request.Context(), sess, user.Username); err != nil {
			log.Ctx(c.Request.Context()).Warn().Err(err).Uint("user_id", user.ID).Msg("rename session failed")
		}
	}
	response.JSON(c, gin.H{"user": user, "message": "Profile updated successfully"})
}

func (h *AuthHandler) startSession(c *gin.Context, userID uint, username string) bool {
	sess, token, err := h.sessions.Issue(c.Request.Context(), userID, username)
	if err != nil {
		internalError(c, err, "Could not start session")
		return false
	}
	middleware.SetSession(c, sess)
	h.cookie.Set(c, token)
	return true
}
