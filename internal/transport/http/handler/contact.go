package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"plantid/internal/app"
	"plantid/internal/transport/http/response"
)

type ContactHandler struct {
	contactService *app.ContactService
}

type ContactRequest struct {
	Name    string `json:"name" binding:"required,max=255"`
	Email   string `json:"email" binding:"required,email,max=255"`
	Subject string `json:"subject" binding:"required,max=255"`
	Message string `json:"message" binding:"required,max=5000"`
}

func NewContactHandler(contactService *app.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

func (h *ContactHandler) Submit(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if missingRequired(err) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "Name, email, subject, and message are required.")
			return
		}
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "Invalid input.")
		return
	}

	_, err := h.contactService.Submit(c.Request.Context(), app.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrContactFieldsRequired):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "Name, email, subject, and message are required.")
		default:
			internalError(c, err, "Failed to send message")
		}
		return
	}
	response.Message(c, "Message sent and saved!")
}
