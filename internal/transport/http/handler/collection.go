package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"plantid/internal/app"
	"plantid/internal/transport/http/middleware"
	"plantid/internal/transport/http/response"
)

type CollectionHandler struct {
	collectionService *app.CollectionService
}

type SavePlantRequest struct {
	PlantIdentificationID uint `json:"plantIdentificationId" binding:"required,gt=0"`
}

func NewCollectionHandler(collectionService *app.CollectionService) *CollectionHandler {
	return &CollectionHandler{collectionService: collectionService}
}

func (h *CollectionHandler) List(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	plants, err := h.collectionService.List(c.Request.Context(), sess.UserID)
	if err != nil {
		internalError(c, err, "Failed to fetch saved plants")
		return
	}
	response.JSON(c, plants)
}

func (h *CollectionHandler) Save(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)

	var req SavePlantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "Invalid plant identification ID")
		return
	}

	result, err := h.collectionService.Save(c.Request.Context(), sess.UserID, req.PlantIdentificationID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrIdentificationNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "Plant identification not found")
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "Invalid plant identification ID")
		default:
			internalError(c, err, "Failed to save plant")
		}
		return
	}

	if result.Duplicate {
		response.JSON(c, gin.H{
			"success":   false,
			"duplicate": true,
			"message":   "This image has already been saved.",
		})
		return
	}
	response.JSON(c, gin.H{"success": true, "savedPlant": result.SavedPlant})
}

func (h *CollectionHandler) Remove(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	id, ok := parseID(c, "Invalid plant identification ID")
	if !ok {
		return
	}

	if err := h.collectionService.Remove(c.Request.Context(), sess.UserID, id); err != nil {
		internalError(c, err, "Failed to remove plant")
		return
	}
	response.Message(c, "Plant removed from your collection")
}
