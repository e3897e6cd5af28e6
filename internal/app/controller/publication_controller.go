package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/bookcity-backend/internal/app/service"
	apperrors "github.com/ikkim/bookcity-backend/internal/errors"
	"github.com/ikkim/bookcity-backend/internal/middleware"
)

type PublicationController struct {
	publicationService service.PublicationService
}

func NewPublicationController(publicationService service.PublicationService) *PublicationController {
	return &PublicationController{publicationService: publicationService}
}

// ListPublications GET /api/v1/publications
func (ctrl *PublicationController) ListPublications(c *gin.Context) {
	publications, err := ctrl.publicationService.ListPublications(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "list publications")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"publications": publications,
		"count":        len(publications),
	})
}

// SearchPublications GET /api/v1/publications/search?q=
func (ctrl *PublicationController) SearchPublications(c *gin.Context) {
	publications, err := ctrl.publicationService.SearchPublications(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondServiceError(c, err, "search publications")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"publications": publications,
		"count":        len(publications),
	})
}

// GetPublication GET /api/v1/publications/:id
func (ctrl *PublicationController) GetPublication(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	publication, err := ctrl.publicationService.GetPublication(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "fetch publication")
		return
	}

	c.JSON(http.StatusOK, gin.H{"publication": publication})
}

// CreatePublication POST /api/v1/publications
func (ctrl *PublicationController) CreatePublication(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var input service.PublicationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Warn("Invalid publication request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.InvalidInput(c, err)
		return
	}

	publication, err := ctrl.publicationService.CreatePublication(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err, "create publication")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"publication": publication})
}

// UpdatePublication PUT /api/v1/publications/:id
func (ctrl *PublicationController) UpdatePublication(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var input service.PublicationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.InvalidInput(c, err)
		return
	}

	publication, err := ctrl.publicationService.UpdatePublication(c.Request.Context(), id, input)
	if err != nil {
		respondServiceError(c, err, "update publication")
		return
	}

	c.JSON(http.StatusOK, gin.H{"publication": publication})
}

// DeletePublication DELETE /api/v1/publications/:id
func (ctrl *PublicationController) DeletePublication(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.publicationService.DeletePublication(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "delete publication")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Publication deleted"})
}
